// Package deck turns parsed decklist lines into a presentation-ready deck:
// card metadata enrichment, type/CMC ordering, grouping, statistics, and
// mana-symbol markup.
package deck

import (
	"github.com/ramonehamilton/pdc-decklist/internal/scryfall"
)

// Defaults applied to a card whose metadata lookup failed.
const (
	UnknownTypeLine = "Unknown"
)

// EnrichedCard is one decklist line with the card data derived from its metadata.
// Card is nil when the lookup failed; the derived fields then hold defaults.
// Missing images are nil and encode as null.
type EnrichedCard struct {
	Quantity      int            `json:"quantity"`
	Name          string         `json:"name"`
	Card          *scryfall.Card `json:"scryfall_data"`
	CMC           int            `json:"cmc"`
	Type          string         `json:"type"`
	TypeLine      string         `json:"type_line"`
	ManaCost      string         `json:"mana_cost"`
	Colors        []string       `json:"colors"`
	ImageURL      *string        `json:"image_url"`
	ImageURLSmall *string        `json:"image_url_small"`
}

// HasMetadata reports whether the card was found.
func (c EnrichedCard) HasMetadata() bool {
	return c.Card != nil
}

// SpecialCard summarizes the commander or partner.
type SpecialCard struct {
	Name            string         `json:"name"`
	Card            *scryfall.Card `json:"scryfall_data"`
	ImageURL        *string        `json:"image_url"`
	ImageURLArtCrop *string        `json:"image_url_art_crop,omitempty"`
	ManaCost        string         `json:"mana_cost"`
	TypeLine        string         `json:"type_line"`
}

// TypeGroup holds the cards of one primary type, in sorted order.
type TypeGroup struct {
	Type  string         `json:"type"`
	Cards []EnrichedCard `json:"cards"`
}

// Deck is the prepared deck handed to the presentation layer.
type Deck struct {
	Cards       []EnrichedCard `json:"cards"`
	CardsByType []TypeGroup    `json:"cards_by_type"`
	Commander   *SpecialCard   `json:"commander"`
	Partner     *SpecialCard   `json:"partner"`
	Stats       DeckStats      `json:"stats"`
}

// NewEnrichedCard builds an EnrichedCard from a lookup result. A nil card
// produces the absent-metadata defaults.
func NewEnrichedCard(quantity int, name string, card *scryfall.Card) EnrichedCard {
	ec := EnrichedCard{
		Quantity: quantity,
		Name:     name,
		Card:     card,
		Type:     scryfall.TypeOther,
		TypeLine: UnknownTypeLine,
		Colors:   []string{},
	}
	if card == nil {
		return ec
	}

	ec.CMC, _ = scryfall.CMC(card)
	ec.Type = scryfall.PrimaryType(card)
	ec.TypeLine, _ = scryfall.TypeLine(card)
	ec.ManaCost, _ = scryfall.ManaCost(card)
	ec.Colors = scryfall.Colors(card)
	ec.ImageURL = imageURL(card, scryfall.ImageNormal)
	ec.ImageURLSmall = imageURL(card, scryfall.ImageSmall)
	return ec
}

// newSpecialCard builds the commander/partner summary. Art crop is only
// filled for the commander.
func newSpecialCard(name string, card *scryfall.Card, withArtCrop bool) *SpecialCard {
	sc := &SpecialCard{Name: name, Card: card}
	sc.ImageURL = imageURL(card, scryfall.ImageNormal)
	sc.ManaCost, _ = scryfall.ManaCost(card)
	sc.TypeLine, _ = scryfall.TypeLine(card)
	if withArtCrop {
		sc.ImageURLArtCrop = imageURL(card, scryfall.ImageArtCrop)
	}
	return sc
}

func imageURL(card *scryfall.Card, size string) *string {
	url, ok := scryfall.ImageURL(card, size)
	if !ok || url == "" {
		return nil
	}
	return &url
}
