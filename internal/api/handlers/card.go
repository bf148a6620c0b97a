package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/pdc-decklist/internal/api/response"
	"github.com/ramonehamilton/pdc-decklist/internal/deck"
	"github.com/ramonehamilton/pdc-decklist/internal/scryfall"
)

// CardService looks up cards and manages the lookup cache.
type CardService interface {
	LookupCardByName(ctx context.Context, name string) (*scryfall.Card, error)
	LookupCardBySet(ctx context.Context, setCode, collectorNumber string) (*scryfall.Card, error)
	ClearCardCache(ctx context.Context, name string) error
	ClearAllCaches(ctx context.Context) (int, error)
}

// CardHandler handles card lookups and cache administration.
type CardHandler struct {
	service CardService
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(service CardService) *CardHandler {
	return &CardHandler{service: service}
}

// CardSummary is the display view of a card.
type CardSummary struct {
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	TypeLine      string   `json:"type_line"`
	ManaCost      string   `json:"mana_cost"`
	ManaCostHTML  string   `json:"mana_cost_html"`
	ColorsHTML    string   `json:"colors_html"`
	CMC           int      `json:"cmc"`
	Colors        []string `json:"colors"`
	ImageURL      *string  `json:"image_url"`
	ImageURLSmall *string  `json:"image_url_small"`
	SetCode       string   `json:"set"`
	Number        string   `json:"collector_number"`
	ScryfallURI   string   `json:"scryfall_uri,omitempty"`
}

func newCardSummary(card *scryfall.Card) CardSummary {
	ec := deck.NewEnrichedCard(1, card.Name, card)
	colors := ""
	for _, c := range ec.Colors {
		colors += c
	}
	return CardSummary{
		Name:          card.Name,
		Type:          ec.Type,
		TypeLine:      ec.TypeLine,
		ManaCost:      ec.ManaCost,
		ManaCostHTML:  deck.FormatManaCost(ec.ManaCost),
		ColorsHTML:    deck.FormatColorSymbol(colors),
		CMC:           ec.CMC,
		Colors:        ec.Colors,
		ImageURL:      ec.ImageURL,
		ImageURLSmall: ec.ImageURLSmall,
		SetCode:       card.SetCode,
		Number:        card.CollectorNumber,
		ScryfallURI:   card.ScryfallURI,
	}
}

// GetCardByName looks a card up by exact name (?exact=).
func (h *CardHandler) GetCardByName(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("exact")
	if name == "" {
		response.BadRequest(w, errors.New("exact card name is required"))
		return
	}

	card, err := h.service.LookupCardByName(r.Context(), name)
	h.writeCard(w, card, err)
}

// GetCardBySet looks a card up by set code and collector number.
func (h *CardHandler) GetCardBySet(w http.ResponseWriter, r *http.Request) {
	setCode := pathParam(r, "set")
	number := pathParam(r, "number")
	if setCode == "" || number == "" {
		response.BadRequest(w, errors.New("set code and collector number are required"))
		return
	}

	card, err := h.service.LookupCardBySet(r.Context(), setCode, number)
	h.writeCard(w, card, err)
}

func (h *CardHandler) writeCard(w http.ResponseWriter, card *scryfall.Card, err error) {
	if err != nil {
		if scryfall.IsLookupMiss(err) {
			response.NotFound(w, errors.New("card not found"))
			return
		}
		response.BadGateway(w, err)
		return
	}
	if card == nil {
		response.NotFound(w, errors.New("card not found"))
		return
	}
	response.Success(w, newCardSummary(card))
}

// ClearCard removes a card's cached lookup.
func (h *CardHandler) ClearCard(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	if name == "" {
		response.BadRequest(w, errors.New("card name is required"))
		return
	}

	if err := h.service.ClearCardCache(r.Context(), name); err != nil {
		response.InternalError(w, err)
		return
	}
	response.NoContent(w)
}

// ClearCache removes every cached lookup.
func (h *CardHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.ClearAllCaches(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, map[string]int{"cleared": n})
}

// pathParam returns a decoded URL parameter. chi matches on the escaped path
// when one is present, so "Fire %2F%2F Ice" arrives still encoded.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
