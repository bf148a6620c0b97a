package scryfall

import "strings"

// Primary card types used for sorting and grouping.
const (
	TypeLand         = "Land"
	TypeCreature     = "Creature"
	TypePlaneswalker = "Planeswalker"
	TypeInstant      = "Instant"
	TypeSorcery      = "Sorcery"
	TypeArtifact     = "Artifact"
	TypeEnchantment  = "Enchantment"
	TypeOther        = "Other"
)

// typePriority is the order in which type-line words are matched.
// Land comes first so "Artifact Land" classifies as a land.
var typePriority = []string{
	TypeLand,
	TypeCreature,
	TypePlaneswalker,
	TypeInstant,
	TypeSorcery,
	TypeArtifact,
	TypeEnchantment,
}

// frontFace returns the first face of a multi-faced card, or nil.
func (c *Card) frontFace() *CardFace {
	if c == nil || len(c.CardFaces) == 0 {
		return nil
	}
	return &c.CardFaces[0]
}

// ImageURL returns the image of the given size, falling back to the front face.
func ImageURL(card *Card, size string) (string, bool) {
	if card == nil {
		return "", false
	}
	if url, ok := card.ImageURIs[size]; ok {
		return url, true
	}
	if face := card.frontFace(); face != nil {
		if url, ok := face.ImageURIs[size]; ok {
			return url, true
		}
	}
	return "", false
}

// ManaCost returns the mana cost string (e.g. "{2}{U}{U}"), falling back to the front face.
func ManaCost(card *Card) (string, bool) {
	if card == nil {
		return "", false
	}
	if card.ManaCost != nil {
		return *card.ManaCost, true
	}
	if face := card.frontFace(); face != nil && face.ManaCost != nil {
		return *face.ManaCost, true
	}
	return "", false
}

// CMC returns the converted mana cost truncated to an integer.
func CMC(card *Card) (int, bool) {
	if card == nil || card.CMC == nil {
		return 0, false
	}
	return int(*card.CMC), true
}

// Colors returns the card's color codes, falling back to the front face.
// The result is never nil.
func Colors(card *Card) []string {
	if card == nil {
		return []string{}
	}
	if card.Colors != nil {
		return append([]string{}, card.Colors...)
	}
	if face := card.frontFace(); face != nil && face.Colors != nil {
		return append([]string{}, face.Colors...)
	}
	return []string{}
}

// TypeLine returns the type line (e.g. "Creature — Human Wizard"), falling back to the front face.
func TypeLine(card *Card) (string, bool) {
	if card == nil {
		return "", false
	}
	if card.TypeLine != nil {
		return *card.TypeLine, true
	}
	if face := card.frontFace(); face != nil && face.TypeLine != nil {
		return *face.TypeLine, true
	}
	return "", false
}

// PrimaryType classifies a card into one of the fixed display categories.
func PrimaryType(card *Card) string {
	typeLine, ok := TypeLine(card)
	if !ok || typeLine == "" {
		return TypeOther
	}
	return ClassifyTypeLine(typeLine)
}

// ClassifyTypeLine returns the first priority type found in typeLine, case-insensitively.
func ClassifyTypeLine(typeLine string) string {
	lower := strings.ToLower(typeLine)
	for _, t := range typePriority {
		if strings.Contains(lower, strings.ToLower(t)) {
			return t
		}
	}
	return TypeOther
}
