package deck

import (
	"cmp"
	"slices"
	"strings"

	"github.com/ramonehamilton/pdc-decklist/internal/scryfall"
)

// unknownTypeRank sorts types missing from the table after everything else.
const unknownTypeRank = 99

var typeRanks = map[string]int{
	scryfall.TypeCreature:     1,
	scryfall.TypePlaneswalker: 2,
	scryfall.TypeInstant:      3,
	scryfall.TypeSorcery:      4,
	scryfall.TypeArtifact:     5,
	scryfall.TypeEnchantment:  6,
	scryfall.TypeLand:         7,
	scryfall.TypeOther:        8,
}

// TypeRank returns the display rank of a primary type.
func TypeRank(cardType string) int {
	if rank, ok := typeRanks[cardType]; ok {
		return rank
	}
	return unknownTypeRank
}

// compareCards orders by type rank, then CMC, then case-insensitive name.
func compareCards(a, b EnrichedCard) int {
	if c := cmp.Compare(TypeRank(a.Type), TypeRank(b.Type)); c != 0 {
		return c
	}
	if c := cmp.Compare(a.CMC, b.CMC); c != 0 {
		return c
	}
	return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
}

// SortCards returns a sorted copy of cards. Cards with equal keys keep their input order.
func SortCards(cards []EnrichedCard) []EnrichedCard {
	sorted := slices.Clone(cards)
	if sorted == nil {
		sorted = []EnrichedCard{}
	}
	slices.SortStableFunc(sorted, compareCards)
	return sorted
}

// GroupByType partitions cards by primary type. Card order inside a group is
// preserved; groups are ordered by type rank, unknown types last in order of
// first appearance.
func GroupByType(cards []EnrichedCard) []TypeGroup {
	groups := make([]TypeGroup, 0)
	index := make(map[string]int)

	for _, card := range cards {
		i, ok := index[card.Type]
		if !ok {
			i = len(groups)
			index[card.Type] = i
			groups = append(groups, TypeGroup{Type: card.Type})
		}
		groups[i].Cards = append(groups[i].Cards, card)
	}

	slices.SortStableFunc(groups, func(a, b TypeGroup) int {
		return cmp.Compare(TypeRank(a.Type), TypeRank(b.Type))
	})
	return groups
}
