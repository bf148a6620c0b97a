package deck

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/ramonehamilton/pdc-decklist/internal/scryfall"
)

// Color buckets used in DeckStats.ColorCounts.
const (
	ColorColorless = "C"
	ColorMulti     = "Multi"
)

// MaxCMCBucket is the last histogram bucket; it also holds every higher CMC.
const MaxCMCBucket = 7

// CMCDistribution is a non-land CMC histogram: buckets 0-6 and 7+.
type CMCDistribution [MaxCMCBucket + 1]int

// BucketLabel returns the display label of bucket i ("0".."6", "7+").
func BucketLabel(i int) string {
	if i >= MaxCMCBucket {
		return strconv.Itoa(MaxCMCBucket) + "+"
	}
	return strconv.Itoa(i)
}

// Total returns the sum of all buckets.
func (d CMCDistribution) Total() int {
	total := 0
	for _, n := range d {
		total += n
	}
	return total
}

// MarshalJSON encodes the histogram as an object with keys in bucket order.
func (d CMCDistribution) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, n := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(BucketLabel(i)))
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(n))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the object form written by MarshalJSON.
func (d *CMCDistribution) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*d = CMCDistribution{}
	for i := range d {
		d[i] = m[BucketLabel(i)]
	}
	return nil
}

// DeckStats aggregates a card list.
type DeckStats struct {
	TotalCards      int             `json:"total_cards"`
	UniqueCards     int             `json:"unique_cards"`
	TypeCounts      map[string]int  `json:"type_counts"`
	CMCDistribution CMCDistribution `json:"cmc_distribution"`
	ColorCounts     map[string]int  `json:"color_counts"`
	AverageCMC      float64         `json:"average_cmc"`
}

// CalculateStats computes totals, per-type counts, the non-land CMC
// histogram, per-color counts and the average non-land CMC (one decimal).
//
// Colorless cards count under "C" and cards with two or more colors under
// "Multi". Zero color buckets are omitted.
func CalculateStats(cards []EnrichedCard) DeckStats {
	stats := DeckStats{
		UniqueCards: len(cards),
		TypeCounts:  make(map[string]int),
		ColorCounts: make(map[string]int),
	}

	var totalCMC, nonLand int
	for _, card := range cards {
		stats.TotalCards += card.Quantity
		stats.TypeCounts[card.Type] += card.Quantity

		if card.Type != scryfall.TypeLand {
			bucket := min(max(card.CMC, 0), MaxCMCBucket)
			stats.CMCDistribution[bucket] += card.Quantity
			totalCMC += card.CMC * card.Quantity
			nonLand += card.Quantity
		}

		switch len(card.Colors) {
		case 0:
			stats.ColorCounts[ColorColorless] += card.Quantity
		case 1:
			if isColorCode(card.Colors[0]) {
				stats.ColorCounts[card.Colors[0]] += card.Quantity
			}
		default:
			stats.ColorCounts[ColorMulti] += card.Quantity
		}
	}

	for color, n := range stats.ColorCounts {
		if n == 0 {
			delete(stats.ColorCounts, color)
		}
	}

	if nonLand > 0 {
		stats.AverageCMC = math.Round(float64(totalCMC)/float64(nonLand)*10) / 10
	}
	return stats
}

func isColorCode(c string) bool {
	switch c {
	case "W", "U", "B", "R", "G", ColorColorless:
		return true
	}
	return false
}
