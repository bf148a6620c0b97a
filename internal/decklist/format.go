package decklist

import (
	"strconv"
	"strings"
)

// FormatCanonical serializes lines to MTGO format: one "<quantity> <name>" per line.
func FormatCanonical(lines []Line) string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if s, ok := formatLine(line); ok {
			out = append(out, s)
		}
	}
	return strings.Join(out, "\n")
}

// FormatAlternate serializes lines to Moxfield's import format:
//
//	Commander
//	1 <commander>
//	1 <partner>
//
//	Deck
//	<quantity> <name>
//	...
//
// The Commander section is emitted only when commander is set, and the
// partner only alongside a commander. The Deck section is omitted for an empty list.
func FormatAlternate(lines []Line, commander, partner string) string {
	out := make([]string, 0, len(lines)+5)

	if commander != "" {
		out = append(out, "Commander", "1 "+commander)
		if partner != "" {
			out = append(out, "1 "+partner)
		}
		out = append(out, "")
	}

	if len(lines) > 0 {
		out = append(out, "Deck")
		for _, line := range lines {
			if s, ok := formatLine(line); ok {
				out = append(out, s)
			}
		}
	}

	return strings.Join(out, "\n")
}

// formatLine renders one entry, skipping entries that could never have been parsed.
func formatLine(line Line) (string, bool) {
	if line.Quantity <= 0 || line.Name == "" {
		return "", false
	}
	return strconv.Itoa(line.Quantity) + " " + line.Name, true
}
