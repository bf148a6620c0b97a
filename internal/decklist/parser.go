// Package decklist parses plain-text decklists ("1 Sol Ring" per line) and
// serializes them back to the interchange formats deck sites accept.
package decklist

import (
	"regexp"
	"strconv"
	"strings"
)

// Line is a single parsed decklist entry.
type Line struct {
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

var (
	// lineRegex matches "quantity card_name": digits, whitespace, then the name.
	lineRegex = regexp.MustCompile(`^(\d+)\s+(.+)$`)

	whitespaceRegex = regexp.MustCompile(`\s+`)
	splitCardRegex  = regexp.MustCompile(`\s*//\s*`)
)

// Parse converts decklist text into lines, in input order.
//
// Blank lines, comments ("//" or "#"), and the "Sideboard" marker are skipped.
// Lines that don't match "<quantity> <name>", or that have a zero quantity,
// are dropped silently. Repeated names are kept as separate lines.
func Parse(text string) []Line {
	if text == "" {
		return []Line{}
	}

	lines := make([]Line, 0)
	for _, raw := range strings.Split(text, "\n") {
		if line, ok := parseLine(raw); ok {
			lines = append(lines, line)
		}
	}
	return lines
}

// parseLine parses a single line. ok is false for skipped or malformed lines.
func parseLine(raw string) (Line, bool) {
	line := strings.TrimSpace(raw)

	if line == "" {
		return Line{}, false
	}

	if strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
		return Line{}, false
	}

	if lower := strings.ToLower(line); lower == "sideboard" || lower == "sideboard:" {
		return Line{}, false
	}

	matches := lineRegex.FindStringSubmatch(line)
	if matches == nil {
		return Line{}, false
	}

	quantity, err := strconv.Atoi(matches[1])
	if err != nil || quantity <= 0 {
		// Atoi only fails here on overflow.
		return Line{}, false
	}

	name := strings.TrimSpace(matches[2])
	if name == "" {
		return Line{}, false
	}

	return Line{Quantity: quantity, Name: name}, true
}

// Validate reports whether text contains at least one card line.
func Validate(text string) bool {
	return len(Parse(text)) > 0
}

// CountCards returns the sum of quantities over all parsed lines.
func CountCards(text string) int {
	total := 0
	for _, line := range Parse(text) {
		total += line.Quantity
	}
	return total
}

// CountUnique returns the number of parsed lines. A name listed on two lines counts twice.
func CountUnique(text string) int {
	return len(Parse(text))
}

// NormalizeCardName collapses whitespace and normalizes the split-card
// separator, so "Fire//Ice" and "Fire  //  Ice" both become "Fire // Ice".
func NormalizeCardName(name string) string {
	name = strings.TrimSpace(name)
	name = whitespaceRegex.ReplaceAllString(name, " ")
	name = splitCardRegex.ReplaceAllString(name, " // ")
	return strings.TrimSpace(name)
}

// CardNames returns the names of lines in order.
func CardNames(lines []Line) []string {
	names := make([]string, len(lines))
	for i, line := range lines {
		names[i] = line.Name
	}
	return names
}
