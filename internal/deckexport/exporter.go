// Package deckexport builds downloadable decklist files.
package deckexport

import (
	"fmt"
	"strings"

	"github.com/ramonehamilton/pdc-decklist/internal/deck"
	"github.com/ramonehamilton/pdc-decklist/internal/decklist"
)

// ExportFormat represents the format to export the deck in.
type ExportFormat string

const (
	FormatMTGO     ExportFormat = "mtgo"     // "<quantity> <name>" per line
	FormatMoxfield ExportFormat = "moxfield" // Commander and Deck sections
)

// Formats lists the supported export formats.
var Formats = []ExportFormat{FormatMTGO, FormatMoxfield}

// ParseFormat validates a format name. Matching is case-insensitive.
func ParseFormat(s string) (ExportFormat, error) {
	f := ExportFormat(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported export format: %q", s)
}

// ExportOptions controls deck export behavior.
type ExportOptions struct {
	Format   ExportFormat
	DeckName string // Used for the filename; "decklist" when empty
}

// DeckExport represents an exported deck.
type DeckExport struct {
	Content  string       `json:"content"`
	Format   ExportFormat `json:"format"`
	Filename string       `json:"filename"`
}

// Export serializes lines in the requested format. The commander and partner
// are only written by formats that have a commander section.
func Export(lines []decklist.Line, commander, partner string, options *ExportOptions) (*DeckExport, error) {
	if options == nil {
		options = &ExportOptions{Format: FormatMTGO}
	}

	var content string
	switch options.Format {
	case FormatMTGO:
		content = decklist.FormatCanonical(lines)
	case FormatMoxfield:
		content = decklist.FormatAlternate(lines, commander, partner)
	default:
		return nil, fmt.Errorf("unsupported export format: %s", options.Format)
	}

	return &DeckExport{
		Content:  content,
		Format:   options.Format,
		Filename: Filename(options.DeckName, options.Format),
	}, nil
}

// ExportText parses decklist text and exports it.
func ExportText(text, commander, partner string, options *ExportOptions) (*DeckExport, error) {
	return Export(decklist.Parse(text), commander, partner, options)
}

// ExportDeck exports a prepared deck, in its display order. Commander and
// partner names come from the deck when they resolved.
func ExportDeck(d *deck.Deck, options *ExportOptions) (*DeckExport, error) {
	if d == nil {
		return nil, fmt.Errorf("deck is nil")
	}

	lines := make([]decklist.Line, 0, len(d.Cards))
	for _, card := range d.Cards {
		lines = append(lines, decklist.Line{Quantity: card.Quantity, Name: card.Name})
	}

	var commander, partner string
	if d.Commander != nil {
		commander = d.Commander.Name
	}
	if d.Partner != nil {
		partner = d.Partner.Name
	}
	return Export(lines, commander, partner, options)
}

// Filename returns the download name for a deck: "decklist-mtgo.txt" by
// default, or "<deck name>-<format>.txt".
func Filename(deckName string, format ExportFormat) string {
	base := "decklist"
	if strings.TrimSpace(deckName) != "" {
		base = sanitizeFilename(deckName)
	}
	return fmt.Sprintf("%s-%s.txt", base, format)
}

// maxFilenameRunes caps the deck-name part of a filename.
const maxFilenameRunes = 100

// sanitizeFilename removes invalid characters from filename.
func sanitizeFilename(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	if runes := []rune(result); len(runes) > maxFilenameRunes {
		result = strings.TrimSpace(string(runes[:maxFilenameRunes]))
	}
	if result == "" {
		result = "decklist"
	}
	return result
}
