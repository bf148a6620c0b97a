package deckexport

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ramonehamilton/pdc-decklist/internal/deck"
	"github.com/ramonehamilton/pdc-decklist/internal/decklist"
)

func testLines() []decklist.Line {
	return []decklist.Line{
		{Quantity: 1, Name: "Sol Ring"},
		{Quantity: 1, Name: "Rhystic Study"},
		{Quantity: 30, Name: "Island"},
	}
}

func TestExport_MTGO(t *testing.T) {
	result, err := Export(testLines(), "Talrand, Sky Summoner", "", &ExportOptions{Format: FormatMTGO})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	want := "1 Sol Ring\n1 Rhystic Study\n30 Island"
	if result.Content != want {
		t.Errorf("Content = %q, want %q", result.Content, want)
	}
	if strings.Contains(result.Content, "Talrand") {
		t.Error("MTGO export should not include the commander")
	}
	if result.Filename != "decklist-mtgo.txt" {
		t.Errorf("Filename = %q, want decklist-mtgo.txt", result.Filename)
	}
	if result.Format != FormatMTGO {
		t.Errorf("Format = %q, want %q", result.Format, FormatMTGO)
	}
}

func TestExport_Moxfield(t *testing.T) {
	result, err := Export(testLines(), "Tymna the Weaver", "Kraum, Ludevic's Opus", &ExportOptions{Format: FormatMoxfield})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	want := "Commander\n1 Tymna the Weaver\n1 Kraum, Ludevic's Opus\n\nDeck\n1 Sol Ring\n1 Rhystic Study\n30 Island"
	if result.Content != want {
		t.Errorf("Content =\n%s\nwant\n%s", result.Content, want)
	}
	if result.Filename != "decklist-moxfield.txt" {
		t.Errorf("Filename = %q, want decklist-moxfield.txt", result.Filename)
	}
}

func TestExport_DefaultsAndErrors(t *testing.T) {
	result, err := Export(testLines(), "", "", nil)
	if err != nil {
		t.Fatalf("Export with nil options failed: %v", err)
	}
	if result.Format != FormatMTGO {
		t.Errorf("default format = %q, want mtgo", result.Format)
	}

	if _, err := Export(testLines(), "", "", &ExportOptions{Format: "arena"}); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestExportText(t *testing.T) {
	result, err := ExportText("# main\n1 Sol Ring\nSideboard\n2 Forest", "", "", &ExportOptions{Format: FormatMTGO, DeckName: "Mono Green"})
	if err != nil {
		t.Fatalf("ExportText failed: %v", err)
	}
	if result.Content != "1 Sol Ring\n2 Forest" {
		t.Errorf("Content = %q", result.Content)
	}
	if result.Filename != "Mono Green-mtgo.txt" {
		t.Errorf("Filename = %q", result.Filename)
	}
}

func TestExportDeck(t *testing.T) {
	d := &deck.Deck{
		Cards: []deck.EnrichedCard{
			{Quantity: 1, Name: "Baleful Strix"},
			{Quantity: 10, Name: "Island"},
		},
		Commander: &deck.SpecialCard{Name: "Kenrith, the Returned King"},
	}

	result, err := ExportDeck(d, &ExportOptions{Format: FormatMoxfield})
	if err != nil {
		t.Fatalf("ExportDeck failed: %v", err)
	}
	want := "Commander\n1 Kenrith, the Returned King\n\nDeck\n1 Baleful Strix\n10 Island"
	if result.Content != want {
		t.Errorf("Content =\n%s\nwant\n%s", result.Content, want)
	}

	if _, err := ExportDeck(nil, nil); err == nil {
		t.Error("expected error for nil deck")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    ExportFormat
		wantErr bool
	}{
		{"mtgo", FormatMTGO, false},
		{" MOXFIELD ", FormatMoxfield, false},
		{"arena", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Normal Deck", "Normal Deck"},
		{"Deck/With/Slashes", "Deck_With_Slashes"},
		{"Deck:With:Colons", "Deck_With_Colons"},
		{"Deck*With?Special<>Chars", "Deck_With_Special__Chars"},
		{"  Spaces  ", "Spaces"},
		{"", "decklist"},
		{strings.Repeat("a", 150), strings.Repeat("a", 100)},
		{strings.Repeat("é", 150), strings.Repeat("é", 100)},
		{strings.Repeat("a", 99) + "稲妻", strings.Repeat("a", 99) + "稲"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := sanitizeFilename(tt.input)
			if result != tt.expected {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, result, tt.expected)
			}
			if !utf8.ValidString(result) {
				t.Errorf("sanitizeFilename(%q) produced invalid UTF-8", tt.input)
			}
		})
	}
}
