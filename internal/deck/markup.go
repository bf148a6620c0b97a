package deck

import (
	"html"
	"regexp"
	"strings"
)

var (
	manaSymbolRegex = regexp.MustCompile(`\{([^}]+)\}`)
	classUnsafe     = regexp.MustCompile(`[^a-z0-9_-]`)
)

// colorWords maps whole color names to their mana letter.
var colorWords = map[string]string{
	"White":     "W",
	"Blue":      "U",
	"Black":     "B",
	"Red":       "R",
	"Green":     "G",
	"Colorless": "C",

	"Blanc":    "W",
	"Bleu":     "U",
	"Noir":     "B",
	"Rouge":    "R",
	"Vert":     "G",
	"Incolore": "C",
}

// FormatManaCost converts a cost like "{2}{U}{U}" into Mana font markup, one
// <i> element per symbol inside a wrapper span. Hybrid symbols drop the slash
// ("{W/U}" uses class ms-wu). Each element keeps the original symbol as its title.
func FormatManaCost(cost string) string {
	if cost == "" {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(`<span class="mana-cost-wrapper">`)

	last := 0
	for _, loc := range manaSymbolRegex.FindAllStringSubmatchIndex(cost, -1) {
		sb.WriteString(html.EscapeString(cost[last:loc[0]]))
		symbol := cost[loc[2]:loc[3]]
		sb.WriteString(`<i class="ms ms-`)
		sb.WriteString(manaClass(symbol))
		sb.WriteString(` ms-cost" title="`)
		sb.WriteString(html.EscapeString(symbol))
		sb.WriteString(`"></i>`)
		last = loc[1]
	}
	sb.WriteString(html.EscapeString(cost[last:]))

	sb.WriteString(`</span>`)
	return sb.String()
}

// manaClass lowercases a symbol and strips everything a CSS class can't carry.
func manaClass(symbol string) string {
	class := strings.ToLower(symbol)
	class = strings.ReplaceAll(class, "/", "")
	return classUnsafe.ReplaceAllString(class, "")
}

// FormatColorSymbol converts a color name ("Blue", "Bleu") or a run of color
// letters ("UB", "wubr") into one shadowed Mana font symbol per color, in the
// order given. Letters other than W, U, B, R, G and C are skipped.
func FormatColorSymbol(color string) string {
	if color == "" {
		return ""
	}
	if letter, ok := colorWords[color]; ok {
		color = letter
	}

	var sb strings.Builder
	for _, r := range strings.ToUpper(color) {
		switch r {
		case 'W', 'U', 'B', 'R', 'G', 'C':
			letter := string(r)
			sb.WriteString(`<i class="ms ms-`)
			sb.WriteString(strings.ToLower(letter))
			sb.WriteString(` ms-cost ms-shadow" title="`)
			sb.WriteString(letter)
			sb.WriteString(`"></i>`)
		}
	}
	return sb.String()
}
