package deck

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ramonehamilton/pdc-decklist/internal/decklist"
	"github.com/ramonehamilton/pdc-decklist/internal/scryfall"
)

// CardLookup resolves a card by exact name. A nil result means the card
// could not be found or fetched; implementations log the reason themselves.
type CardLookup interface {
	GetCardByName(ctx context.Context, name string) *scryfall.Card
}

// Config controls deck preparation.
type Config struct {
	// Concurrency is the number of card lookups in flight during enrichment.
	// 1 performs them one after another.
	Concurrency int
}

// DefaultConfig returns the sequential configuration.
func DefaultConfig() Config {
	return Config{Concurrency: 1}
}

// Renderer prepares decks for display.
type Renderer struct {
	lookup      CardLookup
	concurrency int
	logger      *zap.Logger
}

// NewRenderer creates a renderer backed by lookup.
func NewRenderer(lookup CardLookup, cfg Config, logger *zap.Logger) *Renderer {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		lookup:      lookup,
		concurrency: cfg.Concurrency,
		logger:      logger,
	}
}

// Enrich looks up every line and returns one EnrichedCard per line, in input
// order. Repeated names are looked up and kept separately.
func (r *Renderer) Enrich(ctx context.Context, lines []decklist.Line) []EnrichedCard {
	enriched := make([]EnrichedCard, len(lines))

	if r.concurrency == 1 {
		for i, line := range lines {
			enriched[i] = r.enrichLine(ctx, line)
		}
		return enriched
	}

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, line := range lines {
		g.Go(func() error {
			enriched[i] = r.enrichLine(ctx, line)
			return nil
		})
	}
	_ = g.Wait() // lookups never fail; misses become default cards

	return enriched
}

func (r *Renderer) enrichLine(ctx context.Context, line decklist.Line) EnrichedCard {
	card := r.lookup.GetCardByName(ctx, line.Name)
	if card == nil {
		r.logger.Debug("Card not found, using defaults", zap.String("card", line.Name))
	}
	return NewEnrichedCard(line.Quantity, line.Name, card)
}

// Prepare enriches, sorts and groups lines, resolves the commander and
// partner, and computes statistics over the enriched cards.
func (r *Renderer) Prepare(ctx context.Context, lines []decklist.Line, commander, partner string) *Deck {
	enriched := r.Enrich(ctx, lines)
	sorted := SortCards(enriched)

	d := &Deck{
		Cards:       sorted,
		CardsByType: GroupByType(sorted),
		Commander:   r.fetchSpecialCard(ctx, commander, true),
		Partner:     r.fetchSpecialCard(ctx, partner, false),
		Stats:       CalculateStats(enriched),
	}

	r.logger.Debug("Prepared deck",
		zap.Int("lines", len(lines)),
		zap.Int("total_cards", d.Stats.TotalCards),
		zap.Bool("commander", d.Commander != nil),
		zap.Bool("partner", d.Partner != nil))
	return d
}

// PrepareFromText parses text and prepares the resulting deck.
func (r *Renderer) PrepareFromText(ctx context.Context, text, commander, partner string) *Deck {
	return r.Prepare(ctx, decklist.Parse(text), commander, partner)
}

func (r *Renderer) fetchSpecialCard(ctx context.Context, name string, withArtCrop bool) *SpecialCard {
	if name == "" {
		return nil
	}
	card := r.lookup.GetCardByName(ctx, name)
	if card == nil {
		return nil
	}
	return newSpecialCard(name, card, withArtCrop)
}
