package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ramonehamilton/pdc-decklist/internal/api"
	"github.com/ramonehamilton/pdc-decklist/internal/charts"
	"github.com/ramonehamilton/pdc-decklist/internal/deck"
	"github.com/ramonehamilton/pdc-decklist/internal/deckexport"
	"github.com/ramonehamilton/pdc-decklist/internal/watcher"
)

var (
	commanderName string
	partnerName   string
	jsonOutput    bool
	watchFile     bool
	exportFormat  string
	outputPath    string
	deckName      string
	openChart     bool
	servePort     int
	sortedExport  bool
)

var renderCmd = &cobra.Command{
	Use:   "render FILE",
	Short: "Look up every card and print the deck grouped by type",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Convert a decklist to MTGO or Moxfield format",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var curveCmd = &cobra.Command{
	Use:   "curve FILE",
	Short: "Write the deck's mana curve as an HTML chart",
	Args:  cobra.ExactArgs(1),
	RunE:  runCurve,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the card lookup cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [NAME]",
	Short: "Remove one card, or every card, from the lookup cache",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheClear,
}

func readDecklist(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read decklist: %w", err)
	}
	return string(data), nil
}

func runRender(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	render := func(ctx context.Context) error {
		text, err := readDecklist(args[0])
		if err != nil {
			return err
		}
		d, err := prepareDeck(ctx, a, text, commanderName, partnerName)
		if err != nil {
			return err
		}
		if jsonOutput {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(d)
		}
		printDeck(out, d)
		return nil
	}

	if !watchFile {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		return render(ctx)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watcher.Watch(ctx, args[0], watcher.DefaultDebounce, logger, func() {
		if err := render(ctx); err != nil {
			logger.Warn("Render failed", zap.String("file", args[0]), zap.Error(err))
		}
	})
}

// prepareDeck renders text and fails if ctx ended before every lookup ran.
func prepareDeck(ctx context.Context, a *app, text, commander, partner string) (*deck.Deck, error) {
	d := a.renderer.PrepareFromText(ctx, text, commander, partner)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("card lookups did not finish: %w", err)
	}
	return d, nil
}

// printDeck writes a plain-text view of a prepared deck.
func printDeck(w io.Writer, d *deck.Deck) {
	if d.Commander != nil {
		fmt.Fprintf(w, "Commander: %s  %s\n", d.Commander.Name, d.Commander.ManaCost)
	}
	if d.Partner != nil {
		fmt.Fprintf(w, "Partner:   %s  %s\n", d.Partner.Name, d.Partner.ManaCost)
	}
	if d.Commander != nil || d.Partner != nil {
		fmt.Fprintln(w)
	}

	for _, group := range d.CardsByType {
		count := 0
		for _, c := range group.Cards {
			count += c.Quantity
		}
		fmt.Fprintf(w, "%s (%d)\n", group.Type, count)
		for _, c := range group.Cards {
			fmt.Fprintf(w, "  %2d %-40s %s\n", c.Quantity, c.Name, c.ManaCost)
		}
		fmt.Fprintln(w)
	}

	s := d.Stats
	fmt.Fprintf(w, "Cards: %d (%d unique)  Average CMC: %.1f\n", s.TotalCards, s.UniqueCards, s.AverageCMC)

	curve := make([]string, 0, len(s.CMCDistribution))
	for i, n := range s.CMCDistribution {
		curve = append(curve, fmt.Sprintf("%s:%d", deck.BucketLabel(i), n))
	}
	fmt.Fprintf(w, "Curve: %s\n", strings.Join(curve, " "))

	colors := make([]string, 0, len(s.ColorCounts))
	for _, c := range []string{"W", "U", "B", "R", "G", deck.ColorColorless, deck.ColorMulti} {
		if n, ok := s.ColorCounts[c]; ok {
			colors = append(colors, fmt.Sprintf("%s:%d", c, n))
		}
	}
	fmt.Fprintf(w, "Colors: %s\n", strings.Join(colors, " "))
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := deckexport.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	text, err := readDecklist(args[0])
	if err != nil {
		return err
	}

	options := &deckexport.ExportOptions{Format: format, DeckName: deckName}
	var export *deckexport.DeckExport
	if sortedExport {
		export, err = exportSorted(cmd.Context(), text, options)
	} else {
		export, err = deckexport.ExportText(text, commanderName, partnerName, options)
	}
	if err != nil {
		return err
	}

	if outputPath == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), export.Content)
		return err
	}
	if err := os.WriteFile(outputPath, []byte(export.Content+"\n"), 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	logger.Info("Exported deck", zap.String("format", string(format)), zap.String("path", outputPath))
	return nil
}

// exportSorted looks every card up and exports the deck in display order.
func exportSorted(ctx context.Context, text string, options *deckexport.ExportOptions) (*deckexport.DeckExport, error) {
	a, err := newApp(cfg, logger)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	d, err := prepareDeck(ctx, a, text, commanderName, partnerName)
	if err != nil {
		return nil, err
	}
	return deckexport.ExportDeck(d, options)
}

func runCurve(cmd *cobra.Command, args []string) error {
	text, err := readDecklist(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	d, err := prepareDeck(ctx, a, text, "", "")
	if err != nil {
		return err
	}
	if err := charts.RenderManaCurveFile(d.Stats, charts.DefaultChartConfig(), outputPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Mana curve written to %s\n", outputPath)

	if openChart {
		return charts.OpenInBrowser(outputPath)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	port := cfg.Server.Port
	if servePort != 0 {
		port = servePort
	}

	server := api.NewServer(&api.Config{Port: port}, api.Services{
		Decks: a.renderer,
		Cards: a.client,
	}, logger.Named("api"))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := server.Start()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if len(args) == 1 {
		if err := a.client.ClearCardCache(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared cached lookup for %q\n", args[0])
		return nil
	}

	n, err := a.client.ClearAllCaches(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached lookups\n", n)
	return nil
}
