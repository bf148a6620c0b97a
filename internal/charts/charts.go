// Package charts renders deck statistics as interactive HTML charts.
package charts

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ramonehamilton/pdc-decklist/internal/deck"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title      string   // Chart title
	Subtitle   string   // Chart subtitle
	Width      string   // Chart width (e.g., "900px")
	Height     string   // Chart height (e.g., "500px")
	Theme      string   // Chart theme
	ShowLegend bool     // Show legend
	Colors     []string // Custom colors
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Title:      "Mana Curve",
		Width:      "900px",
		Height:     "500px",
		Theme:      "light",
		ShowLegend: false,
		Colors:     []string{"#5470C6"},
	}
}

// DataPoint represents a single data point in a chart.
type DataPoint struct {
	Label string
	Value int
}

// ManaCurvePoints returns one point per CMC bucket, "0" through "7+".
func ManaCurvePoints(stats deck.DeckStats) []DataPoint {
	points := make([]DataPoint, len(stats.CMCDistribution))
	for i, n := range stats.CMCDistribution {
		points[i] = DataPoint{Label: deck.BucketLabel(i), Value: n}
	}
	return points
}

// RenderManaCurve writes a bar chart of the non-land CMC histogram to w.
func RenderManaCurve(stats deck.DeckStats, config ChartConfig, w io.Writer) error {
	if len(config.Colors) == 0 {
		config.Colors = DefaultChartConfig().Colors
	}
	subtitle := config.Subtitle
	if subtitle == "" {
		subtitle = fmt.Sprintf("%d cards, average CMC %.1f", stats.TotalCards, stats.AverageCMC)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
		}),
		charts.WithColorsOpts(opts.Colors{
			config.Colors[0],
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "CMC"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Cards"}),
	)

	points := ManaCurvePoints(stats)
	xLabels := make([]string, len(points))
	yData := make([]opts.BarData, len(points))
	for i, point := range points {
		xLabels[i] = point.Label
		yData[i] = opts.BarData{Value: point.Value}
	}

	bar.SetXAxis(xLabels).
		AddSeries("Cards", yData).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(true),
			}),
		)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// RenderManaCurveFile writes the mana curve chart to an HTML file.
func RenderManaCurveFile(stats deck.DeckStats, config ChartConfig, outputPath string) (err error) {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close chart file: %w", cerr)
		}
	}()

	return RenderManaCurve(stats, config, f)
}

// OpenInBrowser opens the given file path in the default web browser.
func OpenInBrowser(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", absPath)
	case "linux":
		cmd = exec.Command("xdg-open", absPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
