// Package main is a one-shot report tool: it loads a plan configuration,
// computes metrics and advice, prints a text report, and optionally
// writes the profit-curve chart as a PNG.
package main

import (
	"flag"
	"fmt"
	"os"

	"ladderplan/internal/chart"
	"ladderplan/internal/config"
	"ladderplan/internal/planner"

	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	bottom := flag.Float64("bottom", 0, "bottom price for the metrics table (default: sweep midpoint)")
	chartPath := flag.String("chart", "", "write the profit-curve chart PNG to this path")
	flag.Parse()

	godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	pl := planner.New(cfg)
	if *bottom > 0 {
		pl.SetBottomPrice(*bottom)
	} else {
		pl.SetBottomPrice((cfg.Sweep.Min + cfg.Sweep.Max) / 2)
	}
	snap := pl.Snapshot()

	fmt.Printf("%s ladder plan — target %.2f %s (%s), capital %.2f %s\n",
		snap.Asset, snap.TargetPrice, snap.Unit, snap.TargetDate, snap.TotalSize, snap.Unit)
	fmt.Printf("levels: %v\n", snap.PriceLevels)
	fmt.Printf("sweep: %.2f – %.2f step %.2f\n\n", snap.SweepMin, snap.SweepMax, snap.SweepStep)

	fmt.Printf("metrics at bottom %.2f:\n", snap.BottomPrice)
	fmt.Printf("  %-10s %12s %12s %10s %12s %8s\n", "strategy", "filled", "cost", "avg", "profit", "roi%")
	for _, st := range snap.Strategies {
		m := snap.Metrics[st.Kind]
		fmt.Printf("  %-10s %12.4f %12.2f %10.2f %12.2f %8.2f\n",
			st.Kind, m.FilledPosition, m.TotalCost, m.AvgCost, m.Profit, m.ROI)
	}
	if !snap.CustomValid {
		fmt.Println("  (custom weights invalid — excluded from comparison)")
	}

	fmt.Println()
	if snap.Advice == nil {
		fmt.Println("advice: not enough data")
	} else {
		fmt.Printf("zero zone: no orders fill above %.2f\n", snap.Advice.ZeroZonePrice)
		for _, seg := range snap.Advice.Segments {
			fmt.Printf("  %.2f – %.2f: %s", seg.RangeHigh, seg.RangeLow, seg.Winner)
			if seg.IsLast {
				fmt.Print(" (and below)")
			}
			fmt.Println()
		}
		if snap.Advice.Best != nil {
			fmt.Printf("best overall: %s (%d levels, %.0f%% of sweep range)\n",
				snap.Advice.Best.Kind, snap.Advice.Best.Count, snap.Advice.CoveragePct)
		} else {
			fmt.Println("no strategy shows positive profit anywhere in the sweep range")
		}
	}

	if *chartPath != "" {
		img, err := chart.RenderProfitCurves(snap)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to render chart: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*chartPath, img, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write chart: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("chart written to %s\n", *chartPath)
	}
}
