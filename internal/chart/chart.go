// Package chart renders plan outputs as PNG charts.
package chart

import (
	"errors"
	"fmt"

	"ladderplan/internal/model"

	"github.com/vicanso/go-charts/v2"
)

// RenderProfitCurves draws one profit line per strategy across the
// bottom-price sweep range and returns the encoded PNG.
func RenderProfitCurves(snap model.PlanSnapshot) ([]byte, error) {
	if len(snap.Curves) == 0 {
		return nil, errors.New("no curves to render")
	}

	base := snap.Curves[0].Points
	if len(base) < 2 {
		return nil, errors.New("not enough sweep points")
	}

	xLabels := make([]string, len(base))
	for i, pt := range base {
		xLabels[i] = formatPrice(pt.X)
	}

	values := make([][]float64, 0, len(snap.Curves))
	names := make([]string, 0, len(snap.Curves))
	var yMin, yMax float64
	first := true
	for _, curve := range snap.Curves {
		ys := make([]float64, len(curve.Points))
		for i, pt := range curve.Points {
			ys[i] = pt.Y
			if first {
				yMin, yMax = pt.Y, pt.Y
				first = false
				continue
			}
			if pt.Y < yMin {
				yMin = pt.Y
			}
			if pt.Y > yMax {
				yMax = pt.Y
			}
		}
		values = append(values, ys)
		names = append(names, string(curve.Kind))
	}

	pad := (yMax - yMin) * 0.05
	if pad == 0 {
		pad = 1
	}
	yMin -= pad
	yMax += pad

	seriesList := charts.NewSeriesListDataFromValues(values, charts.ChartTypeLine)
	for i := range seriesList {
		seriesList[i].Name = names[i]
	}

	title := fmt.Sprintf("%s profit vs bottom price (target %s %s)",
		snap.Asset, formatPrice(snap.TargetPrice), snap.Unit)

	painter, err := charts.Render(charts.ChartOption{SeriesList: seriesList},
		charts.TitleTextOptionFunc(title),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: xLabels, BoundaryGap: charts.FalseFlag(), SplitNumber: 10}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.LegendOptionFunc(charts.LegendOption{Data: names}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("rendering profit curves: %w", err)
	}
	return painter.Bytes()
}

// formatPrice trims trailing zeros so axis labels stay short.
func formatPrice(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
