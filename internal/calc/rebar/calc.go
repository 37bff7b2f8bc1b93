package rebar

import (
	"math"
	"sort"
)

// Result is the take-off for one diameter.
type Result struct {
	Diameter           int     `json:"diameter"`
	TotalLinearMeters  float64 `json:"total_linear_m"`
	TotalWeightKg      float64 `json:"total_weight_kg"`
	StandardBarsNeeded int     `json:"standard_bars_12m"`
}

// Totals are the grand totals shown on the project summary.
type Totals struct {
	Placements         int     `json:"placements"`
	TotalLinearMeters  float64 `json:"total_linear_m"`
	TotalWeightKg      float64 `json:"total_weight_kg"`
	TotalWeightTons    float64 `json:"total_weight_t"`
	StandardBarsNeeded int     `json:"standard_bars_12m"`
}

// Line is a placement together with its derived lengths.
type Line struct {
	Position int `json:"position"`
	Placement
	TotalLengthM         float64 `json:"total_length_m"`
	SubtotalLinearMeters float64 `json:"subtotal_linear_m"`
}

// Lines numbers the snapshot from 1 and attaches derived lengths.
func Lines(snapshot []Placement) []Line {
	out := make([]Line, 0, len(snapshot))
	for i, p := range snapshot {
		out = append(out, Line{
			Position:             i + 1,
			Placement:            p,
			TotalLengthM:         p.TotalLength(),
			SubtotalLinearMeters: p.SubtotalLinearMeters(),
		})
	}
	return out
}

// StandardBars is ceil(linearMeters / 12). Non-positive or NaN input needs no bars;
// anything past math.MaxInt bars saturates.
func StandardBars(linearMeters float64) int {
	if !(linearMeters > 0) {
		return 0
	}
	bars := math.Ceil(linearMeters / StandardBarLengthM)
	if bars >= math.MaxInt {
		return math.MaxInt
	}
	return int(bars)
}

// Aggregate groups the snapshot by diameter. Only diameters that appear in at least one
// placement are returned, in ascending order.
func Aggregate(table *WeightTable, snapshot []Placement) []Result {
	byDiameter := make(map[int]float64)
	for _, p := range snapshot {
		byDiameter[p.Diameter] += p.SubtotalLinearMeters()
	}

	diameters := make([]int, 0, len(byDiameter))
	for d := range byDiameter {
		diameters = append(diameters, d)
	}
	sort.Ints(diameters)

	out := make([]Result, 0, len(diameters))
	for _, d := range diameters {
		ml := byDiameter[d]
		out = append(out, Result{
			Diameter:           d,
			TotalLinearMeters:  ml,
			TotalWeightKg:      ml * table.WeightPerMeter(d),
			StandardBarsNeeded: StandardBars(ml),
		})
	}
	return out
}

// Summarize adds up the per-diameter results. Placements is left for the caller to fill.
func Summarize(results []Result) Totals {
	var t Totals
	for _, r := range results {
		t.TotalLinearMeters += r.TotalLinearMeters
		t.TotalWeightKg += r.TotalWeightKg
		t.StandardBarsNeeded += r.StandardBarsNeeded
	}
	t.TotalWeightTons = t.TotalWeightKg / 1000
	return t
}

// Summary is the full computed view of a snapshot.
type Summary struct {
	Results []Result `json:"results"`
	Totals  Totals   `json:"totals"`
}

func Compute(table *WeightTable, snapshot []Placement) Summary {
	results := Aggregate(table, snapshot)
	totals := Summarize(results)
	totals.Placements = len(snapshot)
	return Summary{Results: results, Totals: totals}
}
