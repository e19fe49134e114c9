package bakeoff

import (
	"math"
	"sort"

	"github.com/sells-group/bakeoff/internal/model"
)

// Join inner-joins the best fits of two models on identifier. Output follows
// the left order; identifiers missing from either side are dropped. Both
// inputs must hold at most one fit per identifier (see BestFit).
func Join(left, right []model.FitRecord) []model.Comparison {
	byID := make(map[string]model.FitRecord, len(right))
	for _, r := range right {
		if _, dup := byID[r.ID]; !dup {
			byID[r.ID] = r
		}
	}

	out := make([]model.Comparison, 0, min(len(left), len(right)))
	emitted := make(map[string]bool, len(left))
	for _, l := range left {
		r, ok := byID[l.ID]
		if !ok || emitted[l.ID] {
			continue
		}
		emitted[l.ID] = true
		out = append(out, model.Comparison{
			ID:         l.ID,
			Left:       l,
			Right:      r,
			DeltaBIC:   r.BIC - l.BIC,
			DeltaAICc:  r.AICc - l.AICc,
			DeltaSFrac: r.SFrac - l.SFrac,
			DeltaRho:   r.RhoAR1 - l.RhoAR1,
		})
	}
	return out
}

// SortByDeltaBIC orders comparisons by ΔBIC ascending, NaN last, keeping
// input order among equal values.
func SortByDeltaBIC(cs []model.Comparison) {
	sort.SliceStable(cs, func(a, b int) bool {
		x, y := cs[a].DeltaBIC, cs[b].DeltaBIC
		if math.IsNaN(x) {
			return false
		}
		if math.IsNaN(y) {
			return true
		}
		return x < y
	})
}

// Tally counts criterion wins. Δ > 0 is a left win, Δ < 0 a right win.
func Tally(ds []model.Delta) model.Wins {
	var w model.Wins
	for _, d := range ds {
		switch {
		case d.BIC > 0:
			w.LeftBIC++
		case d.BIC < 0:
			w.RightBIC++
		}
		switch {
		case d.AICc > 0:
			w.LeftAICc++
		case d.AICc < 0:
			w.RightAICc++
		}
	}
	return w
}

// Deltas extracts the per-galaxy deltas of the comparisons.
func Deltas(cs []model.Comparison) []model.Delta {
	out := make([]model.Delta, len(cs))
	for i, c := range cs {
		out[i] = c.Delta()
	}
	return out
}
