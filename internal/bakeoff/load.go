package bakeoff

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/bakeoff/internal/model"
	"github.com/sells-group/bakeoff/internal/table"
)

// LoadOptions control how a fit summary is read.
type LoadOptions struct {
	// AllStatus keeps fits whose fit_status is not OK.
	AllStatus bool
}

// Summary is one model's fit summary after status filtering.
type Summary struct {
	Path    string
	Fits    []model.FitRecord
	Loaded  int
	Dropped int
}

// LoadSummary reads and parses one fit summary.
func LoadSummary(path string, opts LoadOptions) (*Summary, error) {
	t, err := table.Load(path)
	if err != nil {
		return nil, err
	}
	fits, err := ParseFits(t, !opts.AllStatus)
	if err != nil {
		return nil, err
	}
	s := &Summary{Path: path, Fits: fits, Loaded: len(fits)}
	if !opts.AllStatus {
		s.Fits = FilterOK(fits)
		s.Dropped = len(fits) - len(s.Fits)
	}
	zap.L().Debug("bakeoff: loaded summary",
		zap.String("path", path),
		zap.Int("rows", s.Loaded),
		zap.Int("dropped", s.Dropped),
	)
	return s, nil
}

// LoadPair reads the left and right fit summaries concurrently.
func LoadPair(ctx context.Context, leftPath, rightPath string, opts LoadOptions) (left, right *Summary, err error) {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		s, err := LoadSummary(leftPath, opts)
		if err != nil {
			return eris.Wrap(err, "bakeoff: load left summary")
		}
		left = s
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		s, err := LoadSummary(rightPath, opts)
		if err != nil {
			return eris.Wrap(err, "bakeoff: load right summary")
		}
		right = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// Result is a complete comparison of two summaries.
type Result struct {
	Left        *Summary
	Right       *Summary
	Comparisons []model.Comparison
	Wins        model.Wins
}

// Compare reduces both summaries to best fits, joins them and sorts the
// comparisons by ΔBIC.
func Compare(left, right *Summary) *Result {
	cs := Join(BestFit(left.Fits), BestFit(right.Fits))
	SortByDeltaBIC(cs)
	return &Result{
		Left:        left,
		Right:       right,
		Comparisons: cs,
		Wins:        Tally(Deltas(cs)),
	}
}

// LoadDeltas reads a written comparison table.
func LoadDeltas(path string) ([]model.Delta, error) {
	t, err := table.Load(path)
	if err != nil {
		return nil, err
	}
	return ParseDeltas(t)
}
