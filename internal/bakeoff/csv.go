package bakeoff

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/bakeoff/internal/model"
	"github.com/sells-group/bakeoff/internal/table"
)

// Comparison-table column names.
const (
	ColDeltaBIC   = "dBIC"
	ColDeltaAICc  = "dAICc"
	ColDeltaSFrac = "d_sfrac"
	ColDeltaRho   = "d_rho"
	ColGalaxy     = "galaxy"
)

// Header returns the comparison-table header for the given models.
func Header(m model.Models) []string {
	return []string{
		ColID,
		"BIC_" + m.Left, "AICc_" + m.Left, "s_frac_" + m.Left, "rho_" + m.Left,
		"BIC_" + m.Right, "AICc_" + m.Right, "s_frac_" + m.Right, "rho_" + m.Right,
		ColDeltaBIC, ColDeltaAICc, ColDeltaSFrac, ColDeltaRho,
	}
}

// WriteComparisons writes comparisons as CSV with the Header columns.
func WriteComparisons(w io.Writer, m model.Models, cs []model.Comparison) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(m)); err != nil {
		return eris.Wrap(err, "bakeoff: write header")
	}
	for _, c := range cs {
		rec := []string{
			c.ID,
			formatFloat(c.Left.BIC), formatFloat(c.Left.AICc), formatFloat(c.Left.SFrac), formatFloat(c.Left.RhoAR1),
			formatFloat(c.Right.BIC), formatFloat(c.Right.AICc), formatFloat(c.Right.SFrac), formatFloat(c.Right.RhoAR1),
			formatFloat(c.DeltaBIC), formatFloat(c.DeltaAICc), formatFloat(c.DeltaSFrac), formatFloat(c.DeltaRho),
		}
		if err := cw.Write(rec); err != nil {
			return eris.Wrapf(err, "bakeoff: write row %s", c.ID)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "bakeoff: flush csv")
}

// ParseDeltas reads per-galaxy deltas from a comparison table. The key is
// the galaxy column when present, otherwise ID. dBIC and dAICc are
// required; unparseable values become NaN.
func ParseDeltas(t *table.Table) ([]model.Delta, error) {
	key, err := KeyColumn(t)
	if err != nil {
		return nil, err
	}
	if err := t.Require(ColDeltaBIC, ColDeltaAICc); err != nil {
		return nil, err
	}

	out := make([]model.Delta, t.Len())
	for i := range out {
		out[i] = model.Delta{
			ID:   t.String(i, key),
			BIC:  t.Float(i, ColDeltaBIC),
			AICc: t.Float(i, ColDeltaAICc),
		}
	}
	return out, nil
}

// KeyColumn picks the identifier column of a comparison table.
func KeyColumn(t *table.Table) (string, error) {
	switch {
	case t.Has(ColGalaxy):
		return ColGalaxy, nil
	case t.Has(ColID):
		return ColID, nil
	default:
		return "", &table.MissingColumnError{Source: t.Source(), Columns: []string{ColGalaxy + "|" + ColID}}
	}
}

// formatFloat renders the shortest representation that round-trips; NaN
// renders as an empty cell.
func formatFloat(v float64) string {
	if v != v {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
