package report

import (
	"fmt"
	"strings"
)

// texModel typesets a model name; ΛCDM gets its Greek letter.
func texModel(name string) string {
	if rest, ok := strings.CutPrefix(name, "LCDM"); ok {
		return `$\Lambda$CDM` + rest
	}
	return name
}

// LaTeX renders the narrative summary as a LaTeX fragment.
func LaTeX(r *Report) string {
	vs := fmt.Sprintf("%s vs. %s", texModel(r.Models.Left), texModel(r.Models.Right))
	var sb strings.Builder

	sb.WriteString("% --- Bakeoff summary ---\n")
	fmt.Fprintf(&sb, "\\textbf{%s (BIC)}: %d/%d (%s).\\quad\n", vs, r.Wins.LeftBIC, r.N, texPct(r.WinFracBIC()))
	fmt.Fprintf(&sb, "\\textbf{%s (AICc)}: %d/%d (%s).\\\\\n", vs, r.Wins.LeftAICc, r.N, texPct(r.WinFracAICc()))
	fmt.Fprintf(&sb, "$\\Delta\\mathrm{BIC}$ quartiles: Q1=%s, med=%s, Q3=%s.\\quad\n",
		f2(r.BIC.Q1), f2(r.BIC.Median), f2(r.BIC.Q3))
	fmt.Fprintf(&sb, "$\\Delta\\mathrm{AICc}$ quartiles: Q1=%s, med=%s, Q3=%s.\\\\\n",
		f2(r.AICc.Q1), f2(r.AICc.Median), f2(r.AICc.Q3))
	fmt.Fprintf(&sb, "Wilcoxon vs 0: $p_{\\rm BIC}=%s$, $p_{\\rm AICc}=%s$.\\\\[4pt]\n",
		e2(r.SignedRankBIC.PValue), e2(r.SignedRankAICc.PValue))

	sb.WriteString("% --- Wilsons ---\n")
	sb.WriteString("IR Wilsons (medians $\\pm$ MAD, units $M_\\mathrm{Pl}^2$):\\\\\n")
	fmt.Fprintf(&sb, "$c_{C^2} = %s \\pm %s$\\,,\\qquad\n", g3(r.CC2.Median), g3(r.CC2.MAD))
	fmt.Fprintf(&sb, "$\\alpha_{\\rm Ric} = %s \\pm %s$.\\\\\n", g3(r.AlphaRic.Median), g3(r.AlphaRic.MAD))
	fmt.Fprintf(&sb, "Scalar-sector bound: $|B| \\lesssim %s$ (84th percentile of $|B|$).", g3(r.BBound))
	return sb.String()
}

// texPct is pct with the percent sign escaped.
func texPct(v float64) string {
	return strings.ReplaceAll(pct(v), "%", `\%`)
}
