package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Markdown renders the narrative summary block.
func Markdown(r *Report) string {
	l := r.Models.Left
	var sb strings.Builder

	sb.WriteString("### Model comparison (bakeoff)\n")
	fmt.Fprintf(&sb, "- **%s wins (BIC):** %d/%d (%s); **%s wins (AICc):** %d/%d (%s).\n",
		l, r.Wins.LeftBIC, r.N, pct(r.WinFracBIC()),
		l, r.Wins.LeftAICc, r.N, pct(r.WinFracAICc()))

	bins := make([]string, len(r.Evidence.Bins))
	for i, b := range r.Evidence.Bins {
		bins[i] = fmt.Sprintf("%s: %d (%s)", b.Label, b.Count, pct(b.Fraction))
	}
	sb.WriteString("- Evidence bins (Jeffreys, ΔBIC):  \n")
	fmt.Fprintf(&sb, "  %s.\n", strings.Join(bins, ", "))
	if u := r.Evidence.Unbinned(); u > 0 {
		fmt.Fprintf(&sb, "- Unbinned ΔBIC: %d (NaN=%d, ±Inf=%d).\n", u, r.Evidence.NaN, r.Evidence.Inf)
	}

	fmt.Fprintf(&sb, "- ΔBIC quartiles: Q1=%s, Med=%s, Q3=%s; ΔAICc quartiles: Q1=%s, Med=%s, Q3=%s.\n",
		f2(r.BIC.Q1), f2(r.BIC.Median), f2(r.BIC.Q3),
		f2(r.AICc.Q1), f2(r.AICc.Median), f2(r.AICc.Q3))
	fmt.Fprintf(&sb, "- Signed-rank (Wilcoxon) vs 0: p_BIC=%s, p_AICc=%s.\n",
		e2(r.SignedRankBIC.PValue), e2(r.SignedRankAICc.PValue))
	if r.HLBIC != nil && r.HLAICc != nil {
		fmt.Fprintf(&sb, "- Hodges–Lehmann: ΔBIC=%s [%s, %s] (n=%d); ΔAICc=%s [%s, %s] (n=%d).\n",
			f2(r.HLBIC.Estimate), f2(r.HLBIC.Lo), f2(r.HLBIC.Hi), r.HLBIC.N,
			f2(r.HLAICc.Estimate), f2(r.HLAICc.Lo), f2(r.HLAICc.Hi), r.HLAICc.N)
	}

	sb.WriteString("\n### IR Wilsons (fixed-μ extraction; medians ± MAD; units M_Pl^2)\n")
	fmt.Fprintf(&sb, "- c_C^2 = %s ± %s  [p16=%s, p84=%s] (n=%d)\n",
		g3(r.CC2.Median), g3(r.CC2.MAD), g3(r.CC2.P16), g3(r.CC2.P84), r.CC2.N)
	fmt.Fprintf(&sb, "- α_Ric = %s ± %s  [p16=%s, p84=%s] (n=%d)\n",
		g3(r.AlphaRic.Median), g3(r.AlphaRic.MAD), g3(r.AlphaRic.P16), g3(r.AlphaRic.P84), r.AlphaRic.N)
	fmt.Fprintf(&sb, "- Scalar combo bound: use |B| ≤ %s; median(B)=%s, MAD=%s (n=%d)",
		g3(r.BBound), g3(r.B.Median), g3(r.B.MAD), r.B.N)
	return sb.String()
}

// HTML renders Markdown output as a standalone HTML page.
func HTML(md, title string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML([]byte(md), p, renderer)
}
