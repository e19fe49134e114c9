package report

import (
	"fmt"
	"math"
)

// num formats v with verb, spelling non-finite values the way the
// downstream notebooks expect (nan, inf, -inf).
func num(verb string, v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return fmt.Sprintf(verb, v)
}

func f2(v float64) string { return num("%.2f", v) }
func e2(v float64) string { return num("%.2e", v) }
func g3(v float64) string { return num("%.3g", v) }

// pct renders a fraction as a percentage with one decimal.
func pct(v float64) string {
	if math.IsNaN(v) {
		return "nan%"
	}
	return fmt.Sprintf("%.1f%%", 100*v)
}
