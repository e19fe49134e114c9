package report

import (
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/bakeoff/internal/evidence"
	"github.com/sells-group/bakeoff/internal/hl"
	"github.com/sells-group/bakeoff/internal/model"
	"github.com/sells-group/bakeoff/internal/robust"
	"github.com/sells-group/bakeoff/internal/signedrank"
)

// Summary is the machine-readable form of a Report.
type Summary struct {
	Models   model.Models   `yaml:"models"`
	N        int            `yaml:"n"`
	Wins     model.Wins     `yaml:"wins"`
	Evidence evidence.Table `yaml:"evidence"`
	Deltas   struct {
		BIC  DeltaSummary `yaml:"bic"`
		AICc DeltaSummary `yaml:"aicc"`
	} `yaml:"deltas"`
	Wilsons struct {
		CC2      robust.Summary `yaml:"cC2"`
		AlphaRic robust.Summary `yaml:"alpha_Ric"`
		B        robust.Summary `yaml:"B"`
		BBound   float64        `yaml:"abs_B_p84"`
	} `yaml:"wilsons"`
}

// DeltaSummary collects the statistics of one delta column.
type DeltaSummary struct {
	Quartiles     robust.Quartiles  `yaml:"quartiles"`
	SignedRank    signedrank.Result `yaml:"signed_rank"`
	HodgesLehmann *hl.Result        `yaml:"hodges_lehmann,omitempty"`
}

// NewSummary flattens r for serialization.
func NewSummary(r *Report) Summary {
	s := Summary{Models: r.Models, N: r.N, Wins: r.Wins, Evidence: r.Evidence}
	s.Deltas.BIC = DeltaSummary{Quartiles: r.BIC, SignedRank: r.SignedRankBIC, HodgesLehmann: r.HLBIC}
	s.Deltas.AICc = DeltaSummary{Quartiles: r.AICc, SignedRank: r.SignedRankAICc, HodgesLehmann: r.HLAICc}
	s.Wilsons.CC2 = r.CC2
	s.Wilsons.AlphaRic = r.AlphaRic
	s.Wilsons.B = r.B
	s.Wilsons.BBound = r.BBound
	return s
}

// YAML encodes the summary of r.
func YAML(r *Report) ([]byte, error) {
	out, err := yaml.Marshal(NewSummary(r))
	if err != nil {
		return nil, eris.Wrap(err, "report: marshal summary")
	}
	return out, nil
}
