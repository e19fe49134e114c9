package model

import "time"

// RunStatus represents the state of an archived comparison run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one archived invocation of the compare command.
type Run struct {
	ID         string    `json:"id"`
	Models     Models    `json:"models"`
	LeftInput  string    `json:"left_input"`
	RightInput string    `json:"right_input"`
	Status     RunStatus `json:"status"`
	Galaxies   int       `json:"galaxies"`
	Wins       Wins      `json:"wins"`
	CreatedAt  time.Time `json:"created_at"`
}

// Wins tallies which model each criterion prefers. A tie (Δ == 0) or a
// NaN delta counts for neither side.
type Wins struct {
	LeftBIC   int `json:"left_bic" yaml:"left_bic"`
	RightBIC  int `json:"right_bic" yaml:"right_bic"`
	LeftAICc  int `json:"left_aicc" yaml:"left_aicc"`
	RightAICc int `json:"right_aicc" yaml:"right_aicc"`
}
