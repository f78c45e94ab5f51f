package models

import "time"

// Outcome is the structured result of one dispatched item.
type Outcome struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// Verdict is produced exactly once per signed price per dispatch cycle.
type Verdict struct {
	Index   int     `json:"index"`
	MsgHash string  `json:"msgHash"`
	Valid   bool    `json:"valid"`
	Egress  string  `json:"egress"`
	Outcome Outcome `json:"outcome"`
}

// VerdictAggregate summarizes one dispatch cycle.
type VerdictAggregate struct {
	Total     int       `json:"total"`
	Succeeded int       `json:"succeeded"`
	Batches   int       `json:"batches"`
	Verdicts  []Verdict `json:"verdicts"`
}

// Failed is Total minus Succeeded.
func (a *VerdictAggregate) Failed() int {
	return a.Total - a.Succeeded
}

// CycleSummary is the last finished cycle of a supervisor.
type CycleSummary struct {
	ID         string    `json:"id"`
	Total      int       `json:"total"`
	Succeeded  int       `json:"succeeded"`
	Points     int64     `json:"points"`
	Err        string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finishedAt"`
}
