package entities

import (
	"sort"
	"time"
)

type RunState string

const (
	StateIdle            RunState = "idle"
	StateFetching        RunState = "fetching"
	StateProcessing      RunState = "processing"
	StateMerging         RunState = "merging"
	StateDone            RunState = "done"
	StatePartiallyFailed RunState = "partially_failed"
	StateFailed          RunState = "failed"
)

type SourceStatus struct {
	Count   int    `json:"count"`
	Skipped int    `json:"skipped"`
	Error   string `json:"error,omitempty"`
}

func (s SourceStatus) Failed() bool {
	return s.Error != ""
}

type RunReport struct {
	StartedAt             time.Time               `json:"startedAt"`
	FinishedAt            time.Time               `json:"finishedAt"`
	State                 RunState                `json:"state"`
	PerSourceStatus       map[string]SourceStatus `json:"perSourceStatus"`
	TotalNewPostings      int                     `json:"totalNewPostings"`
	TotalUpdatedPostings  int                     `json:"totalUpdatedPostings"`
	TotalMergedDuplicates int                     `json:"totalMergedDuplicates"`
}

func (r *RunReport) FailedSources() []string {
	var failed []string
	for source, status := range r.PerSourceStatus {
		if status.Failed() {
			failed = append(failed, source)
		}
	}
	sort.Strings(failed)
	return failed
}

// RunRecord is a finished run as kept in the run history table.
type RunRecord struct {
	ID         int
	StartedAt  time.Time `gorm:"index"`
	FinishedAt time.Time
	State      RunState
	Report     RunReport `gorm:"serializer:json"`
}

func NewRunRecord(report RunReport) RunRecord {
	return RunRecord{
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		State:      report.State,
		Report:     report,
	}
}
