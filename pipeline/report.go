package pipeline

import (
	"time"
)

type Stage string

const (
	Extract   Stage = "extract"
	Transform Stage = "transform"
)

// Result is the outcome for a single source. Err is nil if the source was rendered and
// Stage is the last stage the source reached.
type Result struct {
	Source string
	Stage  Stage
	Rows   int
	Err    error
}

// Report summarises a pipeline run.
type Report struct {
	RunID     string
	Started   time.Time
	File      string
	Results   []Result
	Locations []string
}

// Failed returns the results for the sources that were dropped.
func (r *Report) Failed() []Result {
	failed := []Result{}
	for _, result := range r.Results {
		if result.Err != nil {
			failed = append(failed, result)
		}
	}

	return failed
}

func (r *Report) result(name string) *Result {
	for i := range r.Results {
		if r.Results[i].Source == name {
			return &r.Results[i]
		}
	}

	return nil
}
