package restbq

import "time"

// Stage identifies where in the procedure a source stopped.
type Stage string

// Stages.
const (
	StageExtract   Stage = "extract"
	StageTransform Stage = "transform"
	StageLoad      Stage = "load"
)

// Outcome is how processing of a source ended.
type Outcome int

// Outcomes.
const (
	Succeeded Outcome = iota
	Skipped
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// SourceResult is a result for each source.
type SourceResult struct {
	Source  Source
	Outcome Outcome

	// Stage is the last stage reached.
	Stage Stage

	Rows    int
	Columns int

	// Archive is the URI of the archived raw payload, if any.
	Archive string

	Err error
}

// Summary aggregates the results of a run in processing order.
type Summary struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []SourceResult
}

func (s *Summary) filter(o Outcome) []SourceResult {
	var rs []SourceResult
	for _, r := range s.Results {
		if r.Outcome == o {
			rs = append(rs, r)
		}
	}
	return rs
}

// Succeeded returns results of sources whose tables were replaced.
func (s *Summary) Succeeded() []SourceResult { return s.filter(Succeeded) }

// Skipped returns results of sources with empty payloads.
func (s *Summary) Skipped() []SourceResult { return s.filter(Skipped) }

// Failed returns results of sources that failed.
func (s *Summary) Failed() []SourceResult { return s.filter(Failed) }

// OK reports whether no source failed.
func (s *Summary) OK() bool {
	return len(s.Failed()) == 0
}

// Duration returns the wall time of the run.
func (s *Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
