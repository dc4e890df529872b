package pipeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/agentstation/tally/pkg/aggregate"
	"github.com/agentstation/tally/pkg/areas"
	"github.com/agentstation/tally/pkg/association"
	"github.com/agentstation/tally/pkg/constants"
	"github.com/agentstation/tally/pkg/errors"
	"github.com/agentstation/tally/pkg/tables"
)

// Drop reasons used as keys of StageReport.Dropped.
const (
	DropUnresolvedRegion = "unresolved_region"
	DropDuplicate        = "duplicate"
	DropOverseas         = "overseas"
	DropInvalid          = "invalid"
	DropUnmatched        = "unmatched"
)

// Result represents the outcome of a pipeline run.
type Result struct {
	// Aggregates is the per-region table with ratios filled in, sorted by
	// region code.
	Aggregates []tables.RegionAggregate `json:"aggregates" yaml:"aggregates"`

	// Total sums every region.
	Total tables.RegionAggregate `json:"total" yaml:"total"`

	// Intermediate tables
	Areas  []tables.Area         `json:"areas" yaml:"areas"`
	Joined []tables.JoinedRecord `json:"-" yaml:"-"`

	// Report accounts for every row that did not reach the aggregates.
	Report Report `json:"report" yaml:"report"`

	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Metadata Metadata `json:"metadata" yaml:"metadata"`
}

// Metadata contains metadata about the run.
type Metadata struct {
	RunID       string                `json:"run_id" yaml:"run_id"`
	StartTime   time.Time             `json:"start_time" yaml:"start_time"`
	EndTime     time.Time             `json:"end_time" yaml:"end_time"`
	Duration    time.Duration         `json:"duration" yaml:"duration"`
	Denominator aggregate.Denominator `json:"denominator" yaml:"denominator"`
}

// StageReport counts the rows that entered and left one stage.
type StageReport struct {
	Stage   string         `json:"stage" yaml:"stage"`
	In      int            `json:"in" yaml:"in"`
	Out     int            `json:"out" yaml:"out"`
	Dropped map[string]int `json:"dropped,omitempty" yaml:"dropped,omitempty"`
}

// TotalDropped sums the drop counts of the stage.
func (s StageReport) TotalDropped() int {
	n := 0
	for _, c := range s.Dropped {
		n += c
	}
	return n
}

// Reasons returns the drop reasons in a stable order.
func (s StageReport) Reasons() []string {
	reasons := make([]string, 0, len(s.Dropped))
	for r := range s.Dropped {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	return reasons
}

// Report lists the drops of a run, stage by stage.
type Report struct {
	Stages []StageReport `json:"stages" yaml:"stages"`

	// Area joiner
	Unresolved []*errors.UnresolvedReferenceError `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`
	Duplicates []areas.Duplicate                  `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`

	// Referendum associator
	Overseas        []association.Excluded             `json:"overseas,omitempty" yaml:"overseas,omitempty"`
	Invalid         []association.Excluded             `json:"invalid,omitempty" yaml:"invalid,omitempty"`
	Unmatched       []*errors.UnresolvedReferenceError `json:"unmatched,omitempty" yaml:"unmatched,omitempty"`
	Silent          []tables.Area                      `json:"silent,omitempty" yaml:"silent,omitempty"`
	OutOfScopeAreas []tables.Area                      `json:"out_of_scope_areas,omitempty" yaml:"out_of_scope_areas,omitempty"`
	ShadowedAreas   []tables.Area                      `json:"shadowed_areas,omitempty" yaml:"shadowed_areas,omitempty"`

	// Region aggregator
	BallotMismatches []aggregate.BallotMismatch `json:"ballot_mismatches,omitempty" yaml:"ballot_mismatches,omitempty"`
}

// Stage returns the report of the named stage.
func (r *Report) Stage(name string) (StageReport, bool) {
	for _, s := range r.Stages {
		if s.Stage == name {
			return s, true
		}
	}
	return StageReport{}, false
}

// TotalDropped returns the number of rows dropped over all stages.
func (r *Result) TotalDropped() int {
	n := 0
	for _, s := range r.Report.Stages {
		n += s.TotalDropped()
	}
	return n
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	records := 0
	if s, ok := r.Report.Stage(constants.StageAssociation); ok {
		records = s.In
	}
	if dropped := r.TotalDropped(); dropped > 0 {
		return fmt.Sprintf("Aggregated %d of %d records into %d regions, %d rows dropped.",
			len(r.Joined), records, len(r.Aggregates), dropped)
	}
	return fmt.Sprintf("Aggregated %d records into %d regions.", len(r.Joined), len(r.Aggregates))
}

func newResult(d aggregate.Denominator) *Result {
	return &Result{
		Warnings: []string{},
		Metadata: Metadata{
			StartTime:   time.Now(),
			Denominator: d,
		},
	}
}

// finalize calculates duration and marks completion.
func (r *Result) finalize() {
	r.Metadata.EndTime = time.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}
