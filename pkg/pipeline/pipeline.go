// Package pipeline runs the reconciliation stages in order: areas are
// joined from regions and departments, referendum records are associated
// to areas, and the joined records are aggregated per region.
//
// Each stage reports how many rows it received, emitted and dropped, and
// why. Recoverable drops become warnings in the Result. Count mismatches
// between stages are bugs, so they abort the run with a StageError.
package pipeline

import (
	"context"
	"strconv"
	"time"

	"github.com/agentstation/tally/pkg/aggregate"
	"github.com/agentstation/tally/pkg/areas"
	"github.com/agentstation/tally/pkg/association"
	"github.com/agentstation/tally/pkg/constants"
	"github.com/agentstation/tally/pkg/errors"
	"github.com/agentstation/tally/pkg/logging"
	"github.com/agentstation/tally/pkg/tables"
)

// run holds shared state for one pipeline run.
type run struct {
	opts   *options
	result *Result
}

// Run executes the pipeline on in. It returns either a complete result or
// an error; a StageError names the stage that failed.
func Run(ctx context.Context, in tables.Input, opts ...Option) (*Result, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	r := &run{
		opts:   o,
		result: newResult(o.denominator),
	}

	// A caller may tag the run itself; otherwise it gets an ID from its
	// start time.
	runID := logging.RunID(ctx)
	if runID == "" {
		runID = newRunID(r.result.Metadata.StartTime)
		ctx = logging.WithRunID(ctx, runID)
	}
	r.result.Metadata.RunID = runID

	logging.FromContext(ctx).Info().
		Int("regions", len(in.Regions)).
		Int("departments", len(in.Departments)).
		Int("records", len(in.Referendum)).
		Str("denominator", string(o.denominator)).
		Msg("Starting pipeline")

	// Step 1: Join departments to regions
	joined, err := r.areas(logging.WithStage(ctx, constants.StageAreas), in)
	if err != nil {
		return nil, err
	}

	// Step 2: Associate referendum records to areas
	assoc, err := r.associate(logging.WithStage(ctx, constants.StageAssociation), in.Referendum, joined.Areas)
	if err != nil {
		return nil, err
	}

	// Step 3: Aggregate by region
	if err := r.aggregate(logging.WithStage(ctx, constants.StageAggregate), assoc); err != nil {
		return nil, err
	}

	r.result.finalize()
	logging.FromContext(ctx).Info().
		Int("regions", len(r.result.Aggregates)).
		Int("dropped", r.result.TotalDropped()).
		Int("warnings", len(r.result.Warnings)).
		Dur("duration", r.result.Metadata.Duration).
		Msg("Pipeline complete")

	return r.result, nil
}

// areas runs the area joiner and checks its accounting.
func (r *run) areas(ctx context.Context, in tables.Input) (*areas.Result, error) {
	stage := constants.StageAreas
	logger := logging.FromContext(ctx)
	joined, err := areas.Join(in.Regions, in.Departments, areas.WithDuplicatePolicy(r.opts.duplicates))
	if err != nil {
		return nil, errors.WrapStage(stage, len(in.Departments), err)
	}

	duplicates := 0
	for _, d := range joined.Duplicates {
		if d.Dataset == constants.DatasetDepartments {
			duplicates++
		}
		logger.Debug().
			Str("dataset", d.Dataset).
			Str("code", d.Code).
			Int("row", d.Row).
			Int("first_row", d.FirstRow).
			Msg("Duplicate code discarded")
	}
	for _, u := range joined.Unresolved {
		logger.Debug().Err(u).Msg("Department dropped")
	}

	report := StageReport{
		Stage: stage,
		In:    len(in.Departments),
		Out:   len(joined.Areas),
		Dropped: nonZero(map[string]int{
			DropUnresolvedRegion: len(joined.Unresolved),
			DropDuplicate:        duplicates,
		}),
	}
	if err := r.record(ctx, report); err != nil {
		return nil, err
	}

	r.result.Areas = joined.Areas
	r.result.Report.Unresolved = joined.Unresolved
	r.result.Report.Duplicates = joined.Duplicates

	if n := len(joined.Unresolved); n > 0 {
		if r.opts.failOnUnmatched {
			return nil, errors.NewStageError(stage, len(in.Departments), joined.Unresolved[0])
		}
		r.result.warnf("%d departments dropped: region code not found", n)
	}
	if n := len(joined.Duplicates); n > 0 {
		r.result.warnf("%d duplicate region or department rows ignored", n)
	}
	return joined, nil
}

// associate runs the referendum associator and checks its accounting.
func (r *run) associate(ctx context.Context, records []tables.Record, all []tables.Area) (*association.Result, error) {
	stage := constants.StageAssociation
	logger := logging.FromContext(ctx)
	assoc := association.Associate(records, all)

	for _, u := range assoc.Unmatched {
		logger.Debug().Err(u).Msg("Record dropped")
	}
	for _, e := range assoc.Invalid {
		logger.Debug().Int("row", e.Row).Str("code", e.Raw).Err(e.Err).Msg("Invalid department code")
	}

	report := StageReport{
		Stage: stage,
		In:    assoc.Records,
		Out:   len(assoc.Joined),
		Dropped: nonZero(map[string]int{
			DropOverseas:  len(assoc.Overseas),
			DropInvalid:   len(assoc.Invalid),
			DropUnmatched: len(assoc.Unmatched),
		}),
	}
	if err := r.record(ctx, report); err != nil {
		return nil, err
	}

	r.result.Joined = assoc.Joined
	r.result.Report.Overseas = assoc.Overseas
	r.result.Report.Invalid = assoc.Invalid
	r.result.Report.Unmatched = assoc.Unmatched
	r.result.Report.Silent = assoc.Silent
	r.result.Report.OutOfScopeAreas = assoc.OutOfScopeAreas
	r.result.Report.ShadowedAreas = assoc.ShadowedAreas

	if n := len(assoc.Unmatched); n > 0 {
		if r.opts.failOnUnmatched {
			return nil, errors.NewStageError(stage, assoc.Records, assoc.Unmatched[0])
		}
		r.result.warnf("%d records dropped: department code not found", n)
	}
	if n := len(assoc.Invalid); n > 0 {
		r.result.warnf("%d records dropped: malformed department code", n)
	}
	if n := len(assoc.Silent); n > 0 {
		r.result.warnf("%d departments have no referendum record", n)
	}
	if n := len(assoc.ShadowedAreas); n > 0 {
		r.result.warnf("%d areas share a department code with an earlier area", n)
	}
	return assoc, nil
}

// aggregate groups the joined records by region and verifies conservation.
func (r *run) aggregate(ctx context.Context, assoc *association.Result) error {
	stage := constants.StageAggregate
	logger := logging.FromContext(ctx)

	mismatches := aggregate.CheckBallots(joinedRecords(assoc.Joined))
	r.result.Report.BallotMismatches = mismatches
	if len(mismatches) > 0 {
		if r.opts.strictBallots {
			return errors.NewStageError(stage, len(assoc.Joined), aggregate.BallotError(mismatches))
		}
		logger.Warn().
			Int("rows", len(mismatches)).
			Str("first", mismatches[0].Key).
			Msg("Ballot identity does not hold")
		r.result.warnf("%d records break the ballot identity, ratios depend on the denominator", len(mismatches))
	}

	aggs := aggregate.Regions(assoc.Joined, assoc.Areas())
	if err := aggregate.CheckConservation(assoc.Joined, aggs); err != nil {
		return errors.NewStageError(stage, len(assoc.Joined), err)
	}

	r.result.Aggregates = aggregate.Ratios(aggs, r.opts.denominator)
	r.result.Total = aggregate.Totals(r.result.Aggregates, r.opts.denominator)

	outOfBounds := 0
	for _, agg := range r.result.Aggregates {
		switch {
		case aggregate.OutOfBounds(agg.Counts, r.opts.denominator):
			outOfBounds++
			logger.Debug().
				Str("code_reg", agg.CodeReg).
				Int64("choice_a", agg.ChoiceA).
				Int64("denominator", r.opts.denominator.Of(agg.Counts)).
				Msg("Ratio withheld, denominator below choice A")
		case !agg.HasRatio:
			logger.Debug().Str("code_reg", agg.CodeReg).Msg("Region has no expressed ballots")
		}
	}
	if outOfBounds > 0 {
		r.result.warnf("%d regions have no %s ratio: denominator below choice A", outOfBounds, r.opts.denominator)
	}

	return r.record(ctx, StageReport{
		Stage: stage,
		In:    len(assoc.Joined),
		Out:   len(r.result.Aggregates),
	})
}

// record logs a stage report and verifies that every input row is either
// emitted or dropped. The aggregate stage is checked by CheckConservation
// instead, since it merges rows.
func (r *run) record(ctx context.Context, report StageReport) error {
	logging.FromContext(ctx).Info().
		Int("in", report.In).
		Int("out", report.Out).
		Int("dropped", report.TotalDropped()).
		Msg("Stage complete")

	r.result.Report.Stages = append(r.result.Report.Stages, report)

	if report.Stage == constants.StageAggregate {
		return nil
	}
	if got := report.Out + report.TotalDropped(); got != report.In {
		cv := errors.NewConservationViolationError(report.Stage, "rows", int64(report.In), int64(got))
		return errors.NewStageError(report.Stage, report.In, cv)
	}
	return nil
}

// nonZero removes the reasons that dropped nothing.
func nonZero(m map[string]int) map[string]int {
	for reason, n := range m {
		if n == 0 {
			delete(m, reason)
		}
	}
	return m
}

func joinedRecords(joined []tables.JoinedRecord) []tables.Record {
	out := make([]tables.Record, len(joined))
	for i, j := range joined {
		out[i] = j.Record
	}
	return out
}

func newRunID(start time.Time) string {
	return strconv.FormatInt(start.UnixNano(), 36)
}
