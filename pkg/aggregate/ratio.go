package aggregate

import (
	"github.com/agentstation/tally/pkg/errors"
	"github.com/agentstation/tally/pkg/tables"
)

// Denominator selects how expressed ballots are counted for the ratio.
type Denominator string

const (
	// DenominatorExpressed uses choice_a + choice_b.
	DenominatorExpressed Denominator = "expressed"
	// DenominatorTurnout uses registered - abstentions - null_votes.
	DenominatorTurnout Denominator = "turnout"
)

// ParseDenominator converts a configuration value to a Denominator. The
// empty string selects DenominatorExpressed.
func ParseDenominator(s string) (Denominator, error) {
	switch Denominator(s) {
	case "", DenominatorExpressed:
		return DenominatorExpressed, nil
	case DenominatorTurnout:
		return DenominatorTurnout, nil
	default:
		return "", errors.NewValidationError("denominator", s, "must be expressed or turnout")
	}
}

// Of returns the denominator value for c.
func (d Denominator) Of(c tables.Counts) int64 {
	if d == DenominatorTurnout {
		return c.TurnoutExpressed()
	}
	return c.Expressed()
}

// Ratio is the fraction of expressed ballots cast for choice A. The
// boolean is false when the denominator is not positive, or smaller than
// choice_a (turnout on rows that break the ballot identity), in which case
// the ratio is 0 and must not be rendered. A reported ratio is always in
// [0, 1].
func Ratio(c tables.Counts, d Denominator) (float64, bool) {
	den := d.Of(c)
	if den <= 0 || c.ChoiceA > den {
		return 0, false
	}
	return float64(c.ChoiceA) / float64(den), true
}

// OutOfBounds reports whether c has expressed ballots but no ratio under
// d because the denominator is smaller than choice_a.
func OutOfBounds(c tables.Counts, d Denominator) bool {
	den := d.Of(c)
	return c.Expressed() > 0 && den > 0 && c.ChoiceA > den
}

// Ratios returns a copy of aggs with Ratio and HasRatio filled in.
func Ratios(aggs []tables.RegionAggregate, d Denominator) []tables.RegionAggregate {
	out := make([]tables.RegionAggregate, len(aggs))
	for i, agg := range aggs {
		agg.Ratio, agg.HasRatio = Ratio(agg.Counts, d)
		out[i] = agg
	}
	return out
}

// BallotMismatch is a record where choice_a + choice_b differs from
// registered - abstentions - null_votes. On such rows the two
// denominators disagree.
type BallotMismatch struct {
	// Row is the index of the record in the checked slice.
	Row              int    `json:"row" yaml:"row"`
	Key              string `json:"key" yaml:"key"`
	Expressed        int64  `json:"expressed" yaml:"expressed"`
	TurnoutExpressed int64  `json:"turnout_expressed" yaml:"turnout_expressed"`
}

// CheckBallots returns every record that breaks the ballot identity.
func CheckBallots(records []tables.Record) []BallotMismatch {
	var out []BallotMismatch
	for i, r := range records {
		if r.Balanced() {
			continue
		}
		out = append(out, BallotMismatch{
			Row:              i,
			Key:              r.Key(),
			Expressed:        r.Expressed(),
			TurnoutExpressed: r.TurnoutExpressed(),
		})
	}
	return out
}

// BallotError converts mismatches to an error, nil when there are none.
func BallotError(mismatches []BallotMismatch) error {
	if len(mismatches) == 0 {
		return nil
	}
	return &errors.BallotMismatchError{Count: len(mismatches), First: mismatches[0].Key}
}
