package pipeline

import (
	"github.com/agentstation/tally/pkg/aggregate"
	"github.com/agentstation/tally/pkg/areas"
)

// options configures a pipeline run.
type options struct {
	duplicates      areas.DuplicatePolicy
	denominator     aggregate.Denominator
	strictBallots   bool
	failOnUnmatched bool
}

func defaultOptions() *options {
	return &options{
		duplicates:  areas.DuplicateKeepFirst,
		denominator: aggregate.DenominatorExpressed,
	}
}

// Option is a function that configures a pipeline run.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// newOptions returns pipeline options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithDuplicatePolicy sets how repeated region and department codes are handled.
func WithDuplicatePolicy(policy areas.DuplicatePolicy) Option {
	return func(o *options) error {
		p, err := areas.ParseDuplicatePolicy(string(policy))
		if err != nil {
			return err
		}
		o.duplicates = p
		return nil
	}
}

// WithDenominator selects the denominator of the region ratio.
func WithDenominator(d aggregate.Denominator) Option {
	return func(o *options) error {
		parsed, err := aggregate.ParseDenominator(string(d))
		if err != nil {
			return err
		}
		o.denominator = parsed
		return nil
	}
}

// WithStrictBallots makes ballot identity violations fatal instead of
// warnings.
func WithStrictBallots(enabled bool) Option {
	return func(o *options) error {
		o.strictBallots = enabled
		return nil
	}
}

// WithFailOnUnmatched makes unresolved regions and unmatched referendum
// records fatal instead of reported drops.
func WithFailOnUnmatched(enabled bool) Option {
	return func(o *options) error {
		o.failOnUnmatched = enabled
		return nil
	}
}
