package areas

import (
	"github.com/agentstation/tally/pkg/errors"
)

// DuplicatePolicy decides what happens to a key seen twice in the regions
// or departments dataset.
type DuplicatePolicy string

const (
	// DuplicateKeepFirst keeps the first observed row and reports the rest.
	DuplicateKeepFirst DuplicatePolicy = "keep-first"
	// DuplicateReject fails the join on the first duplicate.
	DuplicateReject DuplicatePolicy = "reject"
)

// ParseDuplicatePolicy converts a configuration value to a DuplicatePolicy.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(s) {
	case "", DuplicateKeepFirst:
		return DuplicateKeepFirst, nil
	case DuplicateReject:
		return DuplicateReject, nil
	default:
		return "", errors.NewValidationError("duplicates", s, "must be keep-first or reject")
	}
}

type options struct {
	duplicates DuplicatePolicy
}

func defaultOptions() *options {
	return &options{duplicates: DuplicateKeepFirst}
}

// Option configures Join.
type Option func(*options) error

func newOptions(opts ...Option) (*options, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithDuplicatePolicy sets how duplicate region and department codes are handled.
func WithDuplicatePolicy(policy DuplicatePolicy) Option {
	return func(o *options) error {
		p, err := ParseDuplicatePolicy(string(policy))
		if err != nil {
			return err
		}
		o.duplicates = p
		return nil
	}
}
