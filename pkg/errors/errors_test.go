package errors_test

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/agentstation/tally/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{Resource: "region", ID: "11"}
		assert.Equal(t, "region with ID 11 not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("file", "regions.csv")
		wrapped := errors.Join(errors.New("failed"), base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("denominator", "total", "unknown denominator")
		assert.Equal(t, "validation failed for field denominator: unknown denominator", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "empty input"}
		assert.Equal(t, "validation failed: empty input", err.Error())
	})
}

func TestMalformedCodeError(t *testing.T) {
	err := pkgerrors.NewMalformedCodeError("referendum", "department_code", "Département")
	assert.Contains(t, err.Error(), `"Département"`)
	assert.Contains(t, err.Error(), "referendum.department_code")
	assert.True(t, pkgerrors.IsMalformedCode(err))
	assert.False(t, pkgerrors.IsUnresolvedReference(err))

	bare := &pkgerrors.MalformedCodeError{Value: "x"}
	assert.Equal(t, `malformed code "x"`, bare.Error())
}

func TestUnresolvedReferenceError(t *testing.T) {
	t.Run("with row", func(t *testing.T) {
		err := pkgerrors.NewUnresolvedReferenceError("areas", "region_code", "99", 3)
		assert.Equal(t, `areas: row 3: region_code "99" has no match`, err.Error())
		assert.True(t, pkgerrors.IsUnresolvedReference(err))
	})

	t.Run("without row", func(t *testing.T) {
		err := pkgerrors.NewUnresolvedReferenceError("association", "department_code", "42", -1)
		assert.Equal(t, `association: department_code "42" has no match`, err.Error())
	})
}

func TestDuplicateKeyError(t *testing.T) {
	err := pkgerrors.NewDuplicateKeyError("departments", "75", 0, 4)
	assert.Contains(t, err.Error(), `"75"`)
	assert.Contains(t, err.Error(), "[0 4]")
	assert.True(t, pkgerrors.IsDuplicateKey(err))

	noRows := pkgerrors.NewDuplicateKeyError("regions", "11")
	assert.Equal(t, `duplicate key "11" in regions`, noRows.Error())
}

func TestConservationViolationError(t *testing.T) {
	err := pkgerrors.NewConservationViolationError("aggregate", "registered", 100, 90)
	assert.Equal(t, "aggregate: registered total is 90, expected 100 (difference -10)", err.Error())
	assert.True(t, pkgerrors.IsConservationViolation(err))
}

func TestBallotMismatchError(t *testing.T) {
	err := &pkgerrors.BallotMismatchError{Count: 2, First: "75/001"}
	assert.Contains(t, err.Error(), "2 rows")
	assert.Contains(t, err.Error(), "75/001")
	assert.True(t, pkgerrors.IsBallotMismatch(err))

	plain := &pkgerrors.BallotMismatchError{Count: 1}
	assert.Equal(t, "1 rows break the ballot identity", plain.Error())
}

func TestStageError(t *testing.T) {
	inner := pkgerrors.NewConservationViolationError("aggregate", "choice_a", 10, 11)
	err := pkgerrors.NewStageError("aggregate", 42, inner)

	assert.Contains(t, err.Error(), "stage aggregate failed on 42 rows")
	assert.True(t, pkgerrors.IsConservationViolation(err))

	var cv *pkgerrors.ConservationViolationError
	require.True(t, errors.As(err, &cv))
	assert.Equal(t, "choice_a", cv.Field)
}

func TestConfigError(t *testing.T) {
	base := errors.New("bad value")
	err := pkgerrors.NewConfigError("pipeline", "invalid denominator", base)
	assert.Equal(t, "configuration error in pipeline: invalid denominator", err.Error())
	assert.ErrorIs(t, err, base)

	noComponent := &pkgerrors.ConfigError{Message: "missing data dir"}
	assert.Equal(t, "configuration error: missing data dir", noComponent.Error())
}

func TestParseError(t *testing.T) {
	tests := []struct {
		name string
		err  *pkgerrors.ParseError
		want string
	}{
		{
			name: "file and line",
			err:  &pkgerrors.ParseError{Format: "csv", File: "referendum.csv", Line: 12, Message: "bad int"},
			want: "parse error in csv at referendum.csv:12: bad int",
		},
		{
			name: "file only",
			err:  &pkgerrors.ParseError{Format: "yaml", File: "regions.yaml", Message: "bad document"},
			want: "parse error in yaml file regions.yaml: bad document",
		},
		{
			name: "no file",
			err:  &pkgerrors.ParseError{Format: "json", Message: "unexpected EOF"},
			want: "json parse error: unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestIOError(t *testing.T) {
	base := errors.New("permission denied")
	err := pkgerrors.NewIOError("read", "/data/regions.csv", base)
	assert.Contains(t, err.Error(), "read")
	assert.Contains(t, err.Error(), "/data/regions.csv")
	assert.ErrorIs(t, err, base)
}

func TestWrapHelpers(t *testing.T) {
	assert.NoError(t, pkgerrors.WrapIO("read", "x", nil))
	assert.NoError(t, pkgerrors.WrapParse("csv", "x", nil))
	assert.NoError(t, pkgerrors.WrapValidation("f", nil))
	assert.NoError(t, pkgerrors.WrapStage("areas", 1, nil))

	base := errors.New("boom")

	var ioErr *pkgerrors.IOError
	assert.True(t, errors.As(pkgerrors.WrapIO("open", "f", base), &ioErr))

	var parseErr *pkgerrors.ParseError
	assert.True(t, errors.As(pkgerrors.WrapParse("csv", "f", base), &parseErr))

	assert.True(t, pkgerrors.IsValidationError(pkgerrors.WrapValidation("f", base)))

	var stageErr *pkgerrors.StageError
	assert.True(t, errors.As(pkgerrors.WrapStage("areas", 3, base), &stageErr))
	assert.Equal(t, 3, stageErr.Rows)
}

func TestErrorChaining(t *testing.T) {
	inner := pkgerrors.NewUnresolvedReferenceError("association", "department_code", "42", 7)
	wrapped := fmt.Errorf("running pipeline: %w", pkgerrors.NewStageError("association", 100, inner))
	assert.True(t, pkgerrors.IsUnresolvedReference(wrapped))
	assert.False(t, pkgerrors.IsConservationViolation(wrapped))
}
