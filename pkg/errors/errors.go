// Package errors provides custom error types for the tally pipeline.
// These errors let callers tell recoverable row-level conditions (malformed
// codes, unresolved references) apart from fatal consistency failures, and
// carry enough context to name the stage and row that triggered them.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Sentinel errors for the tally system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedCode indicates a code that cannot be classified
	ErrMalformedCode = errors.New("malformed code")

	// ErrUnresolvedReference indicates a join key without a partner
	ErrUnresolvedReference = errors.New("unresolved reference")

	// ErrDuplicateKey indicates a key observed more than once in a dataset
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrConservationViolation indicates that totals changed across a stage
	ErrConservationViolation = errors.New("conservation violation")

	// ErrBallotMismatch indicates rows where expressed ballots disagree with turnout
	ErrBallotMismatch = errors.New("ballot mismatch")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// MalformedCodeError is a department or region code that the normalizer
// could not classify as mainland, Corsican or overseas.
type MalformedCodeError struct {
	Dataset string `json:"dataset" yaml:"dataset"` // "regions", "departments", "referendum"
	Field   string `json:"field" yaml:"field"`
	Value   string `json:"value" yaml:"value"`
}

// Error implements the error interface
func (e *MalformedCodeError) Error() string {
	if e.Dataset != "" {
		return fmt.Sprintf("malformed code %q in %s.%s", e.Value, e.Dataset, e.Field)
	}
	return fmt.Sprintf("malformed code %q", e.Value)
}

// Is implements errors.Is support
func (e *MalformedCodeError) Is(target error) bool {
	return target == ErrMalformedCode
}

// NewMalformedCodeError creates a new MalformedCodeError
func NewMalformedCodeError(dataset, field, value string) *MalformedCodeError {
	return &MalformedCodeError{Dataset: dataset, Field: field, Value: value}
}

// UnresolvedReferenceError is a row whose join key has no partner.
type UnresolvedReferenceError struct {
	Stage string `json:"stage" yaml:"stage"` // stage that attempted the join
	Key   string `json:"key" yaml:"key"`     // field holding the reference, e.g. "region_code"
	Value string `json:"value" yaml:"value"` // the unresolved value
	Row   int    `json:"row" yaml:"row"`     // zero-based input row, -1 when unknown
}

// Error implements the error interface
func (e *UnresolvedReferenceError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("%s: row %d: %s %q has no match", e.Stage, e.Row, e.Key, e.Value)
	}
	return fmt.Sprintf("%s: %s %q has no match", e.Stage, e.Key, e.Value)
}

// Is implements errors.Is support
func (e *UnresolvedReferenceError) Is(target error) bool {
	return target == ErrUnresolvedReference
}

// NewUnresolvedReferenceError creates a new UnresolvedReferenceError
func NewUnresolvedReferenceError(stage, key, value string, row int) *UnresolvedReferenceError {
	return &UnresolvedReferenceError{Stage: stage, Key: key, Value: value, Row: row}
}

// DuplicateKeyError reports a key observed more than once.
type DuplicateKeyError struct {
	Dataset string
	Key     string
	Rows    []int
}

// Error implements the error interface
func (e *DuplicateKeyError) Error() string {
	if len(e.Rows) > 0 {
		return fmt.Sprintf("duplicate key %q in %s (rows %v)", e.Key, e.Dataset, e.Rows)
	}
	return fmt.Sprintf("duplicate key %q in %s", e.Key, e.Dataset)
}

// Is implements errors.Is support
func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}

// NewDuplicateKeyError creates a new DuplicateKeyError
func NewDuplicateKeyError(dataset, key string, rows ...int) *DuplicateKeyError {
	return &DuplicateKeyError{Dataset: dataset, Key: key, Rows: rows}
}

// ConservationViolationError means a total changed across a stage that
// only regroups rows. It always indicates a join or normalization bug.
type ConservationViolationError struct {
	Stage    string
	Field    string
	Expected int64
	Actual   int64
}

// Error implements the error interface
func (e *ConservationViolationError) Error() string {
	return fmt.Sprintf("%s: %s total is %d, expected %d (difference %d)",
		e.Stage, e.Field, e.Actual, e.Expected, e.Actual-e.Expected)
}

// Is implements errors.Is support
func (e *ConservationViolationError) Is(target error) bool {
	return target == ErrConservationViolation
}

// NewConservationViolationError creates a new ConservationViolationError
func NewConservationViolationError(stage, field string, expected, actual int64) *ConservationViolationError {
	return &ConservationViolationError{Stage: stage, Field: field, Expected: expected, Actual: actual}
}

// BallotMismatchError counts rows where choice_a+choice_b differs from
// registered-abstentions-null_votes.
type BallotMismatchError struct {
	Count int
	First string // identifier of the first offending row
}

// Error implements the error interface
func (e *BallotMismatchError) Error() string {
	if e.First != "" {
		return fmt.Sprintf("%d rows break the ballot identity (first: %s)", e.Count, e.First)
	}
	return fmt.Sprintf("%d rows break the ballot identity", e.Count)
}

// Is implements errors.Is support
func (e *BallotMismatchError) Is(target error) bool {
	return target == ErrBallotMismatch
}

// StageError wraps a fatal failure with the pipeline stage and the row
// count that stage was processing.
type StageError struct {
	Stage string
	Rows  int
	Err   error
}

// Error implements the error interface
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed on %d rows: %v", e.Stage, e.Rows, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError creates a new StageError
func NewStageError(stage string, rows int, err error) *StageError {
	return &StageError{Stage: stage, Rows: rows, Err: err}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when decoding a dataset file
type ParseError struct {
	Format  string // "csv", "yaml", "json"
	File    string
	Line    int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %s:%d: %s", e.Format, e.File, e.Line, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "open", "stat"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsMalformedCode checks if an error is a malformed code error
func IsMalformedCode(err error) bool {
	return errors.Is(err, ErrMalformedCode)
}

// IsUnresolvedReference checks if an error is an unresolved reference error
func IsUnresolvedReference(err error) bool {
	return errors.Is(err, ErrUnresolvedReference)
}

// IsDuplicateKey checks if an error is a duplicate key error
func IsDuplicateKey(err error) bool {
	return errors.Is(err, ErrDuplicateKey)
}

// IsConservationViolation checks if an error is a conservation violation
func IsConservationViolation(err error) bool {
	return errors.Is(err, ErrConservationViolation)
}

// IsBallotMismatch checks if an error is a ballot mismatch error
func IsBallotMismatch(err error) bool {
	return errors.Is(err, ErrBallotMismatch)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapStage wraps an error as a StageError
func WrapStage(stage string, rows int, err error) error {
	if err == nil {
		return nil
	}
	return NewStageError(stage, rows, err)
}
