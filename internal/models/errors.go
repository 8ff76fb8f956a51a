package models

import (
	"errors"
)

var (
	ErrMalformedRequest = errors.New("malformed request")
	ErrMissingValues    = errors.New("request has no values")

	ErrInvalidRecord   = errors.New("invalid record")
	ErrMissingData     = errors.New("record has no data")
	ErrInvalidData     = errors.New("record data is invalid")
	ErrEmptyCategory   = errors.New("classifier returned an empty category")
	ErrClassifierPanic = errors.New("classifier panicked")
)

// Stage names where in the per-record pipeline a failure happened.
type Stage string

const (
	StageDecode   Stage = "decode"
	StageData     Stage = "data"
	StageClassify Stage = "classify"
	StagePanic    Stage = "panic"
)

// RecordError is a failure scoped to one record. Its message is what callers see
// in the record's errors array.
type RecordError struct {
	RecordID RecordID
	Stage    Stage
	Err      error
}

func (e *RecordError) Error() string {
	if e.Err == nil {
		return string(e.Stage) + " failed"
	}
	return e.Err.Error()
}

func (e *RecordError) Unwrap() error { return e.Err }
