package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of failure classes a client can observe.
type Kind string

const (
	KindValidation Kind = "validation"
	KindTooLarge   Kind = "too_large"
	KindConversion Kind = "conversion"
	KindUpstream   Kind = "upstream"
	KindStorage    Kind = "storage"
	KindNotFound   Kind = "not_found"
	KindInternal   Kind = "internal"
)

// HTTPStatus maps a kind to its response status.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindUpstream:
		return http.StatusBadGateway
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Stage names a step of the job lifecycle.
type Stage string

const (
	StageReceive    Stage = "receive"
	StageNormalize  Stage = "normalize"
	StageTranscribe Stage = "transcribe"
	StageCorrect    Stage = "correct"
	StageSummarize  Stage = "summarize"
	StageStore      Stage = "store"
	StageLookup     Stage = "lookup"
	StageSynthesize Stage = "synthesize"
)

// Error is a stage failure. Message is safe to show clients; Err carries the
// underlying cause and is only logged.
type Error struct {
	Stage   Stage
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Stage, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(stage Stage, kind Kind, msg string, err error) *Error {
	return &Error{Stage: stage, Kind: kind, Message: msg, Err: err}
}

func upstreamError(stage Stage, service string, err error) *Error {
	return newError(stage, KindUpstream, service+" service failed", err)
}

// KindOf returns the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindInternal
}

// Canceled reports whether err was caused by the caller going away.
func Canceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
