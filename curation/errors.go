package curation

import (
	"errors"
	"fmt"

	"github.com/poiesic/curator/core"
)

var (
	// ErrEmptyInput is returned for a blank topic, message, text or content.
	ErrEmptyInput = errors.New("empty input")

	// ErrInvalidTransition is returned when the session's stage forbids an action.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrNotFound is returned for unknown sessions and consensus points.
	ErrNotFound = errors.New("not found")

	// ErrGenerationFailed is returned when the text generator fails or times out.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrStoreWriteFailed is returned when the knowledge store rejects a commit.
	ErrStoreWriteFailed = errors.New("store write failed")

	// ErrSessionBusy is returned when an action arrives while another is in flight.
	ErrSessionBusy = errors.New("session busy")

	// ErrGeneratorRequired is returned when a text generator is not provided.
	ErrGeneratorRequired = errors.New("text generator required")

	// ErrStoreRequired is returned when a knowledge store is not provided.
	ErrStoreRequired = errors.New("knowledge store required")
)

// ErrorKind names a class of curation failure as reported to clients.
type ErrorKind string

const (
	KindEmptyInput        ErrorKind = "EmptyInput"
	KindInvalidTransition ErrorKind = "InvalidTransition"
	KindNotFound          ErrorKind = "NotFound"
	KindGenerationFailed  ErrorKind = "GenerationFailed"
	KindStoreWriteFailed  ErrorKind = "StoreWriteFailed"
	KindSessionBusy       ErrorKind = "SessionBusy"
	KindInternal          ErrorKind = "Internal"
)

var kinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrSessionBusy, KindSessionBusy},
	{ErrGenerationFailed, KindGenerationFailed},
	{ErrStoreWriteFailed, KindStoreWriteFailed},
	{ErrInvalidTransition, KindInvalidTransition},
	{ErrNotFound, KindNotFound},
	{ErrEmptyInput, KindEmptyInput},
}

// KindOf classifies err. Errors not produced by this package are KindInternal.
// A nil error has no kind.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

func invalidTransition(action string, pipeline core.Pipeline, stage core.Stage) error {
	return fmt.Errorf("%w: cannot %s in %s stage %s", ErrInvalidTransition, action, pipeline, stage)
}
