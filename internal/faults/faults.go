// Package faults defines the typed error kinds surfaced by the recommendation
// pipeline. Every failure crossing a module boundary carries one of these
// kinds so the API layer can map it to a status code without string matching.
package faults

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindInvalidInput      Kind = "invalid_input"
	KindEmptyCorpus       Kind = "empty_corpus"
	KindDimensionMismatch Kind = "dimension_mismatch"
	KindCorruptIndex      Kind = "corrupt_index"
	KindRetrievalFailure  Kind = "retrieval_failure"
	KindGenerationFailure Kind = "generation_failure"
)

// Fault wraps an underlying error with a kind and a human-readable message.
// Transient marks failures worth one retry, such as a 5xx or a timeout from
// the generation endpoint.
type Fault struct {
	Kind      Kind
	Message   string
	Err       error
	Transient bool
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Message, f.Err)
	}
	return f.Message
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// New creates a Fault of the given kind. err may be nil.
func New(kind Kind, message string, err error) *Fault {
	return &Fault{Kind: kind, Message: message, Err: err}
}

func Newf(kind Kind, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first Fault in err's chain, or "" if none.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// MarkTransient flags the fault as retryable and returns it.
func (f *Fault) MarkTransient() *Fault {
	f.Transient = true
	return f
}

// IsTransient reports whether err's chain contains a transient fault.
func IsTransient(err error) bool {
	var f *Fault
	if errors.As(err, &f) {
		return f.Transient
	}
	return false
}
