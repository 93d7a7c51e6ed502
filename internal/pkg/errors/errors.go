package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid")
	ErrInternal = errors.New("internal")

	ErrFetch      = errors.New("fetch error")
	ErrConfig     = errors.New("config error")
	ErrMetadata   = errors.New("metadata error")
	ErrEmbedding  = errors.New("embedding error")
	ErrStore      = errors.New("store error")
	ErrValidation = errors.New("validation error")
	ErrRerank     = errors.New("rerank error")
)

var kinds = []error{
	ErrFetch,
	ErrConfig,
	ErrMetadata,
	ErrEmbedding,
	ErrStore,
	ErrValidation,
	ErrRerank,
}

// KindError attaches a taxonomy kind and the failing operation to a cause.
type KindError struct {
	Kind error
	Op   string
	Err  error
}

func (e *KindError) Error() string {
	switch {
	case e.Op == "" && e.Err == nil:
		return e.Kind.Error()
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	case e.Op == "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Op, e.Err)
}

func (e *KindError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Wrap classifies err under kind. An err already carrying kind is returned as is.
func Wrap(kind error, op string, err error) error {
	if err != nil && errors.Is(err, kind) {
		return err
	}
	return &KindError{Kind: kind, Op: op, Err: err}
}

// New builds a classified error without an underlying cause.
func New(kind error, format string, args ...interface{}) error {
	return &KindError{Kind: kind, Op: fmt.Sprintf(format, args...)}
}

// KindOf returns the taxonomy kind carried by err, or ErrInternal.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrInternal
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrInvalid)
}
