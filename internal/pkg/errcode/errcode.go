package errcode

import (
	"errors"

	appErr "github.com/xxxsen/ghostkube/internal/pkg/errors"
)

const (
	ErrUnknown = 10000000 + iota
	ErrInvalid
	ErrNotFound
	ErrInternal
	ErrFetch
	ErrConfig
	ErrMetadata
	ErrEmbedding
	ErrStore
	ErrValidation
	ErrRerank
	ErrTooMany
)

var byKind = map[error]int{
	appErr.ErrFetch:      ErrFetch,
	appErr.ErrConfig:     ErrConfig,
	appErr.ErrMetadata:   ErrMetadata,
	appErr.ErrEmbedding:  ErrEmbedding,
	appErr.ErrStore:      ErrStore,
	appErr.ErrValidation: ErrValidation,
	appErr.ErrRerank:     ErrRerank,
}

// Of maps an error to its numeric code, ErrUnknown when unclassified.
func Of(err error) int {
	if err == nil {
		return 0
	}
	if code, ok := byKind[appErr.KindOf(err)]; ok {
		return code
	}
	switch {
	case errors.Is(err, appErr.ErrInvalid):
		return ErrInvalid
	case errors.Is(err, appErr.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, appErr.ErrInternal):
		return ErrInternal
	}
	return ErrUnknown
}
