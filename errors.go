package kanakanji

import (
	"errors"
	"fmt"

	"github.com/hupe1980/kanakanji/internal/manifest"
	"github.com/hupe1980/kanakanji/userdict"
)

var (
	// ErrClosed is returned by operations on a closed Engine.
	ErrClosed = errors.New("kanakanji: engine closed")

	// ErrNoDictionary is returned when the source holds no published
	// dictionary.
	ErrNoDictionary = errors.New("kanakanji: no published dictionary")

	// ErrNoUserDictionary is returned by user dictionary operations when
	// none is configured.
	ErrNoUserDictionary = errors.New("kanakanji: no user dictionary configured")

	// ErrNothingToCommit is returned when a commit covers no clause.
	ErrNothingToCommit = errors.New("kanakanji: nothing to commit")

	// ErrNotFound is returned when a user word does not exist.
	ErrNotFound = errors.New("kanakanji: not found")
)

// ErrUnsupportedSource indicates a dictionary source Open cannot serve.
type ErrUnsupportedSource struct {
	Source string
}

func (e *ErrUnsupportedSource) Error() string {
	return fmt.Sprintf("kanakanji: unsupported dictionary source %q", e.Source)
}

// ErrCommitBoundary indicates a commit that does not end on a boundary of
// the composing text.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrCommitBoundary struct {
	Text  string
	cause error
}

func (e *ErrCommitBoundary) Error() string {
	return fmt.Sprintf("kanakanji: commit of %q does not end on a text boundary", e.Text)
}

func (e *ErrCommitBoundary) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, manifest.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNoDictionary, err)
	}
	if errors.Is(err, userdict.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
