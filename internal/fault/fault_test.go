package fault

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_IsMatchesKind(t *testing.T) {
	err := New(ErrNodeNotFound, "no node at position")
	assert.True(t, errors.Is(err, ErrNodeNotFound))
	assert.False(t, errors.Is(err, ErrSymbolNotFound))
}

func TestWrap_PreservesKindAndCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(ErrIO, cause, "reading file")

	assert.True(t, errors.Is(err, ErrIO))
	assert.Equal(t, "reading file: boom", err.Error())
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestWrap_NilCauseStillCarriesKind(t *testing.T) {
	err := Wrap(ErrCancelled, nil, "stopped")
	assert.True(t, errors.Is(err, ErrCancelled))
}

func TestKind_Error(t *testing.T) {
	assert.Equal(t, "node-not-found", ErrNodeNotFound.Error())
}
