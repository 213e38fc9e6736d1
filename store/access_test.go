package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequireOwner(t *testing.T) {
	assert.NoError(t, RequireOwner(7, 7))
	assert.ErrorIs(t, RequireOwner(7, 8), ErrForbidden)
	assert.ErrorIs(t, RequireOwner(7, 0), ErrForbidden, "anonymous callers own nothing")
	assert.ErrorIs(t, RequireOwner(0, 0), ErrForbidden)
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("title", "title is required")
	assert.Equal(t, "title: title is required", err.Error())
}
