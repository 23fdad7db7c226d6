package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCategories(t *testing.T) {
	cause := errors.New("no rows")

	notFound := NewNotFound("product.find", cause)
	assert.True(t, notFound.IsNotFound())
	assert.False(t, notFound.IsConflict())
	assert.False(t, notFound.IsUnavailable())

	conflict := NewConflict("order.create", cause)
	assert.True(t, conflict.IsConflict())
	assert.False(t, conflict.IsNotFound())

	unavailable := NewUnavailable("registry.ping", cause)
	assert.True(t, unavailable.IsUnavailable())
}

func TestErrorMessageIncludesOp(t *testing.T) {
	err := NewNotFound("address.find", errors.New("no rows"))
	assert.Contains(t, err.Error(), "address.find")

	bare := &Error{Err: errors.New("boom")}
	assert.Equal(t, "repository: boom", bare.Error())
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("duplicate key")
	err := NewConflict("order.create", cause)
	require.ErrorIs(t, err, cause)
}

func TestCategoryHelpersTraverseWrappedErrors(t *testing.T) {
	cause := NewNotFound("cart.find", errors.New("no rows"))
	wrapped := fmt.Errorf("load cart: %w", cause)

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsConflict(wrapped))

	assert.False(t, IsNotFound(errors.New("plain")))
	assert.False(t, IsConflict(nil))
}
