package rosette_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/basistech/rosette-go/pkg/rosette"
	"github.com/stretchr/testify/assert"
)

func TestAPIErrorFormat(t *testing.T) {
	err := rosette.NewAPIError("409", "operate sentiment: failed to communicate with Rosette", "unsupported language")
	assert.Equal(t, "409: operate sentiment: failed to communicate with Rosette:\n  unsupported language", err.Error())
}

func TestAPIErrorIs(t *testing.T) {
	t.Run("matches on status", func(t *testing.T) {
		err := rosette.NewAPIError(rosette.StatusBadKey, "unknown Rosette parameter key", `"foo"`)
		assert.True(t, errors.Is(err, &rosette.APIError{Status: rosette.StatusBadKey}))
		assert.False(t, errors.Is(err, &rosette.APIError{Status: rosette.StatusBadArgument}))
	})

	t.Run("empty target status matches any APIError", func(t *testing.T) {
		err := rosette.NewAPIError("500", "server error", "body")
		assert.True(t, errors.Is(err, &rosette.APIError{}))
	})

	t.Run("survives wrapping", func(t *testing.T) {
		err := fmt.Errorf("call failed: %w", rosette.NewAPIError(rosette.StatusConnectionError, "unreachable", "https://example.com"))
		assert.True(t, errors.Is(err, &rosette.APIError{Status: rosette.StatusConnectionError}))

		var apiErr *rosette.APIError
		assert.True(t, errors.As(err, &apiErr))
		assert.Equal(t, rosette.StatusConnectionError, apiErr.Status)
	})
}
