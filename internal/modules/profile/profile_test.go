package profile

import (
	"strings"
	"testing"

	"github.com/seoforge/core/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAPIKeyShape(t *testing.T) {
	key, err := newAPIKey()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, middleware.APIKeyPrefix))
	assert.Len(t, key, len(middleware.APIKeyPrefix)+48)
}

func TestNewAPIKeyUnique(t *testing.T) {
	a, err := newAPIKey()
	require.NoError(t, err)
	b, err := newAPIKey()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
