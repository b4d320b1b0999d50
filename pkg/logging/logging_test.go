package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name  string
		debug bool
	}{
		{"production", false},
		{"debug", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, Setup(tt.debug, "llmctx", "test"))
			require.NotNil(t, Logger)
			assert.Equal(t, tt.debug, Logger.Core().Enabled(-1))
		})
	}
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	require.NoError(t, Setup(false, "llmctx", "test"))
	assert.Same(t, Logger, OrNop(Logger))
}
