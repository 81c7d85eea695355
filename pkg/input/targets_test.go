package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTarget(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"http://127.0.0.1:5000", "http://127.0.0.1:5000"},
		{"127.0.0.1:5000/", "http://127.0.0.1:5000"},
		{"  https://lab.local/api/auth/ ", "https://lab.local/api/auth"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeTarget(tt.in), "input %q", tt.in)
	}
}

func TestResolveTarget_FlagWins(t *testing.T) {
	got, err := ResolveTarget("localhost:8080", "http://127.0.0.1:5000")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", got)
}

func TestResolveTarget_FallsBack(t *testing.T) {
	got, err := ResolveTarget("", "http://127.0.0.1:5000/")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:5000", got)
}

func TestResolveTarget_Empty(t *testing.T) {
	_, err := ResolveTarget("", " ")
	assert.ErrorIs(t, err, ErrNoTarget)
}
