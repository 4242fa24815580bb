package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "scaffold/pkg/domain-errors"
)

// TestParseUUID_Invariants validates "IDs must be valid, non-empty, non-nil UUIDs".
func TestParseUUID_Invariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty string", "", true},
		{"invalid format", "not-a-uuid", true},
		{"nil UUID", uuid.Nil.String(), true},
		{"SQL injection attempt", "'; DROP TABLE things;--", true},
		{"null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"oversized input", strings.Repeat("a", 1000), true},
		{"uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUUID(tt.input, "thing id")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParseText(t *testing.T) {
	t.Run("trims surrounding whitespace", func(t *testing.T) {
		v, err := ParseText("  widget ", "name", 10)
		require.NoError(t, err)
		assert.Equal(t, "widget", v)
	})

	t.Run("rejects blank", func(t *testing.T) {
		_, err := ParseText("   ", "name", 10)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("counts runes not bytes", func(t *testing.T) {
		_, err := ParseText("ñññññ", "name", 5)
		assert.NoError(t, err)
		_, err = ParseText("ññññññ", "name", 5)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}
