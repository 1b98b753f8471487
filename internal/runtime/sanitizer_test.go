package runtime_test

import (
	"strings"
	"testing"

	"github.com/aretw0/onboard/internal/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"plain", "Ada Lovelace", "Ada Lovelace", nil},
		{"keeps newlines and tabs", "line1\nline2\tend", "line1\nline2\tend", nil},
		{"strips escape sequences", "bad\x1b[31mred", "bad[31mred", nil},
		{"strips null and bell", "a\x00b\x07c", "abc", nil},
		{"invalid utf8", "bad\xffbyte", "", runtime.ErrInvalidUTF8},
		{"too large", strings.Repeat("x", 17), "", runtime.ErrInputTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runtime.SanitizeInput(tt.input, 16)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
