package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidCardNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"valid 16 digit", "4111111111111111", true},
		{"valid with separators", "4111 1111 1111 1111", true},
		{"valid with dashes", "4111-1111-1111-1111", true},
		{"checksum failure", "4111111111111112", false},
		{"too short", "411111111111", false},
		{"empty", "", false},
		{"letters only", "not-a-card", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidCardNumber(tt.input))
		})
	}
}
