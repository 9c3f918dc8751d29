package aprs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPasscode(t *testing.T) {
	for _, tt := range []struct {
		callsign string
		want     int
	}{
		{"N0CALL", 13023},
		{"n0call", 13023},
		{"N0CALL-9", 13023},
		{"nocall", 12960},
	} {
		require.Equal(t, tt.want, Passcode(tt.callsign), "callsign %q", tt.callsign)
	}
}
