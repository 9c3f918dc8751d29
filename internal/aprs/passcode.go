package aprs

import "strings"

// Passcode derives the APRS-IS login code for a callsign. Only the base
// call is hashed: case is folded and any SSID after "-" is ignored.
func Passcode(callsign string) int {
	call := strings.ToUpper(callsign)
	if i := strings.IndexByte(call, '-'); i >= 0 {
		call = call[:i]
	}
	hash := 0x73e2
	for i := 0; i < len(call); i += 2 {
		hash ^= int(call[i]) << 8
		if i+1 < len(call) {
			hash ^= int(call[i+1])
		}
	}
	return hash & 0x7fff
}
