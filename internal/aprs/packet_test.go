package aprs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePacketUncompressed(t *testing.T) {
	rec, err := ParsePacket("N0CALL>APRS,TCPIP*,qAC,T2TEST:=4903.50N/07201.75W-Test comment")
	require.NoError(t, err)

	require.Equal(t, "uncompressed", rec.Format)
	require.Equal(t, "N0CALL", *rec.From)
	require.Equal(t, "APRS", *rec.To)
	require.InDelta(t, 49.058333, *rec.Latitude, 1e-6)
	require.InDelta(t, -72.029167, *rec.Longitude, 1e-6)
	require.Equal(t, 0, *rec.PosAmbiguity)
	require.Nil(t, rec.Speed)
	require.Nil(t, rec.Altitude)
	require.Nil(t, rec.Telemetry)
	require.Equal(t, "Test comment", *rec.Comment)
}

func TestParsePacketTimestampedWithExtensions(t *testing.T) {
	rec, err := ParsePacket("N0CALL-9>APRS,WIDE1-1:@092345z4903.50N/07201.75W>088/036/A=001000 on my way")
	require.NoError(t, err)

	require.Equal(t, "uncompressed", rec.Format)
	require.InDelta(t, 66.67, *rec.Speed, 1e-9)    // 36 knots
	require.InDelta(t, 304.8, *rec.Altitude, 1e-9) // 1000 feet
	require.Equal(t, "on my way", *rec.Comment)
}

func TestParsePacketAmbiguity(t *testing.T) {
	rec, err := ParsePacket("N0CALL>APRS:!4903.5 N/07201.7 W-")
	require.NoError(t, err)

	require.Equal(t, 1, *rec.PosAmbiguity)
	require.InDelta(t, 49.058333, *rec.Latitude, 1e-6)
	require.Nil(t, rec.Comment)
}

func TestParsePacketCommentTelemetry(t *testing.T) {
	rec, err := ParsePacket(`N0CALL>APRS,TCPIP*:=4903.50N/07201.75W-wx ok |!&!"!#!$!%!&!6|`)
	require.NoError(t, err)

	tel := rec.Telemetry
	require.NotNil(t, tel)
	require.Equal(t, 5, tel.Seq)
	require.Equal(t, []float64{1, 2, 3, 4, 5}, tel.Vals)
	require.Equal(t, "00010101", tel.Bits)
	require.Equal(t, "wx ok", *rec.Comment)
}

func TestParsePacketFormatClassification(t *testing.T) {
	for _, tt := range []struct {
		raw    string
		format string
	}{
		{"N0CALL>APRS:=/5L!!<*e7>7P[", "compressed"},
		{"N0CALL>T7SYPW,WIDE1-1:`(_fn\"Oj/", "mic-e"},
		{"N0CALL>APRS:>station online", "status"},
		{"N0CALL>APRS:;LEADER   *092345z4903.50N/07201.75W>", "object"},
		{"N0CALL>APRS::WB2OSZ-7 :ack003", "message"},
		{"N0CALL>APRS:T#005,199,000,255,073,123,01101001", "telemetry-message"},
	} {
		rec, err := ParsePacket(tt.raw)
		require.NoError(t, err, "packet %q", tt.raw)
		require.Equal(t, tt.format, rec.Format, "packet %q", tt.raw)
	}
}

func TestParsePacketRejectsGarbage(t *testing.T) {
	for _, raw := range []string{
		"",
		"no packet body here",
		"N0CALL>APRS:",
		"N0CALL:=4903.50N/07201.75W-",
		"N0CALL>APRS:~something",
		"N0CALL>APRS:=49XX.50N/07201.75W-",
	} {
		_, err := ParsePacket(raw)
		require.Error(t, err, "packet %q", raw)
	}
}
