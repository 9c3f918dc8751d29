package aprs

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Telemetry is the base91 payload some stations append to their position
// comment: a sequence number, up to five analog channels and a digital
// bitfield.
type Telemetry struct {
	Seq  int
	Vals []float64
	Bits string
}

// Record is one decoded APRS packet. Optional values are pointers so a
// missing field stays distinguishable from a zero one. A Record is never
// mutated after ParsePacket returns it.
type Record struct {
	Format string
	From   *string
	To     *string

	Latitude     *float64
	Longitude    *float64
	PosAmbiguity *int
	Altitude     *float64
	Speed        *float64

	Comment   *string
	Telemetry *Telemetry
}

const (
	knotsToKMH   = 1.852
	feetToMeters = 0.3048
)

var (
	altitudeRe  = regexp.MustCompile(`/A=(\d{6})`)
	telemetryRe = regexp.MustCompile(`\|([!-{]{4,14})\|\s*$`)
)

// ParsePacket decodes one raw APRS-IS line. Plain (uncompressed) position
// reports are fully decoded; other known bodies are classified by format
// only, and anything else is rejected with an error.
func ParsePacket(raw string) (*Record, error) {
	head, body, ok := strings.Cut(raw, ":")
	if !ok || body == "" {
		return nil, fmt.Errorf("aprs: no packet body in %q", raw)
	}
	src, path, ok := strings.Cut(head, ">")
	if !ok || src == "" || path == "" {
		return nil, fmt.Errorf("aprs: malformed header in %q", raw)
	}
	dest := path
	if i := strings.IndexByte(path, ','); i >= 0 {
		dest = path[:i]
	}

	rec := &Record{From: &src, To: &dest}

	switch body[0] {
	case '!', '=':
		return parsePosition(rec, body[1:])
	case '/', '@':
		// 7 byte timestamp before the position.
		if len(body) < 9 {
			return nil, fmt.Errorf("aprs: truncated timestamped report in %q", raw)
		}
		return parsePosition(rec, body[8:])
	case 0x1c, 0x1d, '`', '\'':
		rec.Format = "mic-e"
	case '>':
		rec.Format = "status"
	case ';':
		rec.Format = "object"
	case ')':
		rec.Format = "item"
	case ':':
		rec.Format = "message"
	case 'T':
		rec.Format = "telemetry-message"
	case '_':
		rec.Format = "wx"
	default:
		return nil, fmt.Errorf("aprs: unsupported packet type %q", body[0])
	}
	return rec, nil
}

func parsePosition(rec *Record, body string) (*Record, error) {
	if body == "" {
		return nil, fmt.Errorf("aprs: empty position body")
	}
	if body[0] < '0' || body[0] > '9' {
		// A symbol table byte where the latitude digit belongs marks the
		// compressed encoding.
		rec.Format = "compressed"
		return rec, nil
	}
	if len(body) < 19 {
		return nil, fmt.Errorf("aprs: truncated position report %q", body)
	}
	rec.Format = "uncompressed"

	lat, amb, err := parseLat(body[:8])
	if err != nil {
		return nil, err
	}
	lon, err := parseLon(body[9:18])
	if err != nil {
		return nil, err
	}
	rec.Latitude = &lat
	rec.Longitude = &lon
	rec.PosAmbiguity = &amb

	parseExtensions(rec, body[19:])
	return rec, nil
}

// parseLat decodes "DDMM.mmN". Blanked minute digits give the position
// ambiguity and read as zero.
func parseLat(s string) (float64, int, error) {
	hemi := s[7]
	if hemi != 'N' && hemi != 'S' || s[4] != '.' {
		return 0, 0, fmt.Errorf("aprs: bad latitude %q", s)
	}
	minutes := s[2:4] + s[5:7]
	amb := strings.Count(minutes, " ")
	minutes = strings.ReplaceAll(minutes, " ", "0")

	deg, err := strconv.Atoi(s[:2])
	if err != nil {
		return 0, 0, fmt.Errorf("aprs: bad latitude %q", s)
	}
	min, err := strconv.ParseFloat(minutes[:2]+"."+minutes[2:], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("aprs: bad latitude %q", s)
	}
	v := round6(float64(deg) + min/60)
	if hemi == 'S' {
		v = -v
	}
	return v, amb, nil
}

// parseLon decodes "DDDMM.mmW".
func parseLon(s string) (float64, error) {
	hemi := s[8]
	if hemi != 'E' && hemi != 'W' || s[5] != '.' {
		return 0, fmt.Errorf("aprs: bad longitude %q", s)
	}
	minutes := strings.ReplaceAll(s[3:5]+s[6:8], " ", "0")

	deg, err := strconv.Atoi(s[:3])
	if err != nil {
		return 0, fmt.Errorf("aprs: bad longitude %q", s)
	}
	min, err := strconv.ParseFloat(minutes[:2]+"."+minutes[2:], 64)
	if err != nil {
		return 0, fmt.Errorf("aprs: bad longitude %q", s)
	}
	v := round6(float64(deg) + min/60)
	if hemi == 'W' {
		v = -v
	}
	return v, nil
}

// parseExtensions picks the course/speed block, the altitude marker and a
// trailing telemetry payload out of the data that follows the symbol; the
// remainder is the station comment.
func parseExtensions(rec *Record, rest string) {
	if len(rest) >= 7 && rest[3] == '/' && isDigits(rest[:3]) && isDigits(rest[4:7]) {
		knots, _ := strconv.Atoi(rest[4:7])
		speed := round2(float64(knots) * knotsToKMH)
		rec.Speed = &speed
		rest = rest[7:]
	}

	if m := altitudeRe.FindStringSubmatchIndex(rest); m != nil {
		feet, _ := strconv.Atoi(rest[m[2]:m[3]])
		alt := round2(float64(feet) * feetToMeters)
		rec.Altitude = &alt
		rest = rest[:m[0]] + rest[m[1]:]
	}

	if m := telemetryRe.FindStringSubmatch(rest); m != nil && len(m[1])%2 == 0 {
		rec.Telemetry = decodeTelemetry(m[1])
		rest = rest[:len(rest)-len(m[0])]
	}

	rest = strings.TrimSpace(rest)
	if rest != "" {
		rec.Comment = &rest
	}
}

// decodeTelemetry unpacks base91 value pairs: sequence number, up to five
// analog channels, then an optional digital bitfield.
func decodeTelemetry(s string) *Telemetry {
	vals := make([]int, 0, 7)
	for i := 0; i+1 < len(s); i += 2 {
		vals = append(vals, int(s[i]-33)*91+int(s[i+1]-33))
	}
	t := &Telemetry{Seq: vals[0]}
	rest := vals[1:]
	for i := 0; i < len(rest) && i < 5; i++ {
		t.Vals = append(t.Vals, float64(rest[i]))
	}
	if len(rest) > 5 {
		t.Bits = fmt.Sprintf("%08b", rest[5]&0xff)
	}
	return t
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
