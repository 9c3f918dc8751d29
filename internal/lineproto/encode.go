package lineproto

import (
	"log/slog"
	"strconv"
	"strings"

	"aprs2influxdb/internal/aprs"
)

// Encoder serializes decoded APRS records into InfluxDB line protocol.
// Field level failures are logged and skipped so a partial line is still
// produced whenever the format matches; Encode never fails outright.
type Encoder struct {
	logger *slog.Logger
}

func NewEncoder(logger *slog.Logger) *Encoder {
	return &Encoder{logger: logger.With("component", "lineproto")}
}

// Encode turns one record into a line. The second return is false when the
// record produces no output: only plain uncompressed position reports are
// stored, everything else is skipped without logging.
//
// Schema: measurement "packet"; tags from, to, format; fields latitude,
// longitude, posAmbiguity, altitude, speed, the telemetry channels and the
// comment.
func (e *Encoder) Encode(rec *aprs.Record) (string, bool) {
	if rec.Format != "uncompressed" {
		return "", false
	}

	const measurement = "packet"

	tags := make([]string, 0, 3)
	if rec.From != nil {
		tags = append(tags, "from="+*rec.From)
	} else {
		e.logger.Error("record missing tag key", "tag", "from")
	}
	if rec.To != nil {
		tags = append(tags, "to="+*rec.To)
	} else {
		e.logger.Error("record missing tag key", "tag", "to")
	}
	tags = append(tags, "format="+rec.Format)

	fields := make([]string, 0, 13)
	fields = append(fields,
		"latitude="+floatOrZero(rec.Latitude),
		"longitude="+floatOrZero(rec.Longitude),
		"posAmbiguity="+intOrZero(rec.PosAmbiguity),
		"altitude="+floatOrZero(rec.Altitude),
		"speed="+floatOrZero(rec.Speed),
	)

	fields = e.appendTelemetry(fields, rec.Telemetry)

	if rec.Comment != nil {
		if comment := cleanComment(*rec.Comment); comment != "" {
			fields = append(fields, `comment="`+comment+`"`)
		}
	}

	return measurement + "," + strings.Join(tags, ",") + " " + strings.Join(fields, ","), true
}

// appendTelemetry adds the telemetry channels when a sequence number is
// present and non-zero. A short analog vector aborts the step where it
// ends: already appended channels stay, digital is never reached. Logged
// at debug only since most stations send no telemetry at all.
func (e *Encoder) appendTelemetry(fields []string, t *aprs.Telemetry) []string {
	if t == nil || t.Seq == 0 {
		return fields
	}
	fields = append(fields, "sequenceNumber="+strconv.Itoa(t.Seq))
	for i := 0; i < 5; i++ {
		if i >= len(t.Vals) {
			e.logger.Debug("telemetry vector too short", "want", 5, "have", len(t.Vals))
			return fields
		}
		fields = append(fields, "analog"+strconv.Itoa(i+1)+"="+strconv.FormatFloat(t.Vals[i], 'f', -1, 64))
	}
	if t.Bits == "" {
		e.logger.Debug("telemetry bits missing")
		return fields
	}
	return append(fields, "digital="+t.Bits)
}

// cleanComment drops non-ASCII bytes and embedded double quotes so the
// remainder can be emitted as a quoted string field.
func cleanComment(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c < 0x80 && c != '"' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func floatOrZero(p *float64) string {
	if p == nil {
		return "0"
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func intOrZero(p *int) string {
	if p == nil {
		return "0"
	}
	return strconv.Itoa(*p)
}
