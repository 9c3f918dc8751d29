package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"aprs2influxdb/internal/aprs"
	"aprs2influxdb/internal/observability"
	"aprs2influxdb/internal/storage"
)

// Feed delivers decoded records one at a time, forever.
type Feed interface {
	Consumer(handler func(*aprs.Record)) error
}

// Writer is the storage boundary: insert one or more line-protocol lines.
type Writer interface {
	Write(ctx context.Context, lines []string) error
}

// Encoder turns a record into a line, or nothing.
type Encoder interface {
	Encode(rec *aprs.Record) (string, bool)
}

// DupFilter reports whether an encoded line was already ingested recently.
type DupFilter interface {
	Seen(ctx context.Context, line string) bool
}

// Consumer drains the feed: each record is encoded and, if a line came
// out, written to storage individually. Write failures are logged with the
// offending line and never stop ingestion of the records behind them.
// Records are handled strictly in arrival order; there is no queueing, so
// storage latency gates the drain rate.
type Consumer struct {
	feed   Feed
	enc    Encoder
	store  Writer
	dup    DupFilter // nil when duplicate filtering is disabled
	logger *slog.Logger
}

func NewConsumer(feed Feed, enc Encoder, store Writer, dup DupFilter, logger *slog.Logger) *Consumer {
	return &Consumer{
		feed:   feed,
		enc:    enc,
		store:  store,
		dup:    dup,
		logger: logger.With("component", "consumer"),
	}
}

// Run blocks on the feed's delivery loop until the session dies.
func (c *Consumer) Run(ctx context.Context) error {
	return c.feed.Consumer(func(rec *aprs.Record) {
		c.handle(ctx, rec)
	})
}

func (c *Consumer) handle(ctx context.Context, rec *aprs.Record) {
	observability.PacketsReceived.Inc()

	line, ok := c.enc.Encode(rec)
	if !ok {
		observability.FormatsSkipped.Inc()
		return
	}
	observability.LinesEncoded.Inc()

	if c.dup != nil && c.dup.Seen(ctx, line) {
		observability.DuplicatesDropped.Inc()
		return
	}

	if err := c.store.Write(ctx, []string{line}); err != nil {
		observability.WriteErrors.Inc()
		var clientErr *storage.ClientError
		if errors.As(err, &clientErr) {
			c.logger.Error("influxdb rejected point", "status", clientErr.Status, "err", err, "record", line)
		} else {
			c.logger.Error("storage write failed", "err", err, "record", line)
		}
	}
}
