package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"aprs2influxdb/internal/observability"
)

// Sender is the outbound half of the feed connection.
type Sender interface {
	SendAll(line string) error
}

// Heartbeat keeps the APRS-IS session considered alive by beaconing a
// status line at a fixed interval. A failed send ends the task; the
// supervisor decides what that means for the process.
type Heartbeat struct {
	sender   Sender
	callsign string
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
}

func NewHeartbeat(sender Sender, callsign string, interval time.Duration, logger *slog.Logger) *Heartbeat {
	return &Heartbeat{
		sender:   sender,
		callsign: callsign,
		interval: interval,
		clock:    clockwork.NewRealClock(),
		logger:   logger.With("component", "heartbeat"),
	}
}

// WithClock replaces the wall clock, for tests.
func (h *Heartbeat) WithClock(clock clockwork.Clock) *Heartbeat {
	h.clock = clock
	return h
}

// Run beacons until ctx is cancelled or a send fails. The first status
// line goes out immediately, then one per interval.
func (h *Heartbeat) Run(ctx context.Context) error {
	ticker := h.clock.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		status := fmt.Sprintf("%s>APRS,TCPIP*:>aprs2influxdb heartbeat %d", h.callsign, h.clock.Now().Unix())
		if err := h.sender.SendAll(status); err != nil {
			return fmt.Errorf("heartbeat send: %w", err)
		}
		observability.HeartbeatsSent.Inc()
		h.logger.Debug("sent heartbeat")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
		}
	}
}
