package aprs

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"aprs2influxdb/internal/observability"
)

const (
	dialTimeout  = 30 * time.Second
	loginTimeout = 30 * time.Second

	softwareName = "aprs2influxdb"
	softwareVers = "0.2.0"
)

// LoginError is a rejected APRS-IS login: the server answered but did not
// verify the callsign/passcode pair.
type LoginError struct {
	Response string
}

func (e *LoginError) Error() string {
	return fmt.Sprintf("aprs: login rejected: %s", e.Response)
}

// Client is one authenticated APRS-IS session, created once at startup and
// shared by the heartbeat and consumer for the life of the process. The
// send path is mutex-serialized so it is safe to use concurrently with the
// inbound Consumer loop. No reconnect state is kept: if the session dies,
// the process does.
type Client struct {
	addr     string
	callsign string
	passcode int
	logger   *slog.Logger

	mu   sync.Mutex
	conn net.Conn

	r *bufio.Reader
}

func NewClient(server, port, callsign string, passcode int, logger *slog.Logger) *Client {
	return &Client{
		addr:     net.JoinHostPort(server, port),
		callsign: callsign,
		passcode: passcode,
		logger:   logger.With("component", "aprs"),
	}
}

// Connect dials the server and runs the login handshake. A *LoginError
// means the server refused the credentials; anything else is a transport
// failure. Both are terminal for the caller.
func (c *Client) Connect() error {
	conn, err := net.DialTimeout("tcp", c.addr, dialTimeout)
	if err != nil {
		return fmt.Errorf("aprs: dial %s: %w", c.addr, err)
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	c.r = bufio.NewReader(conn)

	_ = conn.SetDeadline(time.Now().Add(loginTimeout))
	banner, err := c.readLine()
	if err != nil {
		conn.Close()
		return fmt.Errorf("aprs: reading banner: %w", err)
	}
	c.logger.Debug("server banner", "banner", banner)

	login := fmt.Sprintf("user %s pass %d vers %s %s", c.callsign, c.passcode, softwareName, softwareVers)
	if err := c.SendAll(login); err != nil {
		conn.Close()
		return fmt.Errorf("aprs: sending login: %w", err)
	}

	resp, err := c.readLine()
	if err != nil {
		conn.Close()
		return fmt.Errorf("aprs: reading login response: %w", err)
	}
	if err := checkLogin(resp, c.passcode); err != nil {
		conn.Close()
		return err
	}
	_ = conn.SetDeadline(time.Time{})

	c.logger.Info("logged in", "addr", c.addr, "callsign", c.callsign)
	return nil
}

// checkLogin parses "# logresp CALL verified, server T2XYZ". An unverified
// session is only acceptable for the receive-only passcode -1.
func checkLogin(resp string, passcode int) error {
	fields := strings.Fields(resp)
	if len(fields) < 4 || fields[1] != "logresp" {
		return &LoginError{Response: resp}
	}
	switch strings.TrimSuffix(fields[3], ",") {
	case "verified":
		return nil
	case "unverified":
		if passcode == -1 {
			return nil
		}
	}
	return &LoginError{Response: resp}
}

// SendAll transmits one raw outbound line.
func (c *Client) SendAll(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("aprs: not connected")
	}
	_, err := c.conn.Write([]byte(line + "\r\n"))
	return err
}

// Consumer blocks delivering decoded packets to handler in arrival order.
// Server comment lines and unparsable packets are dropped at debug level so
// one bad line never ends the stream; only a dead session does, and that
// surfaces as the returned error.
func (c *Client) Consumer(handler func(*Record)) error {
	for {
		line, err := c.readLine()
		if err != nil {
			return fmt.Errorf("aprs: feed read: %w", err)
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rec, err := ParsePacket(line)
		if err != nil {
			observability.ParseErrors.Inc()
			c.logger.Debug("dropping unparsable line", "line", line, "err", err)
			continue
		}
		handler(rec)
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) readLine() (string, error) {
	line, err := c.r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
