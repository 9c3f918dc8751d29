package storage

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const writeTimeout = 10 * time.Second

// ClientError is a write the InfluxDB server refused, as opposed to a
// transport failure reaching it.
type ClientError struct {
	Status int
	Body   string
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("influxdb: status %d: %s", e.Status, e.Body)
}

// Client writes line-protocol points to one InfluxDB v1 database. It is
// built once and shared by the consumer for the life of the process.
type Client struct {
	writeURL string
	user     string
	password string
	http     *http.Client
}

func NewClient(host, port, user, password, database string) *Client {
	u := url.URL{
		Scheme:   "http",
		Host:     net.JoinHostPort(host, port),
		Path:     "/write",
		RawQuery: url.Values{"db": {database}}.Encode(),
	}
	return &Client{
		writeURL: u.String(),
		user:     user,
		password: password,
		http:     &http.Client{Timeout: writeTimeout},
	}
}

// Write inserts one or more line-protocol lines.
func (c *Client) Write(ctx context.Context, lines []string) error {
	body := strings.NewReader(strings.Join(lines, "\n"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.writeURL, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.user, c.password)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("influxdb: write: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &ClientError{Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	return nil
}
