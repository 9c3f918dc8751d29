package aprs

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCheckLogin(t *testing.T) {
	for _, tt := range []struct {
		resp     string
		passcode int
		wantErr  bool
	}{
		{"# logresp N0CALL verified, server T2TEST", 13023, false},
		{"# logresp N0CALL unverified, server T2TEST", 13023, true},
		{"# logresp N0CALL unverified, server T2TEST", -1, false},
		{"# Port full", 13023, true},
		{"", 13023, true},
	} {
		err := checkLogin(tt.resp, tt.passcode)
		if tt.wantErr {
			var loginErr *LoginError
			require.ErrorAs(t, err, &loginErr, "response %q", tt.resp)
		} else {
			require.NoError(t, err, "response %q", tt.resp)
		}
	}
}

func TestClientLoginAndConsume(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		fmt.Fprint(conn, "# aprsc 2.1.15\r\n")
		login, _ := bufio.NewReader(conn).ReadString('\n')
		if !strings.HasPrefix(login, "user N0CALL pass 13023 vers aprs2influxdb") {
			fmt.Fprint(conn, "# logresp N0CALL unverified, server T2TEST\r\n")
			return
		}
		fmt.Fprint(conn, "# logresp N0CALL verified, server T2TEST\r\n")
		fmt.Fprint(conn, "# javAPRSSrvr heartbeat comment\r\n")
		fmt.Fprint(conn, "N0CALL>APRS,TCPIP*:=4903.50N/07201.75W-hello\r\n")
		fmt.Fprint(conn, "not an aprs packet\r\n")
		fmt.Fprint(conn, "N0CALL>APRS,TCPIP*:>status only\r\n")
	}()

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)

	c := NewClient(host, port, "N0CALL", Passcode("N0CALL"), discardLogger())
	require.NoError(t, c.Connect())
	defer c.Close()

	var got []*Record
	err = c.Consumer(func(rec *Record) { got = append(got, rec) })
	require.Error(t, err) // server hangup ends the stream

	require.Len(t, got, 2)
	require.Equal(t, "uncompressed", got[0].Format)
	require.Equal(t, "N0CALL", *got[0].From)
	require.Equal(t, "hello", *got[0].Comment)
	require.Equal(t, "status", got[1].Format)
}

func TestClientLoginRejected(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		fmt.Fprint(conn, "# aprsc 2.1.15\r\n")
		_, _ = bufio.NewReader(conn).ReadString('\n')
		fmt.Fprint(conn, "# logresp BADCALL unverified, server T2TEST\r\n")
	}()

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)

	c := NewClient(host, port, "BADCALL", 12345, discardLogger())
	err = c.Connect()
	var loginErr *LoginError
	require.ErrorAs(t, err, &loginErr)
}

func TestClientSendAllNotConnected(t *testing.T) {
	c := NewClient("localhost", "10152", "N0CALL", 13023, discardLogger())
	require.Error(t, c.SendAll("N0CALL>APRS,TCPIP*:>test"))
}
