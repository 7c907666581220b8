package main

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/digineo/ipsockets/ip"
	"github.com/digineo/ipsockets/socket"
)

func runApp(ctx context.Context, args ...string) (string, error) {
	var out bytes.Buffer
	app := createApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(ctx, append([]string{"ipsock"}, args...))
	return out.String(), err
}

func TestCommands(t *testing.T) {
	tests := []struct {
		args []string
		out  string
	}{
		{[]string{"ipv4", "127.1"}, "127.0.0.1\t2130706433\n"},
		{[]string{"ipv4", "0xc0a80102"}, "192.168.1.2\t3232235778\n"},
		{[]string{"ipv6", "2001:db8:0:0:0:0:0:1"}, "2001:db8::1\n"},
		{[]string{"ipv6", "--full", "::1"}, "0:0:0:0:0:0:0:1\n"},
		{[]string{"ipv6", "--embed", "64:ff9b::c000:201"}, "64:ff9b::192.0.2.1\n"},
		{[]string{"ipv6", "10.0.0.1"}, "::ffff:10.0.0.1\n"},
		{[]string{"addr", "10.0.0.1:80"}, "10.0.0.1:80\t0a0000010050\n"},
		{[]string{"addr", "[::1]:443"}, "[::1]:443\t0000000000000000000000000000000101bb\n"},
		{[]string{"mask", "20"}, "255.255.240.0\n"},
		{[]string{"mask", "--v6", "33"}, "ffff:ffff:8000::\n"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := runApp(context.Background(), tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.out, out)
		})
	}
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		args []string
		code int
	}{
		{[]string{"ipv4", "1.2.3.4.5"}, 2},
		{[]string{"ipv4"}, 2},
		{[]string{"ipv6", "1:::2"}, 2},
		{[]string{"addr", "::1:80"}, 2},
		{[]string{"mask", "33"}, 2},
		{[]string{"mask", "--v6", "x"}, 2},
		{[]string{"send", "127.0.0.1:7"}, 2},
		{[]string{"send", "--network", "sctp", "127.0.0.1:7", "hi"}, 2},
		{[]string{"--log-level", "loud", "send", "127.0.0.1:7", "hi"}, 2},
		{[]string{"serve", "--listen", "localhost:80"}, 2},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			_, err := runApp(context.Background(), tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, exitCode(err))
		})
	}
}

func TestExitCode(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(1, exitCode(errors.New("boom")))
	assert.Equal(1, exitCode(socket.ErrTimeout))
	assert.Equal(2, exitCode(errors.Wrap(ip.ErrMalformedInput, "x")))
	assert.Equal(3, exitCode(cli.Exit("custom", 3)))
}

func TestSend(t *testing.T) {
	opts := socket.Options{Timeout: 50 * time.Millisecond, LogLevel: socket.LogNone}

	for _, network := range []string{"udp", "tcp"} {
		t.Run(network, func(t *testing.T) {
			srv, err := socket.NewServer(network, freePort(t, network), opts)
			require.NoError(t, err)
			defer srv.Close()

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- srv.Serve(ctx) }()

			out, err := runApp(context.Background(),
				"--log-level", "none",
				"send", "--network", network, srv.LocalAddr(), "hello")
			require.NoError(t, err)
			assert.Equal(t, "hello\n", out)

			cancel()
			select {
			case err := <-done:
				assert.NoError(t, err)
			case <-time.After(2 * time.Second):
				t.Fatal("Serve did not return")
			}
		})
	}
}

func TestSendUnreachable(t *testing.T) {
	_, err := runApp(context.Background(),
		"--timeout", "50ms", "--log-level", "none",
		"send", "--network", "tcp", freePort(t, "tcp"), "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, socket.ErrOpenFailed)
	assert.Equal(t, 1, exitCode(err))
}

func TestServe(t *testing.T) {
	listen := freePort(t, "udp")
	fname := filepath.Join(t.TempDir(), "ipsock.json")
	require.NoError(t, os.WriteFile(fname, []byte(`{"listen": "`+listen+`", "log_level": "none"}`), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := runApp(ctx, "--timeout", "50ms", "serve", "--config", fname)
		done <- err
	}()

	opts := socket.Options{Timeout: 100 * time.Millisecond, LogLevel: socket.LogNone}
	addr := ip.MustParseAddrV4(listen)
	var reply []byte
	require.Eventually(t, func() bool {
		r, err := exchangeUDP(addr, []byte("ping"), opts)
		if err != nil {
			return false
		}
		reply = r
		return true
	}, 2*time.Second, 20*time.Millisecond, "echo server did not answer")
	assert.Equal(t, "ping", string(reply))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not return")
	}
}

// freePort returns a loopback address with a port that was free a moment ago.
func freePort(t *testing.T, network string) string {
	t.Helper()
	var addr net.Addr
	switch network {
	case "udp":
		pc, err := net.ListenPacket("udp4", "127.0.0.1:0")
		require.NoError(t, err)
		addr = pc.LocalAddr()
		pc.Close()
	default:
		ln, err := net.Listen("tcp4", "127.0.0.1:0")
		require.NoError(t, err)
		addr = ln.Addr()
		ln.Close()
	}
	return addr.String()
}
