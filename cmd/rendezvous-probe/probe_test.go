package main

import (
	"context"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-rendezvous/internal/transport/udp"
)

// fakeServer 在收到第 answerAfter 个请求后回复
func fakeServer(t *testing.T, answerAfter int, resp udp.Response) *net.UDPConn {
	t.Helper()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	go func() {
		buf := make([]byte, 512)
		seen := 0
		for {
			_, src, err := conn.ReadFromUDPAddrPort(buf)
			if err != nil {
				return
			}
			seen++
			if seen < answerAfter {
				continue
			}
			noise := udp.Response{Identifier: "other", Peer: resp.Peer}
			data, _ := udp.JSONCodec{}.Encode(noise)
			_, _ = conn.WriteToUDPAddrPort(data, src)
			data, _ = udp.JSONCodec{}.Encode(resp)
			_, _ = conn.WriteToUDPAddrPort(data, src)
		}
	}()
	return conn
}

func dialServer(t *testing.T, server *net.UDPConn) *net.UDPConn {
	t.Helper()
	conn, err := net.DialUDP("udp", nil, server.LocalAddr().(*net.UDPAddr))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestProbe_RetriesUntilAnswer(t *testing.T) {
	want := udp.Response{
		Identifier: "room-42",
		Peer:       netip.MustParseAddrPort("198.51.100.7:51000"),
		Session:    "s-1",
	}
	server := fakeServer(t, 3, want)
	conn := dialServer(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := probe(ctx, conn, "room-42", 50*time.Millisecond, udp.JSONCodec{})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestProbe_Timeout(t *testing.T) {
	server := fakeServer(t, 1000, udp.Response{})
	conn := dialServer(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	_, err := probe(ctx, conn, "nobody", 40*time.Millisecond, udp.JSONCodec{})
	assert.ErrorIs(t, err, errTimeout)
}
