package addrutil

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddrType(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{"127.0.0.1", TypeLoopback},
		{"::1", TypeLoopback},
		{"10.1.2.3", TypePrivate},
		{"172.16.0.9", TypePrivate},
		{"192.168.1.1", TypePrivate},
		{"fd00::1", TypePrivate},
		{"fe80::1", TypePrivate},
		{"203.0.113.10", TypePublic},
		{"2001:db8::1", TypePublic},
		{"::ffff:8.8.8.8", TypePublic},
		{"::ffff:192.168.0.1", TypePrivate},
		{"0.0.0.0", TypeUnspecified},
		{"::", TypeUnspecified},
		{"224.0.0.1", TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			assert.Equal(t, tt.want, AddrType(netip.MustParseAddr(tt.addr)))
		})
	}

	assert.Equal(t, TypeUnknown, AddrType(netip.Addr{}))
}

func TestSameHost(t *testing.T) {
	a := netip.MustParseAddrPort("203.0.113.10:40000")
	b := netip.MustParseAddrPort("203.0.113.10:40001")
	c := netip.MustParseAddrPort("198.51.100.7:40000")
	mapped := netip.MustParseAddrPort("[::ffff:203.0.113.10]:5000")

	assert.True(t, SameHost(a, b))
	assert.True(t, SameHost(a, mapped))
	assert.False(t, SameHost(a, c))
}
