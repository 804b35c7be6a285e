//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/encodeous/dvroute/core"
	"github.com/encodeous/dvroute/protocol"
	"github.com/encodeous/dvroute/sim"
	"github.com/encodeous/dvroute/state"
	"github.com/stretchr/testify/require"
)

type Signal chan bool

func NewSignal() Signal {
	return make(chan bool)
}
func (s Signal) Trigger() {
	select {
	case <-s:
	default:
		close(s)
	}
}
func (s Signal) Triggered() bool {
	select {
	case <-s:
		return true
	default:
		return false
	}
}

// freeBasePort finds count consecutive free udp ports and returns the port before them
func freeBasePort(t *testing.T, count int) uint16 {
	t.Helper()
	for range 20 {
		probe, err := core.ListenUdp(state.DefaultHost, 0)
		require.NoError(t, err)
		base := probe.LocalPort()
		_ = probe.Close()
		if int(base)+count >= 65535 {
			continue
		}
		ok := true
		for i := 1; i <= count; i++ {
			tr, err := core.ListenUdp(state.DefaultHost, base+uint16(i))
			if err != nil {
				ok = false
				break
			}
			_ = tr.Close()
		}
		if ok {
			return base
		}
	}
	t.Fatal("no free port range")
	return 0
}

// UdpHarness runs a sim.Network over real sockets on the loopback interface
type UdpHarness struct {
	Net *sim.Network
	Ctl *core.UdpTransport
	Ctx context.Context
}

func NewUdpHarness(t *testing.T, cfg *state.NetCfg) *UdpHarness {
	t.Helper()
	cfg.BasePort = freeBasePort(t, len(cfg.Routers))
	cfg.RoundDelay = 50 * time.Millisecond
	n, err := sim.NewNetwork(cfg, t.TempDir())
	require.NoError(t, err)
	n.PacketDelay = 100 * time.Millisecond

	ctl, err := core.ListenUdp(state.DefaultHost, 0)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	t.Cleanup(func() {
		cancel()
		_ = ctl.Close()
	})
	require.NoError(t, n.Start(ctx))
	return &UdpHarness{Net: n, Ctl: ctl, Ctx: ctx}
}

func (h *UdpHarness) Send(t *testing.T, id state.NodeId, msg protocol.Message) {
	t.Helper()
	port, err := h.Net.Cfg.PortOf(id)
	require.NoError(t, err)
	data, err := protocol.Encode(msg)
	require.NoError(t, err)
	require.NoError(t, h.Ctl.Send(port, data))
}
