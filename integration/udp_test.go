//go:build integration

package integration

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/encodeous/dvroute/protocol"
	"github.com/encodeous/dvroute/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUdpDelivery(t *testing.T) {
	cfg, err := state.ReadNetConfig("../sim/testdata/six.yaml")
	require.NoError(t, err)
	h := NewUdpHarness(t, cfg)

	require.NoError(t, h.Net.Converge(h.Ctx))

	delivered := NewSignal()
	go func() {
		for {
			data, _ := os.ReadFile(h.Net.LogPath("C"))
			if strings.Contains(string(data), "Hello over udp") {
				delivered.Trigger()
				return
			}
			select {
			case <-h.Ctx.Done():
				return
			case <-time.After(50 * time.Millisecond):
			}
		}
	}()

	// datagrams can be lost, keep sending until the packet arrives
	for !delivered.Triggered() {
		h.Send(t, "F", &protocol.DataPacket{Source: "F", Destination: "C", Msg: "Hello over udp"})
		select {
		case <-delivered:
		case <-h.Ctx.Done():
			t.Fatal("packet was never delivered")
		case <-time.After(200 * time.Millisecond):
		}
	}

	require.NoError(t, h.Net.Shutdown(h.Ctx))
	for _, r := range h.Net.Routers() {
		assert.NotContains(t, r.Table, r.Id)
	}
	assert.Equal(t, state.Metric(3), h.Net.Routers()["F"].Table["C"].Distance)
}
