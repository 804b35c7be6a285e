package core

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"testing"

	"github.com/encodeous/dvroute/state"
	"github.com/stretchr/testify/require"
)

type HarnessRecord struct {
	Level slog.Level
	Msg   string
	Attrs map[string]any
}

// RecordingHandler keeps every record so tests can inspect what a router logged
type RecordingHandler struct {
	mu      *sync.Mutex
	records *[]HarnessRecord
	attrs   []slog.Attr
}

func NewRecordingHandler() *RecordingHandler {
	return &RecordingHandler{
		mu:      &sync.Mutex{},
		records: &[]HarnessRecord{},
	}
}

func (h *RecordingHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

func (h *RecordingHandler) Handle(_ context.Context, r slog.Record) error {
	rec := HarnessRecord{
		Level: r.Level,
		Msg:   r.Message,
		Attrs: make(map[string]any),
	}
	for _, a := range h.attrs {
		rec.Attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		rec.Attrs[a.Key] = a.Value.Any()
		return true
	})
	h.mu.Lock()
	*h.records = append(*h.records, rec)
	h.mu.Unlock()
	return nil
}

func (h *RecordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &RecordingHandler{
		mu:      h.mu,
		records: h.records,
		attrs:   append(slices.Clone(h.attrs), attrs...),
	}
}

func (h *RecordingHandler) WithGroup(string) slog.Handler {
	return h
}

func (h *RecordingHandler) Records() []HarnessRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(*h.records)
}

// Events lists the event attribute of every record that has one
func (h *RecordingHandler) Events() []string {
	out := make([]string, 0)
	for _, r := range h.Records() {
		if ev, ok := r.Attrs["event"]; ok {
			out = append(out, ev.(string))
		}
	}
	return out
}

type TestNode struct {
	*Router
	Rec *RecordingHandler
}

// NewTestNetwork creates one router per entry of cfg on an in-memory network
func NewTestNetwork(t *testing.T, vn *InmemNetwork, cfg *state.NetCfg) map[state.NodeId]*TestNode {
	t.Helper()
	state.ExpandNetConfig(cfg)
	require.NoError(t, state.NetConfigValidator(cfg))
	nodes := make(map[state.NodeId]*TestNode)
	for _, rt := range cfg.Routers {
		port, err := cfg.PortOf(rt.Id)
		require.NoError(t, err)
		neighs, err := cfg.Neighbours(rt.Id)
		require.NoError(t, err)
		tr, err := vn.Listen(port)
		require.NoError(t, err)
		rec := NewRecordingHandler()
		nodes[rt.Id] = &TestNode{
			Router: NewRouter(rt.Id, neighs, tr, NewEventLog(slog.New(rec))),
			Rec:    rec,
		}
	}
	return nodes
}

// Pump dispatches queued datagrams on every node until the network is quiet
func Pump(nodes map[state.NodeId]*TestNode) int {
	handled := 0
	for {
		progress := false
		for _, id := range slices.Sorted(maps.Keys(nodes)) {
			n := nodes[id]
			tr := n.Transport.(*InmemTransport)
			for {
				var data []byte
				select {
				case data = <-tr.inbox:
				default:
				}
				if data == nil {
					break
				}
				n.Dispatch(data)
				handled++
				progress = true
			}
		}
		if !progress {
			return handled
		}
	}
}

// ControlPort opens a transport used to inject commands
func ControlPort(t *testing.T, vn *InmemNetwork) *InmemTransport {
	t.Helper()
	ctl, err := vn.Listen(0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctl.Close() })
	return ctl
}

// shortestPaths is a reference Floyd-Warshall over the configured links
func shortestPaths(cfg *state.NetCfg) map[state.NodeId]map[state.NodeId]state.Metric {
	dist := make(map[state.NodeId]map[state.NodeId]state.Metric)
	for _, a := range cfg.Routers {
		dist[a.Id] = make(map[state.NodeId]state.Metric)
		for _, b := range cfg.Routers {
			dist[a.Id][b.Id] = state.INF
		}
		dist[a.Id][a.Id] = 0
		for _, l := range a.Links {
			dist[a.Id][l.Id] = min(dist[a.Id][l.Id], l.Cost)
		}
	}
	for _, k := range cfg.Routers {
		for _, i := range cfg.Routers {
			for _, j := range cfg.Routers {
				if d := state.AddMetric(dist[i.Id][k.Id], dist[k.Id][j.Id]); d < dist[i.Id][j.Id] {
					dist[i.Id][j.Id] = d
				}
			}
		}
	}
	return dist
}
