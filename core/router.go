package core

import (
	"github.com/encodeous/dvroute/perf"
	"github.com/encodeous/dvroute/protocol"
	"github.com/encodeous/dvroute/state"
	"github.com/jellydator/ttlcache/v3"
)

type RouterStatus int

const (
	Running RouterStatus = iota
	Terminated
)

func (s RouterStatus) String() string {
	if s == Terminated {
		return "terminated"
	}
	return "running"
}

// Router is a single distance-vector node. It must only be used from one goroutine.
type Router struct {
	Id   state.NodeId
	Port uint16
	// Neighbours is the static neighbour registry
	Neighbours []state.NeighbourLink
	Table      state.RouteTable
	Transport  Transport
	Log        *EventLog
	Status     RouterStatus
	// destinations that were recently reported as unreachable
	noRoute *ttlcache.Cache[state.NodeId, struct{}]
}

func NewRouter(id state.NodeId, neighs []state.NeighbourLink, transport Transport, log *EventLog) *Router {
	return &Router{
		Id:         id,
		Port:       transport.LocalPort(),
		Neighbours: neighs,
		Table:      state.NewRouteTable(neighs),
		Transport:  transport,
		Log:        log,
		Status:     Running,
		noRoute: ttlcache.New[state.NodeId, struct{}](
			ttlcache.WithTTL[state.NodeId, struct{}](state.NoRouteWarnTTL),
			ttlcache.WithDisableTouchOnHit[state.NodeId, struct{}](),
		),
	}
}

// Dispatch handles a single datagram. Nothing is handled once the router has terminated.
func (r *Router) Dispatch(data []byte) {
	if r.Status == Terminated {
		return
	}
	perf.RecvPacketPerSecond.Add(1)
	perf.RecvBytesPerSecond.Add(float64(len(data)))

	msg, err := protocol.Decode(data)
	if err != nil {
		perf.IgnoredMsgsPerSecond.Add(1)
		r.Log.Record(MessageIgnored, "ignored message", "len", len(data), "err", err)
		return
	}
	switch m := msg.(type) {
	case *protocol.UpdateTable:
		if m.Rejected > 0 {
			r.Log.Record(MessageIgnored, "skipped malformed entries", "from", m.RouterName, "count", m.Rejected)
		}
		r.Merge(m.Vector())
	case *protocol.SendTable:
		r.Broadcast()
	case *protocol.DataPacket:
		// failures are recorded by Forward
		_ = r.Forward(m)
	case *protocol.Exit:
		r.Log.Record(Shutdown, "received exit command")
		r.Stop()
	}
}

// Merge relaxes the route table against a vector advertised by vec.Sender
func (r *Router) Merge(vec state.IncomingVector) []RouteChange {
	via := state.FindNeighbour(r.Neighbours, vec.Sender)
	if via == nil {
		r.Log.Record(UnknownSender, "merging vector from a non-neighbour as advertised", "from", vec.Sender, "port", vec.SenderPort)
	}
	changes := Relax(r.Id, r.Table, via, vec)
	perf.TableUpdatesPerSec.Add(1)
	for _, c := range changes {
		r.Log.Logger().Debug(c.String())
	}
	r.Log.Record(TableUpdated, "updated table", "from", vec.Sender, "changes", len(changes), "table", r.Table.String())
	return changes
}

// Stop moves the router to Terminated and closes its transport
func (r *Router) Stop() {
	if r.Status == Terminated {
		return
	}
	r.Status = Terminated
	err := r.Transport.Close()
	if err != nil {
		r.Log.Logger().Error("error occurred while closing transport", "error", err)
	}
	r.noRoute.DeleteAll()
}
