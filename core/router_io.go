package core

import (
	"errors"
	"log/slog"

	"github.com/encodeous/dvroute/perf"
	"github.com/encodeous/dvroute/protocol"
	"github.com/encodeous/dvroute/state"
	"github.com/jellydator/ttlcache/v3"
)

var ErrNoRoute = errors.New("no route to destination")

func (r *Router) send(port uint16, data []byte) error {
	err := r.Transport.Send(port, data)
	if err != nil {
		return err
	}
	perf.SentPacketPerSecond.Add(1)
	perf.SentBytesPerSecond.Add(float64(len(data)))
	return nil
}

// Broadcast sends the full route table to every neighbour
func (r *Router) Broadcast() {
	data, err := protocol.Encode(protocol.NewUpdateTable(r.Id, r.Port, r.Table))
	if err != nil {
		r.Log.Record(SendFailed, "failed to encode table", "err", err)
		return
	}
	if len(data) > state.MaxDatagramSize {
		r.Log.Record(SendFailed, "table does not fit in a datagram", "bytes", len(data))
		return
	}
	sent := 0
	for _, neigh := range r.Neighbours {
		err = r.send(neigh.Port, data)
		if err != nil {
			r.Log.Record(SendFailed, "failed to send table", "to", neigh.Id, "err", err)
			continue
		}
		sent++
	}
	r.Log.Record(BroadcastSent, "sent table", "neighbours", sent, "bytes", len(data))
}

// Forward delivers pkt locally or relays it unchanged to the next hop
func (r *Router) Forward(pkt *protocol.DataPacket) error {
	if pkt.Destination == r.Id {
		perf.DeliveredPerSecond.Add(1)
		r.Log.Record(PacketDelivered, "received message", "msg", pkt.Msg, "from", pkt.Source)
		return nil
	}
	route, ok := r.Table[pkt.Destination]
	if !ok {
		perf.DroppedPerSecond.Add(1)
		r.reportNoRoute(pkt)
		return ErrNoRoute
	}
	data, err := protocol.Encode(pkt)
	if err == nil {
		err = r.send(route.Port, data)
	}
	if err != nil {
		perf.DroppedPerSecond.Add(1)
		r.Log.Record(SendFailed, "failed to forward message", "nh", route.NextHop, "from", pkt.Source, "to", pkt.Destination, "err", err)
		return err
	}
	perf.ForwardedPerSecond.Add(1)
	r.Log.Record(PacketForwarded, "forwarded message", "nh", route.NextHop, "from", pkt.Source, "to", pkt.Destination)
	return nil
}

func (r *Router) reportNoRoute(pkt *protocol.DataPacket) {
	r.noRoute.DeleteExpired()
	level := slog.LevelWarn
	if r.noRoute.Has(pkt.Destination) {
		level = slog.LevelDebug
	} else {
		r.noRoute.Set(pkt.Destination, struct{}{}, ttlcache.DefaultTTL)
	}
	r.Log.RecordLevel(level, NoRouteToDest, "dropped message, no route to destination", "from", pkt.Source, "to", pkt.Destination)
}
