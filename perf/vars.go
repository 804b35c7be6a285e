package perf

import (
	"expvar"
	"net/http"

	"github.com/encodeous/metric"
)

var (
	DispatchLatency      = metric.NewHistogram("1m1s")
	RecvPacketPerSecond  = metric.NewCounter("10s1s")
	SentPacketPerSecond  = metric.NewCounter("10s1s")
	RecvBytesPerSecond   = metric.NewCounter("10s1s")
	SentBytesPerSecond   = metric.NewCounter("10s1s")
	TableUpdatesPerSec   = metric.NewCounter("10s1s")
	ForwardedPerSecond   = metric.NewCounter("10s1s")
	DeliveredPerSecond   = metric.NewCounter("10s1s")
	DroppedPerSecond     = metric.NewCounter("10s1s")
	IgnoredMsgsPerSecond = metric.NewCounter("10s1s")
)

func init() {
	http.Handle("/debug/metrics", metric.Handler(metric.Exposed))
	expvar.Publish("dvroute:RecvPacket/s", RecvPacketPerSecond)
	expvar.Publish("dvroute:SentPacket/s", SentPacketPerSecond)
	expvar.Publish("dvroute:RecvBytes/s", RecvBytesPerSecond)
	expvar.Publish("dvroute:SentBytes/s", SentBytesPerSecond)
	expvar.Publish("dvroute:TableUpdates/s", TableUpdatesPerSec)
	expvar.Publish("dvroute:Forwarded/s", ForwardedPerSecond)
	expvar.Publish("dvroute:Delivered/s", DeliveredPerSecond)
	expvar.Publish("dvroute:Dropped/s", DroppedPerSecond)
	expvar.Publish("dvroute:Ignored/s", IgnoredMsgsPerSecond)
	expvar.Publish("dvroute:DispatchLatency (µs)", DispatchLatency)
}
