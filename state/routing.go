package state

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

type NodeId string

// Metric is a link cost or a route distance
type Metric uint32

// NeighbourLink is a directly connected node. Links are loaded once and never mutated.
type NeighbourLink struct {
	Id   NodeId
	Cost Metric
	Port uint16
}

func (n NeighbourLink) String() string {
	return fmt.Sprintf("%s (cost: %d, port: %d)", n.Id, n.Cost, n.Port)
}

// RouteEntry is the best known route to Dest. Port is the address of NextHop, not of Dest.
type RouteEntry struct {
	Dest     NodeId
	NextHop  NodeId
	Distance Metric
	Port     uint16
}

func (r RouteEntry) String() string {
	return fmt.Sprintf("(nh: %s, dist: %d, port: %d)", r.NextHop, r.Distance, r.Port)
}

// RouteTable maps a destination to its selected route
type RouteTable map[NodeId]RouteEntry

// IncomingVector is a table advertised by a neighbour, consumed by a single merge
type IncomingVector struct {
	Sender     NodeId
	SenderPort uint16
	Entries    []RouteEntry
}

// NewRouteTable seeds a table with one direct route per neighbour
func NewRouteTable(neighs []NeighbourLink) RouteTable {
	t := make(RouteTable, len(neighs))
	for _, n := range neighs {
		t[n.Id] = RouteEntry{
			Dest:     n.Id,
			NextHop:  n.Id,
			Distance: n.Cost,
			Port:     n.Port,
		}
	}
	return t
}

// Entries returns the table sorted by destination
func (t RouteTable) Entries() []RouteEntry {
	out := make([]RouteEntry, 0, len(t))
	for _, dst := range slices.Sorted(maps.Keys(t)) {
		out = append(out, t[dst])
	}
	return out
}

func (t RouteTable) Clone() RouteTable {
	return maps.Clone(t)
}

func (t RouteTable) String() string {
	rt := make([]string, 0, len(t))
	for _, e := range t.Entries() {
		rt = append(rt, fmt.Sprintf("%s via %s", e.Dest, e))
	}
	return strings.Join(rt, "\n")
}

func FindNeighbour(neighs []NeighbourLink, id NodeId) *NeighbourLink {
	idx := slices.IndexFunc(neighs, func(n NeighbourLink) bool {
		return n.Id == id
	})
	if idx == -1 {
		return nil
	}
	return &neighs[idx]
}

// AddMetric saturates at INFM so that long paths never wrap around
func AddMetric(a, b Metric) Metric {
	if a == INF || b == INF {
		return INF
	}
	return Metric(min(uint64(INFM), uint64(a)+uint64(b)))
}
