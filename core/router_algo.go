package core

import (
	"fmt"

	"github.com/encodeous/dvroute/state"
)

// RouteChange describes one mutation of the route table
type RouteChange struct {
	Event RouterEvent
	Old   state.RouteEntry
	New   state.RouteEntry
}

func (c RouteChange) String() string {
	if c.Event == RouteAdded {
		return fmt.Sprintf("%s %s %s", c.Event, c.New.Dest, c.New)
	}
	return fmt.Sprintf("%s %s %s -> %s", c.Event, c.New.Dest, c.Old, c.New)
}

// Relax merges vec into table. Each advertised entry becomes a candidate route through via:
//   - routes to self are discarded
//   - an unknown destination is inserted
//   - a route with the same next hop takes the candidate distance, even if it is worse
//   - a route with another next hop is replaced only by a strictly shorter candidate
//
// Entries are never removed. When via is nil, the sender is not a neighbour and entries
// are merged as advertised.
func Relax(self state.NodeId, table state.RouteTable, via *state.NeighbourLink, vec state.IncomingVector) []RouteChange {
	changes := make([]RouteChange, 0)
	for _, entry := range vec.Entries {
		cand := entry
		if via != nil {
			cand.NextHop = via.Id
			cand.Port = via.Port
			cand.Distance = state.AddMetric(entry.Distance, via.Cost)
		}
		if cand.Dest == self {
			continue
		}
		old, ok := table[cand.Dest]
		switch {
		case !ok:
			table[cand.Dest] = cand
			changes = append(changes, RouteChange{Event: RouteAdded, New: cand})
		case old.NextHop == cand.NextHop:
			if old.Distance == cand.Distance {
				continue
			}
			upd := old
			upd.Distance = cand.Distance
			table[cand.Dest] = upd
			changes = append(changes, RouteChange{Event: RouteRefreshed, Old: old, New: upd})
		case cand.Distance < old.Distance:
			// ties keep the route that was seen first
			table[cand.Dest] = cand
			changes = append(changes, RouteChange{Event: RouteImproved, Old: old, New: cand})
		}
	}
	return changes
}
