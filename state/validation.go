package state

import (
	"fmt"
	"math"
	"regexp"
	"slices"
)

var namePattern, _ = regexp.Compile("^[0-9A-Za-z._-]+$")

func NameValidator(s string) error {
	if !namePattern.MatchString(s) {
		return fmt.Errorf("%s is not a valid name, must match pattern %s", s, namePattern.String())
	}
	if len(s) > 100 {
		return fmt.Errorf("len(\"%s\") = %d > 100 is too long", s, len(s))
	}
	return nil
}

func NodeConfigValidator(node *LocalCfg) error {
	err := NameValidator(string(node.Id))
	if err != nil {
		return err
	}
	if node.Port == 0 {
		return fmt.Errorf("node.Port must not be 0")
	}
	if node.NeighbourPath == "" {
		return fmt.Errorf("node.NeighbourPath must be set")
	}
	return nil
}

// NeighboursValidator rejects a registry that would give self a route to itself
func NeighboursValidator(self NodeId, neighs []NeighbourLink) error {
	if FindNeighbour(neighs, self) != nil {
		return fmt.Errorf("node %s lists itself as a neighbour", self)
	}
	return nil
}

func NetConfigValidator(cfg *NetCfg) error {
	if len(cfg.Routers) == 0 {
		return fmt.Errorf("network has no routers")
	}
	if int(cfg.BasePort)+len(cfg.Routers) > math.MaxUint16 {
		return fmt.Errorf("base_port %d leaves no room for %d routers", cfg.BasePort, len(cfg.Routers))
	}
	if cfg.Rounds < 0 {
		return fmt.Errorf("rounds must not be negative")
	}
	seen := make([]NodeId, 0, len(cfg.Routers))
	for _, rt := range cfg.Routers {
		if err := NameValidator(string(rt.Id)); err != nil {
			return err
		}
		if slices.Contains(seen, rt.Id) {
			return fmt.Errorf("duplicate router: %s", rt.Id)
		}
		seen = append(seen, rt.Id)
	}
	for _, rt := range cfg.Routers {
		links := make([]NodeId, 0, len(rt.Links))
		for _, l := range rt.Links {
			if l.Id == rt.Id {
				return fmt.Errorf("router %s links to itself", rt.Id)
			}
			if !cfg.IsRouter(l.Id) {
				return fmt.Errorf("router %s links to undefined router %s", rt.Id, l.Id)
			}
			if slices.Contains(links, l.Id) {
				return fmt.Errorf("duplicate link: %s, %s", rt.Id, l.Id)
			}
			if l.Cost == INF {
				return fmt.Errorf("link %s, %s has a reserved cost", rt.Id, l.Id)
			}
			links = append(links, l.Id)
		}
	}
	for _, p := range cfg.Packets {
		if !cfg.IsRouter(p.From) {
			return fmt.Errorf("packet source %s is not a router", p.From)
		}
		if !cfg.IsRouter(p.To) {
			return fmt.Errorf("packet destination %s is not a router", p.To)
		}
	}
	return nil
}
