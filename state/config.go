package state

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/goccy/go-yaml"
)

// LocalCfg represents the configuration of a single router process
type LocalCfg struct {
	Id            NodeId // unique id for this node
	Port          uint16 // port the node listens on
	NeighbourPath string `yaml:"neighbour_path"`     // path of the neighbour file
	Host          string `yaml:"host,omitempty"`     // host every port is resolved against, defaults to DefaultHost
	LogPath       string `yaml:"log_path,omitempty"` // if not empty, records are also appended to this file
}

type LinkCfg struct {
	Id   NodeId
	Cost Metric
}

// RouterCfg is a node in the simulated network and its outgoing links
type RouterCfg struct {
	Id    NodeId
	Links []LinkCfg `yaml:",omitempty"`
}

// PacketCfg is a data packet injected at From once the network has converged
type PacketCfg struct {
	From NodeId
	To   NodeId
	Msg  string
}

// NetCfg describes a whole simulated network. Router i listens on BasePort + i + 1.
type NetCfg struct {
	Host        string        `yaml:"host,omitempty"`
	BasePort    uint16        `yaml:"base_port"`
	Rounds      int           `yaml:"rounds,omitempty"`       // number of send_table rounds
	RoundDelay  time.Duration `yaml:"round_delay,omitempty"`  // pause after each round
	SettleDelay time.Duration `yaml:"settle_delay,omitempty"` // pause before packets are injected
	Routers     []RouterCfg
	Packets     []PacketCfg `yaml:",omitempty"`
}

func ExpandLocalConfig(cfg *LocalCfg) {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
}

// DefaultLogPath is where a node writes its records when no path is configured
func DefaultLogPath(dir string, id NodeId) string {
	return filepath.Join(dir, fmt.Sprintf("%s_log.txt", id))
}

// ExpandNetConfig fills in defaults for unset fields
func ExpandNetConfig(cfg *NetCfg) {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.BasePort == 0 {
		cfg.BasePort = DefaultBasePort
	}
	if cfg.Rounds == 0 {
		cfg.Rounds = DefaultRounds
	}
	if cfg.RoundDelay == 0 {
		cfg.RoundDelay = DefaultRoundDelay
	}
	if cfg.SettleDelay == 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}
}

// ReadNetConfig loads, expands and validates a topology file
func ReadNetConfig(path string) (*NetCfg, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &NetCfg{}
	err = yaml.Unmarshal(file, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ExpandNetConfig(cfg)
	err = NetConfigValidator(cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *NetCfg) IndexOf(id NodeId) int {
	return slices.IndexFunc(c.Routers, func(cfg RouterCfg) bool {
		return cfg.Id == id
	})
}

func (c *NetCfg) IsRouter(id NodeId) bool {
	return c.IndexOf(id) != -1
}

func (c *NetCfg) GetRouter(id NodeId) RouterCfg {
	idx := c.IndexOf(id)
	if idx == -1 {
		panic("router " + string(id) + " not found")
	}
	return c.Routers[idx]
}

func (c *NetCfg) PortOf(id NodeId) (uint16, error) {
	idx := c.IndexOf(id)
	if idx == -1 {
		return 0, fmt.Errorf("router %s not found", id)
	}
	return c.BasePort + uint16(idx) + 1, nil
}

// Neighbours builds the neighbour registry of a router from its links
func (c *NetCfg) Neighbours(id NodeId) ([]NeighbourLink, error) {
	rt := c.GetRouter(id)
	neighs := make([]NeighbourLink, 0, len(rt.Links))
	for _, l := range rt.Links {
		port, err := c.PortOf(l.Id)
		if err != nil {
			return nil, err
		}
		neighs = append(neighs, NeighbourLink{
			Id:   l.Id,
			Cost: l.Cost,
			Port: port,
		})
	}
	return neighs, nil
}
