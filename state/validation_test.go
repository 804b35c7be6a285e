package state

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameValidator_Valid(t *testing.T) {
	assert.NoError(t, NameValidator("1"))
	assert.NoError(t, NameValidator("A"))
	assert.NoError(t, NameValidator("ab_cd"))
	assert.NoError(t, NameValidator("abcd-a.com"))
}

func TestNameValidator_Invalid(t *testing.T) {
	assert.Error(t, NameValidator("node name"))
	assert.Error(t, NameValidator(""))
	assert.Error(t, NameValidator("\t"))
	assert.Error(t, NameValidator("abcd-a.com\\hi"))
	assert.Error(t, NameValidator(strings.Repeat("a", 200)))
}

func TestNodeConfigValidator(t *testing.T) {
	assert.NoError(t, NodeConfigValidator(&LocalCfg{Id: "A", Port: 5001, NeighbourPath: "A.txt"}))
	assert.Error(t, NodeConfigValidator(&LocalCfg{Id: "A", NeighbourPath: "A.txt"}))
	assert.Error(t, NodeConfigValidator(&LocalCfg{Id: "A", Port: 5001}))
	assert.Error(t, NodeConfigValidator(&LocalCfg{Id: "a b", Port: 5001, NeighbourPath: "A.txt"}))
}

func TestNeighboursValidator(t *testing.T) {
	neighs := []NeighbourLink{{Id: "A", Cost: 1, Port: 5001}, {Id: "B", Cost: 1, Port: 5002}}
	assert.NoError(t, NeighboursValidator("C", neighs))
	assert.NoError(t, NeighboursValidator("C", nil))
	assert.EqualError(t, NeighboursValidator("A", neighs), "node A lists itself as a neighbour")
}

func TestNetConfigValidator_Errors(t *testing.T) {
	cases := map[string]NetCfg{
		"network has no routers": {},
		"duplicate router: A": {Routers: []RouterCfg{
			{Id: "A"}, {Id: "A"},
		}},
		"router A links to itself": {Routers: []RouterCfg{
			{Id: "A", Links: []LinkCfg{{Id: "A", Cost: 1}}},
		}},
		"router A links to undefined router Z": {Routers: []RouterCfg{
			{Id: "A", Links: []LinkCfg{{Id: "Z", Cost: 1}}},
		}},
		"duplicate link: A, B": {Routers: []RouterCfg{
			{Id: "A", Links: []LinkCfg{{Id: "B", Cost: 1}, {Id: "B", Cost: 2}}},
			{Id: "B"},
		}},
		"packet destination Z is not a router": {
			Routers: []RouterCfg{{Id: "A"}},
			Packets: []PacketCfg{{From: "A", To: "Z"}},
		},
		"leaves no room": {
			BasePort: 65535,
			Routers:  []RouterCfg{{Id: "A"}},
		},
	}
	for msg, cfg := range cases {
		assert.ErrorContains(t, NetConfigValidator(&cfg), msg)
	}
}
