package state

import "time"

const (
	INF = ^Metric(0)
	// INFM is the largest distance a route can carry
	INFM = INF - 1

	// MaxDatagramSize bounds a single wire message
	MaxDatagramSize = 65535
)

var (
	DefaultHost     = "127.0.0.1"
	DefaultBasePort = uint16(5000)
	DefaultLogDir   = "logs"

	// NoRouteWarnTTL is how long a missing route is reported at debug level after the first warning
	NoRouteWarnTTL = time.Second * 5
	// SlowDispatchThreshold logs handlers that block the loop for too long
	SlowDispatchThreshold = time.Millisecond * 4

	// simulation defaults, see setup_net
	DefaultRounds      = 5
	DefaultRoundDelay  = time.Second * 1
	DefaultSettleDelay = time.Second * 3
	DefaultStartDelay  = time.Second * 1
	DefaultPacketDelay = time.Second * 1
)
