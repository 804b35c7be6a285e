package core

import (
	"fmt"
	"math/rand/v2"
	"net"
	"sync"
)

// InmemNetwork connects InmemTransports without going over a socket. It behaves like
// UDP: datagrams to unknown ports, to full inboxes or lost to PacketLoss vanish silently.
type InmemNetwork struct {
	sync.RWMutex
	nodes      map[uint16]*InmemTransport
	packetLoss float64
	nextPort   uint16
	inboxSize  int
}

func NewInmemNetwork() *InmemNetwork {
	return &InmemNetwork{
		nodes:     make(map[uint16]*InmemTransport),
		nextPort:  40000,
		inboxSize: 256,
	}
}

func (n *InmemNetwork) WithPacketLoss(loss float64) *InmemNetwork {
	n.Lock()
	defer n.Unlock()
	n.packetLoss = loss
	return n
}

// Listen registers a transport on port. A zero port picks an unused one.
func (n *InmemNetwork) Listen(port uint16) (*InmemTransport, error) {
	n.Lock()
	defer n.Unlock()
	if port == 0 {
		for n.nodes[n.nextPort] != nil {
			n.nextPort++
		}
		port = n.nextPort
	}
	if _, ok := n.nodes[port]; ok {
		return nil, fmt.Errorf("port %d is already in use", port)
	}
	t := &InmemTransport{
		net:    n,
		port:   port,
		inbox:  make(chan []byte, n.inboxSize),
		closed: make(chan struct{}),
	}
	n.nodes[port] = t
	return t, nil
}

func (n *InmemNetwork) deliver(port uint16, data []byte) {
	n.RLock()
	peer, ok := n.nodes[port]
	loss := n.packetLoss
	n.RUnlock()
	if !ok {
		return
	}
	if loss > 0 && rand.Float64() < loss {
		return
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	select {
	case <-peer.closed:
	case peer.inbox <- buf:
	default:
	}
}

type InmemTransport struct {
	net       *InmemNetwork
	port      uint16
	inbox     chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func (t *InmemTransport) Send(port uint16, data []byte) error {
	select {
	case <-t.closed:
		return net.ErrClosed
	default:
	}
	t.net.deliver(port, data)
	return nil
}

func (t *InmemTransport) Receive() ([]byte, error) {
	select {
	case <-t.closed:
		return nil, net.ErrClosed
	default:
	}
	select {
	case data := <-t.inbox:
		return data, nil
	case <-t.closed:
		return nil, net.ErrClosed
	}
}

func (t *InmemTransport) LocalPort() uint16 {
	return t.port
}

func (t *InmemTransport) Close() error {
	t.closeOnce.Do(func() {
		close(t.closed)
		t.net.Lock()
		delete(t.net.nodes, t.port)
		t.net.Unlock()
	})
	return nil
}
