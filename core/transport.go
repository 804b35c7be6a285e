package core

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/encodeous/dvroute/state"
)

// Transport moves datagrams between routers. Peers are addressed by port.
type Transport interface {
	// Send delivers data to the router listening on port. Delivery is best effort.
	Send(port uint16, data []byte) error
	// Receive blocks until a datagram arrives. It returns net.ErrClosed once the transport is closed.
	Receive() ([]byte, error)
	LocalPort() uint16
	Close() error
}

type UdpTransport struct {
	conn *net.UDPConn
	host netip.Addr
}

func resolveHost(host string) (netip.Addr, error) {
	if host == "" || host == "localhost" {
		host = state.DefaultHost
	}
	return netip.ParseAddr(host)
}

// ListenUdp binds a UDP socket on host:port. A zero port picks an ephemeral port.
func ListenUdp(host string, port uint16) (*UdpTransport, error) {
	addr, err := resolveHost(host)
	if err != nil {
		return nil, fmt.Errorf("invalid host %q: %w", host, err)
	}
	conn, err := net.ListenUDP("udp", net.UDPAddrFromAddrPort(netip.AddrPortFrom(addr, port)))
	if err != nil {
		return nil, err
	}
	return &UdpTransport{
		conn: conn,
		host: addr,
	}, nil
}

func (u *UdpTransport) Send(port uint16, data []byte) error {
	_, err := u.conn.WriteToUDPAddrPort(data, netip.AddrPortFrom(u.host, port))
	return err
}

func (u *UdpTransport) Receive() ([]byte, error) {
	buf := make([]byte, state.MaxDatagramSize)
	n, _, err := u.conn.ReadFromUDPAddrPort(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (u *UdpTransport) LocalPort() uint16 {
	return u.conn.LocalAddr().(*net.UDPAddr).AddrPort().Port()
}

func (u *UdpTransport) Close() error {
	return u.conn.Close()
}
