// Package protocol implements the JSON datagram format exchanged between routers.
//
// Every datagram is a JSON object whose "type" field selects one of four
// messages. Integers are transmitted as decimal strings.
package protocol

import (
	"errors"

	"github.com/encodeous/dvroute/state"
)

type MsgType string

const (
	TypeUpdateTable MsgType = "update_table"
	TypeSendTable   MsgType = "send_table"
	TypeDataPacket  MsgType = "data_packet"
	TypeExit        MsgType = "exit"
)

var (
	ErrMalformed   = errors.New("malformed message")
	ErrUnknownType = errors.New("unknown message type")
)

// Message is one of *UpdateTable, *SendTable, *DataPacket or *Exit
type Message interface {
	Type() MsgType
}

// UpdateTable carries the full routing table of RouterName
type UpdateTable struct {
	RouterName state.NodeId
	Port       uint16
	Table      []state.RouteEntry
	// Rejected counts dv_table entries that were dropped while decoding
	Rejected int
}

// SendTable asks a router to advertise its table to every neighbour
type SendTable struct{}

// DataPacket is relayed hop by hop until it reaches Destination
type DataPacket struct {
	Source      state.NodeId
	Destination state.NodeId
	Msg         string
}

// Exit terminates the receiving router
type Exit struct{}

func (*UpdateTable) Type() MsgType { return TypeUpdateTable }
func (*SendTable) Type() MsgType   { return TypeSendTable }
func (*DataPacket) Type() MsgType  { return TypeDataPacket }
func (*Exit) Type() MsgType        { return TypeExit }

func (u *UpdateTable) Vector() state.IncomingVector {
	return state.IncomingVector{
		Sender:     u.RouterName,
		SenderPort: u.Port,
		Entries:    u.Table,
	}
}

// NewUpdateTable snapshots a table for advertisement, sorted by destination
func NewUpdateTable(id state.NodeId, port uint16, table state.RouteTable) *UpdateTable {
	return &UpdateTable{
		RouterName: id,
		Port:       port,
		Table:      table.Entries(),
	}
}
