package protocol

import (
	"testing"

	"github.com/encodeous/dvroute/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_UpdateTable(t *testing.T) {
	data := `{"type": "update_table", "router_name": "B", "port": "5002", "dv_table": [
		{"destination_node": "A", "next_node": "A", "distance": "1", "port": "5001"},
		{"destination_node": "C", "next_node": "C", "distance": 2, "port": 5003}
	]}`
	msg, err := Decode([]byte(data))
	require.NoError(t, err)
	require.IsType(t, &UpdateTable{}, msg)
	assert.Equal(t, &UpdateTable{
		RouterName: "B",
		Port:       5002,
		Table: []state.RouteEntry{
			{Dest: "A", NextHop: "A", Distance: 1, Port: 5001},
			{Dest: "C", NextHop: "C", Distance: 2, Port: 5003},
		},
	}, msg)
}

func TestDecode_UpdateTableSkipsBadEntries(t *testing.T) {
	data := `{"type": "update_table", "router_name": "B", "port": "5002", "dv_table": [
		{"destination_node": "A", "next_node": "A", "distance": "x", "port": "5001"},
		{"destination_node": "", "next_node": "A", "distance": "1", "port": "5001"},
		{"destination_node": "D", "next_node": "C", "distance": "1", "port": "0"},
		"garbage",
		{"destination_node": "C", "next_node": "C", "distance": "2", "port": "5003"}
	]}`
	msg, err := Decode([]byte(data))
	require.NoError(t, err)
	u := msg.(*UpdateTable)
	assert.Equal(t, 4, u.Rejected)
	assert.Equal(t, []state.RouteEntry{
		{Dest: "C", NextHop: "C", Distance: 2, Port: 5003},
	}, u.Table)
}

func TestDecode_UpdateTableBadSender(t *testing.T) {
	_, err := Decode([]byte(`{"type": "update_table", "router_name": "B", "port": "abc", "dv_table": []}`))
	assert.ErrorIs(t, err, ErrMalformed)
	_, err = Decode([]byte(`{"type": "update_table", "port": "5002", "dv_table": []}`))
	assert.ErrorIs(t, err, ErrMalformed)
	_, err = Decode([]byte(`{"type": "update_table", "router_name": "B", "port": "5002", "dv_table": {}}`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecode_Control(t *testing.T) {
	msg, err := Decode([]byte(`{"type": "send_table"}`))
	require.NoError(t, err)
	assert.Equal(t, TypeSendTable, msg.Type())

	msg, err = Decode([]byte(`{"type": "exit"}`))
	require.NoError(t, err)
	assert.Equal(t, TypeExit, msg.Type())
}

func TestDecode_DataPacket(t *testing.T) {
	msg, err := Decode([]byte(`{"type": "data_packet", "source_node": "F", "destination_node": "C", "msg": "Hello, Mr. C, I'm F"}`))
	require.NoError(t, err)
	assert.Equal(t, &DataPacket{Source: "F", Destination: "C", Msg: "Hello, Mr. C, I'm F"}, msg)

	_, err = Decode([]byte(`{"type": "data_packet", "source_node": "F", "msg": "x"}`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode([]byte(`{"type": "hello"}`))
	assert.ErrorIs(t, err, ErrUnknownType)
	_, err = Decode([]byte(`{"type": 3}`))
	assert.ErrorIs(t, err, ErrMalformed)
	_, err = Decode([]byte(`{}`))
	assert.ErrorIs(t, err, ErrMalformed)
	_, err = Decode([]byte(`null`))
	assert.ErrorIs(t, err, ErrMalformed)
	_, err = Decode([]byte(`["exit"]`))
	assert.ErrorIs(t, err, ErrMalformed)
	_, err = Decode([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformed)
	_, err = Decode(nil)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecode_ExactFieldNames(t *testing.T) {
	for _, data := range []string{
		`{"TYPE": "exit"}`,
		`{"Type": "send_table"}`,
		`{"type": "update_table", "Router_Name": "B", "port": "5002", "dv_table": []}`,
		`{"type": "update_table", "router_name": "B", "PORT": "5002", "dv_table": []}`,
		`{"type": "update_table", "router_name": "B", "port": "5002", "DV_TABLE": []}`,
		`{"type": "data_packet", "SOURCE_NODE": "F", "destination_node": "C", "msg": "x"}`,
		`{"type": "data_packet", "source_node": "F", "destination_node": "C", "Msg": "x"}`,
	} {
		_, err := Decode([]byte(data))
		assert.ErrorIs(t, err, ErrMalformed, data)
	}

	msg, err := Decode([]byte(`{"type": "update_table", "router_name": "B", "port": "5002", "dv_table": [
		{"Destination_Node": "A", "next_node": "A", "distance": "1", "port": "5001"},
		{"destination_node": "C", "next_node": "C", "DISTANCE": "1", "port": "5003"},
		{"destination_node": "D", "next_node": "D", "distance": "1", "port": "5004"}
	]}`))
	require.NoError(t, err)
	u := msg.(*UpdateTable)
	assert.Equal(t, 2, u.Rejected)
	assert.Equal(t, []state.RouteEntry{{Dest: "D", NextHop: "D", Distance: 1, Port: 5004}}, u.Table)
}

func TestEncode_UpdateTableWireFormat(t *testing.T) {
	table := state.RouteTable{
		"C": {Dest: "C", NextHop: "B", Distance: 2, Port: 5002},
		"B": {Dest: "B", NextHop: "B", Distance: 1, Port: 5002},
	}
	data, err := Encode(NewUpdateTable("A", 5001, table))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type": "update_table", "router_name": "A", "port": "5001", "dv_table": [
		{"destination_node": "B", "next_node": "B", "distance": "1", "port": "5002"},
		{"destination_node": "C", "next_node": "B", "distance": "2", "port": "5002"}
	]}`, string(data))

	msg, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, state.IncomingVector{
		Sender:     "A",
		SenderPort: 5001,
		Entries:    table.Entries(),
	}, msg.(*UpdateTable).Vector())
}

func TestEncode_Control(t *testing.T) {
	data, err := Encode(&Exit{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type": "exit"}`, string(data))

	data, err = Encode(&DataPacket{Source: "A", Destination: "C", Msg: "hi"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type": "data_packet", "source_node": "A", "destination_node": "C", "msg": "hi"}`, string(data))
}
