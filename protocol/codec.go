package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/encodeous/dvroute/state"
)

type wireEntry struct {
	Destination string `json:"destination_node"`
	NextHop     string `json:"next_node"`
	Distance    string `json:"distance"`
	Port        string `json:"port"`
}

type wireUpdateTable struct {
	Type       MsgType     `json:"type"`
	RouterName string      `json:"router_name"`
	Port       string      `json:"port"`
	Table      []wireEntry `json:"dv_table"`
}

type wireDataPacket struct {
	Type        MsgType `json:"type"`
	Source      string  `json:"source_node"`
	Destination string  `json:"destination_node"`
	Msg         string  `json:"msg"`
}

type wireControl struct {
	Type MsgType `json:"type"`
}

// Encode serializes a message into a single datagram
func Encode(msg Message) ([]byte, error) {
	switch m := msg.(type) {
	case *UpdateTable:
		w := wireUpdateTable{
			Type:       TypeUpdateTable,
			RouterName: string(m.RouterName),
			Port:       strconv.FormatUint(uint64(m.Port), 10),
			Table:      make([]wireEntry, 0, len(m.Table)),
		}
		for _, e := range m.Table {
			w.Table = append(w.Table, wireEntry{
				Destination: string(e.Dest),
				NextHop:     string(e.NextHop),
				Distance:    strconv.FormatUint(uint64(e.Distance), 10),
				Port:        strconv.FormatUint(uint64(e.Port), 10),
			})
		}
		return json.Marshal(w)
	case *DataPacket:
		return json.Marshal(wireDataPacket{
			Type:        TypeDataPacket,
			Source:      string(m.Source),
			Destination: string(m.Destination),
			Msg:         m.Msg,
		})
	case *SendTable, *Exit:
		return json.Marshal(wireControl{Type: msg.Type()})
	default:
		return nil, fmt.Errorf("cannot encode %T: %w", msg, ErrUnknownType)
	}
}

// Decode parses a datagram. Field names must match exactly. Malformed dv_table
// entries are skipped one by one and counted in UpdateTable.Rejected; any other
// defect rejects the whole datagram.
func Decode(data []byte) (Message, error) {
	obj, err := decodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	typ, err := stringField(obj, "type")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	switch MsgType(typ) {
	case TypeUpdateTable:
		return decodeUpdateTable(obj)
	case TypeDataPacket:
		return decodeDataPacket(obj)
	case TypeSendTable:
		return &SendTable{}, nil
	case TypeExit:
		return &Exit{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
}

// decodeObject keeps the exact keys of a JSON object, struct decoding would fold their case
func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("expected an object")
	}
	return obj, nil
}

func stringField(obj map[string]json.RawMessage, key string) (string, error) {
	raw, ok := obj[key]
	if !ok {
		return "", fmt.Errorf("missing %s", key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%s: %w", key, err)
	}
	return s, nil
}

func nameField(obj map[string]json.RawMessage, key string) (state.NodeId, error) {
	s, err := stringField(obj, key)
	if err != nil {
		return "", err
	}
	if err = state.NameValidator(s); err != nil {
		return "", fmt.Errorf("%s: %w", key, err)
	}
	return state.NodeId(s), nil
}

func portField(obj map[string]json.RawMessage, key string) (uint16, error) {
	port, err := textInt(obj[key])
	if err == nil {
		err = checkPort(port)
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return uint16(port), nil
}

func decodeUpdateTable(obj map[string]json.RawMessage) (*UpdateTable, error) {
	name, err := nameField(obj, "router_name")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	port, err := portField(obj, "port")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	rawTable, ok := obj["dv_table"]
	if !ok {
		return nil, fmt.Errorf("%w: missing dv_table", ErrMalformed)
	}
	var entries []json.RawMessage
	if err = json.Unmarshal(rawTable, &entries); err != nil {
		return nil, fmt.Errorf("%w: dv_table: %w", ErrMalformed, err)
	}
	msg := &UpdateTable{
		RouterName: name,
		Port:       port,
		Table:      make([]state.RouteEntry, 0, len(entries)),
	}
	for _, re := range entries {
		entry, err := decodeEntry(re)
		if err != nil {
			msg.Rejected++
			continue
		}
		msg.Table = append(msg.Table, entry)
	}
	return msg, nil
}

func decodeEntry(data json.RawMessage) (state.RouteEntry, error) {
	obj, err := decodeObject(data)
	if err != nil {
		return state.RouteEntry{}, err
	}
	dest, err := nameField(obj, "destination_node")
	if err != nil {
		return state.RouteEntry{}, err
	}
	nh, err := nameField(obj, "next_node")
	if err != nil {
		return state.RouteEntry{}, err
	}
	dist, err := textInt(obj["distance"])
	if err != nil {
		return state.RouteEntry{}, err
	}
	if dist >= uint64(state.INF) {
		return state.RouteEntry{}, fmt.Errorf("distance %d out of range", dist)
	}
	port, err := portField(obj, "port")
	if err != nil {
		return state.RouteEntry{}, err
	}
	return state.RouteEntry{
		Dest:     dest,
		NextHop:  nh,
		Distance: state.Metric(dist),
		Port:     port,
	}, nil
}

func decodeDataPacket(obj map[string]json.RawMessage) (*DataPacket, error) {
	src, err := nameField(obj, "source_node")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	dst, err := nameField(obj, "destination_node")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	msg, err := stringField(obj, "msg")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return &DataPacket{
		Source:      src,
		Destination: dst,
		Msg:         msg,
	}, nil
}

// textInt accepts "42" as well as 42
func textInt(raw json.RawMessage) (uint64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, fmt.Errorf("missing value")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		return strconv.ParseUint(s, 10, 64)
	}
	return strconv.ParseUint(string(raw), 10, 64)
}

func checkPort(port uint64) error {
	if port == 0 || port > 65535 {
		return fmt.Errorf("port %d out of range", port)
	}
	return nil
}
