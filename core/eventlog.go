package core

import (
	"context"
	"log/slog"
)

type RouterEvent int

// trace events

const (
	Startup RouterEvent = iota
	TableLoaded
	Listening
	TableUpdated
	BroadcastSent
	PacketForwarded
	PacketDelivered
	Shutdown
	RouteAdded
	RouteImproved
	RouteRefreshed
)

// warn events

const (
	MessageIgnored RouterEvent = iota + 1000
	UnknownSender
	NoRouteToDest
	SendFailed
	ReceiveFailed
)

func (e RouterEvent) String() string {
	switch e {
	case Startup:
		return "STARTUP"
	case TableLoaded:
		return "TABLE_LOADED"
	case Listening:
		return "LISTENING"
	case TableUpdated:
		return "TABLE_UPDATED"
	case BroadcastSent:
		return "BROADCAST_SENT"
	case PacketForwarded:
		return "PACKET_FORWARDED"
	case PacketDelivered:
		return "PACKET_DELIVERED"
	case Shutdown:
		return "SHUTDOWN"
	case RouteAdded:
		return "ROUTE_ADDED"
	case RouteImproved:
		return "ROUTE_IMPROVED"
	case RouteRefreshed:
		return "ROUTE_REFRESHED"
	case MessageIgnored:
		return "MESSAGE_IGNORED"
	case UnknownSender:
		return "UNKNOWN_SENDER"
	case NoRouteToDest:
		return "NO_ROUTE"
	case SendFailed:
		return "SEND_FAILED"
	case ReceiveFailed:
		return "RECEIVE_FAILED"
	}
	return "UNKNOWN"
}

func (e RouterEvent) Level() slog.Level {
	if e >= MessageIgnored {
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

// EventLog writes one record per handled event. Every record carries a per-router sequence number.
type EventLog struct {
	log *slog.Logger
	seq uint64
}

func NewEventLog(log *slog.Logger) *EventLog {
	return &EventLog{log: log}
}

func (l *EventLog) Record(event RouterEvent, desc string, args ...any) {
	l.RecordLevel(event.Level(), event, desc, args...)
}

func (l *EventLog) RecordLevel(level slog.Level, event RouterEvent, desc string, args ...any) {
	attrs := make([]any, 0, len(args)+4)
	attrs = append(attrs, "seq", l.seq, "event", event.String())
	attrs = append(attrs, args...)
	l.log.Log(context.Background(), level, desc, attrs...)
	l.seq++
}

// Seq is the sequence number of the next record
func (l *EventLog) Seq() uint64 {
	return l.seq
}

func (l *EventLog) Logger() *slog.Logger {
	return l.log
}
