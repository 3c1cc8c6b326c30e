package dao

import (
	"github.com/calehh/hac-dao/types"
)

// Clock reports the current logical time. The chain host uses block height.
type Clock interface {
	Now() uint64
}

type ClockFunc func() uint64

func (f ClockFunc) Now() uint64 {
	return f()
}

type EventSink interface {
	Emit(ev types.Event)
}

// EventLog collects emitted events in order.
type EventLog struct {
	events []types.Event
}

func (l *EventLog) Emit(ev types.Event) {
	l.events = append(l.events, ev)
}

func (l *EventLog) Events() []types.Event {
	return l.events
}

func (l *EventLog) Reset() {
	l.events = nil
}

type nopSink struct{}

func (nopSink) Emit(types.Event) {}

var NopSink EventSink = nopSink{}
