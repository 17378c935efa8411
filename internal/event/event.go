package event

import (
	"sync/atomic"

	"resin_go/internal/domain"
)

// EventType identifies the kind of event flowing into the sequencer.
type EventType int

const (
	EventTick EventType = iota + 1
)

func (t EventType) String() string {
	if t == EventTick {
		return "TICK"
	}
	return "UNKNOWN"
}

// Event is anything the sequencer can process in order.
type Event interface {
	GetSeq() uint64
	GetType() EventType
}

// BaseEvent carries the sequence number and source timestamp.
type BaseEvent struct {
	Seq uint64
	Ts  int64
}

func (e *BaseEvent) GetSeq() uint64 { return e.Seq }

// TickEvent delivers one market snapshot.
type TickEvent struct {
	BaseEvent
	State domain.TradingState
}

func (e *TickEvent) GetType() EventType { return EventTick }

// NextSeq hands out the value at seq and advances it.
// Feeds share one counter so events reach the sequencer gap-free.
func NextSeq(seq *uint64) uint64 {
	return atomic.AddUint64(seq, 1) - 1
}
