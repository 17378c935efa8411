// Package feed streams market snapshots into the sequencer inbox.
package feed

import (
	"bytes"
	"encoding/json"
	"fmt"

	"resin_go/internal/domain"
	"resin_go/internal/event"
)

// DecodeSnapshot parses one snapshot message.
func DecodeSnapshot(data []byte) (domain.TradingState, error) {
	var state domain.TradingState
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return state, fmt.Errorf("%w: not a JSON object", domain.ErrInvalidSnapshot)
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return state, fmt.Errorf("%w: %v", domain.ErrInvalidSnapshot, err)
	}
	return state, nil
}

// newTick wraps state in a pooled event carrying the next shared sequence number.
func newTick(seq *uint64, state domain.TradingState) *event.TickEvent {
	ev := event.AcquireTickEvent()
	ev.Seq = event.NextSeq(seq)
	ev.Ts = state.Timestamp
	ev.State = state
	return ev
}
