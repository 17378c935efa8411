package event

import (
	"sync"
	"testing"
)

func TestNextSeq_GapFree(t *testing.T) {
	seq := uint64(1)

	var wg sync.WaitGroup
	seen := make(chan uint64, 100)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				seen <- NextSeq(&seq)
			}
		}()
	}
	wg.Wait()
	close(seen)

	got := make(map[uint64]bool)
	for s := range seen {
		if got[s] {
			t.Fatalf("sequence %d handed out twice", s)
		}
		got[s] = true
	}
	for s := uint64(1); s <= 100; s++ {
		if !got[s] {
			t.Errorf("sequence %d missing", s)
		}
	}
}

func TestReleaseTickEvent_Resets(t *testing.T) {
	ev := AcquireTickEvent()
	ev.Seq = 7
	ev.Ts = 700
	ev.State.Timestamp = 700
	ev.State.Position.Set("RAINFOREST_RESIN", 3)

	ReleaseTickEvent(ev)

	if ev.Seq != 0 || ev.Ts != 0 || ev.State.Timestamp != 0 || ev.State.Position.Len() != 0 {
		t.Errorf("event not reset: %+v", ev)
	}
	if ev.GetType() != EventTick || ev.GetType().String() != "TICK" {
		t.Errorf("unexpected type %v", ev.GetType())
	}

	ReleaseTickEvent(nil)
	Warmup()
}
