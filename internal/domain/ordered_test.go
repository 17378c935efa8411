package domain

import (
	"encoding/json"
	"testing"
)

func TestOrderedMap_KeepsInsertionOrder(t *testing.T) {
	m := NewOrderedMap[int64]()
	m.Set("RAINFOREST_RESIN", 5)
	m.Set("KELP", -3)
	m.Set("AMETHYSTS", 0)
	m.Set("KELP", 7) // replace keeps position

	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"RAINFOREST_RESIN":5,"KELP":7,"AMETHYSTS":0}`
	if string(b) != want {
		t.Errorf("Marshal = %s, want %s", b, want)
	}
}

func TestOrderedMap_RoundTrip(t *testing.T) {
	in := `{"z":[1,2],"a":[],"m":[3]}`

	var m OrderedMap[[]int]
	if err := json.Unmarshal([]byte(in), &m); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if keys := m.Keys(); len(keys) != 3 || keys[0] != "z" || keys[1] != "a" || keys[2] != "m" {
		t.Fatalf("Keys = %v, want [z a m]", keys)
	}

	out, err := MarshalCompact(m)
	if err != nil {
		t.Fatalf("MarshalCompact failed: %v", err)
	}
	if string(out) != in {
		t.Errorf("round trip = %s, want %s", out, in)
	}
}

func TestOrderedMap_EmptyAndNull(t *testing.T) {
	var empty OrderedMap[string]
	b, _ := json.Marshal(empty)
	if string(b) != "{}" {
		t.Errorf("empty map = %s, want {}", b)
	}

	var m OrderedMap[string]
	if err := json.Unmarshal([]byte("null"), &m); err != nil {
		t.Fatalf("Unmarshal null failed: %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("Len = %d, want 0", m.Len())
	}

	if err := json.Unmarshal([]byte("[1]"), &m); err == nil {
		t.Error("expected error for non-object input")
	}
}

func TestPriceLevels_BestPrices(t *testing.T) {
	t.Run("empty side has no best price", func(t *testing.T) {
		var p PriceLevels
		if _, ok := p.Max(); ok {
			t.Error("Max should report absent on empty levels")
		}
		if _, ok := p.Min(); ok {
			t.Error("Min should report absent on empty levels")
		}
	})

	t.Run("max and min ignore insertion order", func(t *testing.T) {
		p := NewPriceLevels(Level{10, 1}, Level{12, 2}, Level{9, 3})
		if best, _ := p.Max(); best != 12 {
			t.Errorf("Max = %d, want 12", best)
		}
		if best, _ := p.Min(); best != 9 {
			t.Errorf("Min = %d, want 9", best)
		}
	})
}

func TestPriceLevels_JSON(t *testing.T) {
	in := `{"10002":-4,"9998":-1,"10000":-25}`

	var p PriceLevels
	if err := json.Unmarshal([]byte(in), &p); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if qty, ok := p.Get(9998); !ok || qty != -1 {
		t.Errorf("Get(9998) = %d, %v; want -1, true", qty, ok)
	}

	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(out) != in {
		t.Errorf("round trip = %s, want %s", out, in)
	}

	if err := json.Unmarshal([]byte(`{"abc":1}`), &p); err == nil {
		t.Error("expected error for non-integer price key")
	}
	if err := json.Unmarshal([]byte(`{"10":1.5}`), &p); err == nil {
		t.Error("expected error for fractional quantity")
	}
}
