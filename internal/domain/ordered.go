package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// OrderedMap is a string-keyed map that remembers insertion order.
// It encodes to a JSON object whose keys appear in that order, which keeps
// telemetry output identical to the snapshot it was decoded from.
type OrderedMap[V any] struct {
	keys []string
	vals map[string]V
}

// NewOrderedMap creates an empty OrderedMap.
func NewOrderedMap[V any]() *OrderedMap[V] {
	return &OrderedMap[V]{vals: make(map[string]V)}
}

// Set inserts or replaces a value. Replacing keeps the original position.
func (m *OrderedMap[V]) Set(key string, v V) {
	if m.vals == nil {
		m.vals = make(map[string]V)
	}
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

// Get returns the value stored under key.
func (m OrderedMap[V]) Get(key string) (V, bool) {
	v, ok := m.vals[key]
	return v, ok
}

// Len returns the number of entries.
func (m OrderedMap[V]) Len() int {
	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order.
func (m OrderedMap[V]) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Range calls fn for every entry in insertion order until fn returns false.
func (m OrderedMap[V]) Range(fn func(key string, v V) bool) {
	for _, k := range m.keys {
		if !fn(k, m.vals[k]) {
			return
		}
	}
}

// MarshalJSON encodes the map as a JSON object in insertion order.
func (m OrderedMap[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := appendCompact(&buf, k); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := appendCompact(&buf, m.vals[k]); err != nil {
			return nil, fmt.Errorf("encode %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the key order of the input.
func (m *OrderedMap[V]) UnmarshalJSON(data []byte) error {
	m.keys = nil
	m.vals = make(map[string]V)

	dec := json.NewDecoder(bytes.NewReader(data))
	if null, err := openObject(dec); err != nil || null {
		return err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var v V
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("decode %q: %w", key, err)
		}
		m.Set(key, v)
	}
	_, err := dec.Token()
	return err
}

// Level is a single price level of one side of the book.
type Level struct {
	Price    int64
	Quantity int64
}

// PriceLevels maps integer prices to signed quantities in insertion order.
type PriceLevels struct {
	levels []Level
}

// NewPriceLevels builds PriceLevels from the given levels.
func NewPriceLevels(levels ...Level) PriceLevels {
	var p PriceLevels
	for _, l := range levels {
		p.Set(l.Price, l.Quantity)
	}
	return p
}

// Set inserts or replaces the quantity at price.
func (p *PriceLevels) Set(price, qty int64) {
	for i := range p.levels {
		if p.levels[i].Price == price {
			p.levels[i].Quantity = qty
			return
		}
	}
	p.levels = append(p.levels, Level{Price: price, Quantity: qty})
}

// Get returns the quantity at price.
func (p PriceLevels) Get(price int64) (int64, bool) {
	for _, l := range p.levels {
		if l.Price == price {
			return l.Quantity, true
		}
	}
	return 0, false
}

// Len returns the number of levels.
func (p PriceLevels) Len() int {
	return len(p.levels)
}

// Levels returns a copy of the levels in insertion order.
func (p PriceLevels) Levels() []Level {
	out := make([]Level, len(p.levels))
	copy(out, p.levels)
	return out
}

// Max returns the highest price, or false if there are no levels.
func (p PriceLevels) Max() (int64, bool) {
	if len(p.levels) == 0 {
		return 0, false
	}
	best := p.levels[0].Price
	for _, l := range p.levels[1:] {
		if l.Price > best {
			best = l.Price
		}
	}
	return best, true
}

// Min returns the lowest price, or false if there are no levels.
func (p PriceLevels) Min() (int64, bool) {
	if len(p.levels) == 0 {
		return 0, false
	}
	best := p.levels[0].Price
	for _, l := range p.levels[1:] {
		if l.Price < best {
			best = l.Price
		}
	}
	return best, true
}

// MarshalJSON encodes the levels as {"price": qty, ...}.
func (p PriceLevels) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 16*len(p.levels)+2)
	buf = append(buf, '{')
	for i, l := range p.levels {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, '"')
		buf = strconv.AppendInt(buf, l.Price, 10)
		buf = append(buf, '"', ':')
		buf = strconv.AppendInt(buf, l.Quantity, 10)
	}
	buf = append(buf, '}')
	return buf, nil
}

// UnmarshalJSON decodes {"price": qty, ...} keeping input order.
func (p *PriceLevels) UnmarshalJSON(data []byte) error {
	p.levels = nil

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if null, err := openObject(dec); err != nil || null {
		return err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		price, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return fmt.Errorf("price level key %q: %w", key, err)
		}
		var qty json.Number
		if err := dec.Decode(&qty); err != nil {
			return err
		}
		q, err := qty.Int64()
		if err != nil {
			return fmt.Errorf("price level %d quantity: %w", price, err)
		}
		p.Set(price, q)
	}
	_, err := dec.Token()
	return err
}

// openObject consumes the opening brace. It reports true for a JSON null.
func openObject(dec *json.Decoder) (bool, error) {
	tok, err := dec.Token()
	if err != nil {
		return false, err
	}
	if tok == nil {
		return true, nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return false, fmt.Errorf("expected JSON object, got %v", tok)
	}
	return false, nil
}
