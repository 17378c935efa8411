// Package telemetry renders the per-tick state line consumed by the
// visualiser tooling. Every tick produces exactly one compact JSON line of
// bounded length; free text printed during the tick rides along in it.
package telemetry

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"resin_go/internal/domain"
)

const (
	// DefaultMaxLength is the line budget accepted by the log tooling.
	DefaultMaxLength = 3750

	ellipsis = "..."
)

// Logger accumulates free text for the current tick and flushes it as part
// of the telemetry line. It is not safe for concurrent use; the sequencer
// owns it.
type Logger struct {
	out       io.Writer
	maxLength int
	logs      strings.Builder
}

// NewLogger creates a Logger writing lines to out.
// A non-positive maxLength selects DefaultMaxLength.
func NewLogger(out io.Writer, maxLength int) *Logger {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &Logger{out: out, maxLength: maxLength}
}

// Printf appends a formatted line.
func (l *Logger) Printf(format string, args ...any) {
	fmt.Fprintf(&l.logs, format, args...)
	l.logs.WriteByte('\n')
}

// Logs returns the text accumulated since the last flush.
func (l *Logger) Logs() string {
	return l.logs.String()
}

// MaxLength returns the configured line budget.
func (l *Logger) MaxLength() int {
	return l.maxLength
}

// Flush writes the telemetry line for this tick and clears the buffer.
// The buffer is cleared even when encoding fails so a bad tick cannot grow
// the next one.
func (l *Logger) Flush(state domain.TradingState, orders domain.OrdersBySymbol, conversions int, traderData string) ([]byte, error) {
	defer l.logs.Reset()

	line, err := Encode(state, orders, conversions, traderData, l.logs.String(), l.maxLength)
	if err != nil {
		return nil, err
	}
	line = append(line, '\n')
	if l.out != nil {
		if _, err := l.out.Write(line); err != nil {
			return line, fmt.Errorf("write telemetry: %w", err)
		}
	}
	return line, nil
}

// Encode builds the telemetry line without a trailing newline.
//
// The three free-form strings (incoming trader data, outgoing trader data,
// logs) share what is left of maxLength after the rest of the record, split
// in three equal parts.
func Encode(state domain.TradingState, orders domain.OrdersBySymbol, conversions int, traderData, logs string, maxLength int) ([]byte, error) {
	base, err := encodeRecord(state, "", orders, conversions, "", "")
	if err != nil {
		return nil, err
	}
	if len(base) > maxLength {
		return nil, fmt.Errorf("%w: base %d > max %d", domain.ErrTelemetryBudget, len(base), maxLength)
	}
	budget := (maxLength - len(base)) / 3

	return encodeRecord(
		state,
		Truncate(state.TraderData, budget),
		orders,
		conversions,
		Truncate(traderData, budget),
		Truncate(logs, budget),
	)
}

// Truncate keeps value if its escaped form has at most maxLength characters,
// otherwise cuts it so the escaped prefix plus "..." fits in maxLength.
// Text without escapes is measured in characters.
func Truncate(value string, maxLength int) string {
	if escapedLen(value) <= maxLength {
		return value
	}
	if maxLength < len(ellipsis) {
		return ellipsis[:max(maxLength, 0)]
	}

	room := maxLength - len(ellipsis)
	cut := 0
	for cut < len(value) {
		r, size := utf8.DecodeRuneInString(value[cut:])
		n := escapedRuneLen(r)
		if n > room {
			break
		}
		room -= n
		cut += size
	}
	return value[:cut] + ellipsis
}
