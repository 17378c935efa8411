package telemetry

import (
	"unicode/utf16"
	"unicode/utf8"

	"resin_go/internal/domain"
)

const hexDigits = "0123456789abcdef"

// encodeRecord renders
// [state, orders, conversions, traderData, logs] as compact ASCII JSON.
func encodeRecord(state domain.TradingState, stateTraderData string, orders domain.OrdersBySymbol, conversions int, traderData, logs string) ([]byte, error) {
	record := []any{
		compressState(state, stateTraderData),
		compressOrders(orders),
		conversions,
		traderData,
		logs,
	}
	b, err := domain.MarshalCompact(record)
	if err != nil {
		return nil, err
	}
	return escapeNonASCII(b), nil
}

func compressState(state domain.TradingState, traderData string) []any {
	listings := make([]any, 0, state.Listings.Len())
	state.Listings.Range(func(_ string, l domain.Listing) bool {
		listings = append(listings, []any{l.Symbol, l.Product, l.Denomination})
		return true
	})

	depths := domain.NewOrderedMap[[2]domain.PriceLevels]()
	state.OrderDepths.Range(func(symbol string, d domain.OrderDepth) bool {
		depths.Set(symbol, [2]domain.PriceLevels{d.BuyOrders, d.SellOrders})
		return true
	})

	conversions := domain.NewOrderedMap[[7]domain.PyFloat]()
	state.Observations.ConversionObservations.Range(func(product string, o domain.ConversionObservation) bool {
		conversions.Set(product, [7]domain.PyFloat{
			o.BidPrice, o.AskPrice, o.TransportFees,
			o.ExportTariff, o.ImportTariff,
			o.SugarPrice, o.SunlightIndex,
		})
		return true
	})

	return []any{
		state.Timestamp,
		traderData,
		listings,
		depths,
		compressTrades(state.OwnTrades),
		compressTrades(state.MarketTrades),
		state.Position,
		[]any{state.Observations.PlainValueObservations, conversions},
	}
}

func compressTrades(trades domain.OrderedMap[[]domain.Trade]) []any {
	out := make([]any, 0)
	trades.Range(func(_ string, batch []domain.Trade) bool {
		for _, t := range batch {
			out = append(out, []any{t.Symbol, t.Price, t.Quantity, t.Buyer, t.Seller, t.Timestamp})
		}
		return true
	})
	return out
}

func compressOrders(orders domain.OrdersBySymbol) []any {
	out := make([]any, 0)
	orders.Range(func(_ string, batch []domain.Order) bool {
		for _, o := range batch {
			out = append(out, []any{o.Symbol, o.Price, o.Quantity})
		}
		return true
	})
	return out
}

// escapeNonASCII rewrites every non-ASCII rune as a \uXXXX escape, using a
// surrogate pair outside the BMP. Non-ASCII bytes only occur inside JSON
// strings, so the result stays valid JSON and its length equals its
// character count.
func escapeNonASCII(b []byte) []byte {
	ascii := true
	for _, c := range b {
		if c >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return b
	}

	out := make([]byte, 0, len(b)+len(b)/2)
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		b = b[size:]
		switch {
		case r < utf8.RuneSelf:
			out = append(out, byte(r))
		case r > 0xFFFF:
			hi, lo := utf16.EncodeRune(r)
			out = appendEscape(out, hi)
			out = appendEscape(out, lo)
		default:
			out = appendEscape(out, r)
		}
	}
	return out
}

// escapedLen is the length value takes inside a JSON string of the line.
func escapedLen(value string) int {
	n := 0
	for _, r := range value {
		n += escapedRuneLen(r)
	}
	return n
}

func escapedRuneLen(r rune) int {
	switch {
	case r == '"', r == '\\', r == '\n', r == '\r', r == '\t', r == '\b', r == '\f':
		return 2
	case r < 0x20:
		return 6
	case r < utf8.RuneSelf:
		return 1
	case r > 0xFFFF:
		return 12
	default:
		return 6
	}
}

func appendEscape(out []byte, r rune) []byte {
	return append(out, '\\', 'u',
		hexDigits[(r>>12)&0xF], hexDigits[(r>>8)&0xF],
		hexDigits[(r>>4)&0xF], hexDigits[r&0xF])
}
