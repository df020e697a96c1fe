package engine

import (
	"strconv"
	"strings"
)

// ParsedTrade holds the fields extracted from a raw text frame by
// ParseFrame.
type ParsedTrade struct {
	SymbolID      SymbolID
	ExchangeTsMs  int64
	HasExchangeTs bool
	Price         float64
	Size          float64
}

// ParseFrame extracts the instId/px/sz/ts fields from a trade envelope.
// The wire format is a flat set of `"key":"value"` or `"key":value`
// pairs (a relaxed, allocation-light JSON-object scanner rather than a
// full decoder — the fields may appear in any order and the object may
// carry other fields this engine doesn't care about).
//
// Parse failures (unknown symbol, non-positive price/size, malformed
// numerics) are reported via ok == false; the caller discards the
// message and continues.
func ParseFrame(raw string) (trade ParsedTrade, ok bool) {
	instID, hasInst := extractField(raw, "instId")
	pxStr, hasPx := extractField(raw, "px")
	szStr, hasSz := extractField(raw, "sz")
	tsStr, hasTs := extractField(raw, "ts")

	if !hasInst || !hasPx || !hasSz {
		return ParsedTrade{}, false
	}

	symbolID, known := LookupSymbol(instID)
	if !known {
		return ParsedTrade{}, false
	}

	price, err := strconv.ParseFloat(pxStr, 64)
	if err != nil || price <= 0 {
		return ParsedTrade{}, false
	}

	size, err := strconv.ParseFloat(szStr, 64)
	if err != nil || size <= 0 {
		return ParsedTrade{}, false
	}

	trade = ParsedTrade{SymbolID: symbolID, Price: price, Size: size}
	if hasTs {
		if ts, err := strconv.ParseInt(tsStr, 10, 64); err == nil {
			trade.ExchangeTsMs = ts
			trade.HasExchangeTs = true
		}
	}
	return trade, true
}

// extractField finds `"key"` in s and returns the value that follows its
// colon, stripped of surrounding quotes and whitespace. It tolerates the
// value being quoted (a string) or bare (a number), matching how
// exchanges mix string and numeric JSON fields in trade envelopes.
func extractField(s, key string) (string, bool) {
	needle := `"` + key + `"`
	i := strings.Index(s, needle)
	if i < 0 {
		return "", false
	}
	rest := s[i+len(needle):]
	colon := strings.IndexByte(rest, ':')
	if colon < 0 {
		return "", false
	}
	rest = strings.TrimSpace(rest[colon+1:])

	if len(rest) == 0 {
		return "", false
	}

	if rest[0] == '"' {
		end := strings.IndexByte(rest[1:], '"')
		if end < 0 {
			return "", false
		}
		return rest[1 : 1+end], true
	}

	end := strings.IndexAny(rest, ",}")
	if end < 0 {
		end = len(rest)
	}
	return strings.TrimSpace(rest[:end]), true
}

// TruncateRawText truncates s to at most MaxRawTextLen bytes, the
// storage bound for RawMessage.RawText.
func TruncateRawText(s string) string {
	if len(s) <= MaxRawTextLen {
		return s
	}
	return s[:MaxRawTextLen]
}
