package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrameValid(t *testing.T) {
	raw := `{"instId":"BTC-USDT","px":"65000.5","sz":"0.01","ts":"1700000000000"}`
	trade, ok := ParseFrame(raw)
	require.True(t, ok)

	want, known := LookupSymbol("BTC-USDT")
	require.True(t, known)

	assert.Equal(t, want, trade.SymbolID)
	assert.Equal(t, 65000.5, trade.Price)
	assert.Equal(t, 0.01, trade.Size)
	assert.True(t, trade.HasExchangeTs)
	assert.Equal(t, int64(1700000000000), trade.ExchangeTsMs)
}

func TestParseFrameBareNumerics(t *testing.T) {
	raw := `{"instId":"ETH-USDT","px":3200.25,"sz":1.5,"ts":1700000000000,"extra":"ignored"}`
	trade, ok := ParseFrame(raw)
	require.True(t, ok)
	assert.Equal(t, 3200.25, trade.Price)
	assert.Equal(t, 1.5, trade.Size)
}

func TestParseFrameFieldOrderIndependent(t *testing.T) {
	raw := `{"ts":"1","sz":"1","px":"1","instId":"SOL-USDT"}`
	trade, ok := ParseFrame(raw)
	require.True(t, ok)
	want, _ := LookupSymbol("SOL-USDT")
	assert.Equal(t, want, trade.SymbolID)
}

func TestParseFrameMissingTimestampFallsBack(t *testing.T) {
	raw := `{"instId":"BTC-USDT","px":"1","sz":"1"}`
	trade, ok := ParseFrame(raw)
	require.True(t, ok)
	assert.False(t, trade.HasExchangeTs)
}

func TestParseFrameRejectsUnknownSymbol(t *testing.T) {
	raw := `{"instId":"NOPE-USDT","px":"1","sz":"1"}`
	_, ok := ParseFrame(raw)
	assert.False(t, ok)
}

func TestParseFrameRejectsNonPositivePrice(t *testing.T) {
	for _, px := range []string{"0", "-5", "not-a-number"} {
		raw := `{"instId":"BTC-USDT","px":"` + px + `","sz":"1"}`
		_, ok := ParseFrame(raw)
		assert.False(t, ok, "px=%s should be rejected", px)
	}
}

func TestParseFrameRejectsNonPositiveSize(t *testing.T) {
	for _, sz := range []string{"0", "-1"} {
		raw := `{"instId":"BTC-USDT","px":"1","sz":"` + sz + `"}`
		_, ok := ParseFrame(raw)
		assert.False(t, ok, "sz=%s should be rejected", sz)
	}
}

func TestParseFrameRejectsMissingFields(t *testing.T) {
	cases := []string{
		`{"px":"1","sz":"1"}`,
		`{"instId":"BTC-USDT","sz":"1"}`,
		`{"instId":"BTC-USDT","px":"1"}`,
		`{}`,
	}
	for _, raw := range cases {
		_, ok := ParseFrame(raw)
		assert.False(t, ok, "raw=%s should be rejected", raw)
	}
}

func TestTruncateRawTextLeavesShortStringsAlone(t *testing.T) {
	short := "short"
	assert.Equal(t, short, TruncateRawText(short))
}

func TestTruncateRawTextBoundsLength(t *testing.T) {
	long := strings.Repeat("x", MaxRawTextLen+500)
	got := TruncateRawText(long)
	assert.Len(t, got, MaxRawTextLen)
}
