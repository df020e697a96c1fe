package sinks

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoengine/engine"
)

func TestFileSinkAppendsRawFramesPerSymbol(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(dir)
	require.NoError(t, err)
	defer sink.Close()

	sink.LogTradeRaw(0, `{"instId":"BTC-USDT","px":"1","sz":"1"}`)
	sink.LogTradeRaw(0, `{"instId":"BTC-USDT","px":"2","sz":"1"}`)
	sink.LogTradeRaw(1, `{"instId":"ETH-USDT","px":"3","sz":"1"}`)

	btc, err := os.ReadFile(filepath.Join(dir, "BTC-USDT_raw.log"))
	require.NoError(t, err)
	assert.Equal(t, "{\"instId\":\"BTC-USDT\",\"px\":\"1\",\"sz\":\"1\"}\n{\"instId\":\"BTC-USDT\",\"px\":\"2\",\"sz\":\"1\"}\n", string(btc))

	eth, err := os.ReadFile(filepath.Join(dir, "ETH-USDT_raw.log"))
	require.NoError(t, err)
	assert.Equal(t, "{\"instId\":\"ETH-USDT\",\"px\":\"3\",\"sz\":\"1\"}\n", string(eth))
}

func TestFileSinkLatencyDerivedFields(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(dir)
	require.NoError(t, err)
	defer sink.Close()

	sink.LogLatency(engine.LatencyRecord{
		SymbolID:     0,
		ExchangeTsMs: 1000,
		ReceiveTsMs:  1040,
		ProcessTsMs:  1045,
	})

	data, err := os.ReadFile(filepath.Join(dir, "BTC-USDT_latency.log"))
	require.NoError(t, err)
	// exchange, receive, process, network, process, total latencies.
	assert.Equal(t, "1000,1040,1045,40,5,45\n", string(data))
}
