package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/schema"
)

func writeReplayFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ticks.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReplayDeliversTickers(t *testing.T) {
	path := writeReplayFile(t, ""+
		"timestamp,symbol,bid_price,bid_qty,ask_price,ask_qty\n"+
		"1700000000001,BTCUSDT,49990,9,50000,1\n"+
		"1700000000002,ethusdt,2599.5,4,2600,2\n")

	s := NewReplaySource(path)
	var got []schema.BookTicker
	s.SetCallback(func(tk schema.BookTicker) { got = append(got, tk) })

	require.NoError(t, s.Run(context.Background()))

	require.Len(t, got, 2)
	assert.Equal(t, schema.BookTicker{
		Symbol:   "btcusdt",
		BidPrice: 49990,
		BidQty:   9,
		AskPrice: 50000,
		AskQty:   1,
		UpdateID: 1700000000001,
	}, got[0])
	assert.Equal(t, "ethusdt", got[1].Symbol)
}

func TestReplaySkipsMalformedLines(t *testing.T) {
	path := writeReplayFile(t, ""+
		"timestamp,symbol,bid_price,bid_qty,ask_price,ask_qty\n"+
		"not-a-number,BTCUSDT,49990,9,50000,1\n"+
		"1700000000002,BTCUSDT,49990,garbage,50000,1\n"+
		"1700000000003,BTCUSDT,49990,9,50000,1\n")

	s := NewReplaySource(path)
	var got []schema.BookTicker
	s.SetCallback(func(tk schema.BookTicker) { got = append(got, tk) })

	require.NoError(t, s.Run(context.Background()))

	require.Len(t, got, 1)
	assert.Equal(t, int64(1700000000003), got[0].UpdateID)
}

func TestReplayRequiresCallback(t *testing.T) {
	s := NewReplaySource("whatever.csv")
	assert.Error(t, s.Run(context.Background()))
}

func TestReplayMissingFile(t *testing.T) {
	s := NewReplaySource(filepath.Join(t.TempDir(), "missing.csv"))
	s.SetCallback(func(schema.BookTicker) {})
	assert.Error(t, s.Run(context.Background()))
}
