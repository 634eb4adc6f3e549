package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/schema"
)

// fakeClock lets tests advance the rate window deterministically.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestEngine(cfg Config) (*Engine, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	e := NewEngine(cfg)
	e.now = func() time.Time { return clock.now }
	return e, clock
}

func TestCheckAllowsWithinLimits(t *testing.T) {
	e, _ := newTestEngine(Config{})

	d := e.Check(0, schema.SideBuy, 50000, 0.001, 50000)
	assert.True(t, d.Allowed())
	assert.Equal(t, schema.RejectNone, d.Reason)
}

func TestCheckOrderSize(t *testing.T) {
	e, _ := newTestEngine(Config{MaxOrderSize: 10})

	assert.True(t, e.Check(0, schema.SideBuy, 100, 10, 100).Allowed())

	d := e.Check(0, schema.SideBuy, 100, 11, 100)
	require.False(t, d.Allowed())
	assert.Equal(t, schema.RejectOrderSizeExceeded, d.Reason)
}

func TestCheckProjectedPosition(t *testing.T) {
	e, _ := newTestEngine(Config{MaxPosition: 100, MaxOrderRate: 1000})

	e.UpdatePosition(schema.SideBuy, 95)

	assert.True(t, e.Check(0, schema.SideBuy, 100, 5, 100).Allowed())

	d := e.Check(0, schema.SideBuy, 100, 6, 100)
	require.False(t, d.Allowed())
	assert.Equal(t, schema.RejectProjectedPositionExceeded, d.Reason)

	// Selling reduces the projection, so the short direction binds too.
	d = e.Check(0, schema.SideSell, 100, 196, 100)
	require.False(t, d.Allowed())
	assert.Equal(t, schema.RejectProjectedPositionExceeded, d.Reason)
	assert.True(t, e.Check(0, schema.SideSell, 100, 10, 100).Allowed())

	// The check itself must not have moved the position.
	assert.Equal(t, schema.Quantity(95), e.Position())
}

func TestCheckPriceBand(t *testing.T) {
	e, _ := newTestEngine(Config{MaxPriceDeviation: 0.05})

	assert.True(t, e.Check(0, schema.SideBuy, 104, 1, 100).Allowed())
	assert.True(t, e.Check(0, schema.SideBuy, 105, 1, 100).Allowed())

	d := e.Check(0, schema.SideBuy, 106, 1, 100)
	require.False(t, d.Allowed())
	assert.Equal(t, schema.RejectPriceBandExceeded, d.Reason)

	d = e.Check(0, schema.SideSell, 94, 1, 100)
	require.False(t, d.Allowed())
	assert.Equal(t, schema.RejectPriceBandExceeded, d.Reason)

	// Zero reference disables the band entirely.
	assert.True(t, e.Check(0, schema.SideBuy, 1_000_000, 1, 0).Allowed())
}

func TestCheckRateLimit(t *testing.T) {
	e, clock := newTestEngine(Config{MaxOrderSize: 10, MaxOrderRate: 2})

	// An order rejected before the rate check must not consume budget.
	d := e.Check(0, schema.SideBuy, 100, 11, 100)
	require.Equal(t, schema.RejectOrderSizeExceeded, d.Reason)

	assert.True(t, e.Check(0, schema.SideBuy, 100, 1, 100).Allowed())
	clock.advance(100 * time.Millisecond)
	assert.True(t, e.Check(0, schema.SideBuy, 100, 1, 100).Allowed())

	d = e.Check(0, schema.SideBuy, 100, 1, 100)
	require.False(t, d.Allowed())
	assert.Equal(t, schema.RejectRateLimitExceeded, d.Reason)

	// A full window later the counter resets.
	clock.advance(time.Second)
	assert.True(t, e.Check(0, schema.SideBuy, 100, 1, 100).Allowed())
}

func TestUpdatePositionConservation(t *testing.T) {
	e, _ := newTestEngine(Config{})

	e.UpdatePosition(schema.SideBuy, 3)
	e.UpdatePosition(schema.SideBuy, 2)
	e.UpdatePosition(schema.SideSell, 4)

	assert.InDelta(t, 1.0, float64(e.Position()), 1e-12)
}
