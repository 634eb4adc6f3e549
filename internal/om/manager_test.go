package om

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/schema"
)

func TestCreateAssignsSequentialIDs(t *testing.T) {
	m := NewManager(8)

	id1, err := m.Create(0, schema.SideBuy, 100, 1)
	require.NoError(t, err)
	id2, err := m.Create(0, schema.SideSell, 101, 2)
	require.NoError(t, err)

	assert.Equal(t, int64(1), id1)
	assert.Equal(t, int64(2), id2)

	o, ok := m.Get(id1)
	require.True(t, ok)
	assert.Equal(t, schema.OrderStatePendingNew, o.State)
	assert.Equal(t, schema.Quantity(0), o.Filled)
}

func TestApplyPartialThenFill(t *testing.T) {
	m := NewManager(8)

	id, err := m.Create(0, schema.SideBuy, 100, 1.0)
	require.NoError(t, err)

	require.NoError(t, m.Apply(schema.ExecutionReport{
		OrderID:  id,
		ExecType: schema.ExecTypePartialFill,
		State:    schema.OrderStateNew,
		LastQty:  0.4,
		CumQty:   0.4,
	}))

	o, ok := m.Get(id)
	require.True(t, ok)
	assert.Equal(t, schema.Quantity(0.4), o.Filled)
	assert.Equal(t, schema.OrderStateNew, o.State)

	require.NoError(t, m.Apply(schema.ExecutionReport{
		OrderID:  id,
		ExecType: schema.ExecTypeFill,
		State:    schema.OrderStateFilled,
		LastQty:  0.6,
		CumQty:   1.0,
	}))

	o, ok = m.Get(id)
	require.True(t, ok)
	assert.Equal(t, schema.Quantity(1.0), o.Filled)
	assert.Equal(t, schema.OrderStateFilled, o.State)

	// A report for an id never issued is dropped without touching state.
	err = m.Apply(schema.ExecutionReport{OrderID: 999, ExecType: schema.ExecTypeFill})
	assert.ErrorIs(t, err, ErrUnknownOrder)
}

func TestApplyTerminalIsSticky(t *testing.T) {
	m := NewManager(8)

	id, err := m.Create(0, schema.SideBuy, 100, 1)
	require.NoError(t, err)

	require.NoError(t, m.Apply(schema.ExecutionReport{
		OrderID:  id,
		ExecType: schema.ExecTypeCanceled,
		State:    schema.OrderStateCanceled,
	}))

	// A late fill for a canceled order must not resurrect it.
	require.NoError(t, m.Apply(schema.ExecutionReport{
		OrderID:  id,
		ExecType: schema.ExecTypeFill,
		State:    schema.OrderStateFilled,
		CumQty:   1,
	}))

	o, ok := m.Get(id)
	require.True(t, ok)
	assert.Equal(t, schema.OrderStateCanceled, o.State)
	assert.Equal(t, schema.Quantity(0), o.Filled)
}

func TestCreatePoolExhaustion(t *testing.T) {
	m := NewManager(2)

	_, err := m.Create(0, schema.SideBuy, 100, 1)
	require.NoError(t, err)
	_, err = m.Create(0, schema.SideBuy, 100, 1)
	require.NoError(t, err)

	_, err = m.Create(0, schema.SideBuy, 100, 1)
	assert.ErrorIs(t, err, ErrPoolExhausted)
}

func TestPurgeRecyclesTerminalOrders(t *testing.T) {
	m := NewManager(1)

	id, err := m.Create(0, schema.SideBuy, 100, 1)
	require.NoError(t, err)

	// Live orders stay pinned.
	assert.ErrorIs(t, m.Purge(id), ErrNotTerminal)

	require.NoError(t, m.Apply(schema.ExecutionReport{
		OrderID:  id,
		ExecType: schema.ExecTypeFill,
		State:    schema.OrderStateFilled,
		CumQty:   1,
	}))
	require.NoError(t, m.Purge(id))

	_, ok := m.Get(id)
	assert.False(t, ok)
	assert.Zero(t, m.Count())

	// The slot is reusable.
	id2, err := m.Create(0, schema.SideSell, 100, 1)
	require.NoError(t, err)
	assert.Equal(t, id+1, id2)
}

func TestOnFillAccumulates(t *testing.T) {
	m := NewManager(4)

	id, err := m.Create(0, schema.SideBuy, 100, 1.0)
	require.NoError(t, err)

	require.NoError(t, m.OnFill(id, 0.5, 100))
	o, _ := m.Get(id)
	assert.Equal(t, schema.Quantity(0.5), o.Filled)
	assert.Equal(t, schema.OrderStatePendingNew, o.State)

	require.NoError(t, m.OnFill(id, 0.5, 100))
	o, _ = m.Get(id)
	assert.Equal(t, schema.Quantity(1.0), o.Filled)
	assert.Equal(t, schema.OrderStateFilled, o.State)
}
