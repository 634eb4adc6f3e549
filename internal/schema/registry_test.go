package schema

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolRegistryAssignsMonotonicIDs(t *testing.T) {
	reg := NewSymbolRegistry()

	assert.Equal(t, SymbolID(0), reg.GetID("BTCUSDT"))
	assert.Equal(t, SymbolID(1), reg.GetID("ETHBTC"))
	assert.Equal(t, SymbolID(2), reg.GetID("ETHUSDT"))
	assert.Equal(t, 3, reg.Len())
}

func TestSymbolRegistryIdempotent(t *testing.T) {
	reg := NewSymbolRegistry()

	first := reg.GetID("BTCUSDT")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, reg.GetID("BTCUSDT"))
	}
	assert.Equal(t, 1, reg.Len())
}

func TestSymbolRegistryRoundTrip(t *testing.T) {
	reg := NewSymbolRegistry()
	symbols := []string{"BTCUSDT", "ETHBTC", "ETHUSDT", "SOLUSDT"}

	for _, s := range symbols {
		id := reg.GetID(s)
		require.Equal(t, s, reg.GetSymbol(id))
	}
}

func TestSymbolRegistryUnknownSentinel(t *testing.T) {
	reg := NewSymbolRegistry()
	reg.GetID("BTCUSDT")

	assert.Equal(t, UnknownSymbol, reg.GetSymbol(SymbolID(99)))
}

func TestSymbolRegistryConcurrentInterning(t *testing.T) {
	reg := NewSymbolRegistry()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				sym := fmt.Sprintf("SYM%d", i%10)
				id := reg.GetID(sym)
				assert.Equal(t, sym, reg.GetSymbol(id))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, reg.Len())
}
