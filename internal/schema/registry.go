package schema

import "sync"

// SymbolID is the compact numeric identifier for a symbol string.
// IDs are assigned on first sight in increasing order starting at 0 and are
// never reused for the process lifetime.
type SymbolID uint32

// UnknownSymbol is returned by GetSymbol for an id that was never assigned.
const UnknownSymbol = "UNKNOWN"

// SymbolRegistry interns symbol strings to SymbolIDs. Known symbols are
// registered at startup so steady-state lookups stay on the read-lock fast
// path; the write lock is taken only when a new symbol shows up mid-session.
type SymbolRegistry struct {
	mu    sync.RWMutex
	ids   map[string]SymbolID
	names []string
}

// NewSymbolRegistry creates an empty registry.
func NewSymbolRegistry() *SymbolRegistry {
	return &SymbolRegistry{ids: make(map[string]SymbolID)}
}

// GetID returns the id for symbol, assigning the next one on first sight.
func (r *SymbolRegistry) GetID(symbol string) SymbolID {
	r.mu.RLock()
	id, ok := r.ids[symbol]
	r.mu.RUnlock()
	if ok {
		return id
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.ids[symbol]; ok {
		return id
	}
	id = SymbolID(len(r.names))
	r.ids[symbol] = id
	r.names = append(r.names, symbol)
	return id
}

// GetSymbol returns the string for a previously assigned id, else the
// UnknownSymbol sentinel.
func (r *SymbolRegistry) GetSymbol(id SymbolID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) >= len(r.names) {
		return UnknownSymbol
	}
	return r.names[id]
}

// Len returns the number of registered symbols.
func (r *SymbolRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}
