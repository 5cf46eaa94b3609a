package strategy

import (
	"fmt"
	"sort"
	"sync"

	"robinhood-trader/internal/config"
)

// Constructor builds a strategy instance from configuration.
type Constructor func(cfg *config.StrategiesConfig) Strategy

// Registry maps strategy identifiers to constructors. It is resolved once
// at engine start and never mutated mid-cycle.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewRegistry creates a registry with the built-in strategies registered.
func NewRegistry() *Registry {
	r := &Registry{constructors: make(map[string]Constructor)}
	r.Register("sma", func(cfg *config.StrategiesConfig) Strategy {
		return NewSMACrossover(cfg.SMA.ShortWindow, cfg.SMA.LongWindow)
	})
	r.Register("rsi", func(cfg *config.StrategiesConfig) Strategy {
		return NewRSIThreshold(cfg.RSI.Period, cfg.RSI.Oversold, cfg.RSI.Overbought)
	})
	return r
}

// Register adds a strategy constructor under the given identifier.
func (r *Registry) Register(id string, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[id] = ctor
}

// Build resolves the named strategies into instances.
func (r *Registry) Build(ids []string, cfg *config.StrategiesConfig) ([]Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	strategies := make([]Strategy, 0, len(ids))
	for _, id := range ids {
		ctor, ok := r.constructors[id]
		if !ok {
			return nil, fmt.Errorf("unknown strategy: %s (available: %v)", id, r.idsLocked())
		}
		strategies = append(strategies, ctor(cfg))
	}
	return strategies, nil
}

// IDs returns the registered strategy identifiers in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.idsLocked()
}

func (r *Registry) idsLocked() []string {
	ids := make([]string, 0, len(r.constructors))
	for id := range r.constructors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
