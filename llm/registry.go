package llm

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sapientpants/quorum-sub001/types"
)

// AdapterFactory builds the adapter for one provider id.
type AdapterFactory func() Adapter

// ClientRegistry hands out one Client per provider id. Clients are built on
// first access from the lookup table and cached until ClearCache.
type ClientRegistry struct {
	factories map[string]AdapterFactory
	opts      []Option
	clients   map[string]*Client
	mu        sync.RWMutex
}

// NewClientRegistry creates a registry over the given lookup table. opts are
// applied to every Client it builds.
func NewClientRegistry(factories map[string]AdapterFactory, opts ...Option) *ClientRegistry {
	table := make(map[string]AdapterFactory, len(factories))
	for id, f := range factories {
		table[normalizeID(id)] = f
	}
	return &ClientRegistry{
		factories: table,
		opts:      opts,
		clients:   make(map[string]*Client),
	}
}

// GetClient returns the cached client for providerID, creating it on first use.
func (r *ClientRegistry) GetClient(providerID string) (*Client, error) {
	id := normalizeID(providerID)

	r.mu.RLock()
	c, ok := r.clients[id]
	factory, known := r.factories[id]
	r.mu.RUnlock()
	if ok {
		return c, nil
	}
	if !known {
		return nil, types.NewError(types.ErrUnsupportedOperation,
			fmt.Sprintf("unknown provider %q; available providers: %s", providerID, strings.Join(r.Providers(), ", ")),
			types.WithProvider(providerID))
	}

	// Built outside the lock; a concurrent build of the same id is harmless
	// and the first stored instance wins.
	built := NewClient(factory(), r.opts...)

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[id]; ok {
		return c, nil
	}
	r.clients[id] = built
	return built, nil
}

// ClearCache drops every cached client. Subsequent GetClient calls build new ones.
func (r *ClientRegistry) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients = make(map[string]*Client)
}

// Providers returns the sorted ids in the lookup table.
func (r *ClientRegistry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Cached returns the number of live cached clients.
func (r *ClientRegistry) Cached() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
