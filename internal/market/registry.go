package market

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

type poolKey struct {
	owner common.Address
	name  string
}

// Registry is a keyed store of pools of one mechanism type, addressed by
// (owner, name). It is not self-locking; the engine serializes access.
type Registry[T any] struct {
	pools map[poolKey]*T
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{pools: make(map[poolKey]*T)}
}

// Add inserts a pool under (owner, name). Duplicate keys are an error.
func (r *Registry[T]) Add(owner common.Address, name string, pool *T) error {
	key := poolKey{owner: owner, name: name}
	if _, exists := r.pools[key]; exists {
		return fmt.Errorf("%q at %s: %w", name, owner.Hex(), ErrNameTaken)
	}
	r.pools[key] = pool
	return nil
}

// Get resolves a pool by (owner, name).
func (r *Registry[T]) Get(owner common.Address, name string) (*T, error) {
	pool, ok := r.pools[poolKey{owner: owner, name: name}]
	if !ok {
		return nil, fmt.Errorf("%q at %s: %w", name, owner.Hex(), ErrPoolNotFound)
	}
	return pool, nil
}

// Remove deletes a pool entry. Removing an absent entry is a no-op.
func (r *Registry[T]) Remove(owner common.Address, name string) {
	delete(r.pools, poolKey{owner: owner, name: name})
}

// Len reports the number of resident pools.
func (r *Registry[T]) Len() int {
	return len(r.pools)
}
