package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var ErrItemNotFound = errors.New("item not found")

// Item is a discrete non-fungible asset.
type Item struct {
	Collection string `json:"collection"`
	ID         uint64 `json:"id"`
}

// Custody tracks which account holds which items. Items escrowed inside a
// pool are held by the pool itself, not by any custody account; they
// re-enter custody when paid out.
type Custody struct {
	mu    sync.RWMutex
	items map[common.Address][]Item
}

func NewCustody() *Custody {
	return &Custody{items: make(map[common.Address][]Item)}
}

// Deposit places an item under an account.
func (c *Custody) Deposit(account common.Address, item Item) {
	c.mu.Lock()
	c.items[account] = append(c.items[account], item)
	c.mu.Unlock()
}

// Remove takes a specific item away from an account, for escrow intake.
func (c *Custody) Remove(account common.Address, collection string, id uint64) (Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	held := c.items[account]
	for i, item := range held {
		if item.Collection == collection && item.ID == id {
			c.items[account] = append(held[:i:i], held[i+1:]...)
			return item, nil
		}
	}
	return Item{}, fmt.Errorf("%s/%d at %s: %w", collection, id, account.Hex(), ErrItemNotFound)
}

// Transfer moves an item between accounts.
func (c *Custody) Transfer(from common.Address, collection string, id uint64, to common.Address) error {
	item, err := c.Remove(from, collection, id)
	if err != nil {
		return err
	}
	c.Deposit(to, item)
	return nil
}

// Items returns a copy of the items held by an account.
func (c *Custody) Items(account common.Address) []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	held := c.items[account]
	out := make([]Item, len(held))
	copy(out, held)
	return out
}

// Count reports how many items an account holds.
func (c *Custody) Count(account common.Address) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items[account])
}
