package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrBalanceUnderflow  = errors.New("balance underflow")
)

// Balance is a held amount of fungible value in transit between accounts.
// Balances are move-only: merging, extracting, or depositing one consumes
// the source, so value can never be duplicated.
type Balance struct {
	amount uint64
}

// Zero returns an empty held balance.
func Zero() *Balance {
	return &Balance{}
}

// Value reports the amount currently held.
func (b *Balance) Value() uint64 {
	if b == nil {
		return 0
	}
	return b.amount
}

// Merge moves the full value of other into b, leaving other empty.
func (b *Balance) Merge(other *Balance) {
	if other == nil || other == b {
		return
	}
	b.amount += other.amount
	other.amount = 0
}

// Extract splits amount out of b into a new balance.
func (b *Balance) Extract(amount uint64) (*Balance, error) {
	if amount > b.amount {
		return nil, fmt.Errorf("extract %d from %d: %w", amount, b.amount, ErrBalanceUnderflow)
	}
	b.amount -= amount
	return &Balance{amount: amount}, nil
}

// Ledger tracks fungible account balances.
type Ledger struct {
	mu       sync.RWMutex
	accounts map[common.Address]uint64
}

func NewLedger() *Ledger {
	return &Ledger{accounts: make(map[common.Address]uint64)}
}

// Credit mints amount directly into an account. Provisioning only; the
// settlement core never creates value.
func (l *Ledger) Credit(account common.Address, amount uint64) {
	l.mu.Lock()
	l.accounts[account] += amount
	l.mu.Unlock()
}

// Withdraw removes amount from an account into a held balance.
func (l *Ledger) Withdraw(account common.Address, amount uint64) (*Balance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	have := l.accounts[account]
	if amount > have {
		return nil, fmt.Errorf("withdraw %d from %s holding %d: %w", amount, account.Hex(), have, ErrInsufficientFunds)
	}
	l.accounts[account] = have - amount
	return &Balance{amount: amount}, nil
}

// Deposit moves a held balance into an account, consuming it. Depositing
// an empty balance is a no-op.
func (l *Ledger) Deposit(account common.Address, b *Balance) {
	if b == nil || b.amount == 0 {
		return
	}
	l.mu.Lock()
	l.accounts[account] += b.amount
	l.mu.Unlock()
	b.amount = 0
}

// BalanceOf reports the settled balance of an account.
func (l *Ledger) BalanceOf(account common.Address) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.accounts[account]
}

// TotalSupply sums all settled balances. Held balances in transit are not
// counted; conservation checks must add them explicitly.
func (l *Ledger) TotalSupply() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var total uint64
	for _, amount := range l.accounts {
		total += amount
	}
	return total
}
