package market

import (
	"fmt"
	"math/bits"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"marketSettle/internal/ledger"
	"marketSettle/internal/model"
)

// BlindBoxPool mints escrowed items in batches at a fixed unit price. The
// buyer picks a count, not the items; items come off the back of the
// escrow sequence, so the order is opaque to the buyer.
type BlindBoxPool struct {
	Creator common.Address
	Name    string
	Terms   PoolTerms
	Price   uint64
	MintAt  uint64
	Assets  []ledger.Item
}

// BlindBoxParams configures a new blind box pool.
type BlindBoxParams struct {
	Name   string
	Price  uint64
	MintAt uint64
	Items  []ledger.Item
	Terms  PoolTerms
}

// CreateBlindBoxPool escrows the creator's items into a new pool.
func (e *Engine) CreateBlindBoxPool(creator common.Address, params BlindBoxParams) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if params.Name == "" {
		return ErrInvalidName
	}
	if params.Price == 0 {
		return fmt.Errorf("blind box: %w", ErrInvalidPrice)
	}
	if len(params.Items) == 0 {
		return fmt.Errorf("blind box: %w", ErrNoAssets)
	}
	params.Terms.normalize(creator)

	assets, err := e.takeItems(creator, params.Items)
	if err != nil {
		return fmt.Errorf("escrow assets: %w", err)
	}

	pool := &BlindBoxPool{
		Creator: creator,
		Name:    params.Name,
		Terms:   params.Terms,
		Price:   params.Price,
		MintAt:  params.MintAt,
		Assets:  assets,
	}
	if err := e.blind.Add(creator, params.Name, pool); err != nil {
		e.returnItems(creator, assets)
		return err
	}

	e.logger.Info("blind box pool created",
		zap.String("pool", params.Name),
		zap.String("creator", creator.Hex()),
		zap.Uint64("price", params.Price),
		zap.Int("assets", len(assets)),
	)
	e.recordSnapshot(mechBlindBox, creator, params.Name, len(assets), 0, model.PoolStateOpen)
	return nil
}

// MintBlindBox settles the full payment and hands count items to the
// buyer. Requires payment >= price * count and count items remaining.
func (e *Engine) MintBlindBox(buyer, owner common.Address, name string, payment, count uint64) ([]ledger.Item, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool, err := e.blind.Get(owner, name)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("mint %q: %w", name, ErrInvalidCount)
	}
	if e.clock.Now() < pool.MintAt {
		return nil, fmt.Errorf("mint %q: %w", name, ErrPoolNotOpen)
	}
	hi, required := bits.Mul64(pool.Price, count)
	if hi != 0 || payment < required {
		return nil, fmt.Errorf("mint %q: payment %d below %d x %d: %w", name, payment, pool.Price, count, ErrPaymentTooLow)
	}
	if count > uint64(len(pool.Assets)) {
		return nil, fmt.Errorf("mint %q: want %d of %d: %w", name, count, len(pool.Assets), ErrInsufficientAssets)
	}

	held, err := e.funds.Withdraw(buyer, payment)
	if err != nil {
		return nil, err
	}
	st, err := settle(e.funds, held, pool.Terms)
	if err != nil {
		e.funds.Deposit(buyer, held)
		return nil, fmt.Errorf("settle payment: %w", err)
	}

	minted := make([]ledger.Item, 0, count)
	for i := uint64(0); i < count; i++ {
		last := len(pool.Assets) - 1
		item := pool.Assets[last]
		pool.Assets = pool.Assets[:last]
		e.custody.Deposit(buyer, item)
		minted = append(minted, item)
	}

	e.logger.Info("blind box mint",
		zap.String("pool", name),
		zap.String("buyer", buyer.Hex()),
		zap.Uint64("payment", payment),
		zap.Uint64("count", count),
		zap.Int("remaining", len(pool.Assets)),
	)
	e.recordSettlement(mechBlindBox, owner, name, buyer, st, pool.Terms)
	e.recordSnapshot(mechBlindBox, owner, name, len(pool.Assets), 0, model.PoolStateOpen)
	return minted, nil
}

// DestroyBlindBoxPool removes the pool entry only once its asset sequence
// is empty, so assets cannot be silently stranded.
func (e *Engine) DestroyBlindBoxPool(creator common.Address, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool, err := e.blind.Get(creator, name)
	if err != nil {
		return err
	}
	if len(pool.Assets) > 0 {
		return fmt.Errorf("destroy %q: %w", name, ErrPoolNotEmpty)
	}

	e.blind.Remove(creator, name)
	e.logger.Info("blind box pool destroyed", zap.String("pool", name), zap.String("creator", creator.Hex()))
	e.recordSnapshot(mechBlindBox, creator, name, 0, 0, model.PoolStateRemoved)
	return nil
}
