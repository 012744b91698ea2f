package market

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"marketSettle/internal/ledger"
	"marketSettle/internal/model"
)

// FixedPricePool sells escrowed items at a fixed unit price, atomically
// swapping payment for assets. Canceled pools keep their registry entry
// and reject further buys.
type FixedPricePool struct {
	Creator  common.Address
	Name     string
	Terms    PoolTerms
	Price    uint64
	OpenAt   uint64
	Assets   []ledger.Item
	Canceled bool
}

// FixedPriceParams configures a new fixed-price pool.
type FixedPriceParams struct {
	Name   string
	Price  uint64
	OpenAt uint64
	Items  []ledger.Item
	Terms  PoolTerms
}

// CreateFixedPricePool escrows the creator's items into a new pool.
func (e *Engine) CreateFixedPricePool(creator common.Address, params FixedPriceParams) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if params.Name == "" {
		return ErrInvalidName
	}
	if params.Price == 0 {
		return fmt.Errorf("fixed price: %w", ErrInvalidPrice)
	}
	if len(params.Items) == 0 {
		return fmt.Errorf("fixed price: %w", ErrNoAssets)
	}
	params.Terms.normalize(creator)

	assets, err := e.takeItems(creator, params.Items)
	if err != nil {
		return fmt.Errorf("escrow assets: %w", err)
	}

	pool := &FixedPricePool{
		Creator: creator,
		Name:    params.Name,
		Terms:   params.Terms,
		Price:   params.Price,
		OpenAt:  params.OpenAt,
		Assets:  assets,
	}
	if err := e.fixed.Add(creator, params.Name, pool); err != nil {
		e.returnItems(creator, assets)
		return err
	}

	e.logger.Info("fixed price pool created",
		zap.String("pool", params.Name),
		zap.String("creator", creator.Hex()),
		zap.Uint64("price", params.Price),
		zap.Int("assets", len(assets)),
	)
	e.recordSnapshot(mechFixedPrice, creator, params.Name, len(assets), 0, model.PoolStateOpen)
	return nil
}

// BuyFixedPrice swaps a payment for floor(payment/price) items. The full
// payment settles; any remainder above units*price is retained as
// proceeds. Items come off the back of the escrow sequence.
func (e *Engine) BuyFixedPrice(buyer, owner common.Address, name string, payment uint64) ([]ledger.Item, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool, err := e.fixed.Get(owner, name)
	if err != nil {
		return nil, err
	}
	if pool.Canceled {
		return nil, fmt.Errorf("buy %q: %w", name, ErrPoolCanceled)
	}
	if e.clock.Now() < pool.OpenAt {
		return nil, fmt.Errorf("buy %q: %w", name, ErrPoolNotOpen)
	}
	if payment < pool.Price {
		return nil, fmt.Errorf("buy %q: payment %d below price %d: %w", name, payment, pool.Price, ErrPaymentTooLow)
	}
	units := payment / pool.Price
	if units == 0 {
		return nil, fmt.Errorf("buy %q: %w", name, ErrZeroUnits)
	}
	if units > uint64(len(pool.Assets)) {
		return nil, fmt.Errorf("buy %q: want %d of %d: %w", name, units, len(pool.Assets), ErrInsufficientAssets)
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

	bought := make([]ledger.Item, 0, units)
	for i := uint64(0); i < units; i++ {
		last := len(pool.Assets) - 1
		item := pool.Assets[last]
		pool.Assets = pool.Assets[:last]
		e.custody.Deposit(buyer, item)
		bought = append(bought, item)
	}

	e.logger.Info("fixed price buy",
		zap.String("pool", name),
		zap.String("buyer", buyer.Hex()),
		zap.Uint64("payment", payment),
		zap.Uint64("units", units),
		zap.Int("remaining", len(pool.Assets)),
	)
	e.recordSettlement(mechFixedPrice, owner, name, buyer, st, pool.Terms)
	e.recordSnapshot(mechFixedPrice, owner, name, len(pool.Assets), 0, model.PoolStateOpen)
	return bought, nil
}

// CancelFixedPrice returns all remaining assets to the creator and marks
// the pool canceled. The entry stays resident until destroyed.
func (e *Engine) CancelFixedPrice(creator common.Address, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool, err := e.fixed.Get(creator, name)
	if err != nil {
		return err
	}
	if pool.Canceled {
		return fmt.Errorf("cancel %q: %w", name, ErrAlreadyCanceled)
	}

	returned := len(pool.Assets)
	e.returnItems(creator, pool.Assets)
	pool.Assets = nil
	pool.Canceled = true

	e.logger.Info("fixed price pool canceled",
		zap.String("pool", name),
		zap.String("creator", creator.Hex()),
		zap.Int("returned", returned),
	)
	e.recordSnapshot(mechFixedPrice, creator, name, 0, 0, model.PoolStateCanceled)
	return nil
}

// DestroyFixedPricePool removes an empty pool entry.
func (e *Engine) DestroyFixedPricePool(creator common.Address, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool, err := e.fixed.Get(creator, name)
	if err != nil {
		return err
	}
	if len(pool.Assets) > 0 {
		return fmt.Errorf("destroy %q: %w", name, ErrPoolNotEmpty)
	}

	e.fixed.Remove(creator, name)
	e.logger.Info("fixed price pool destroyed", zap.String("pool", name), zap.String("creator", creator.Hex()))
	e.recordSnapshot(mechFixedPrice, creator, name, 0, 0, model.PoolStateRemoved)
	return nil
}
