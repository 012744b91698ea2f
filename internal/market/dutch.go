package market

import (
	"fmt"
	"math/bits"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"marketSettle/internal/ledger"
	"marketSettle/internal/model"
)

// DutchAuctionPool sells escrowed items at a unit price that decays
// linearly from startingPrice at startAt to reservePrice at endAt.
type DutchAuctionPool struct {
	Creator       common.Address
	Name          string
	Terms         PoolTerms
	StartingPrice uint64
	ReservePrice  uint64
	StartAt       uint64
	EndAt         uint64
	Assets        []ledger.Item
}

// DutchAuctionParams configures a new dutch auction pool.
type DutchAuctionParams struct {
	Name          string
	StartingPrice uint64
	ReservePrice  uint64
	StartAt       uint64
	EndAt         uint64
	Items         []ledger.Item
	Terms         PoolTerms
}

// CreateDutchAuction escrows the creator's items into a new pool.
func (e *Engine) CreateDutchAuction(creator common.Address, params DutchAuctionParams) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if params.Name == "" {
		return ErrInvalidName
	}
	if params.ReservePrice == 0 || params.StartingPrice <= params.ReservePrice {
		return fmt.Errorf("dutch auction prices %d > %d > 0 required: %w", params.StartingPrice, params.ReservePrice, ErrInvalidPrice)
	}
	if params.EndAt <= params.StartAt {
		return fmt.Errorf("dutch auction window [%d, %d]: %w", params.StartAt, params.EndAt, ErrInvalidWindow)
	}
	if len(params.Items) == 0 {
		return fmt.Errorf("dutch auction: %w", ErrNoAssets)
	}
	params.Terms.normalize(creator)

	assets, err := e.takeItems(creator, params.Items)
	if err != nil {
		return fmt.Errorf("escrow assets: %w", err)
	}

	pool := &DutchAuctionPool{
		Creator:       creator,
		Name:          params.Name,
		Terms:         params.Terms,
		StartingPrice: params.StartingPrice,
		ReservePrice:  params.ReservePrice,
		StartAt:       params.StartAt,
		EndAt:         params.EndAt,
		Assets:        assets,
	}
	if err := e.dutch.Add(creator, params.Name, pool); err != nil {
		e.returnItems(creator, assets)
		return err
	}

	e.logger.Info("dutch auction created",
		zap.String("pool", params.Name),
		zap.String("creator", creator.Hex()),
		zap.Uint64("starting_price", params.StartingPrice),
		zap.Uint64("reserve_price", params.ReservePrice),
		zap.Int("assets", len(assets)),
	)
	e.recordSnapshot(mechDutchAuction, creator, params.Name, len(assets), 0, model.PoolStateOpen)
	return nil
}

// DutchPrice reports the pool's current unit price.
func (e *Engine) DutchPrice(owner common.Address, name string) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool, err := e.dutch.Get(owner, name)
	if err != nil {
		return 0, err
	}
	return CurrentPrice(pool.StartingPrice, pool.ReservePrice, pool.StartAt, pool.EndAt, e.clock.Now()), nil
}

// MintDutch settles the full payment against the current decayed price
// and hands count items to the buyer. Minting opens strictly after
// startAt.
func (e *Engine) MintDutch(buyer, owner common.Address, name string, payment, count uint64) ([]ledger.Item, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool, err := e.dutch.Get(owner, name)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("mint %q: %w", name, ErrInvalidCount)
	}
	now := e.clock.Now()
	if now <= pool.StartAt {
		return nil, fmt.Errorf("mint %q: %w", name, ErrPoolNotOpen)
	}
	price := CurrentPrice(pool.StartingPrice, pool.ReservePrice, pool.StartAt, pool.EndAt, now)
	hi, required := bits.Mul64(price, count)
	if hi != 0 || payment < required {
		return nil, fmt.Errorf("mint %q: payment %d below %d x %d: %w", name, payment, price, count, ErrPaymentTooLow)
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

	e.logger.Info("dutch auction mint",
		zap.String("pool", name),
		zap.String("buyer", buyer.Hex()),
		zap.Uint64("price", price),
		zap.Uint64("payment", payment),
		zap.Uint64("count", count),
		zap.Int("remaining", len(pool.Assets)),
	)
	e.recordSettlement(mechDutchAuction, owner, name, buyer, st, pool.Terms)
	e.recordSnapshot(mechDutchAuction, owner, name, len(pool.Assets), 0, model.PoolStateOpen)
	return minted, nil
}

// DestroyDutchAuction removes an empty pool entry.
func (e *Engine) DestroyDutchAuction(creator common.Address, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool, err := e.dutch.Get(creator, name)
	if err != nil {
		return err
	}
	if len(pool.Assets) > 0 {
		return fmt.Errorf("destroy %q: %w", name, ErrPoolNotEmpty)
	}

	e.dutch.Remove(creator, name)
	e.logger.Info("dutch auction destroyed", zap.String("pool", name), zap.String("creator", creator.Hex()))
	e.recordSnapshot(mechDutchAuction, creator, name, 0, 0, model.PoolStateRemoved)
	return nil
}
