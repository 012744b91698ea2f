package market

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"marketSettle/internal/ledger"
	"marketSettle/internal/model"
)

// Anti-snipe confirmation window bounds.
const (
	MinConfirmTime = 5 * 60
	MaxConfirmTime = 24 * 60 * 60
)

// EnglishAuctionPool runs an ascending auction over a single item. Unless
// fixedEnd is set, every accepted bid pushes the close out to now +
// confirmTime, so a last-instant bid can always be answered.
type EnglishAuctionPool struct {
	Creator     common.Address
	Name        string
	Terms       PoolTerms
	MinAmount   uint64
	// MinIncrease is recorded but advisory: a bid only has to strictly
	// exceed the current one.
	MinIncrease uint64
	ConfirmTime uint64
	OpenAt      uint64
	CloseAt     uint64
	FixedEnd    bool
	Item        ledger.Item
	HasBid      bool
	Bidder      common.Address
	Bid         *ledger.Balance
}

// EnglishAuctionParams configures a new english auction.
type EnglishAuctionParams struct {
	Name        string
	Item        ledger.Item
	MinAmount   uint64
	MinIncrease uint64
	OpenAt      uint64
	ConfirmTime uint64
	FixedEnd    bool
	Terms       PoolTerms
}

// CreateEnglishAuction escrows one item into a new auction. The close
// starts at openAt + confirmTime.
func (e *Engine) CreateEnglishAuction(creator common.Address, params EnglishAuctionParams) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if params.Name == "" {
		return ErrInvalidName
	}
	if params.MinAmount == 0 {
		return fmt.Errorf("english auction min amount: %w", ErrInvalidPrice)
	}
	if params.MinIncrease == 0 {
		return fmt.Errorf("english auction min increase: %w", ErrInvalidPrice)
	}
	if params.ConfirmTime < MinConfirmTime || params.ConfirmTime > MaxConfirmTime {
		return fmt.Errorf("confirm time %d outside [%d, %d]: %w", params.ConfirmTime, MinConfirmTime, MaxConfirmTime, ErrInvalidWindow)
	}
	params.Terms.normalize(creator)

	item, err := e.custody.Remove(creator, params.Item.Collection, params.Item.ID)
	if err != nil {
		return fmt.Errorf("escrow asset: %w", err)
	}

	pool := &EnglishAuctionPool{
		Creator:     creator,
		Name:        params.Name,
		Terms:       params.Terms,
		MinAmount:   params.MinAmount,
		MinIncrease: params.MinIncrease,
		ConfirmTime: params.ConfirmTime,
		OpenAt:      params.OpenAt,
		CloseAt:     params.OpenAt + params.ConfirmTime,
		FixedEnd:    params.FixedEnd,
		Item:        item,
	}
	if err := e.english.Add(creator, params.Name, pool); err != nil {
		e.custody.Deposit(creator, item)
		return err
	}

	e.logger.Info("english auction created",
		zap.String("pool", params.Name),
		zap.String("creator", creator.Hex()),
		zap.Uint64("min_amount", params.MinAmount),
		zap.Uint64("close_at", pool.CloseAt),
		zap.Bool("fixed_end", params.FixedEnd),
	)
	e.recordSnapshot(mechEnglishAuction, creator, params.Name, 1, 0, model.PoolStateOpen)
	return nil
}

// BidEnglish places a bid. The previous bidder, if any, is refunded in
// full; a rolling auction extends its close to now + confirmTime.
func (e *Engine) BidEnglish(bidder, owner common.Address, name string, amount uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool, err := e.english.Get(owner, name)
	if err != nil {
		return err
	}
	now := e.clock.Now()
	if now < pool.OpenAt {
		return fmt.Errorf("bid %q: %w", name, ErrPoolNotOpen)
	}
	if now >= pool.CloseAt {
		return fmt.Errorf("bid %q: %w", name, ErrPoolClosed)
	}
	if amount <= pool.MinAmount {
		return fmt.Errorf("bid %q: %d not above minimum %d: %w", name, amount, pool.MinAmount, ErrPaymentTooLow)
	}
	if pool.HasBid && amount <= pool.Bid.Value() {
		return fmt.Errorf("bid %q: %d not above current %d: %w", name, amount, pool.Bid.Value(), ErrBidTooLow)
	}

	held, err := e.funds.Withdraw(bidder, amount)
	if err != nil {
		return err
	}

	if pool.HasBid {
		refunded := pool.Bid.Value()
		e.funds.Deposit(pool.Bidder, pool.Bid)
		e.logger.Info("english auction refund",
			zap.String("pool", name),
			zap.String("bidder", pool.Bidder.Hex()),
			zap.Uint64("amount", refunded),
		)
	}

	pool.Bid = held
	pool.Bidder = bidder
	pool.HasBid = true
	if !pool.FixedEnd {
		pool.CloseAt = now + pool.ConfirmTime
	}

	e.logger.Info("english auction bid",
		zap.String("pool", name),
		zap.String("bidder", bidder.Hex()),
		zap.Uint64("amount", amount),
		zap.Uint64("close_at", pool.CloseAt),
	)
	e.recordSnapshot(mechEnglishAuction, owner, name, 1, amount, model.PoolStateOpen)
	return nil
}

// ClaimEnglishAsBidder settles the winning bid, hands the item to the
// bidder, and removes the auction. Only the recorded bidder, only after
// close. Removal makes the two claim paths mutually exclusive: whichever
// runs second observes a missing pool.
func (e *Engine) ClaimEnglishAsBidder(bidder, owner common.Address, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool, err := e.english.Get(owner, name)
	if err != nil {
		return err
	}
	if e.clock.Now() < pool.CloseAt {
		return fmt.Errorf("claim %q: %w", name, ErrPoolNotClosed)
	}
	if !pool.HasBid || pool.Bidder != bidder {
		return fmt.Errorf("claim %q: %w", name, ErrNotBidder)
	}

	st, err := settle(e.funds, pool.Bid, pool.Terms)
	if err != nil {
		return fmt.Errorf("settle bid: %w", err)
	}
	e.custody.Deposit(bidder, pool.Item)
	e.english.Remove(owner, name)

	e.logger.Info("english auction claimed by bidder",
		zap.String("pool", name),
		zap.String("bidder", bidder.Hex()),
		zap.Uint64("bid", st.Payment),
	)
	e.recordSettlement(mechEnglishAuction, owner, name, bidder, st, pool.Terms)
	e.recordSnapshot(mechEnglishAuction, owner, name, 0, 0, model.PoolStateRemoved)
	return nil
}

// ClaimEnglishAsCreator finalizes the auction from the creator's side
// after close. With a standing bid it settles the funds and delivers the
// item to the recorded bidder; with no bid it returns the item to the
// creator. Either way the pool is removed, so exactly one claim succeeds.
func (e *Engine) ClaimEnglishAsCreator(creator common.Address, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool, err := e.english.Get(creator, name)
	if err != nil {
		return err
	}
	if e.clock.Now() < pool.CloseAt {
		return fmt.Errorf("claim %q: %w", name, ErrPoolNotClosed)
	}

	if pool.HasBid {
		st, err := settle(e.funds, pool.Bid, pool.Terms)
		if err != nil {
			return fmt.Errorf("settle bid: %w", err)
		}
		e.custody.Deposit(pool.Bidder, pool.Item)
		e.english.Remove(creator, name)

		e.logger.Info("english auction claimed by creator",
			zap.String("pool", name),
			zap.String("winner", pool.Bidder.Hex()),
			zap.Uint64("bid", st.Payment),
		)
		e.recordSettlement(mechEnglishAuction, creator, name, pool.Bidder, st, pool.Terms)
		e.recordSnapshot(mechEnglishAuction, creator, name, 0, 0, model.PoolStateRemoved)
		return nil
	}

	e.custody.Deposit(creator, pool.Item)
	e.english.Remove(creator, name)

	e.logger.Info("english auction closed without bids",
		zap.String("pool", name),
		zap.String("creator", creator.Hex()),
	)
	e.recordSnapshot(mechEnglishAuction, creator, name, 0, 0, model.PoolStateRemoved)
	return nil
}
