package market

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"marketSettle/internal/ledger"
	"marketSettle/internal/model"
)

// LotteryPool collects deposits from entrants until close, then lets a
// deterministic permutation over the player ranks pick shareNum winners.
// The aggregated bids settle to whichever entrant claims first, winner or
// not.
type LotteryPool struct {
	Creator    common.Address
	Name       string
	Terms      PoolTerms
	CloseAt    uint64
	MaxPlayers uint64
	ShareNum   uint64
	Assets     []ledger.Item
	Players    []common.Address
	Claimed    map[common.Address]bool
	Bids       *ledger.Balance
	// LastHash accumulates per-bet entropy: keccak of (now, height,
	// previous). Not adversary-proof; see the notes on rollHash.
	LastHash uint64
}

// LotteryParams configures a new lottery pool.
type LotteryParams struct {
	Name       string
	CloseAt    uint64
	MaxPlayers uint64
	ShareNum   uint64
	Items      []ledger.Item
	Terms      PoolTerms
}

// CreateLotteryPool escrows the creator's items into a new lottery.
func (e *Engine) CreateLotteryPool(creator common.Address, params LotteryParams) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if params.Name == "" {
		return ErrInvalidName
	}
	if len(params.Items) == 0 {
		return fmt.Errorf("lottery: %w", ErrNoAssets)
	}
	if params.CloseAt <= e.clock.Now() {
		return fmt.Errorf("lottery close %d not in the future: %w", params.CloseAt, ErrInvalidWindow)
	}
	if params.ShareNum == 0 {
		return fmt.Errorf("lottery: %w", ErrInvalidShares)
	}
	if params.MaxPlayers == 0 {
		return fmt.Errorf("lottery: %w", ErrInvalidCapacity)
	}
	params.Terms.normalize(creator)

	assets, err := e.takeItems(creator, params.Items)
	if err != nil {
		return fmt.Errorf("escrow assets: %w", err)
	}

	pool := &LotteryPool{
		Creator:    creator,
		Name:       params.Name,
		Terms:      params.Terms,
		CloseAt:    params.CloseAt,
		MaxPlayers: params.MaxPlayers,
		ShareNum:   params.ShareNum,
		Assets:     assets,
		Claimed:    make(map[common.Address]bool),
		Bids:       ledger.Zero(),
	}
	if err := e.lottery.Add(creator, params.Name, pool); err != nil {
		e.returnItems(creator, assets)
		return err
	}

	e.logger.Info("lottery pool created",
		zap.String("pool", params.Name),
		zap.String("creator", creator.Hex()),
		zap.Uint64("close_at", params.CloseAt),
		zap.Uint64("max_players", params.MaxPlayers),
		zap.Uint64("share_num", params.ShareNum),
		zap.Int("assets", len(assets)),
	)
	e.recordSnapshot(mechLottery, creator, params.Name, len(assets), 0, model.PoolStateOpen)
	return nil
}

// BetLottery enters a player with a positive deposit, merged into the
// pool's aggregate balance, and folds the bet into the entropy
// accumulator.
func (e *Engine) BetLottery(player, owner common.Address, name string, amount uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool, err := e.lottery.Get(owner, name)
	if err != nil {
		return err
	}
	if amount == 0 {
		return fmt.Errorf("bet %q: %w", name, ErrPaymentTooLow)
	}
	now := e.clock.Now()
	if now >= pool.CloseAt {
		return fmt.Errorf("bet %q: %w", name, ErrPoolClosed)
	}
	if uint64(len(pool.Players)) >= pool.MaxPlayers {
		return fmt.Errorf("bet %q: %w", name, ErrPoolFull)
	}
	if pool.rank(player) != 0 {
		return fmt.Errorf("bet %q: %w", name, ErrAlreadyEntered)
	}

	held, err := e.funds.Withdraw(player, amount)
	if err != nil {
		return err
	}
	pool.Bids.Merge(held)
	pool.Players = append(pool.Players, player)
	pool.LastHash = rollHash(now, e.clock.Height(), pool.LastHash)

	e.logger.Info("lottery bet",
		zap.String("pool", name),
		zap.String("player", player.Hex()),
		zap.Uint64("amount", amount),
		zap.Int("players", len(pool.Players)),
	)
	e.recordSnapshot(mechLottery, owner, name, len(pool.Assets), pool.Bids.Value(), model.PoolStateOpen)
	return nil
}

// IsLotteryWinner reports whether an entrant wins once the pool is
// closed. With entrants at or below shareNum, everyone wins.
func (e *Engine) IsLotteryWinner(owner common.Address, name string, player common.Address) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool, err := e.lottery.Get(owner, name)
	if err != nil {
		return false, err
	}
	if e.clock.Now() < pool.CloseAt {
		return false, fmt.Errorf("winner %q: %w", name, ErrPoolNotClosed)
	}
	rank := pool.rank(player)
	if rank == 0 {
		return false, fmt.Errorf("winner %q: %w", name, ErrNotEntrant)
	}
	return selectWinner(rank, uint64(len(pool.Players)), pool.ShareNum, pool.LastHash), nil
}

// ClaimLottery resolves one entrant after close. A winner receives one
// escrowed item. Independently, the first claimant drains and settles the
// entire aggregate bid balance.
func (e *Engine) ClaimLottery(player, owner common.Address, name string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool, err := e.lottery.Get(owner, name)
	if err != nil {
		return false, err
	}
	if e.clock.Now() < pool.CloseAt {
		return false, fmt.Errorf("claim %q: %w", name, ErrPoolNotClosed)
	}
	rank := pool.rank(player)
	if rank == 0 {
		return false, fmt.Errorf("claim %q: %w", name, ErrNotEntrant)
	}
	if pool.Claimed[player] {
		return false, fmt.Errorf("claim %q: %w", name, ErrAlreadyClaimed)
	}

	won := selectWinner(rank, uint64(len(pool.Players)), pool.ShareNum, pool.LastHash)
	if won && len(pool.Assets) == 0 {
		return false, fmt.Errorf("claim %q: %w", name, ErrInsufficientAssets)
	}

	if pool.Bids.Value() > 0 {
		st, err := settle(e.funds, pool.Bids, pool.Terms)
		if err != nil {
			return false, fmt.Errorf("settle bids: %w", err)
		}
		e.recordSettlement(mechLottery, owner, name, player, st, pool.Terms)
		e.logger.Info("lottery bids settled",
			zap.String("pool", name),
			zap.String("claimant", player.Hex()),
			zap.Uint64("amount", st.Payment),
		)
	}

	if won {
		last := len(pool.Assets) - 1
		item := pool.Assets[last]
		pool.Assets = pool.Assets[:last]
		e.custody.Deposit(player, item)
	}
	pool.Claimed[player] = true

	e.logger.Info("lottery claim",
		zap.String("pool", name),
		zap.String("player", player.Hex()),
		zap.Bool("won", won),
		zap.Int("remaining", len(pool.Assets)),
	)
	e.recordSnapshot(mechLottery, owner, name, len(pool.Assets), pool.Bids.Value(), model.PoolStateSettled)
	return won, nil
}

// ClaimLotteryAsOwner drains the remaining assets back to the creator,
// valid only when the lottery under-filled (fewer entrants than shares,
// so every entrant already wins). The aggregate bid balance is left in
// place for a later entrant claim; this path never settles funds.
func (e *Engine) ClaimLotteryAsOwner(creator common.Address, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool, err := e.lottery.Get(creator, name)
	if err != nil {
		return err
	}
	if e.clock.Now() < pool.CloseAt {
		return fmt.Errorf("owner claim %q: %w", name, ErrPoolNotClosed)
	}
	if uint64(len(pool.Players)) >= pool.ShareNum {
		return fmt.Errorf("owner claim %q: %w", name, ErrLotteryFilled)
	}

	drained := len(pool.Assets)
	e.returnItems(creator, pool.Assets)
	pool.Assets = nil

	e.logger.Info("lottery drained by owner",
		zap.String("pool", name),
		zap.String("creator", creator.Hex()),
		zap.Int("drained", drained),
	)
	e.recordSnapshot(mechLottery, creator, name, 0, pool.Bids.Value(), model.PoolStateOpen)
	return nil
}

// DestroyLotteryPool removes the pool once no assets remain and no bid
// balance is pending.
func (e *Engine) DestroyLotteryPool(creator common.Address, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool, err := e.lottery.Get(creator, name)
	if err != nil {
		return err
	}
	if len(pool.Assets) > 0 {
		return fmt.Errorf("destroy %q: %w", name, ErrPoolNotEmpty)
	}
	if pool.Bids.Value() > 0 {
		return fmt.Errorf("destroy %q: %w", name, ErrBalancePending)
	}

	e.lottery.Remove(creator, name)
	e.logger.Info("lottery pool destroyed", zap.String("pool", name), zap.String("creator", creator.Hex()))
	e.recordSnapshot(mechLottery, creator, name, 0, 0, model.PoolStateRemoved)
	return nil
}

// rank returns the player's 1-based insertion order, or zero when absent.
func (p *LotteryPool) rank(player common.Address) uint64 {
	for i, entered := range p.Players {
		if entered == player {
			return uint64(i + 1)
		}
	}
	return 0
}
