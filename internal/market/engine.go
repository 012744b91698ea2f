package market

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"marketSettle/internal/ledger"
	"marketSettle/internal/model"
	"marketSettle/internal/storage"
)

// Mechanism names as persisted in records.
const (
	mechFixedPrice     = "fixed_price"
	mechBlindBox       = "blind_box"
	mechEnglishAuction = "english_auction"
	mechDutchAuction   = "dutch_auction"
	mechLottery        = "lottery"
)

// Engine owns the pool registries and drives every mechanism against the
// fungible and custody ledgers. Each public operation is atomic: all
// precondition checks run before any mutation, and the single failable
// mid-operation step (settlement) restores the payment on failure.
// Operations are serialized by one mutex, matching the total-order
// execution model of the host environment.
type Engine struct {
	mu      sync.Mutex
	funds   *ledger.Ledger
	custody *ledger.Custody
	clock   ledger.Clock
	logger  *zap.Logger
	sink    storage.Storage

	fixed   *Registry[FixedPricePool]
	blind   *Registry[BlindBoxPool]
	english *Registry[EnglishAuctionPool]
	dutch   *Registry[DutchAuctionPool]
	lottery *Registry[LotteryPool]
}

func NewEngine(funds *ledger.Ledger, custody *ledger.Custody, clock ledger.Clock, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		funds:   funds,
		custody: custody,
		clock:   clock,
		logger:  logger,
		sink:    storage.Nop{},
		fixed:   NewRegistry[FixedPricePool](),
		blind:   NewRegistry[BlindBoxPool](),
		english: NewRegistry[EnglishAuctionPool](),
		dutch:   NewRegistry[DutchAuctionPool](),
		lottery: NewRegistry[LotteryPool](),
	}
}

// WithStorage attaches a record sink. Sink failures are logged, never
// surfaced: persisted records are observational, not transactional state.
func (e *Engine) WithStorage(sink storage.Storage) *Engine {
	if sink != nil {
		e.sink = sink
	}
	return e
}

// Funds exposes the fungible ledger for provisioning and inspection.
func (e *Engine) Funds() *ledger.Ledger {
	return e.funds
}

// Custody exposes the custody ledger for provisioning and inspection.
func (e *Engine) Custody() *ledger.Custody {
	return e.custody
}

// takeItems escrows items out of the creator's custody, rolling back on a
// missing item so creation has no partial effect.
func (e *Engine) takeItems(creator common.Address, items []ledger.Item) ([]ledger.Item, error) {
	taken := make([]ledger.Item, 0, len(items))
	for _, item := range items {
		removed, err := e.custody.Remove(creator, item.Collection, item.ID)
		if err != nil {
			for _, r := range taken {
				e.custody.Deposit(creator, r)
			}
			return nil, err
		}
		taken = append(taken, removed)
	}
	return taken, nil
}

// returnItems hands escrowed items back to an account.
func (e *Engine) returnItems(account common.Address, items []ledger.Item) {
	for _, item := range items {
		e.custody.Deposit(account, item)
	}
}

func (e *Engine) recordSettlement(mechanism string, owner common.Address, name string, payer common.Address, st Settlement, terms PoolTerms) {
	record := model.SettlementRecord{
		Mechanism:         mechanism,
		Owner:             owner.Hex(),
		PoolName:          name,
		Payer:             payer.Hex(),
		Payment:           st.Payment,
		Fee:               st.Fee,
		Royalty:           st.Royalty,
		Proceeds:          st.Proceeds,
		ProceedsRecipient: terms.CoinRecipient.Hex(),
		FeeRecipient:      terms.FeeRecipient.Hex(),
		RoyaltyRecipient:  terms.RoyaltyRecipient.Hex(),
		Timestamp:         e.clock.Now(),
	}
	if err := e.sink.PutSettlements([]model.SettlementRecord{record}); err != nil {
		e.logger.Warn("store settlement record", zap.Error(err))
	}
}

func (e *Engine) recordSnapshot(mechanism string, owner common.Address, name string, assets int, held uint64, state string) {
	snap := model.PoolSnapshot{
		Mechanism:       mechanism,
		Owner:           owner.Hex(),
		Name:            name,
		AssetsRemaining: assets,
		HeldBalance:     held,
		State:           state,
		UpdatedAt:       e.clock.Now(),
	}
	if err := e.sink.UpsertPoolSnapshots([]model.PoolSnapshot{snap}); err != nil {
		e.logger.Warn("store pool snapshot", zap.Error(err))
	}
}
