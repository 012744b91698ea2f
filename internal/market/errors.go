package market

import "errors"

// Configuration errors.
var (
	ErrInvalidPrice    = errors.New("price must be positive")
	ErrInvalidFraction = errors.New("fraction must be in [0, 1)")
	ErrInvalidWindow   = errors.New("malformed time window")
	ErrNoAssets        = errors.New("asset set is empty")
	ErrInvalidShares   = errors.New("share count must be positive")
	ErrInvalidCapacity = errors.New("player capacity must be positive")
	ErrInvalidName     = errors.New("pool name is empty")
)

// Existence errors.
var (
	ErrPoolNotFound = errors.New("pool not found")
	ErrNameTaken    = errors.New("pool name already taken")
)

// State errors.
var (
	ErrPoolNotOpen     = errors.New("pool not yet open")
	ErrPoolClosed      = errors.New("pool already closed")
	ErrPoolNotClosed   = errors.New("pool not yet closed")
	ErrPoolCanceled    = errors.New("pool is canceled")
	ErrAlreadyCanceled = errors.New("pool already canceled")
	ErrPoolNotEmpty    = errors.New("pool still holds assets")
	ErrBalancePending  = errors.New("pool still holds funds")
	ErrAlreadyClaimed  = errors.New("already claimed")
)

// Amount errors.
var (
	ErrPaymentTooLow      = errors.New("payment below required amount")
	ErrBidTooLow          = errors.New("bid does not exceed current bid")
	ErrInsufficientAssets = errors.New("not enough assets remaining")
	ErrPoolFull           = errors.New("player capacity reached")
	ErrAlreadyEntered     = errors.New("player already entered")
	ErrZeroUnits          = errors.New("payment buys zero units")
	ErrInvalidCount       = errors.New("count must be positive")
	ErrLotteryFilled      = errors.New("lottery filled its shares")
)

// Authorization errors. Creator-only operations need no sentinel of
// their own: pools are addressed by (creator, name), so a stranger's
// call resolves to ErrPoolNotFound.
var (
	ErrNotBidder  = errors.New("caller is not the winning bidder")
	ErrNotEntrant = errors.New("caller did not enter the pool")
)
