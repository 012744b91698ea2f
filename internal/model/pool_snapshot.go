package model

// Pool lifecycle states as persisted.
const (
	PoolStateOpen     = "open"
	PoolStateCanceled = "canceled"
	PoolStateSettled  = "settled"
	PoolStateRemoved  = "removed"
)

// PoolSnapshot records the observable state of a pool after a mutation.
type PoolSnapshot struct {
	Mechanism       string `json:"mechanism"`
	Owner           string `json:"owner"`
	Name            string `json:"name"`
	AssetsRemaining int    `json:"assets_remaining"`
	HeldBalance     uint64 `json:"held_balance"`
	State           string `json:"state"`
	UpdatedAt       uint64 `json:"updated_at"`
}
