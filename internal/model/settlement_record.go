package model

// SettlementRecord captures one payment split for storage.
type SettlementRecord struct {
	Mechanism         string `json:"mechanism"`
	Owner             string `json:"owner"`
	PoolName          string `json:"pool_name"`
	Payer             string `json:"payer"`
	Payment           uint64 `json:"payment"`
	Fee               uint64 `json:"fee"`
	Royalty           uint64 `json:"royalty"`
	Proceeds          uint64 `json:"proceeds"`
	ProceedsRecipient string `json:"proceeds_recipient"`
	FeeRecipient      string `json:"fee_recipient"`
	RoyaltyRecipient  string `json:"royalty_recipient"`
	Timestamp         uint64 `json:"timestamp"`
}
