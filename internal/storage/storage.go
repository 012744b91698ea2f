package storage

import "marketSettle/internal/model"

// Storage defines a sink for settlement records and pool snapshots.
type Storage interface {
	PutSettlements(records []model.SettlementRecord) error
	UpsertPoolSnapshots(snapshots []model.PoolSnapshot) error
}

// Nop discards everything. Useful for tests and pure in-memory runs.
type Nop struct{}

func (Nop) PutSettlements([]model.SettlementRecord) error  { return nil }
func (Nop) UpsertPoolSnapshots([]model.PoolSnapshot) error { return nil }

// Multi fans writes out to several sinks, stopping at the first error.
type Multi []Storage

func (m Multi) PutSettlements(records []model.SettlementRecord) error {
	for _, s := range m {
		if err := s.PutSettlements(records); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) UpsertPoolSnapshots(snapshots []model.PoolSnapshot) error {
	for _, s := range m {
		if err := s.UpsertPoolSnapshots(snapshots); err != nil {
			return err
		}
	}
	return nil
}
