package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketSettle/internal/model"
)

// Store provides Postgres persistence for settlement records and pool
// snapshots.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// PutSettlements inserts settlement records. Settlements are append-only.
func (s *Store) PutSettlements(records []model.SettlementRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO settlements (
				mechanism, owner_address, pool_name, payer, payment, fee, royalty, proceeds,
				proceeds_recipient, fee_recipient, royalty_recipient, settled_ts, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,now())
		`,
			r.Mechanism,
			r.Owner,
			r.PoolName,
			r.Payer,
			int64(r.Payment),
			int64(r.Fee),
			int64(r.Royalty),
			int64(r.Proceeds),
			r.ProceedsRecipient,
			r.FeeRecipient,
			r.RoyaltyRecipient,
			int64(r.Timestamp),
		)
	}

	return s.sendBatch(batch, len(records))
}

// UpsertPoolSnapshots inserts or updates the latest state per pool.
func (s *Store) UpsertPoolSnapshots(snapshots []model.PoolSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, snap := range snapshots {
		batch.Queue(`
			INSERT INTO pool_snapshots (
				mechanism, owner_address, pool_name, assets_remaining, held_balance, state, updated_ts, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,now(),now())
			ON CONFLICT (mechanism, owner_address, pool_name)
			DO UPDATE SET
				assets_remaining = EXCLUDED.assets_remaining,
				held_balance = EXCLUDED.held_balance,
				state = EXCLUDED.state,
				updated_ts = EXCLUDED.updated_ts,
				updated_at = now()
		`,
			snap.Mechanism,
			snap.Owner,
			snap.Name,
			snap.AssetsRemaining,
			int64(snap.HeldBalance),
			snap.State,
			int64(snap.UpdatedAt),
		)
	}

	return s.sendBatch(batch, len(snapshots))
}

// sendBatch executes a batch, retrying transient failures with backoff.
func (s *Store) sendBatch(batch *pgx.Batch, n int) error {
	return withRetry(context.Background(), 3, 200*time.Millisecond, func(ctx context.Context) error {
		br := s.pool.SendBatch(ctx, batch)
		for i := 0; i < n; i++ {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return err
			}
		}
		return br.Close()
	})
}
