package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"vitashelf/internal/cart"
)

// CartStore persists cart snapshots in the cart_snapshots table, keyed by
// session id. It is the default cart.Store implementation.
type CartStore struct{ db *sqlx.DB }

func NewCartStore(db *sqlx.DB) *CartStore { return &CartStore{db: db} }

func (s *CartStore) Load(ctx context.Context, key string) (cart.Snapshot, bool, error) {
	var raw []byte
	err := s.db.GetContext(ctx, &raw, `SELECT snapshot FROM cart_snapshots WHERE session_id = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return cart.Snapshot{}, false, nil
	}
	if err != nil {
		return cart.Snapshot{}, false, err
	}
	// DecodeSnapshot fails open: a corrupt row restores as an empty cart.
	return cart.DecodeSnapshot(raw), true, nil
}

func (s *CartStore) Save(ctx context.Context, key string, snap cart.Snapshot) error {
	raw, err := cart.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
	  INSERT INTO cart_snapshots(session_id, snapshot, updated_at)
	  VALUES(?, ?, CURRENT_TIMESTAMP)
	  ON CONFLICT(session_id) DO UPDATE SET snapshot = excluded.snapshot, updated_at = CURRENT_TIMESTAMP
	`, key, raw)
	return err
}

func (s *CartStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cart_snapshots WHERE session_id = ?`, key)
	return err
}
