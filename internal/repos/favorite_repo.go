package repos

import (
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type FavoriteRepo struct{ db *sqlx.DB }

func NewFavoriteRepo(db *sqlx.DB) *FavoriteRepo { return &FavoriteRepo{db: db} }

func (r *FavoriteRepo) Add(sessionID, productID string) error {
	_, err := r.db.Exec(`
	  INSERT INTO favorites(session_id, product_id, created_at)
	  VALUES(?, ?, CURRENT_TIMESTAMP)
	  ON CONFLICT(session_id, product_id) DO NOTHING
	`, sessionID, productID)
	return err
}

func (r *FavoriteRepo) Remove(sessionID, productID string) error {
	_, err := r.db.Exec(`DELETE FROM favorites WHERE session_id=? AND product_id=?`, sessionID, productID)
	return err
}

type FavoriteRow struct {
	ProductID string          `db:"product_id"`
	Name      string          `db:"name"`
	Brand     string          `db:"brand"`
	Price     decimal.Decimal `db:"price"`
	Active    bool            `db:"active"`
}

func (r *FavoriteRepo) List(sessionID string) ([]FavoriteRow, error) {
	var out []FavoriteRow
	err := r.db.Select(&out, `
	  SELECT p.id AS product_id, p.name, p.brand, p.price, p.active
	  FROM favorites f
	  JOIN products p ON p.id = f.product_id
	  WHERE f.session_id = ?
	  ORDER BY p.name
	`, sessionID)
	return out, err
}
