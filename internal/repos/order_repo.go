package repos

import (
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// ---------- Admin list summary ----------
type OrderSummary struct {
	ID            string          `db:"id"`
	SessionID     string          `db:"session_id"`
	CustomerName  string          `db:"customer_name"`
	CustomerEmail string          `db:"customer_email"`
	Total         decimal.Decimal `db:"total"`
	Status        string          `db:"status"`
	CreatedAt     string          `db:"created_at"`
}

// ---------- Order detail (used by /order/:id) ----------
type OrderRow struct {
	ID        string          `db:"id"`
	SessionID string          `db:"session_id"`
	UserID    string          `db:"user_id"`
	Customer  string          `db:"customer_name"`
	Email     string          `db:"customer_email"`
	Subtotal  decimal.Decimal `db:"subtotal"`
	Shipping  decimal.Decimal `db:"shipping"`
	VAT       decimal.Decimal `db:"vat"`
	Total     decimal.Decimal `db:"total"`
	Status    string          `db:"status"`
	CreatedAt string          `db:"created_at"`
}

type OrderItemRow struct {
	ProductID    string          `db:"product_id"`
	VariantID    string          `db:"variant_id"`
	Name         string          `db:"name"`
	VariantLabel string          `db:"variant_label"`
	Qty          int             `db:"qty"`
	Price        decimal.Decimal `db:"price"`
	Subtotal     decimal.Decimal `db:"subtotal"`
}

// Create inserts a new order header.
func (r *OrderRepo) Create(orderID, sessionID, name, email string, subtotal, shipping, vat, total decimal.Decimal) error {
	_, err := r.db.Exec(`
	  INSERT INTO orders
	    (id, session_id, customer_name, customer_email, subtotal, shipping, vat, total, status, created_at)
	  VALUES
	    (?,  ?,          ?,             ?,              ?,        ?,        ?,   ?,     'PLACED', CURRENT_TIMESTAMP)
	`, orderID, sessionID, name, email, subtotal, shipping, vat, total)
	return err
}

// InsertItem inserts a single line item.
func (r *OrderRepo) InsertItem(orderID, productID, variantID, name, variantLabel string, qty int, price decimal.Decimal) error {
	_, err := r.db.Exec(`
	  INSERT INTO order_items(order_id, product_id, variant_id, name, variant_label, qty, price)
	  VALUES(?, ?, ?, ?, ?, ?, ?)
	`, orderID, productID, variantID, name, variantLabel, qty, price)
	return err
}

func (r *OrderRepo) Get(orderID string) (OrderRow, []OrderItemRow, error) {
	var o OrderRow
	if err := r.db.Get(&o, `
		SELECT o.id, o.session_id, COALESCE(s.user_id,'') AS user_id, o.customer_name, o.customer_email,
		       o.subtotal, o.shipping, o.vat, o.total, o.status, o.created_at
		FROM orders o
		LEFT JOIN sessions s ON s.id = o.session_id
		WHERE o.id = ?
	`, orderID); err != nil {
		return OrderRow{}, nil, err
	}

	var items []OrderItemRow
	if err := r.db.Select(&items, `
		SELECT product_id, variant_id, name, variant_label, qty, price, (qty * price) AS subtotal
		FROM order_items
		WHERE order_id = ?
		ORDER BY name
	`, orderID); err != nil {
		return OrderRow{}, nil, err
	}

	return o, items, nil
}

func (r *OrderRepo) ListLatest(limit int) ([]OrderSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []OrderSummary
	err := r.db.Select(&out, `
		SELECT id, session_id, customer_name, customer_email, total, status, created_at
		FROM orders
		ORDER BY datetime(created_at) DESC
		LIMIT ?
	`, limit)
	return out, err
}

// ListByUser returns orders for a given user via session linkage.
func (r *OrderRepo) ListByUser(userID string) ([]OrderSummary, error) {
	var out []OrderSummary
	err := r.db.Select(&out, `
		SELECT o.id, o.session_id, o.customer_name, o.customer_email, o.total, o.status, o.created_at
		FROM orders o
		JOIN sessions s ON s.id = o.session_id
		WHERE s.user_id = ?
		ORDER BY datetime(o.created_at) DESC
	`, userID)
	return out, err
}

// ListBySession returns orders tied to a given session id (anon or pre-login orders).
func (r *OrderRepo) ListBySession(sessionID string) ([]OrderSummary, error) {
	var out []OrderSummary
	err := r.db.Select(&out, `
		SELECT id, session_id, customer_name, customer_email, total, status, created_at
		FROM orders
		WHERE session_id = ?
		ORDER BY datetime(created_at) DESC
	`, sessionID)
	return out, err
}

func (r *OrderRepo) UpdateStatus(id, status string) error {
	_, err := r.db.Exec(`UPDATE orders SET status = ? WHERE id = ?`, status, id)
	return err
}
