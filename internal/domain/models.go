package domain

import "github.com/shopspring/decimal"

type Category struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

type Product struct {
	ID            string              `db:"id"`
	CategoryID    string              `db:"category_id"`
	Name          string              `db:"name"`
	Brand         string              `db:"brand"`
	Description   string              `db:"description"`
	Price         decimal.Decimal     `db:"price"`
	OriginalPrice decimal.NullDecimal `db:"original_price"` // pre-discount price, shown struck through
	PackageInfo   string              `db:"package_info"`
	ImagesJSON    string              `db:"images_json"`
	Stock         int                 `db:"stock"`
	Active        bool                `db:"active"`
	CreatedAt     string              `db:"created_at"`
	UpdatedAt     string              `db:"updated_at"`
}

// ProductVariant is a purchasable variation of a product (dosage, package
// size, flavor). Its price replaces the product base price when selected.
type ProductVariant struct {
	ID        string          `db:"id"` // unique within the product
	ProductID string          `db:"product_id"`
	Label     string          `db:"label"`
	Price     decimal.Decimal `db:"price"`
	Dosage    string          `db:"dosage"`
	PackQty   int             `db:"pack_qty"`
	Flavor    string          `db:"flavor"`
}
