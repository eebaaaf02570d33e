package repos

import (
	"vitashelf/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `
  id, category_id, name, brand, COALESCE(description,'') AS description,
  price, original_price, package_info, COALESCE(images_json,'') AS images_json,
  stock, active, created_at, COALESCE(updated_at,'') AS updated_at`

func (r *ProductRepo) ListByCategory(catID string, limit, offset int) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.Select(&out, `
	  SELECT `+productCols+`
	  FROM products
	  WHERE category_id = ? AND active = 1
	  ORDER BY created_at DESC
	  LIMIT ? OFFSET ?
	`, catID, limit, offset)
	return out, err
}

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `
	  SELECT `+productCols+`
	  FROM products
	  WHERE id = ?
	`, id)
	return p, err
}

// Variants lists the variants of a product in label order.
func (r *ProductRepo) Variants(productID string) ([]domain.ProductVariant, error) {
	var out []domain.ProductVariant
	err := r.db.Select(&out, `
	  SELECT id, product_id, label, price, dosage, pack_qty, flavor
	  FROM product_variants
	  WHERE product_id = ?
	  ORDER BY label
	`, productID)
	return out, err
}

// Variant fetches one variant by its product-scoped id.
func (r *ProductRepo) Variant(productID, variantID string) (domain.ProductVariant, error) {
	var v domain.ProductVariant
	err := r.db.Get(&v, `
	  SELECT id, product_id, label, price, dosage, pack_qty, flavor
	  FROM product_variants
	  WHERE product_id = ? AND id = ?
	`, productID, variantID)
	return v, err
}

func (r *ProductRepo) Search(q, catID string, limit, offset int) ([]domain.Product, error) {
	where := `active = 1`
	args := []any{}
	if q != "" {
		where += ` AND (LOWER(name) LIKE ? OR LOWER(brand) LIKE ? OR LOWER(description) LIKE ?)`
		args = append(args, "%"+q+"%", "%"+q+"%", "%"+q+"%")
	}
	if catID != "" {
		where += ` AND category_id = ?`
		args = append(args, catID)
	}

	query := `
	  SELECT ` + productCols + `
	  FROM products
	  WHERE ` + where + `
	  ORDER BY created_at DESC
	  LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	var out []domain.Product
	err := r.db.Select(&out, query, args...)
	return out, err
}

// Upsert creates or updates a product (admin catalog management).
func (r *ProductRepo) Upsert(p domain.Product) error {
	_, err := r.db.Exec(`
	  INSERT INTO products(id, category_id, name, brand, description, price, original_price, package_info, images_json, stock, active, created_at)
	  VALUES(?,?,?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	  ON CONFLICT(id) DO UPDATE SET
	    category_id = excluded.category_id,
	    name = excluded.name,
	    brand = excluded.brand,
	    description = excluded.description,
	    price = excluded.price,
	    original_price = excluded.original_price,
	    package_info = excluded.package_info,
	    stock = excluded.stock,
	    active = excluded.active,
	    updated_at = CURRENT_TIMESTAMP
	`, p.ID, p.CategoryID, p.Name, p.Brand, p.Description, p.Price, p.OriginalPrice, p.PackageInfo, p.ImagesJSON, p.Stock, p.Active)
	return err
}

// UpsertVariant creates or updates a variant of a product.
func (r *ProductRepo) UpsertVariant(v domain.ProductVariant) error {
	_, err := r.db.Exec(`
	  INSERT INTO product_variants(id, product_id, label, price, dosage, pack_qty, flavor)
	  VALUES(?,?,?,?,?,?,?)
	  ON CONFLICT(product_id, id) DO UPDATE SET
	    label = excluded.label,
	    price = excluded.price,
	    dosage = excluded.dosage,
	    pack_qty = excluded.pack_qty,
	    flavor = excluded.flavor
	`, v.ID, v.ProductID, v.Label, v.Price, v.Dosage, v.PackQty, v.Flavor)
	return err
}

// Deactivate hides a product from the storefront without deleting history.
func (r *ProductRepo) Deactivate(id string) error {
	_, err := r.db.Exec(`UPDATE products SET active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	return err
}

// ListAll returns every product including inactive ones (admin view).
func (r *ProductRepo) ListAll() ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.Select(&out, `
	  SELECT `+productCols+`
	  FROM products
	  ORDER BY name
	`)
	return out, err
}
