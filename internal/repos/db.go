package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed baseline data if DB is empty (categories/products/variants)
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	// Ensure users exist (idempotent; safe to run every start)
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Categories
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_nocase ON categories(LOWER(name));

-- Products
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
  name TEXT NOT NULL,
  brand TEXT NOT NULL DEFAULT '',
  description TEXT,
  price NUMERIC NOT NULL CHECK (price >= 0),
  original_price NUMERIC,
  package_info TEXT NOT NULL DEFAULT '',
  images_json TEXT,
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_category   ON products(category_id);
CREATE INDEX IF NOT EXISTS idx_products_name       ON products(LOWER(name));
CREATE INDEX IF NOT EXISTS idx_products_brand      ON products(LOWER(brand));
CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at);

-- Product variants (id unique within a product)
CREATE TABLE IF NOT EXISTS product_variants(
  id TEXT NOT NULL,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  label TEXT NOT NULL,
  price NUMERIC NOT NULL CHECK (price >= 0),
  dosage TEXT NOT NULL DEFAULT '',
  pack_qty INTEGER NOT NULL DEFAULT 0,
  flavor TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (product_id, id)
);
CREATE INDEX IF NOT EXISTS idx_variants_product ON product_variants(product_id);

-- Cart snapshots (serialized cart engine state, keyed by session)
CREATE TABLE IF NOT EXISTS cart_snapshots(
  session_id TEXT PRIMARY KEY,
  snapshot TEXT NOT NULL,
  updated_at TEXT
);

-- Favorites
CREATE TABLE IF NOT EXISTS favorites(
  session_id TEXT NOT NULL,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
  created_at TEXT,
  PRIMARY KEY (session_id, product_id)
);

-- Orders
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  session_id TEXT,
  customer_name TEXT,
  customer_email TEXT,
  subtotal NUMERIC NOT NULL,
  shipping NUMERIC NOT NULL,
  vat NUMERIC NOT NULL,
  total NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'PLACED',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);

CREATE TABLE IF NOT EXISTS order_items(
  order_id  TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL,
  variant_id TEXT NOT NULL DEFAULT '',
  name TEXT NOT NULL,
  variant_label TEXT NOT NULL DEFAULT '',
  qty INTEGER NOT NULL,
  price NUMERIC NOT NULL,
  PRIMARY KEY (order_id, product_id, variant_id)
);

-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','ADMIN')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo categories/products/variants")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO categories(id,name) VALUES
	  ('vitamins','Vitamins'),
	  ('minerals','Minerals'),
	  ('sports-nutrition','Sports Nutrition'),
	  ('herbal','Herbal Remedies')`)

	tx.MustExec(`INSERT INTO products(id,category_id,name,brand,description,price,original_price,package_info,images_json,stock) VALUES
	  ('d3-2000','vitamins','Vitamin D3 2000 IU','SunLeaf','Daily vitamin D supplement',6.50,NULL,'90 softgels','["products/d3-2000/main.jpg"]',120),
	  ('omega3-120','vitamins','Omega-3 Fish Oil','NordicPure','High-strength EPA/DHA capsules',19.90,24.90,'120 capsules','["products/omega3-120/main.jpg"]',45),
	  ('mag-400','minerals','Magnesium Citrate 400mg','Minerella','Highly absorbable magnesium',12.50,NULL,'180 tablets','["products/mag-400/main.jpg"]',60),
	  ('zinc-50','minerals','Zinc Picolinate 50mg','Minerella','Immune support zinc',8.90,NULL,'100 tablets','["products/zinc-50/main.jpg"]',80),
	  ('whey-1kg','sports-nutrition','Whey Protein Isolate','IronFuel','Fast-absorbing whey isolate',29.90,34.90,'1 kg tub','["products/whey-1kg/main.jpg"]',30),
	  ('ashwa-60','herbal','Ashwagandha Extract','VerdeVita','KSM-66 root extract',14.90,NULL,'60 capsules','["products/ashwa-60/main.jpg"]',50)`)

	tx.MustExec(`INSERT INTO product_variants(id,product_id,label,price,dosage,pack_qty,flavor) VALUES
	  ('caps-120','omega3-120','120 capsules',19.90,'1000 mg',120,''),
	  ('caps-240','omega3-120','240 capsules',34.90,'1000 mg',240,''),
	  ('vanilla','whey-1kg','Vanilla 1 kg',29.90,'',1,'vanilla'),
	  ('chocolate','whey-1kg','Chocolate 1 kg',31.90,'',1,'chocolate'),
	  ('strawberry','whey-1kg','Strawberry 1 kg',31.90,'',1,'strawberry')`)

	return tx.Commit()
}

// seedUsers ensures two USERs and one ADMIN exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Hash string
	}
	mk := func(id, email, name, role, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return u{ID: id, Email: email, Name: name, Role: role, Hash: string(h)}
	}

	users := []u{
		mk("u-alice", "alice@vitashelf.test", "Alice", "USER", "Passw0rd!"),
		mk("u-bob", "bob@vitashelf.test", "Bob", "USER", "Passw0rd!"),
		mk("u-admin", "admin@vitashelf.test", "Admin", "ADMIN", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash,role)
			VALUES(?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Role); err != nil {
			return err
		}
	}

	return tx.Commit()
}
