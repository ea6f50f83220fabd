package postgres

import (
	"context"
	"fmt"
)

// schema is applied by Migrate. The partial unique index keeps at most one active
// policy per article even if two writers race past the row lock.
const schema = `
CREATE TABLE IF NOT EXISTS suppliers (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	discontinued_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS articles (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	stock_on_hand INTEGER NOT NULL DEFAULT 0 CHECK (stock_on_hand >= 0),
	annual_demand DOUBLE PRECISION,
	holding_cost DOUBLE PRECISION,
	inventory_model TEXT NOT NULL DEFAULT 'FixedLot',
	review_period_days INTEGER,
	default_supplier_id BIGINT REFERENCES suppliers(id),
	discontinued_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS supplier_terms (
	article_id BIGINT NOT NULL REFERENCES articles(id),
	supplier_id BIGINT NOT NULL REFERENCES suppliers(id),
	purchase_cost DOUBLE PRECISION NOT NULL,
	order_cost DOUBLE PRECISION NOT NULL,
	lead_time_days INTEGER,
	discontinued_at TIMESTAMPTZ,
	PRIMARY KEY (article_id, supplier_id)
);

CREATE TABLE IF NOT EXISTS inventory_policies (
	id BIGSERIAL PRIMARY KEY,
	article_id BIGINT NOT NULL REFERENCES articles(id),
	inventory_model TEXT NOT NULL,
	optimal_lot_size INTEGER,
	reorder_point INTEGER,
	safety_stock INTEGER,
	max_inventory_level INTEGER,
	created_at TIMESTAMPTZ NOT NULL,
	superseded_at TIMESTAMPTZ
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_inventory_policies_one_active
	ON inventory_policies (article_id) WHERE superseded_at IS NULL;

CREATE TABLE IF NOT EXISTS sales (
	id BIGSERIAL PRIMARY KEY,
	sold_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS sale_lines (
	id BIGSERIAL PRIMARY KEY,
	sale_id BIGINT NOT NULL REFERENCES sales(id),
	article_id BIGINT NOT NULL REFERENCES articles(id),
	quantity INTEGER NOT NULL CHECK (quantity >= 0)
);

CREATE INDEX IF NOT EXISTS idx_sale_lines_article ON sale_lines (article_id);
CREATE INDEX IF NOT EXISTS idx_sales_sold_at ON sales (sold_at);

CREATE TABLE IF NOT EXISTS purchase_orders (
	id BIGSERIAL PRIMARY KEY,
	supplier_id BIGINT NOT NULL REFERENCES suppliers(id),
	status INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS purchase_order_lines (
	id BIGSERIAL PRIMARY KEY,
	purchase_order_id BIGINT NOT NULL REFERENCES purchase_orders(id),
	article_id BIGINT NOT NULL REFERENCES articles(id),
	quantity INTEGER NOT NULL
);

-- rows loaded from seed files carry a stable ref so reloading skips them
ALTER TABLE sales ADD COLUMN IF NOT EXISTS source_ref TEXT;
ALTER TABLE purchase_orders ADD COLUMN IF NOT EXISTS source_ref TEXT;
CREATE UNIQUE INDEX IF NOT EXISTS idx_sales_source_ref ON sales (source_ref);
CREATE UNIQUE INDEX IF NOT EXISTS idx_purchase_orders_source_ref ON purchase_orders (source_ref);
`

// Migrate creates the schema if it does not exist yet
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
