package sqlstore

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
  product_id      TEXT PRIMARY KEY,
  description     TEXT NOT NULL,
  catalog_group   TEXT NOT NULL DEFAULT '',
  sales_multiple  INTEGER NOT NULL DEFAULT 1,
  combined_group  TEXT NOT NULL DEFAULT '',
  unit_price      TEXT NOT NULL DEFAULT '0'
)`,
	`CREATE TABLE IF NOT EXISTS combined_group_members (
  seq         {{serial}},
  group_id    TEXT NOT NULL,
  product_id  TEXT NOT NULL,
  UNIQUE (group_id, product_id)
)`,
	`CREATE TABLE IF NOT EXISTS movements (
  movement_id  TEXT PRIMARY KEY,
  product_id   TEXT NOT NULL,
  branch_id    TEXT NOT NULL,
  kind         TEXT NOT NULL,
  quantity     BIGINT NOT NULL,
  unit_price   TEXT NOT NULL DEFAULT '0',
  occurred_at  BIGINT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_movements_branch_time ON movements (branch_id, kind, occurred_at)`,
	`CREATE INDEX IF NOT EXISTS idx_movements_product ON movements (product_id, occurred_at)`,
	`CREATE TABLE IF NOT EXISTS stock (
  product_id  TEXT NOT NULL,
  branch_id   TEXT NOT NULL,
  on_hand     BIGINT NOT NULL DEFAULT 0,
  reserved    BIGINT NOT NULL DEFAULT 0,
  PRIMARY KEY (product_id, branch_id)
)`,
	`CREATE TABLE IF NOT EXISTS minimum_stock (
  product_id       TEXT NOT NULL,
  branch_id        TEXT NOT NULL,
  calculated       BIGINT NOT NULL DEFAULT 0,
  manual_override  BIGINT,
  class            TEXT NOT NULL DEFAULT 'C',
  safety_factor    TEXT NOT NULL DEFAULT '0',
  trend_factor     TEXT NOT NULL DEFAULT '0',
  seasonal_factor  TEXT NOT NULL DEFAULT '0',
  lead_time_days   INTEGER NOT NULL DEFAULT 0,
  sales_180        BIGINT NOT NULL DEFAULT 0,
  sales_90         BIGINT NOT NULL DEFAULT 0,
  sales_previous   BIGINT NOT NULL DEFAULT 0,
  computed_at      BIGINT NOT NULL DEFAULT 0,
  updated_at       BIGINT NOT NULL DEFAULT 0,
  PRIMARY KEY (product_id, branch_id)
)`,
	`CREATE INDEX IF NOT EXISTS idx_minimum_stock_branch ON minimum_stock (branch_id)`,
	`CREATE TABLE IF NOT EXISTS minimum_stock_history (
  seq              {{serial}},
  entry_id         TEXT NOT NULL UNIQUE,
  product_id       TEXT NOT NULL,
  branch_id        TEXT NOT NULL,
  kind             TEXT NOT NULL,
  previous_value   BIGINT,
  new_value        BIGINT NOT NULL,
  percent_change   TEXT,
  class            TEXT NOT NULL DEFAULT 'C',
  safety_factor    TEXT NOT NULL DEFAULT '0',
  trend_factor     TEXT NOT NULL DEFAULT '0',
  seasonal_factor  TEXT NOT NULL DEFAULT '0',
  lead_time_days   INTEGER NOT NULL DEFAULT 0,
  created_at       BIGINT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_minimum_stock_history_key ON minimum_stock_history (product_id, branch_id, seq)`,
}
