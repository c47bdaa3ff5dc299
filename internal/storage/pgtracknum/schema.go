package pgtracknum

import (
	"context"

	"github.com/pkg/errors"
)

func (s *Storage) initSchema(ctx context.Context) error {
	stmts := []string{
		`
CREATE TABLE IF NOT EXISTS tracking_numbers (
  id BIGSERIAL PRIMARY KEY,
  tracking_id TEXT NOT NULL,
  origin_country TEXT NULL,
  destination_country TEXT NULL,
  weight NUMERIC(8,3) NULL,
  customer_id UUID NULL,
  customer_name TEXT NULL,
  customer_slug TEXT NULL,
  product_id TEXT NULL,
  product_name TEXT NULL,
  product_category TEXT NULL,
  product_price NUMERIC(12,2) NULL,
  created_at TIMESTAMPTZ NOT NULL,
  UNIQUE (tracking_id)
)`,
		// Product-форма: product_id тоже уникален, но колонка nullable.
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_tracking_numbers_product_id
  ON tracking_numbers(product_id) WHERE product_id IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_tracking_numbers_category_name
  ON tracking_numbers(product_category, product_name)`,
		`CREATE INDEX IF NOT EXISTS idx_tracking_numbers_customer_slug
  ON tracking_numbers(customer_slug)`,
	}

	if s.destSlugUnique {
		stmts = append(stmts, `
CREATE UNIQUE INDEX IF NOT EXISTS uq_tracking_numbers_dest_slug
  ON tracking_numbers(destination_country, customer_slug)
  WHERE destination_country IS NOT NULL AND customer_slug IS NOT NULL`)
	}

	for _, q := range stmts {
		if _, err := s.db.Exec(ctx, q); err != nil {
			return errors.Wrap(err, "init schema")
		}
	}
	return nil
}
