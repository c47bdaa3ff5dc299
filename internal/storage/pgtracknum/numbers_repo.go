package pgtracknum

import (
	"context"

	"github.com/BearBump/TrackMint/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

const pgUniqueViolation = "23505"

// InsertTrackingNumber persists one issued tracking number and assigns its
// primary key. Returns ErrConflict when any uniqueness constraint fires and
// ErrUnavailable for everything else (connectivity, timeout), so the caller
// can tell the two apart.
func (s *Storage) InsertTrackingNumber(ctx context.Context, rec *models.TrackingNumber) (*models.TrackingNumber, error) {
	err := s.db.QueryRow(ctx, `
INSERT INTO tracking_numbers (
  tracking_id,
  origin_country, destination_country, weight,
  customer_id, customer_name, customer_slug,
  product_id, product_name, product_category, product_price,
  created_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
RETURNING id
`,
		rec.TrackingID,
		rec.OriginCountry, rec.DestinationCountry, rec.Weight,
		rec.CustomerID, rec.CustomerName, rec.CustomerSlug,
		rec.ProductID, rec.ProductName, rec.ProductCategory, rec.ProductPrice,
		rec.CreatedAt,
	).Scan(&rec.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, errors.Wrapf(ErrConflict, "constraint %s", pgErr.ConstraintName)
		}
		return nil, errors.Wrapf(ErrUnavailable, "insert tracking number: %v", err)
	}

	return rec, nil
}

// GetByTrackingID returns (nil, nil) when no record exists.
func (s *Storage) GetByTrackingID(ctx context.Context, trackingID string) (*models.TrackingNumber, error) {
	var rec models.TrackingNumber
	err := s.db.QueryRow(ctx, `
SELECT
  id, tracking_id,
  origin_country, destination_country, weight,
  customer_id, customer_name, customer_slug,
  product_id, product_name, product_category, product_price,
  created_at
FROM tracking_numbers
WHERE tracking_id = $1
`, trackingID).Scan(
		&rec.ID, &rec.TrackingID,
		&rec.OriginCountry, &rec.DestinationCountry, &rec.Weight,
		&rec.CustomerID, &rec.CustomerName, &rec.CustomerSlug,
		&rec.ProductID, &rec.ProductName, &rec.ProductCategory, &rec.ProductPrice,
		&rec.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(ErrUnavailable, "select tracking number: %v", err)
	}
	return &rec, nil
}
