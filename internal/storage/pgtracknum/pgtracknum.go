package pgtracknum

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// Классификация ошибок insert'а: оркестратору важно отличать конфликт
// уникальности (значение счётчика сгорает, ретраев нет) от недоступности
// стора (ретрай — дело вызывающей стороны).
var (
	ErrConflict    = errors.New("uniqueness conflict")
	ErrUnavailable = errors.New("record store unavailable")
)

type Storage struct {
	db *pgxpool.Pool

	destSlugUnique bool
}

type Option func(*Storage)

// WithDestinationSlugUnique enables the compound uniqueness constraint on
// (destination_country, customer_slug). Off by default: only some deployments
// want at most one open shipment per customer per destination.
func WithDestinationSlugUnique() Option {
	return func(s *Storage) { s.destSlugUnique = true }
}

func New(connString string, opts ...Option) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, errors.Wrap(err, "parse pg config")
	}

	db, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "connect pg")
	}

	s := &Storage{db: db}
	for _, o := range opts {
		o(s)
	}
	if err := s.initSchema(context.Background()); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Storage) Close() {
	if s.db != nil {
		s.db.Close()
	}
}
