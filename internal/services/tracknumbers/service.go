package tracknumbers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/BearBump/TrackMint/internal/broker/messages"
	"github.com/BearBump/TrackMint/internal/cache"
	"github.com/BearBump/TrackMint/internal/idformat"
	"github.com/BearBump/TrackMint/internal/models"
	"github.com/BearBump/TrackMint/internal/storage/pgtracknum"
	"github.com/pkg/errors"
)

type Repository interface {
	InsertTrackingNumber(ctx context.Context, rec *models.TrackingNumber) (*models.TrackingNumber, error)
	GetByTrackingID(ctx context.Context, trackingID string) (*models.TrackingNumber, error)
}

type Counter interface {
	Allocate(ctx context.Context, key string) (int64, error)
}

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// Config — ключ счётчика и топик приходят снаружи, не из констант: несколько
// инстансов пайплайна (например, по тенанту) не должны делить ключ.
type Config struct {
	CounterKey  string
	Topic       string
	CallTimeout time.Duration
	CurrentTTL  time.Duration
}

// Service последовательно гоняет пайплайн выдачи: счётчик → форматирование →
// запись → событие. Состояния между вызовами нет, всё разделяемое живёт в
// Redis и Postgres.
type Service struct {
	repo     Repository
	counter  Counter
	producer Producer
	cache    cache.BytesCache
	cfg      Config
}

func New(repo Repository, counter Counter, producer Producer, c cache.BytesCache, cfg Config) *Service {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 5 * time.Second
	}
	return &Service{repo: repo, counter: counter, producer: producer, cache: c, cfg: cfg}
}

// Generate issues one tracking number. Exactly one allocation attempt per
// call; every failure is terminal for this invocation — retry policy belongs
// to the caller, otherwise an internal retry would silently burn counter
// values.
func (s *Service) Generate(ctx context.Context, req models.GenerationRequest) (*models.IssuedTrackingNumber, error) {
	prefix, rec, err := recordFromRequest(req)
	if err != nil {
		return nil, err
	}

	n, err := s.allocate(ctx)
	if err != nil {
		// Ничего не записано и не опубликовано: падаем сразу.
		return nil, genErr(KindAllocation, err, "allocate counter %q", s.cfg.CounterKey)
	}

	rec.TrackingID = idformat.Format(prefix, n)

	persisted, err := s.persist(ctx, rec)
	if err != nil {
		if errors.Is(err, pgtracknum.ErrConflict) {
			// Значение счётчика сгорает: с тем же идентификатором не ретраим,
			// событий не шлём.
			return nil, genErr(KindDuplicateIdentifier, err, "tracking number %s already exists", rec.TrackingID)
		}
		return nil, genErr(KindPersistence, err, "persist tracking number %s", rec.TrackingID)
	}

	if err := s.publish(ctx, persisted); err != nil {
		// Запись уже в базе; компенсирующий delete гонялся бы с читателями,
		// поэтому остаётся orphan-success: потребители сверяются со стором.
		return nil, genErr(KindPublish, err, "publish tracking number %s", persisted.TrackingID)
	}

	return projection(persisted), nil
}

func (s *Service) allocate(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()
	return s.counter.Allocate(ctx, s.cfg.CounterKey)
}

func (s *Service) persist(ctx context.Context, rec *models.TrackingNumber) (*models.TrackingNumber, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()
	return s.repo.InsertTrackingNumber(ctx, rec)
}

func (s *Service) publish(ctx context.Context, rec *models.TrackingNumber) error {
	msg := messages.TrackingNumberIssued{
		TrackingID:         rec.TrackingID,
		CreatedAt:          rec.CreatedAt,
		OriginCountry:      deref(rec.OriginCountry),
		DestinationCountry: deref(rec.DestinationCountry),
		CustomerSlug:       deref(rec.CustomerSlug),
		ProductID:          deref(rec.ProductID),
		ProductCategory:    deref(rec.ProductCategory),
	}
	if rec.CustomerID != nil {
		msg.CustomerID = rec.CustomerID.String()
	}
	value, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "marshal issued event")
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()
	return s.producer.Publish(ctx, s.cfg.Topic, []byte(rec.TrackingID), value)
}

// recordFromRequest dispatches on the closed set of request shapes and builds
// the record-to-be (tracking id is filled in after allocation).
func recordFromRequest(req models.GenerationRequest) (string, *models.TrackingNumber, error) {
	switch r := req.(type) {
	case models.ShipmentRequest:
		rec := &models.TrackingNumber{
			OriginCountry:      &r.OriginCountry,
			DestinationCountry: &r.DestinationCountry,
			Weight:             &r.Weight,
			CustomerID:         &r.CustomerID,
			CustomerName:       &r.CustomerName,
			CustomerSlug:       &r.CustomerSlug,
			CreatedAt:          createdAt(r.CreatedAt),
		}
		return r.OriginCountry, rec, nil
	case models.ProductRequest:
		rec := &models.TrackingNumber{
			ProductID:       &r.ProductID,
			ProductName:     &r.ProductName,
			ProductCategory: &r.ProductCategory,
			ProductPrice:    &r.ProductPrice,
			CreatedAt:       createdAt(r.CreatedAt),
		}
		return strings.ToUpper(r.Prefix), rec, nil
	default:
		return "", nil, genErr(KindInvalidRequestShape, nil, "unsupported request shape %T", req)
	}
}

// GetByTrackingID возвращает сохранённую запись, сперва пробуя кэш.
// Кэш — best effort: любая его ошибка означает поход в базу.
func (s *Service) GetByTrackingID(ctx context.Context, trackingID string) (*models.TrackingNumber, error) {
	if trackingID == "" {
		return nil, errors.New("trackingId is required")
	}

	if s.cache != nil && s.cfg.CurrentTTL > 0 {
		if b, ok, err := s.cache.Get(ctx, currentKey(trackingID)); err == nil && ok {
			var rec models.TrackingNumber
			if json.Unmarshal(b, &rec) == nil {
				return &rec, nil
			}
		}
	}

	rec, err := s.repo.GetByTrackingID(ctx, trackingID)
	if err != nil {
		return nil, err
	}
	if rec != nil && s.cache != nil && s.cfg.CurrentTTL > 0 {
		b, _ := json.Marshal(rec)
		_ = s.cache.Set(ctx, currentKey(trackingID), b, s.cfg.CurrentTTL)
	}
	return rec, nil
}

// ApplyIssuedEvent прогревает кэш по событию из Kafka: перечитываем запись из
// базы и кладём её целиком.
func (s *Service) ApplyIssuedEvent(ctx context.Context, msg messages.TrackingNumberIssued) error {
	if msg.TrackingID == "" {
		return errors.New("tracking_id is required")
	}
	if s.cache == nil || s.cfg.CurrentTTL <= 0 {
		return nil
	}

	rec, err := s.repo.GetByTrackingID(ctx, msg.TrackingID)
	if err != nil {
		return err
	}
	if rec == nil {
		// Событие могло обогнать реплику стора; просто пропускаем.
		return nil
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "marshal record for cache")
	}
	return s.cache.Set(ctx, currentKey(msg.TrackingID), b, s.cfg.CurrentTTL)
}

func projection(rec *models.TrackingNumber) *models.IssuedTrackingNumber {
	return &models.IssuedTrackingNumber{
		TrackingID:         rec.TrackingID,
		CreatedAt:          rec.CreatedAt,
		OriginCountry:      deref(rec.OriginCountry),
		DestinationCountry: deref(rec.DestinationCountry),
		CustomerSlug:       deref(rec.CustomerSlug),
		ProductID:          deref(rec.ProductID),
		ProductCategory:    deref(rec.ProductCategory),
	}
}

func createdAt(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func currentKey(trackingID string) string {
	return fmt.Sprintf("tracknum:%s:current", trackingID)
}
