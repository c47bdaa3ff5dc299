package tracknumbers_api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/BearBump/TrackMint/internal/models"
	"github.com/BearBump/TrackMint/internal/services/tracknumbers"
	"github.com/go-chi/chi/v5"
)

type Service interface {
	Generate(ctx context.Context, req models.GenerationRequest) (*models.IssuedTrackingNumber, error)
	GetByTrackingID(ctx context.Context, trackingID string) (*models.TrackingNumber, error)
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

type API struct {
	svc                Service
	rl                 RateLimiter
	rateLimitPerMinute int64
}

// New wires the handlers. The rate limiter is optional: pass nil to disable.
func New(svc Service, rl RateLimiter, rateLimitPerMinute int64) *API {
	return &API{svc: svc, rl: rl, rateLimitPerMinute: rateLimitPerMinute}
}

func (a *API) Routes(r chi.Router) {
	r.Get("/products/next-tracking-number", a.rateLimited(a.nextTrackingNumber))
	r.Post("/products/tracking-numbers", a.rateLimited(a.nextProductTrackingNumber))
	r.Get("/tracking-numbers/{trackingId}", a.getTrackingNumber)
}

// nextTrackingNumber — shipment-форма запроса через query-параметры,
// как в историческом GET /products/next-tracking-number.
func (a *API) nextTrackingNumber(w http.ResponseWriter, r *http.Request) {
	req, verr := parseShipmentRequest(r.URL.Query())
	if verr != "" {
		writeError(w, http.StatusBadRequest, verr)
		return
	}

	a.generate(w, r, req)
}

// nextProductTrackingNumber — product-форма через JSON-тело.
func (a *API) nextProductTrackingNumber(w http.ResponseWriter, r *http.Request) {
	var body productRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	req, verr := body.validate()
	if verr != "" {
		writeError(w, http.StatusBadRequest, verr)
		return
	}

	a.generate(w, r, req)
}

func (a *API) generate(w http.ResponseWriter, r *http.Request, req models.GenerationRequest) {
	out, err := a.svc.Generate(r.Context(), req)
	if err != nil {
		kind, _ := tracknumbers.KindOf(err)
		slog.Error("tracking number generation failed", "kind", string(kind), "err", err)
		switch kind {
		case tracknumbers.KindInvalidRequestShape:
			writeError(w, http.StatusBadRequest, "unsupported request shape")
		case tracknumbers.KindDuplicateIdentifier:
			writeError(w, http.StatusConflict, "tracking number already exists")
		default:
			writeError(w, http.StatusInternalServerError, "an error occurred while generating the tracking number")
		}
		return
	}

	slog.Info("tracking number issued", "tracking_id", out.TrackingID)
	writeJSON(w, http.StatusOK, out)
}

func (a *API) getTrackingNumber(w http.ResponseWriter, r *http.Request) {
	trackingID := chi.URLParam(r, "trackingId")

	rec, err := a.svc.GetByTrackingID(r.Context(), trackingID)
	if err != nil {
		slog.Error("tracking number lookup failed", "tracking_id", trackingID, "err", err)
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "tracking number not found")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(rec))
}

// rateLimited ограничивает выдачу по IP клиента. Ошибка лимитера не
// блокирует запрос: лимит — защита, а не источник отказов.
func (a *API) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	if a.rl == nil || a.rateLimitPerMinute <= 0 {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		ok, n, err := a.rl.Allow(r.Context(), "rl:generate:"+host, a.rateLimitPerMinute, time.Minute)
		if err == nil && !ok {
			slog.Warn("generation rate limit exceeded", "client", host, "count", n)
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next(w, r)
	}
}

type trackingNumberResponse struct {
	TrackingID string    `json:"tracking_id"`
	CreatedAt  time.Time `json:"created_at"`

	OriginCountry      *string  `json:"origin_country_id,omitempty"`
	DestinationCountry *string  `json:"destination_country_id,omitempty"`
	Weight             *float64 `json:"weight,omitempty"`
	CustomerID         string   `json:"customer_id,omitempty"`
	CustomerName       *string  `json:"customer_name,omitempty"`
	CustomerSlug       *string  `json:"customer_slug,omitempty"`

	ProductID       *string  `json:"product_id,omitempty"`
	ProductName     *string  `json:"product_name,omitempty"`
	ProductCategory *string  `json:"product_category,omitempty"`
	ProductPrice    *float64 `json:"product_price,omitempty"`
}

func toResponse(rec *models.TrackingNumber) trackingNumberResponse {
	resp := trackingNumberResponse{
		TrackingID:         rec.TrackingID,
		CreatedAt:          rec.CreatedAt,
		OriginCountry:      rec.OriginCountry,
		DestinationCountry: rec.DestinationCountry,
		Weight:             rec.Weight,
		CustomerName:       rec.CustomerName,
		CustomerSlug:       rec.CustomerSlug,
		ProductID:          rec.ProductID,
		ProductName:        rec.ProductName,
		ProductCategory:    rec.ProductCategory,
		ProductPrice:       rec.ProductPrice,
	}
	if rec.CustomerID != nil {
		resp.CustomerID = rec.CustomerID.String()
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
