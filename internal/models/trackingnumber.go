package models

import (
	"time"

	"github.com/google/uuid"
)

// TrackingNumber — выданный трек-номер вместе с атрибутами запроса.
// Запись неизменяемая: один успешный прогон пайплайна = одна строка.
type TrackingNumber struct {
	ID         uint64
	TrackingID string

	// Shipment-форма запроса.
	OriginCountry      *string
	DestinationCountry *string
	Weight             *float64
	CustomerID         *uuid.UUID
	CustomerName       *string
	CustomerSlug       *string

	// Product-форма запроса.
	ProductID       *string
	ProductName     *string
	ProductCategory *string
	ProductPrice    *float64

	CreatedAt time.Time
}

// IssuedTrackingNumber is the caller-facing projection returned by the
// generation pipeline: the identifier plus a few echoed fields, never the
// whole record.
type IssuedTrackingNumber struct {
	TrackingID string    `json:"tracking_id"`
	CreatedAt  time.Time `json:"created_at"`

	OriginCountry      string `json:"origin_country_id,omitempty"`
	DestinationCountry string `json:"destination_country_id,omitempty"`
	CustomerSlug       string `json:"customer_slug,omitempty"`

	ProductID       string `json:"product_id,omitempty"`
	ProductCategory string `json:"product_category,omitempty"`
}

// GenerationRequest is the closed set of request shapes the pipeline accepts.
// The orchestrator switches on the concrete type exhaustively; adding a shape
// means adding a case there.
type GenerationRequest interface {
	isGenerationRequest()
}

// ShipmentRequest — origin/destination/customer variant. All fields are
// already validated by the HTTP layer.
type ShipmentRequest struct {
	OriginCountry      string
	DestinationCountry string
	Weight             float64
	CreatedAt          time.Time
	CustomerID         uuid.UUID
	CustomerName       string
	CustomerSlug       string
}

func (ShipmentRequest) isGenerationRequest() {}

// ProductRequest — product variant with a caller-supplied alphabetic prefix.
type ProductRequest struct {
	Prefix          string
	ProductID       string
	ProductName     string
	ProductCategory string
	ProductPrice    float64
	CreatedAt       time.Time
}

func (ProductRequest) isGenerationRequest() {}
