package tracknumbers_api

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/BearBump/TrackMint/internal/models"
	"github.com/google/uuid"
)

var (
	rePrefix = regexp.MustCompile(`^[A-Za-z]{1,5}$`)
	reSlug   = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	reWeight = regexp.MustCompile(`^\d{1,5}(\.\d{1,3})?$`)
)

const (
	maxCustomerNameLen = 120
	maxCustomerSlugLen = 130
)

// parseShipmentRequest validates query params field by field and returns the
// first violation as a human-readable message, mirroring the rules the
// service has always enforced at this boundary.
func parseShipmentRequest(q url.Values) (models.ShipmentRequest, string) {
	var req models.ShipmentRequest

	origin := q.Get("origin_country_id")
	if origin == "" {
		return req, "origin_country_id query param must not be blank"
	}
	if !isISOCountry(origin) {
		return req, "origin_country_id must be an ISO 3166-1 alpha-2 country code"
	}

	dest := q.Get("destination_country_id")
	if dest == "" {
		return req, "destination_country_id query param must not be blank"
	}
	if !isISOCountry(dest) {
		return req, "destination_country_id must be an ISO 3166-1 alpha-2 country code"
	}

	weightStr := q.Get("weight")
	if weightStr == "" {
		return req, "weight is required"
	}
	if !reWeight.MatchString(weightStr) {
		return req, "weight must have up to 5 integer and 3 decimal digits"
	}
	weight, err := strconv.ParseFloat(weightStr, 64)
	if err != nil || weight < 0.001 {
		return req, "weight must be greater than 0"
	}

	createdAtStr := q.Get("created_at")
	if createdAtStr == "" {
		return req, "created_at query param is required"
	}
	createdAt, err := time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return req, "created_at query param must be in RFC 3339 format"
	}

	customerIDStr := q.Get("customer_id")
	if customerIDStr == "" {
		return req, "customer_id query param is required"
	}
	customerID, err := uuid.Parse(customerIDStr)
	if err != nil {
		return req, "please provide proper UUID for customer_id query param"
	}

	customerName := q.Get("customer_name")
	if customerName == "" {
		return req, "customer_name query param is required"
	}
	if len(customerName) > maxCustomerNameLen {
		return req, fmt.Sprintf("max size allowed for customer_name is %d characters", maxCustomerNameLen)
	}

	customerSlug := q.Get("customer_slug")
	if customerSlug == "" {
		return req, "customer_slug query param is required"
	}
	if len(customerSlug) > maxCustomerSlugLen {
		return req, fmt.Sprintf("max size allowed for customer_slug is %d characters", maxCustomerSlugLen)
	}
	if !reSlug.MatchString(customerSlug) {
		return req, "customer_slug query param must be in kebab-case"
	}

	req = models.ShipmentRequest{
		OriginCountry:      origin,
		DestinationCountry: dest,
		Weight:             weight,
		CreatedAt:          createdAt.UTC(),
		CustomerID:         customerID,
		CustomerName:       customerName,
		CustomerSlug:       customerSlug,
	}
	return req, ""
}

type productRequestBody struct {
	Prefix          string  `json:"prefix"`
	ProductID       string  `json:"product_id"`
	ProductName     string  `json:"product_name"`
	ProductCategory string  `json:"product_category"`
	ProductPrice    float64 `json:"product_price"`
	CreatedAt       string  `json:"created_at"`
}

func (b productRequestBody) validate() (models.ProductRequest, string) {
	var req models.ProductRequest

	if b.Prefix == "" {
		return req, "prefix must not be blank"
	}
	if !rePrefix.MatchString(b.Prefix) {
		return req, "prefix must contain only letters, max 5 characters"
	}
	if b.ProductID == "" {
		return req, "product_id is required"
	}
	if b.ProductName == "" {
		return req, "product_name is required"
	}
	if b.ProductCategory == "" {
		return req, "product_category is required"
	}
	if b.ProductPrice <= 0 {
		return req, "product_price must be positive"
	}

	var createdAt time.Time
	if b.CreatedAt != "" {
		t, err := time.Parse(time.RFC3339, b.CreatedAt)
		if err != nil {
			return req, "created_at must be in RFC 3339 format"
		}
		createdAt = t.UTC()
	}

	req = models.ProductRequest{
		Prefix:          b.Prefix,
		ProductID:       b.ProductID,
		ProductName:     b.ProductName,
		ProductCategory: b.ProductCategory,
		ProductPrice:    b.ProductPrice,
		CreatedAt:       createdAt,
	}
	return req, ""
}
