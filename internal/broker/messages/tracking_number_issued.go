package messages

import "time"

// TrackingNumberIssued — событие о выданном трек-номере. Это минимальная
// проекция записи, а не вся сущность: только идентификатор, метка времени и
// поля, по которым потребитель соотнесёт событие с исходным запросом.
type TrackingNumberIssued struct {
	TrackingID string    `json:"tracking_id"`
	CreatedAt  time.Time `json:"created_at"`

	OriginCountry      string `json:"origin_country_id,omitempty"`
	DestinationCountry string `json:"destination_country_id,omitempty"`
	CustomerID         string `json:"customer_id,omitempty"`
	CustomerSlug       string `json:"customer_slug,omitempty"`

	ProductID       string `json:"product_id,omitempty"`
	ProductCategory string `json:"product_category,omitempty"`
}
