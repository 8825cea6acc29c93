package dto

import "github.com/shopspring/decimal"

// PlanResponse plan del catálogo.
type PlanResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	PriceLabel string          `json:"price_label"` // ej: "S/ 79.90"
	Features   []string        `json:"features"`
	Speed      *string         `json:"speed,omitempty"`
	IsActive   bool            `json:"is_active"`
}

// PlanSummary subconjunto del plan adjunto a una suscripción.
type PlanSummary struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}
