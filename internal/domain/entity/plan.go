package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plan plan comercial (internet/cable). Se administra fuera de esta API.
type Plan struct {
	ID        string
	Name      string
	Price     decimal.Decimal // soles (PEN)
	Features  []string
	Speed     *string
	IsActive  bool
	CreatedAt time.Time
}
