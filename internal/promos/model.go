package promos

import (
	"database/sql"
	"time"
)

const table = "promos"

// Promo is a time-boxed offer published by a business.
type Promo struct {
	ID           string    `json:"id"`
	BusinessID   string    `json:"business_id"`
	BusinessName string    `json:"business_name,omitempty"`
	Title        string    `json:"title"`
	Desc         string    `json:"desc,omitempty"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	Active       bool      `json:"active"`
}

// IsActiveAt reports whether the promo is switched on and t falls inside
// its window, bounds included.
func (p Promo) IsActiveAt(t time.Time) bool {
	return p.Active && !t.Before(p.StartsAt) && !t.After(p.EndsAt)
}

// NewPromo is the input for Create. Active defaults to true when nil.
type NewPromo struct {
	ID         string    `json:"id" validate:"omitempty,max=64"`
	BusinessID string    `json:"business_id" validate:"required"`
	Title      string    `json:"title" validate:"required,max=200"`
	Desc       string    `json:"desc" validate:"max=1000"`
	StartsAt   time.Time `json:"starts_at" validate:"required"`
	EndsAt     time.Time `json:"ends_at" validate:"required,gtefield=StartsAt"`
	Active     *bool     `json:"active"`
}

type row struct {
	ID           string         `gorm:"column:id"`
	BusinessID   string         `gorm:"column:business_id"`
	BusinessName sql.NullString `gorm:"column:business_name"`
	Title        string         `gorm:"column:title"`
	Desc         sql.NullString `gorm:"column:desc"`
	StartsAt     string         `gorm:"column:starts_at"`
	EndsAt       string         `gorm:"column:ends_at"`
	Active       int64          `gorm:"column:active"`
}
