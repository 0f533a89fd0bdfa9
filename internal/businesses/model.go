package businesses

import (
	"database/sql"
	"time"

	"github.com/verifi-app/verifi-backend/pkg/enums"
)

const table = "businesses"

// Business is a directory listing as the screens consume it.
type Business struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Categories []string          `json:"categories"`
	Phone      string            `json:"phone,omitempty"`
	WhatsApp   string            `json:"whatsapp"`
	Address    string            `json:"address,omitempty"`
	City       string            `json:"city"`
	Lat        *float64          `json:"lat,omitempty"`
	Lng        *float64          `json:"lng,omitempty"`
	Hours      map[string]string `json:"hours"`
	PriceBand  enums.PriceBand   `json:"price_band,omitempty"`
	Photos     []string          `json:"photos"`
	Verified   bool              `json:"verified"`
	CreatedAt  time.Time         `json:"created_at"`
}

// HasLocation reports whether both coordinates are set.
func (b Business) HasLocation() bool {
	return b.Lat != nil && b.Lng != nil
}

// NewBusiness is the input for Create. ID and CreatedAt are assigned when empty.
type NewBusiness struct {
	ID         string            `json:"id" validate:"omitempty,max=64"`
	Name       string            `json:"name" validate:"required,max=200"`
	Categories []string          `json:"categories" validate:"omitempty,dive,required"`
	Phone      string            `json:"phone" validate:"max=32"`
	WhatsApp   string            `json:"whatsapp" validate:"required,max=32"`
	Address    string            `json:"address" validate:"max=300"`
	City       string            `json:"city" validate:"required,max=100"`
	Lat        *float64          `json:"lat" validate:"omitempty,latitude"`
	Lng        *float64          `json:"lng" validate:"omitempty,longitude"`
	Hours      map[string]string `json:"hours"`
	PriceBand  enums.PriceBand   `json:"price_band" validate:"omitempty,price_band"`
	Photos     []string          `json:"photos" validate:"omitempty,dive,required"`
	Verified   bool              `json:"verified"`
	CreatedAt  time.Time         `json:"created_at"`
}

// row mirrors the businesses table. Serialized columns stay raw until decoded.
type row struct {
	ID         string          `gorm:"column:id"`
	Name       string          `gorm:"column:name"`
	Categories sql.NullString  `gorm:"column:categories"`
	Phone      sql.NullString  `gorm:"column:phone"`
	WhatsApp   string          `gorm:"column:whatsapp"`
	Address    sql.NullString  `gorm:"column:address"`
	City       string          `gorm:"column:city"`
	Lat        sql.NullFloat64 `gorm:"column:lat"`
	Lng        sql.NullFloat64 `gorm:"column:lng"`
	Hours      sql.NullString  `gorm:"column:hours"`
	PriceBand  sql.NullString  `gorm:"column:price_band"`
	Photos     sql.NullString  `gorm:"column:photos"`
	Verified   int64           `gorm:"column:verified"`
	CreatedAt  sql.NullString  `gorm:"column:created_at"`
}

var columns = []any{
	"id", "name", "categories", "phone", "whatsapp", "address", "city",
	"lat", "lng", "hours", "price_band", "photos", "verified", "created_at",
}
