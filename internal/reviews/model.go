package reviews

import (
	"database/sql"
	"time"

	"github.com/verifi-app/verifi-backend/pkg/enums"
)

const table = "reviews"

// Review is a consumer rating of a business.
type Review struct {
	ID         string             `json:"id"`
	BusinessID string             `json:"business_id"`
	UserID     string             `json:"user_id"`
	Rating     int                `json:"rating"`
	Text       string             `json:"text,omitempty"`
	Photos     []string           `json:"photos"`
	Status     enums.ReviewStatus `json:"status"`
	CreatedAt  time.Time          `json:"created_at"`
}

// NewReview is a consumer submission. ID and CreatedAt are optional; there
// is no status, every review starts pending and only UpdateStatus moves it.
type NewReview struct {
	ID         string             `json:"id" validate:"omitempty,max=64"`
	BusinessID string             `json:"business_id" validate:"required"`
	UserID     string             `json:"user_id" validate:"required"`
	Rating     int                `json:"rating" validate:"gte=1,lte=5"`
	Text       string             `json:"text" validate:"max=2000"`
	Photos     []string           `json:"photos" validate:"omitempty,max=10,dive,required"`
	CreatedAt  time.Time          `json:"created_at"`
}

type row struct {
	ID         string         `gorm:"column:id"`
	BusinessID string         `gorm:"column:business_id"`
	UserID     string         `gorm:"column:user_id"`
	Rating     int            `gorm:"column:rating"`
	Text       sql.NullString `gorm:"column:text"`
	Photos     sql.NullString `gorm:"column:photos"`
	Status     sql.NullString `gorm:"column:status"`
	CreatedAt  sql.NullString `gorm:"column:created_at"`
}

var columns = []any{"id", "business_id", "user_id", "rating", "text", "photos", "status", "created_at"}
