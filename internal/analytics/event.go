package analytics

import (
	"time"

	"github.com/verifi-app/verifi-backend/pkg/enums"
	pkgerrors "github.com/verifi-app/verifi-backend/pkg/errors"
)

// Event is one user interaction worth showing to a business owner.
type Event struct {
	Type       enums.AnalyticsEventType
	BusinessID string
	PromoID    string
	UserID     string
	Query      string
	Rating     int
	OccurredAt time.Time
}

// subject returns the id the event is counted against.
func (e Event) subject() string {
	switch e.Type {
	case enums.AnalyticsEventSearchAttempted:
		return ""
	case enums.AnalyticsEventPromoViewed:
		return e.PromoID
	default:
		return e.BusinessID
	}
}

func (e Event) validate() error {
	if !e.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown analytics event").
			WithDetails(map[string]string{"type": string(e.Type)})
	}

	details := map[string]string{}
	switch e.Type {
	case enums.AnalyticsEventSearchAttempted:
		// empty searches are still counted
	case enums.AnalyticsEventPromoViewed:
		if e.PromoID == "" {
			details["promo_id"] = "is required"
		}
	case enums.AnalyticsEventReviewSubmitted:
		if e.BusinessID == "" {
			details["business_id"] = "is required"
		}
		if e.Rating < 1 || e.Rating > 5 {
			details["rating"] = "must be between 1 and 5"
		}
	default:
		if e.BusinessID == "" {
			details["business_id"] = "is required"
		}
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid analytics event").WithDetails(details)
	}
	return nil
}
