package enums

import "fmt"

// AnalyticsEventType names a user interaction counted for business owners.
type AnalyticsEventType string

const (
	AnalyticsEventSearchAttempted     AnalyticsEventType = "SEARCH_ATTEMPTED"
	AnalyticsEventProfileViewed       AnalyticsEventType = "PROFILE_VIEWED"
	AnalyticsEventContactWhatsApp     AnalyticsEventType = "CONTACT_WHATSAPP"
	AnalyticsEventContactCall         AnalyticsEventType = "CONTACT_CALL"
	AnalyticsEventDirectionsRequested AnalyticsEventType = "DIRECTIONS_REQUESTED"
	AnalyticsEventReviewSubmitted     AnalyticsEventType = "REVIEW_SUBMITTED"
	AnalyticsEventPromoViewed         AnalyticsEventType = "PROMO_VIEWED"
)

var validAnalyticsEventTypes = []AnalyticsEventType{
	AnalyticsEventSearchAttempted,
	AnalyticsEventProfileViewed,
	AnalyticsEventContactWhatsApp,
	AnalyticsEventContactCall,
	AnalyticsEventDirectionsRequested,
	AnalyticsEventReviewSubmitted,
	AnalyticsEventPromoViewed,
}

// IsValid reports whether the value matches a known event.
func (a AnalyticsEventType) IsValid() bool {
	for _, candidate := range validAnalyticsEventTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAnalyticsEventType converts the raw string to AnalyticsEventType.
func ParseAnalyticsEventType(value string) (AnalyticsEventType, error) {
	for _, candidate := range validAnalyticsEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid analytics event type %q", value)
}
