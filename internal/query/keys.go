package query

import (
	"fmt"
	"strings"
)

const (
	keyAllBusinesses = "businesses:all"
	keyActivePromos  = "promos:active"
)

func businessKey(id string) string {
	return "businesses:id:" + id
}

func searchKey(q string) string {
	return "businesses:search:" + strings.ToLower(strings.TrimSpace(q))
}

func nearbyKey(lat, lng, radius float64, limit int) string {
	return fmt.Sprintf("businesses:nearby:%.5f,%.5f:%.0f:%d", lat, lng, radius, limit)
}

func approvedReviewsKey(businessID string) string {
	return "reviews:" + businessID
}

func pendingReviewsKey(businessID string) string {
	return "reviews:" + businessID + ":pending"
}

func dashboardKey(businessID string) string {
	return "dashboard:" + businessID
}
