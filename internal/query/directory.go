package query

import (
	"context"

	"github.com/verifi-app/verifi-backend/internal/analytics"
	"github.com/verifi-app/verifi-backend/internal/businesses"
	"github.com/verifi-app/verifi-backend/internal/promos"
	"github.com/verifi-app/verifi-backend/internal/reviews"
	"github.com/verifi-app/verifi-backend/pkg/enums"
	"github.com/verifi-app/verifi-backend/pkg/logger"
)

// Directory is the cached read surface used by screens. Reads never fail:
// a fault is logged and the empty value returned, and nothing is cached.
// Writes return their error.
type Directory struct {
	client     *Client
	businesses *businesses.Repository
	reviews    *reviews.Repository
	promos     *promos.Repository
	analytics  *analytics.Repository
	logg       *logger.Logger
}

type DirectoryParams struct {
	Client     *Client
	Businesses *businesses.Repository
	Reviews    *reviews.Repository
	Promos     *promos.Repository
	Analytics  *analytics.Repository
	Logger     *logger.Logger
}

func NewDirectory(p DirectoryParams) *Directory {
	logg := p.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Directory{
		client:     p.Client,
		businesses: p.Businesses,
		reviews:    p.Reviews,
		promos:     p.Promos,
		analytics:  p.Analytics,
		logg:       logg,
	}
}

func (d *Directory) BusinessByID(ctx context.Context, id string) *businesses.Business {
	if id == "" {
		return nil
	}
	// misses are not cached
	b, err := FetchIf(ctx, d.client, businessKey(id), func(ctx context.Context) (*businesses.Business, error) {
		return d.businesses.FindByID(ctx, id)
	}, func(b *businesses.Business) bool { return b != nil })
	if err != nil {
		d.degrade(ctx, businessKey(id), err)
		return nil
	}
	return b
}

func (d *Directory) SearchBusinesses(ctx context.Context, q string) []businesses.Business {
	key := searchKey(q)
	out, err := Fetch(ctx, d.client, key, func(ctx context.Context) ([]businesses.Business, error) {
		return d.businesses.FindMatching(ctx, q)
	})
	if err != nil {
		d.degrade(ctx, key, err)
		return []businesses.Business{}
	}
	return out
}

func (d *Directory) AllBusinesses(ctx context.Context) []businesses.Business {
	out, err := Fetch(ctx, d.client, keyAllBusinesses, d.businesses.FindAll)
	if err != nil {
		d.degrade(ctx, keyAllBusinesses, err)
		return []businesses.Business{}
	}
	return out
}

func (d *Directory) NearbyBusinesses(ctx context.Context, lat, lng, radiusMeters float64, limit int) []businesses.NearbyBusiness {
	key := nearbyKey(lat, lng, radiusMeters, limit)
	out, err := Fetch(ctx, d.client, key, func(ctx context.Context) ([]businesses.NearbyBusiness, error) {
		return d.businesses.FindNearby(ctx, lat, lng, radiusMeters, limit)
	})
	if err != nil {
		d.degrade(ctx, key, err)
		return []businesses.NearbyBusiness{}
	}
	return out
}

func (d *Directory) ApprovedReviews(ctx context.Context, businessID string) []reviews.Review {
	return d.reviewsByStatus(ctx, approvedReviewsKey(businessID), businessID, enums.ReviewStatusApproved)
}

func (d *Directory) PendingReviews(ctx context.Context, businessID string) []reviews.Review {
	return d.reviewsByStatus(ctx, pendingReviewsKey(businessID), businessID, enums.ReviewStatusPending)
}

func (d *Directory) reviewsByStatus(ctx context.Context, key, businessID string, status enums.ReviewStatus) []reviews.Review {
	out, err := Fetch(ctx, d.client, key, func(ctx context.Context) ([]reviews.Review, error) {
		return d.reviews.FindByStatus(ctx, businessID, status)
	})
	if err != nil {
		d.degrade(ctx, key, err)
		return []reviews.Review{}
	}
	return out
}

// CreateReview stores a review and drops the cached review lists and
// dashboard of its business.
func (d *Directory) CreateReview(ctx context.Context, in reviews.NewReview) (*reviews.Review, error) {
	return Mutate(ctx, d.client, func(ctx context.Context) (*reviews.Review, error) {
		return d.reviews.Create(ctx, in)
	}, approvedReviewsKey(in.BusinessID), pendingReviewsKey(in.BusinessID), dashboardKey(in.BusinessID))
}

// ModerateReview moves a review of businessID to status.
func (d *Directory) ModerateReview(ctx context.Context, businessID, reviewID string, status enums.ReviewStatus) error {
	_, err := Mutate(ctx, d.client, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, d.reviews.UpdateStatus(ctx, reviewID, status)
	}, approvedReviewsKey(businessID), pendingReviewsKey(businessID), dashboardKey(businessID))
	return err
}

func (d *Directory) ActivePromos(ctx context.Context) []promos.Promo {
	out, err := Fetch(ctx, d.client, keyActivePromos, d.promos.FindActive)
	if err != nil {
		d.degrade(ctx, keyActivePromos, err)
		return []promos.Promo{}
	}
	return out
}

func (d *Directory) CreatePromo(ctx context.Context, in promos.NewPromo) (*promos.Promo, error) {
	return Mutate(ctx, d.client, func(ctx context.Context) (*promos.Promo, error) {
		return d.promos.Create(ctx, in)
	}, keyActivePromos, dashboardKey(in.BusinessID))
}

func (d *Directory) Dashboard(ctx context.Context, businessID string) analytics.Summary {
	key := dashboardKey(businessID)
	out, err := Fetch(ctx, d.client, key, func(ctx context.Context) (analytics.Summary, error) {
		return d.analytics.FindSummary(ctx, businessID)
	})
	if err != nil {
		d.degrade(ctx, key, err)
		return analytics.Summary{BusinessID: businessID}
	}
	return out
}

func (d *Directory) degrade(ctx context.Context, key string, err error) {
	ctx = d.logg.WithFields(ctx, map[string]any{"cache_key": key, "error": err.Error()})
	d.logg.Warn(ctx, "query failed, returning empty result")
}
