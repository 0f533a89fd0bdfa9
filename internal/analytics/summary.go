package analytics

import (
	"context"
	"database/sql"
	"math"

	"github.com/doug-martin/goqu/v9"
	"github.com/verifi-app/verifi-backend/pkg/clock"
	"github.com/verifi-app/verifi-backend/pkg/codec"
	"github.com/verifi-app/verifi-backend/pkg/db"
	"github.com/verifi-app/verifi-backend/pkg/enums"
	pkgerrors "github.com/verifi-app/verifi-backend/pkg/errors"
	"github.com/verifi-app/verifi-backend/pkg/logger"
)

// Summary is the owner dashboard for one business.
type Summary struct {
	BusinessID      string  `json:"business_id"`
	ApprovedReviews int64   `json:"approved_reviews"`
	PendingReviews  int64   `json:"pending_reviews"`
	AverageRating   float64 `json:"average_rating"`
	ActivePromos    int64   `json:"active_promos"`
}

// Repository reads dashboard aggregates from the store.
type Repository struct {
	store db.Executor
	clock clock.Clock
	logg  *logger.Logger
}

func NewRepository(store db.Executor, clk clock.Clock, logg *logger.Logger) *Repository {
	if clk == nil {
		clk = clock.System{}
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Repository{store: store, clock: clk, logg: logg}
}

// Summary returns the dashboard for businessID. A store fault yields a zero
// summary.
func (r *Repository) Summary(ctx context.Context, businessID string) Summary {
	ctx = r.logg.WithBusinessID(ctx, businessID)
	s, err := r.FindSummary(ctx, businessID)
	if err != nil {
		r.logg.Warn(r.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "dashboard read failed, returning empty summary")
		return Summary{BusinessID: businessID}
	}
	return s
}

// FindSummary is Summary with the store error surfaced.
func (r *Repository) FindSummary(ctx context.Context, businessID string) (Summary, error) {
	out := Summary{BusinessID: businessID}

	reviewQuery, reviewArgs, err := goqu.From("reviews").
		Select(
			goqu.L("COALESCE(SUM(CASE WHEN ? = ? THEN 1 ELSE 0 END), 0)", goqu.C("status"), string(enums.ReviewStatusApproved)).As("approved"),
			goqu.L("COALESCE(SUM(CASE WHEN ? = ? THEN 1 ELSE 0 END), 0)", goqu.C("status"), string(enums.ReviewStatusPending)).As("pending"),
			goqu.L("AVG(CASE WHEN ? = ? THEN ? END)", goqu.C("status"), string(enums.ReviewStatusApproved), goqu.C("rating")).As("avg_rating"),
		).
		Where(goqu.C("business_id").Eq(businessID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return out, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build review summary")
	}

	var reviews struct {
		Approved  int64           `gorm:"column:approved"`
		Pending   int64           `gorm:"column:pending"`
		AvgRating sql.NullFloat64 `gorm:"column:avg_rating"`
	}
	if _, err := r.store.QueryOne(ctx, &reviews, reviewQuery, reviewArgs...); err != nil {
		return out, err
	}
	out.ApprovedReviews = reviews.Approved
	out.PendingReviews = reviews.Pending
	if reviews.AvgRating.Valid {
		out.AverageRating = math.Round(reviews.AvgRating.Float64*10) / 10
	}

	now := codec.EncodeTime(r.clock.Now())
	promoQuery, promoArgs, err := goqu.From("promos").
		Select(goqu.COUNT(goqu.Star()).As("active")).
		Where(
			goqu.C("business_id").Eq(businessID),
			goqu.C("active").Eq(codec.EncodeBool(true)),
			goqu.C("starts_at").Lte(now),
			goqu.C("ends_at").Gte(now),
		).
		Prepared(true).
		ToSQL()
	if err != nil {
		return out, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build promo summary")
	}

	var promos struct {
		Active int64 `gorm:"column:active"`
	}
	if _, err := r.store.QueryOne(ctx, &promos, promoQuery, promoArgs...); err != nil {
		return out, err
	}
	out.ActivePromos = promos.Active
	return out, nil
}
