package reviews

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/verifi-app/verifi-backend/pkg/clock"
	"github.com/verifi-app/verifi-backend/pkg/codec"
	"github.com/verifi-app/verifi-backend/pkg/db"
	"github.com/verifi-app/verifi-backend/pkg/enums"
	pkgerrors "github.com/verifi-app/verifi-backend/pkg/errors"
	"github.com/verifi-app/verifi-backend/pkg/ids"
	"github.com/verifi-app/verifi-backend/pkg/logger"
	"github.com/verifi-app/verifi-backend/pkg/validation"
)

// Repository handles review persistence.
type Repository struct {
	store   db.Executor
	decoder *codec.Decoder
	logg    *logger.Logger
	clock   clock.Clock
	ids     ids.Generator
}

func NewRepository(store db.Executor, decoder *codec.Decoder, logg *logger.Logger, clk clock.Clock, gen ids.Generator) *Repository {
	if logg == nil {
		logg = logger.Nop()
	}
	if decoder == nil {
		decoder = codec.NewDecoder(logg)
	}
	if clk == nil {
		clk = clock.System{}
	}
	if gen == nil {
		gen = ids.UUID{}
	}
	return &Repository{store: store, decoder: decoder, logg: logg, clock: clk, ids: gen}
}

// GetApprovedForBusiness returns the public reviews of a business, newest first.
func (r *Repository) GetApprovedForBusiness(ctx context.Context, businessID string) []Review {
	return r.byStatus(ctx, businessID, enums.ReviewStatusApproved)
}

// GetPendingForBusiness returns reviews awaiting moderation, newest first.
func (r *Repository) GetPendingForBusiness(ctx context.Context, businessID string) []Review {
	return r.byStatus(ctx, businessID, enums.ReviewStatusPending)
}

func (r *Repository) byStatus(ctx context.Context, businessID string, status enums.ReviewStatus) []Review {
	ctx = r.logg.WithFields(r.logg.WithBusinessID(ctx, businessID), map[string]any{"status": status})
	out, err := r.FindByStatus(ctx, businessID, status)
	if err != nil {
		r.degrade(ctx, err)
		return []Review{}
	}
	return out
}

// FindByStatus returns a business's reviews in one moderation state, newest
// first, surfacing store errors.
func (r *Repository) FindByStatus(ctx context.Context, businessID string, status enums.ReviewStatus) ([]Review, error) {
	query, args, err := goqu.From(table).
		Select(columns...).
		Where(
			goqu.C("business_id").Eq(businessID),
			goqu.C("status").Eq(string(status)),
		).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Desc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build review query")
	}

	var rows []row
	if err := r.store.QueryMany(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	out := make([]Review, 0, len(rows))
	for _, rw := range rows {
		out = append(out, r.decode(ctx, rw))
	}
	return out, nil
}

// Create validates and stores a review as pending.
func (r *Repository) Create(ctx context.Context, in NewReview) (*Review, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	rv := Review{
		ID:         in.ID,
		BusinessID: in.BusinessID,
		UserID:     in.UserID,
		Rating:     in.Rating,
		Text:       strings.TrimSpace(in.Text),
		Photos:     in.Photos,
		Status:     enums.ReviewStatusPending,
		CreatedAt:  in.CreatedAt,
	}
	if rv.ID == "" {
		rv.ID = r.ids.NewID()
	}
	if rv.Photos == nil {
		rv.Photos = []string{}
	}
	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = r.clock.Now()
	}
	rv.CreatedAt = rv.CreatedAt.UTC().Truncate(time.Millisecond)

	photos, err := codec.EncodeStrings(rv.Photos)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "photos")
	}

	query, args, err := goqu.Insert(table).Rows(goqu.Record{
		"id":          rv.ID,
		"business_id": rv.BusinessID,
		"user_id":     rv.UserID,
		"rating":      rv.Rating,
		"text":        sql.NullString{String: rv.Text, Valid: rv.Text != ""},
		"photos":      photos,
		"status":      string(rv.Status),
		"created_at":  codec.EncodeTime(rv.CreatedAt),
	}).Prepared(true).ToSQL()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build review insert")
	}

	ctx = r.logg.WithUserID(r.logg.WithBusinessID(ctx, rv.BusinessID), rv.UserID)
	if _, err := r.store.Run(ctx, query, args...); err != nil {
		r.logg.Error(r.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "create review failed", err)
		return nil, err
	}

	r.logg.Info(r.logg.WithField(ctx, "review_id", rv.ID), "review submitted")
	return &rv, nil
}

// UpdateStatus records a moderation decision.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status enums.ReviewStatus) error {
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid review status").
			WithDetails(map[string]string{"status": "must be pending, approved or rejected"})
	}

	query, args, err := goqu.Update(table).
		Set(goqu.Record{"status": string(status)}).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build review status update")
	}

	res, err := r.store.Run(r.logg.WithField(ctx, "review_id", id), query, args...)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
	}
	return nil
}

func (r *Repository) decode(ctx context.Context, rw row) Review {
	col := func(name string) codec.Column {
		return codec.Column{Table: table, Column: name, RowID: rw.ID}
	}
	status := enums.ReviewStatus(rw.Status.String)
	if !rw.Status.Valid {
		status = enums.ReviewStatusPending
	}
	return Review{
		ID:         rw.ID,
		BusinessID: rw.BusinessID,
		UserID:     rw.UserID,
		Rating:     rw.Rating,
		Text:       rw.Text.String,
		Photos:     r.decoder.Strings(ctx, col("photos"), rw.Photos.String),
		Status:     status,
		CreatedAt:  r.decoder.Time(ctx, col("created_at"), rw.CreatedAt.String),
	}
}

func (r *Repository) degrade(ctx context.Context, err error) {
	r.logg.Warn(r.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "review read failed, returning empty result")
}
