package promos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/verifi-app/verifi-backend/pkg/clock"
	"github.com/verifi-app/verifi-backend/pkg/codec"
	"github.com/verifi-app/verifi-backend/pkg/db"
	pkgerrors "github.com/verifi-app/verifi-backend/pkg/errors"
	"github.com/verifi-app/verifi-backend/pkg/ids"
	"github.com/verifi-app/verifi-backend/pkg/logger"
	"github.com/verifi-app/verifi-backend/pkg/validation"
)

// Repository handles promo persistence.
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

// GetActive returns promos that are switched on and whose window contains
// the current time, ending soonest first.
func (r *Repository) GetActive(ctx context.Context) []Promo {
	out, err := r.FindActive(ctx)
	if err != nil {
		r.degrade(ctx, err)
		return []Promo{}
	}
	return out
}

// FindActive is GetActive with the store error surfaced.
func (r *Repository) FindActive(ctx context.Context) ([]Promo, error) {
	now := codec.EncodeTime(r.clock.Now())

	query, args, err := goqu.From(goqu.T(table).As("p")).
		LeftJoin(goqu.T("businesses").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("p.business_id")))).
		Select(
			goqu.I("p.id").As("id"),
			goqu.I("p.business_id").As("business_id"),
			goqu.I("b.name").As("business_name"),
			goqu.I("p.title").As("title"),
			goqu.I("p.desc").As("desc"),
			goqu.I("p.starts_at").As("starts_at"),
			goqu.I("p.ends_at").As("ends_at"),
			goqu.I("p.active").As("active"),
		).
		Where(
			goqu.I("p.active").Eq(codec.EncodeBool(true)),
			goqu.I("p.starts_at").Lte(now),
			goqu.I("p.ends_at").Gte(now),
		).
		Order(goqu.I("p.ends_at").Asc(), goqu.I("p.id").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build active promo query")
	}

	var rows []row
	if err := r.store.QueryMany(r.logg.WithField(ctx, "now", now), &rows, query, args...); err != nil {
		return nil, err
	}

	out := make([]Promo, 0, len(rows))
	for _, rw := range rows {
		out = append(out, r.decode(ctx, rw))
	}
	return out, nil
}

// Create validates and stores a promo.
func (r *Repository) Create(ctx context.Context, in NewPromo) (*Promo, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	p := Promo{
		ID:         in.ID,
		BusinessID: in.BusinessID,
		Title:      strings.TrimSpace(in.Title),
		Desc:       strings.TrimSpace(in.Desc),
		StartsAt:   in.StartsAt.UTC().Truncate(time.Millisecond),
		EndsAt:     in.EndsAt.UTC().Truncate(time.Millisecond),
		Active:     true,
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
	if p.ID == "" {
		p.ID = r.ids.NewID()
	}

	query, args, err := goqu.Insert(table).Rows(goqu.Record{
		"id":          p.ID,
		"business_id": p.BusinessID,
		"title":       p.Title,
		"desc":        sql.NullString{String: p.Desc, Valid: p.Desc != ""},
		"starts_at":   codec.EncodeTime(p.StartsAt),
		"ends_at":     codec.EncodeTime(p.EndsAt),
		"active":      codec.EncodeBool(p.Active),
	}).Prepared(true).ToSQL()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build promo insert")
	}

	ctx = r.logg.WithBusinessID(ctx, p.BusinessID)
	if _, err := r.store.Run(ctx, query, args...); err != nil {
		r.logg.Error(r.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "create promo failed", err)
		return nil, err
	}
	return &p, nil
}

// SetActive switches a promo on or off without touching its window.
func (r *Repository) SetActive(ctx context.Context, id string, active bool) error {
	query, args, err := goqu.Update(table).
		Set(goqu.Record{"active": codec.EncodeBool(active)}).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build promo update")
	}

	res, err := r.store.Run(r.logg.WithField(ctx, "promo_id", id), query, args...)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "promo not found")
	}
	return nil
}

// Count returns the number of stored promos, active or not.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	query, args, err := goqu.From(table).Select(goqu.COUNT(goqu.Star()).As("count")).Prepared(true).ToSQL()
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build promo count")
	}

	var out struct {
		Count int64 `gorm:"column:count"`
	}
	if _, err := r.store.QueryOne(ctx, &out, query, args...); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (r *Repository) decode(ctx context.Context, rw row) Promo {
	col := func(name string) codec.Column {
		return codec.Column{Table: table, Column: name, RowID: rw.ID}
	}
	return Promo{
		ID:           rw.ID,
		BusinessID:   rw.BusinessID,
		BusinessName: rw.BusinessName.String,
		Title:        rw.Title,
		Desc:         rw.Desc.String,
		StartsAt:     r.decoder.Time(ctx, col("starts_at"), rw.StartsAt),
		EndsAt:       r.decoder.Time(ctx, col("ends_at"), rw.EndsAt),
		Active:       codec.DecodeBool(rw.Active),
	}
}

func (r *Repository) degrade(ctx context.Context, err error) {
	r.logg.Warn(r.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "promo read failed, returning empty result")
}
