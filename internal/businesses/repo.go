package businesses

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

// SearchLimit caps every search result.
const SearchLimit = 20

// Repository handles business persistence. Reads never fail: a store
// fault is logged and reported as an empty result.
type Repository struct {
	store   db.Executor
	decoder *codec.Decoder
	logg    *logger.Logger
	clock   clock.Clock
	ids     ids.Generator
}

// NewRepository binds a store to business operations.
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

// GetByID returns the business or nil when it does not exist or the
// store cannot be read.
func (r *Repository) GetByID(ctx context.Context, id string) *Business {
	ctx = r.logg.WithBusinessID(ctx, id)
	b, err := r.FindByID(ctx, id)
	if err != nil {
		r.degrade(ctx, "get_by_id", err)
		return nil
	}
	return b
}

// Search matches query case-insensitively against name or categories.
// An empty query returns the first SearchLimit businesses by name.
func (r *Repository) Search(ctx context.Context, query string) []Business {
	ctx = r.logg.WithField(ctx, "query", query)
	out, err := r.FindMatching(ctx, query)
	if err != nil {
		r.degrade(ctx, "search", err)
		return []Business{}
	}
	return out
}

// GetAll returns every business ordered by name.
func (r *Repository) GetAll(ctx context.Context) []Business {
	out, err := r.FindAll(ctx)
	if err != nil {
		r.degrade(ctx, "get_all", err)
		return []Business{}
	}
	return out
}

// FindByID is GetByID with the store error surfaced. A missing row is
// (nil, nil).
func (r *Repository) FindByID(ctx context.Context, id string) (*Business, error) {
	ds := goqu.From(table).Select(columns...).Where(goqu.C("id").Eq(id)).Limit(1)

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build business lookup")
	}

	var rw row
	found, err := r.store.QueryOne(ctx, &rw, query, args...)
	if err != nil || !found {
		return nil, err
	}
	b := r.decode(ctx, rw)
	return &b, nil
}

// FindMatching is Search with the store error surfaced.
func (r *Repository) FindMatching(ctx context.Context, query string) ([]Business, error) {
	ds := goqu.From(table).Select(columns...).Order(goqu.C("name").Asc()).Limit(SearchLimit)

	if q := strings.ToLower(strings.TrimSpace(query)); q != "" {
		ds = ds.Where(goqu.C("search_text").Like("%" + q + "%"))
	}
	return r.list(ctx, ds)
}

// FindAll is GetAll with the store error surfaced.
func (r *Repository) FindAll(ctx context.Context) ([]Business, error) {
	return r.list(ctx, goqu.From(table).Select(columns...).Order(goqu.C("name").Asc(), goqu.C("id").Asc()))
}

// Create validates and inserts a business.
func (r *Repository) Create(ctx context.Context, in NewBusiness) (*Business, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	b := Business{
		ID:         in.ID,
		Name:       strings.TrimSpace(in.Name),
		Categories: in.Categories,
		Phone:      in.Phone,
		WhatsApp:   in.WhatsApp,
		Address:    in.Address,
		City:       in.City,
		Lat:        in.Lat,
		Lng:        in.Lng,
		Hours:      in.Hours,
		PriceBand:  in.PriceBand,
		Photos:     in.Photos,
		Verified:   in.Verified,
		CreatedAt:  in.CreatedAt,
	}
	if b.ID == "" {
		b.ID = r.ids.NewID()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = r.clock.Now()
	}
	if b.Categories == nil {
		b.Categories = []string{}
	}
	if b.Photos == nil {
		b.Photos = []string{}
	}
	if b.Hours == nil {
		b.Hours = map[string]string{}
	}

	record, err := toRecord(b)
	if err != nil {
		return nil, err
	}

	query, args, err := goqu.Insert(table).Rows(record).Prepared(true).ToSQL()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build business insert")
	}

	ctx = r.logg.WithBusinessID(ctx, b.ID)
	if _, err := r.store.Run(ctx, query, args...); err != nil {
		r.logg.Error(r.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "create business failed", err)
		return nil, err
	}
	b.CreatedAt = b.CreatedAt.UTC().Truncate(time.Millisecond)
	return &b, nil
}

// Delete removes a business. Its reviews and promos go with it.
func (r *Repository) Delete(ctx context.Context, id string) error {
	query, args, err := goqu.Delete(table).Where(goqu.C("id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build business delete")
	}

	res, err := r.store.Run(r.logg.WithBusinessID(ctx, id), query, args...)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "business not found")
	}
	return nil
}

// Count returns the number of stored businesses.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	query, args, err := goqu.From(table).Select(goqu.COUNT(goqu.Star()).As("count")).Prepared(true).ToSQL()
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build business count")
	}

	var out struct {
		Count int64 `gorm:"column:count"`
	}
	if _, err := r.store.QueryOne(ctx, &out, query, args...); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (r *Repository) list(ctx context.Context, ds *goqu.SelectDataset) ([]Business, error) {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build business query")
	}

	var rows []row
	if err := r.store.QueryMany(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	out := make([]Business, 0, len(rows))
	for _, rw := range rows {
		out = append(out, r.decode(ctx, rw))
	}
	return out, nil
}

func (r *Repository) decode(ctx context.Context, rw row) Business {
	col := func(name string) codec.Column {
		return codec.Column{Table: table, Column: name, RowID: rw.ID}
	}

	b := Business{
		ID:         rw.ID,
		Name:       rw.Name,
		Categories: r.decoder.Strings(ctx, col("categories"), rw.Categories.String),
		Phone:      rw.Phone.String,
		WhatsApp:   rw.WhatsApp,
		Address:    rw.Address.String,
		City:       rw.City,
		Hours:      r.decoder.StringMap(ctx, col("hours"), rw.Hours.String),
		PriceBand:  enums.PriceBand(rw.PriceBand.String),
		Photos:     r.decoder.Strings(ctx, col("photos"), rw.Photos.String),
		Verified:   codec.DecodeBool(rw.Verified),
		CreatedAt:  r.decoder.Time(ctx, col("created_at"), rw.CreatedAt.String),
	}
	if rw.Lat.Valid {
		lat := rw.Lat.Float64
		b.Lat = &lat
	}
	if rw.Lng.Valid {
		lng := rw.Lng.Float64
		b.Lng = &lng
	}
	return b
}

func (r *Repository) degrade(ctx context.Context, op string, err error) {
	ctx = r.logg.WithFields(ctx, pkgerrors.Dump(err).Fields())
	r.logg.Warn(r.logg.WithField(ctx, "op", op), "business read failed, returning empty result")
}

func toRecord(b Business) (goqu.Record, error) {
	categories, err := codec.EncodeStrings(b.Categories)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "categories")
	}
	hours, err := codec.EncodeStringMap(b.Hours)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "hours")
	}
	photos, err := codec.EncodeStrings(b.Photos)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "photos")
	}

	return goqu.Record{
		"id":          b.ID,
		"name":        b.Name,
		"categories":  categories,
		"phone":       nullString(b.Phone),
		"whatsapp":    b.WhatsApp,
		"address":     nullString(b.Address),
		"city":        b.City,
		"lat":         nullFloat(b.Lat),
		"lng":         nullFloat(b.Lng),
		"hours":       hours,
		"price_band":  nullString(string(b.PriceBand)),
		"photos":      photos,
		"verified":    codec.EncodeBool(b.Verified),
		"search_text": searchText(b.Name, b.Categories),
		"created_at":  codec.EncodeTime(b.CreatedAt),
	}, nil
}

// searchText is the lowered name and categories, one per line. Lowering
// happens here because the store's LOWER only folds ASCII.
func searchText(name string, categories []string) string {
	parts := make([]string, 0, len(categories)+1)
	parts = append(parts, strings.ToLower(strings.TrimSpace(name)))
	for _, c := range categories {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, "\n")
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
