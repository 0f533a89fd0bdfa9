package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verifi-app/verifi-backend/internal/analytics"
	"github.com/verifi-app/verifi-backend/internal/businesses"
	"github.com/verifi-app/verifi-backend/internal/promos"
	"github.com/verifi-app/verifi-backend/internal/reviews"
	"github.com/verifi-app/verifi-backend/internal/storetest"
	"github.com/verifi-app/verifi-backend/pkg/clock"
	"github.com/verifi-app/verifi-backend/pkg/db"
	"github.com/verifi-app/verifi-backend/pkg/enums"
	pkgerrors "github.com/verifi-app/verifi-backend/pkg/errors"
	"github.com/verifi-app/verifi-backend/pkg/ids"
)

type directoryFixture struct {
	dir        *Directory
	store      *db.Client
	clock      *clock.Fixed
	businesses *businesses.Repository
}

func newDirectoryFixture(t *testing.T) directoryFixture {
	t.Helper()
	store := storetest.Open(t)
	client, clk, _ := newTestClient(t, NewMemoryCache(64, time.Hour))

	br := businesses.NewRepository(store, nil, nil, clk, ids.UUID{})
	dir := NewDirectory(DirectoryParams{
		Client:     client,
		Businesses: br,
		Reviews:    reviews.NewRepository(store, nil, nil, clk, ids.UUID{}),
		Promos:     promos.NewRepository(store, nil, nil, clk, ids.UUID{}),
		Analytics:  analytics.NewRepository(store, clk, nil),
	})

	_, err := br.Create(context.Background(), businesses.NewBusiness{
		ID:         "b1",
		Name:       "Cafe X",
		Categories: []string{"Cafe"},
		WhatsApp:   "5926000000",
		City:       "Georgetown",
	})
	require.NoError(t, err)
	return directoryFixture{dir: dir, store: store, clock: clk, businesses: br}
}

func TestDirectoryServesCachedBusinessUntilStale(t *testing.T) {
	ctx := context.Background()
	f := newDirectoryFixture(t)

	b := f.dir.BusinessByID(ctx, "b1")
	require.NotNil(t, b)
	assert.Equal(t, "Cafe X", b.Name)

	require.NoError(t, f.businesses.Delete(ctx, "b1"))
	cached := f.dir.BusinessByID(ctx, "b1")
	require.NotNil(t, cached, "served from cache within the staleness window")

	f.clock.Advance(2 * time.Minute)
	assert.Nil(t, f.dir.BusinessByID(ctx, "b1"))
	assert.Nil(t, f.dir.BusinessByID(ctx, ""))
}

func TestDirectoryDoesNotCacheMissingBusiness(t *testing.T) {
	ctx := context.Background()
	f := newDirectoryFixture(t)

	assert.Nil(t, f.dir.BusinessByID(ctx, "b2"))

	_, err := f.businesses.Create(ctx, businesses.NewBusiness{
		ID: "b2", Name: "Bakery Y", WhatsApp: "5926000001", City: "Georgetown",
	})
	require.NoError(t, err)

	got := f.dir.BusinessByID(ctx, "b2")
	require.NotNil(t, got)
	assert.Equal(t, "Bakery Y", got.Name)
}

func TestDirectoryBusinessKeysDoNotCollide(t *testing.T) {
	ctx := context.Background()
	f := newDirectoryFixture(t)

	_, err := f.businesses.Create(ctx, businesses.NewBusiness{
		ID: "all", Name: "All Day Diner", WhatsApp: "5926000002", City: "Georgetown",
	})
	require.NoError(t, err)

	assert.Len(t, f.dir.AllBusinesses(ctx), 2)
	b := f.dir.BusinessByID(ctx, "all")
	require.NotNil(t, b)
	assert.Equal(t, "All Day Diner", b.Name)
	assert.Len(t, f.dir.AllBusinesses(ctx), 2)

	assert.NotEqual(t, keyAllBusinesses, businessKey("all"))
	assert.NotEqual(t, searchKey("x"), businessKey("search:x"))
}

func TestDirectorySearchAndList(t *testing.T) {
	ctx := context.Background()
	f := newDirectoryFixture(t)

	got := f.dir.SearchBusinesses(ctx, "cafe")
	require.Len(t, got, 1)
	assert.Equal(t, "b1", got[0].ID)
	assert.Empty(t, f.dir.SearchBusinesses(ctx, "hardware"))
	assert.Len(t, f.dir.AllBusinesses(ctx), 1)
	assert.Empty(t, f.dir.NearbyBusinesses(ctx, 6.8, -58.16, 1000, 5), "b1 has no location")
}

func TestDirectoryCreateReviewInvalidatesLists(t *testing.T) {
	ctx := context.Background()
	f := newDirectoryFixture(t)

	assert.Empty(t, f.dir.PendingReviews(ctx, "b1"))
	assert.Empty(t, f.dir.ApprovedReviews(ctx, "b1"))
	assert.Equal(t, int64(0), f.dir.Dashboard(ctx, "b1").PendingReviews)

	created, err := f.dir.CreateReview(ctx, reviews.NewReview{
		BusinessID: "b1",
		UserID:     "u1",
		Rating:     5,
		Text:       "Great",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.ReviewStatusPending, created.Status)

	pending := f.dir.PendingReviews(ctx, "b1")
	require.Len(t, pending, 1)
	assert.Equal(t, created.ID, pending[0].ID)
	assert.Equal(t, int64(1), f.dir.Dashboard(ctx, "b1").PendingReviews)

	require.NoError(t, f.dir.ModerateReview(ctx, "b1", created.ID, enums.ReviewStatusApproved))
	assert.Empty(t, f.dir.PendingReviews(ctx, "b1"))
	require.Len(t, f.dir.ApprovedReviews(ctx, "b1"), 1)

	summary := f.dir.Dashboard(ctx, "b1")
	assert.Equal(t, int64(1), summary.ApprovedReviews)
	assert.Equal(t, 5.0, summary.AverageRating)
}

func TestDirectoryCreateReviewValidation(t *testing.T) {
	ctx := context.Background()
	f := newDirectoryFixture(t)

	_, err := f.dir.CreateReview(ctx, reviews.NewReview{BusinessID: "b1", UserID: "u1", Rating: 9})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Empty(t, f.dir.PendingReviews(ctx, "b1"))
}

func TestDirectoryActivePromos(t *testing.T) {
	ctx := context.Background()
	f := newDirectoryFixture(t)

	assert.Empty(t, f.dir.ActivePromos(ctx))

	_, err := f.dir.CreatePromo(ctx, promos.NewPromo{
		BusinessID: "b1",
		Title:      "Half price",
		StartsAt:   testNow.Add(-time.Hour),
		EndsAt:     testNow.Add(time.Hour),
	})
	require.NoError(t, err)

	active := f.dir.ActivePromos(ctx)
	require.Len(t, active, 1)
	assert.Equal(t, "Cafe X", active[0].BusinessName)
	assert.Equal(t, int64(1), f.dir.Dashboard(ctx, "b1").ActivePromos)
}

func TestDirectoryDegradesWhenStoreFails(t *testing.T) {
	ctx := context.Background()
	f := newDirectoryFixture(t)
	require.NoError(t, f.store.Close())

	assert.Nil(t, f.dir.BusinessByID(ctx, "b1"))
	assert.NotNil(t, f.dir.SearchBusinesses(ctx, "cafe"))
	assert.Empty(t, f.dir.AllBusinesses(ctx))
	assert.Empty(t, f.dir.ApprovedReviews(ctx, "b1"))
	assert.Empty(t, f.dir.ActivePromos(ctx))
	assert.Equal(t, analytics.Summary{BusinessID: "b1"}, f.dir.Dashboard(ctx, "b1"))
}
