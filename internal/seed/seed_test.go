package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verifi-app/verifi-backend/internal/businesses"
	"github.com/verifi-app/verifi-backend/internal/promos"
	"github.com/verifi-app/verifi-backend/internal/storetest"
	"github.com/verifi-app/verifi-backend/pkg/clock"
	"github.com/verifi-app/verifi-backend/pkg/db"
	"github.com/verifi-app/verifi-backend/pkg/ids"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	client     *db.Client
	businesses *businesses.Repository
	promos     *promos.Repository
	seeder     *Seeder
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	client := storetest.Open(t)
	clk := clock.NewFixed(testNow)
	b := businesses.NewRepository(client, nil, nil, clk, ids.UUID{})
	p := promos.NewRepository(client, nil, nil, clk, ids.UUID{})
	return fixture{client: client, businesses: b, promos: p, seeder: New(b, p, clk, nil)}
}

func TestSeedIfEmptyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.seeder.SeedIfEmpty(ctx))
	require.NoError(t, f.seeder.SeedIfEmpty(ctx))

	nb, err := f.businesses.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, nb)

	np, err := f.promos.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, np)

	var reviews struct {
		N int64 `gorm:"column:n"`
	}
	_, err = f.client.QueryOne(ctx, &reviews, `SELECT COUNT(*) AS n FROM reviews`)
	require.NoError(t, err)
	assert.Zero(t, reviews.N)
}

func TestSeededRowsAreFixed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.seeder.SeedIfEmpty(ctx))

	b := f.businesses.GetByID(ctx, DemoBusinessID)
	require.NotNil(t, b)
	assert.Equal(t, "German's Restaurant", b.Name)
	assert.Equal(t, []string{"Food"}, b.Categories)
	assert.Equal(t, []string{demoPhotoURL}, b.Photos)
	assert.Equal(t, map[string]string{"Mon-Sat": "8:00 AM - 9:00 PM"}, b.Hours)
	assert.InDelta(t, 6.8075, *b.Lat, 1e-9)
	assert.InDelta(t, -58.1633, *b.Lng, 1e-9)
	assert.True(t, b.Verified)

	active := f.promos.GetActive(ctx)
	require.Len(t, active, 1)
	assert.Equal(t, DemoBusinessID, active[0].BusinessID)
	assert.Equal(t, "German's Restaurant", active[0].BusinessName)
	assert.True(t, testNow.Add(demoPromoDuration).Equal(active[0].EndsAt))
}

func TestSeedCompletesMissingPromo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// simulate a run that stopped after the business insert
	_, err := f.businesses.Create(ctx, DemoBusiness())
	require.NoError(t, err)

	require.NoError(t, f.seeder.SeedIfEmpty(ctx))

	nb, err := f.businesses.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, nb)
	assert.Len(t, f.promos.GetActive(ctx), 1)
}

func TestSeedLeavesExistingDataAlone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.businesses.Create(ctx, businesses.NewBusiness{ID: "b1", Name: "Cafe X", City: "Georgetown", WhatsApp: "1"})
	require.NoError(t, err)
	_, err = f.promos.Create(ctx, promos.NewPromo{BusinessID: "b1", Title: "Deal", StartsAt: testNow, EndsAt: testNow})
	require.NoError(t, err)

	require.NoError(t, f.seeder.SeedIfEmpty(ctx))
	assert.Nil(t, f.businesses.GetByID(ctx, DemoBusinessID))
}

func TestSeedSkipsPromoWithoutDemoBusiness(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.businesses.Create(ctx, businesses.NewBusiness{
		ID: "b1", Name: "Cafe X", City: "Georgetown", WhatsApp: "5920000",
	})
	require.NoError(t, err)

	require.NoError(t, f.seeder.SeedIfEmpty(ctx))
	require.NoError(t, f.seeder.SeedIfEmpty(ctx))

	assert.Nil(t, f.businesses.GetByID(ctx, DemoBusinessID))
	np, err := f.promos.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, np)
}
