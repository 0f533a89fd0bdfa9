package promos

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verifi-app/verifi-backend/internal/storetest"
	"github.com/verifi-app/verifi-backend/pkg/clock"
	"github.com/verifi-app/verifi-backend/pkg/db"
	pkgerrors "github.com/verifi-app/verifi-backend/pkg/errors"
	"github.com/verifi-app/verifi-backend/pkg/ids"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) (*Repository, *db.Client, *clock.Fixed) {
	t.Helper()
	client := storetest.Open(t)
	_, err := client.Run(context.Background(),
		`INSERT INTO businesses (id, name, whatsapp, city) VALUES (?, ?, ?, ?)`, "b1", "Cafe X", "5920000", "Georgetown")
	require.NoError(t, err)

	clk := clock.NewFixed(testNow)
	return NewRepository(client, nil, nil, clk, ids.UUID{}), client, clk
}

func boolPtr(v bool) *bool { return &v }

func TestActivePromoAppearsAndFlipRemovesIt(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := newTestRepo(t)

	created, err := repo.Create(ctx, NewPromo{
		BusinessID: "b1",
		Title:      "25% Off All Soups",
		Desc:       "Enjoy a hearty discount.",
		StartsAt:   testNow.Add(-time.Hour),
		EndsAt:     testNow.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	assert.True(t, created.Active)

	active := repo.GetActive(ctx)
	require.Len(t, active, 1)
	assert.Equal(t, created.ID, active[0].ID)
	assert.Equal(t, "Cafe X", active[0].BusinessName)
	assert.Equal(t, "Enjoy a hearty discount.", active[0].Desc)
	assert.True(t, active[0].IsActiveAt(testNow))

	require.NoError(t, repo.SetActive(ctx, created.ID, false))
	assert.Empty(t, repo.GetActive(ctx))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "flipping active must not delete the row")
}

func TestGetActiveEvaluatesWindowAtCallTime(t *testing.T) {
	ctx := context.Background()
	repo, _, clk := newTestRepo(t)

	_, err := repo.Create(ctx, NewPromo{
		BusinessID: "b1",
		Title:      "Weekend",
		StartsAt:   testNow.Add(time.Hour),
		EndsAt:     testNow.Add(2 * time.Hour),
	})
	require.NoError(t, err)

	assert.Empty(t, repo.GetActive(ctx), "not started yet")

	clk.Set(testNow.Add(time.Hour))
	assert.Len(t, repo.GetActive(ctx), 1, "start bound is inclusive")

	clk.Set(testNow.Add(2 * time.Hour))
	assert.Len(t, repo.GetActive(ctx), 1, "end bound is inclusive")

	clk.Advance(time.Millisecond)
	assert.Empty(t, repo.GetActive(ctx), "expired")
}

func TestGetActiveOrdersByEndingSoonest(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := newTestRepo(t)

	for _, p := range []NewPromo{
		{ID: "late", BusinessID: "b1", Title: "Late", StartsAt: testNow.Add(-time.Hour), EndsAt: testNow.Add(72 * time.Hour)},
		{ID: "soon", BusinessID: "b1", Title: "Soon", StartsAt: testNow.Add(-time.Hour), EndsAt: testNow.Add(time.Hour)},
		{ID: "off", BusinessID: "b1", Title: "Off", StartsAt: testNow.Add(-time.Hour), EndsAt: testNow.Add(time.Hour), Active: boolPtr(false)},
	} {
		_, err := repo.Create(ctx, p)
		require.NoError(t, err)
	}

	active := repo.GetActive(ctx)
	require.Len(t, active, 2)
	assert.Equal(t, "soon", active[0].ID)
	assert.Equal(t, "late", active[1].ID)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := newTestRepo(t)

	_, err := repo.Create(ctx, NewPromo{
		BusinessID: "b1",
		Title:      "Backwards",
		StartsAt:   testNow,
		EndsAt:     testNow.Add(-time.Minute),
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = repo.Create(ctx, NewPromo{BusinessID: "b1", StartsAt: testNow, EndsAt: testNow})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = repo.Create(ctx, NewPromo{BusinessID: "ghost", Title: "Orphan", StartsAt: testNow, EndsAt: testNow})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSetActiveUnknownPromo(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	err := repo.SetActive(context.Background(), "missing", true)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestIsActiveAt(t *testing.T) {
	p := Promo{Active: true, StartsAt: testNow, EndsAt: testNow.Add(time.Hour)}
	assert.True(t, p.IsActiveAt(testNow))
	assert.True(t, p.IsActiveAt(testNow.Add(time.Hour)))
	assert.False(t, p.IsActiveAt(testNow.Add(-time.Second)))

	p.Active = false
	assert.False(t, p.IsActiveAt(testNow))
}

func TestGetActiveDegradesWhenStoreFails(t *testing.T) {
	repo, client, _ := newTestRepo(t)
	require.NoError(t, client.Close())
	assert.Equal(t, []Promo{}, repo.GetActive(context.Background()))
}
