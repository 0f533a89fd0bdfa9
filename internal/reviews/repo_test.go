package reviews

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verifi-app/verifi-backend/internal/storetest"
	"github.com/verifi-app/verifi-backend/pkg/clock"
	"github.com/verifi-app/verifi-backend/pkg/db"
	"github.com/verifi-app/verifi-backend/pkg/enums"
	pkgerrors "github.com/verifi-app/verifi-backend/pkg/errors"
	"github.com/verifi-app/verifi-backend/pkg/ids"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	repo   *Repository
	client *db.Client
	clock  *clock.Fixed
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	client := storetest.Open(t)
	_, err := client.Run(context.Background(),
		`INSERT INTO businesses (id, name, whatsapp, city) VALUES (?, ?, ?, ?)`, "b1", "Cafe X", "5920000", "Georgetown")
	require.NoError(t, err)

	clk := clock.NewFixed(testNow)
	return fixture{
		repo:   NewRepository(client, nil, nil, clk, ids.UUID{}),
		client: client,
		clock:  clk,
	}
}

func (f fixture) countRows(t *testing.T) int64 {
	t.Helper()
	var out struct {
		N int64 `gorm:"column:n"`
	}
	_, err := f.client.QueryOne(context.Background(), &out, `SELECT COUNT(*) AS n FROM reviews`)
	require.NoError(t, err)
	return out.N
}

func TestCreateWithoutStatusIsPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.repo.Create(ctx, NewReview{BusinessID: "b1", UserID: "u1", Rating: 5, Text: "Great"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, enums.ReviewStatusPending, created.Status)

	assert.Empty(t, f.repo.GetApprovedForBusiness(ctx, "b1"))

	pending := f.repo.GetPendingForBusiness(ctx, "b1")
	require.Len(t, pending, 1)
	assert.Equal(t, created.ID, pending[0].ID)
	assert.Equal(t, "Great", pending[0].Text)
	assert.Equal(t, []string{}, pending[0].Photos)
	assert.True(t, testNow.Equal(pending[0].CreatedAt))
}

func TestCreateRejectsRatingOutOfRange(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, rating := range []int{0, 6, -1} {
		_, err := f.repo.Create(ctx, NewReview{BusinessID: "b1", UserID: "u1", Rating: rating})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	}
	assert.Zero(t, f.countRows(t))
}

func TestRatingConstraintHoldsAtStoreLevel(t *testing.T) {
	f := newFixture(t)

	_, err := f.client.Run(context.Background(),
		`INSERT INTO reviews (id, business_id, user_id, rating) VALUES (?, ?, ?, ?)`, "r1", "b1", "u1", 7)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.False(t, pkgerrors.IsRetryable(err))
	assert.Zero(t, f.countRows(t))
}

func TestCreateForUnknownBusinessFails(t *testing.T) {
	f := newFixture(t)

	_, err := f.repo.Create(context.Background(), NewReview{BusinessID: "ghost", UserID: "u1", Rating: 3})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestStatusFiltersAndOrdering(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	mk := func(id string, status enums.ReviewStatus, age time.Duration) {
		_, err := f.repo.Create(ctx, NewReview{
			ID:         id,
			BusinessID: "b1",
			UserID:     "u-" + id,
			Rating:     4,
			Photos:     []string{"https://img.example/" + id + ".jpg"},
			CreatedAt:  testNow.Add(-age),
		})
		require.NoError(t, err)
		if status != enums.ReviewStatusPending {
			require.NoError(t, f.repo.UpdateStatus(ctx, id, status))
		}
	}
	mk("old-approved", enums.ReviewStatusApproved, 48*time.Hour)
	mk("new-approved", enums.ReviewStatusApproved, time.Hour)
	mk("pending", enums.ReviewStatusPending, 2*time.Hour)
	mk("rejected", enums.ReviewStatusRejected, 3*time.Hour)

	approved := f.repo.GetApprovedForBusiness(ctx, "b1")
	require.Len(t, approved, 2)
	assert.Equal(t, "new-approved", approved[0].ID)
	assert.Equal(t, "old-approved", approved[1].ID)
	for _, rv := range approved {
		assert.Equal(t, enums.ReviewStatusApproved, rv.Status)
	}
	assert.Equal(t, []string{"https://img.example/new-approved.jpg"}, approved[0].Photos)

	pending := f.repo.GetPendingForBusiness(ctx, "b1")
	require.Len(t, pending, 1)
	assert.Equal(t, enums.ReviewStatusPending, pending[0].Status)

	assert.Empty(t, f.repo.GetApprovedForBusiness(ctx, "other"))
}

func TestSubmittedStatusIsIgnored(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var in NewReview
	require.NoError(t, json.Unmarshal([]byte(`{"business_id":"b1","user_id":"u1","rating":5,"status":"approved"}`), &in))

	created, err := f.repo.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, enums.ReviewStatusPending, created.Status)
	assert.Empty(t, f.repo.GetApprovedForBusiness(ctx, "b1"))
	pending := f.repo.GetPendingForBusiness(ctx, "b1")
	require.Len(t, pending, 1)
	assert.Equal(t, created.ID, pending[0].ID)
}

func TestUpdateStatusMovesReviewBetweenQueues(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.repo.Create(ctx, NewReview{BusinessID: "b1", UserID: "u1", Rating: 5})
	require.NoError(t, err)

	require.NoError(t, f.repo.UpdateStatus(ctx, created.ID, enums.ReviewStatusApproved))
	assert.Len(t, f.repo.GetApprovedForBusiness(ctx, "b1"), 1)
	assert.Empty(t, f.repo.GetPendingForBusiness(ctx, "b1"))

	err = f.repo.UpdateStatus(ctx, created.ID, enums.ReviewStatus("hidden"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	err = f.repo.UpdateStatus(ctx, "missing", enums.ReviewStatusRejected)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCorruptPhotosDegradeOnlyThatReview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, id := range []string{"good", "bad"} {
		_, err := f.repo.Create(ctx, NewReview{
			ID: id, BusinessID: "b1", UserID: "u1", Rating: 4,
			Photos: []string{"https://img.example/x.jpg"},
		})
		require.NoError(t, err)
		require.NoError(t, f.repo.UpdateStatus(ctx, id, enums.ReviewStatusApproved))
	}
	_, err := f.client.Run(ctx, `UPDATE reviews SET photos = ? WHERE id = ?`, "[oops", "bad")
	require.NoError(t, err)

	approved := f.repo.GetApprovedForBusiness(ctx, "b1")
	require.Len(t, approved, 2)
	for _, rv := range approved {
		if rv.ID == "bad" {
			assert.Equal(t, []string{}, rv.Photos)
		} else {
			assert.Equal(t, []string{"https://img.example/x.jpg"}, rv.Photos)
		}
	}
}

func TestReadsDegradeWhenStoreFails(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.client.Close())

	assert.Equal(t, []Review{}, f.repo.GetApprovedForBusiness(context.Background(), "b1"))
	assert.Equal(t, []Review{}, f.repo.GetPendingForBusiness(context.Background(), "b1"))
}
