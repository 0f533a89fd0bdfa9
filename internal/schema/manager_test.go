package schema_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verifi-app/verifi-backend/internal/schema"
	"github.com/verifi-app/verifi-backend/internal/storetest"
	"github.com/verifi-app/verifi-backend/pkg/db"
	pkgerrors "github.com/verifi-app/verifi-backend/pkg/errors"
	"github.com/verifi-app/verifi-backend/pkg/logger"
)

type tableRow struct {
	Name string `gorm:"column:name"`
}

func TestEnsureSchemaCreatesTablesAndIsRepeatable(t *testing.T) {
	ctx := context.Background()
	client := storetest.Open(t)

	// second start on the same database
	require.NoError(t, schema.NewManager(client, logger.Nop()).EnsureSchema(ctx))

	var tables []tableRow
	require.NoError(t, client.QueryMany(ctx, &tables,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('businesses', 'reviews', 'promos') ORDER BY name`))
	require.Len(t, tables, 3)
	assert.Equal(t, "businesses", tables[0].Name)
	assert.Equal(t, "promos", tables[1].Name)
	assert.Equal(t, "reviews", tables[2].Name)
}

func TestEnsureSchemaSkipsNop(t *testing.T) {
	require.NoError(t, schema.NewManager(db.Nop{}, nil).EnsureSchema(context.Background()))
}

type brokenStore struct{ db.Nop }

func (brokenStore) Driver() string { return "sqlite" }

func (brokenStore) Execute(context.Context, string) error {
	return pkgerrors.New(pkgerrors.CodeDependency, "disk I/O error")
}

func TestEnsureSchemaFailureIsSchemaError(t *testing.T) {
	err := schema.NewManager(brokenStore{}, logger.Nop()).EnsureSchema(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeSchema))
	assert.False(t, pkgerrors.IsRetryable(err))
}
