// Package storetest opens throwaway sqlite stores for package tests.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/verifi-app/verifi-backend/internal/schema"
	"github.com/verifi-app/verifi-backend/pkg/config"
	"github.com/verifi-app/verifi-backend/pkg/db"
	"github.com/verifi-app/verifi-backend/pkg/logger"
)

// Config returns a store config for a private in-memory database.
func Config() config.StoreConfig {
	return config.StoreConfig{
		Driver:      config.DriverSQLite,
		DSN:         fmt.Sprintf("file:verifi-%s?mode=memory&cache=shared", uuid.NewString()),
		BusyTimeout: time.Second,
	}
}

// Open returns a migrated in-memory store that is closed with the test.
func Open(t testing.TB) *db.Client {
	t.Helper()
	ctx := context.Background()

	client, err := db.New(ctx, Config(), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := schema.NewManager(client, logger.Nop()).EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return client
}
