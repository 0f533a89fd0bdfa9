package schema

import (
	"context"
	"database/sql"

	"github.com/verifi-app/verifi-backend/pkg/config"
	"github.com/verifi-app/verifi-backend/pkg/db"
	pkgerrors "github.com/verifi-app/verifi-backend/pkg/errors"
	"github.com/verifi-app/verifi-backend/pkg/logger"
	"github.com/verifi-app/verifi-backend/pkg/migrate"
)

// SQLHandle is implemented by stores backed by database/sql.
type SQLHandle interface {
	SQL() (*sql.DB, error)
}

// Manager brings the store's schema up to date on startup.
type Manager struct {
	store db.Executor
	logg  *logger.Logger
}

func NewManager(store db.Executor, logg *logger.Logger) *Manager {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Manager{store: store, logg: logg}
}

// EnsureSchema enables WAL journaling on sqlite and applies pending
// migrations. It is safe to call on every start. Failures carry
// CodeSchema and are not retried.
func (m *Manager) EnsureSchema(ctx context.Context) error {
	driver := m.store.Driver()
	ctx = m.logg.WithField(ctx, "driver", driver)

	if driver == config.DriverNone {
		m.logg.Info(ctx, "no embedded store, skipping schema")
		return nil
	}

	if driver == config.DriverSQLite {
		// journal_mode cannot change inside a transaction, so it runs before goose.
		if err := m.store.Execute(ctx, "PRAGMA journal_mode = WAL"); err != nil {
			return m.fail(ctx, "enable WAL journaling", err)
		}
	}

	handle, ok := m.store.(SQLHandle)
	if !ok {
		return m.fail(ctx, "schema", pkgerrors.New(pkgerrors.CodeInternal, "store does not expose a sql handle"))
	}
	sqlDB, err := handle.SQL()
	if err != nil {
		return m.fail(ctx, "get sql handle", err)
	}

	applied, err := migrate.Up(ctx, sqlDB, driver)
	if err != nil {
		return m.fail(ctx, "apply migrations", err)
	}

	m.logg.Info(m.logg.WithField(ctx, "applied", applied), "schema ready")
	return nil
}

func (m *Manager) fail(ctx context.Context, step string, err error) error {
	wrapped := pkgerrors.Wrap(pkgerrors.CodeSchema, err, step+" failed")
	m.logg.Error(m.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "schema setup failed", wrapped)
	return wrapped
}
