package db

import (
	"context"

	"github.com/verifi-app/verifi-backend/pkg/config"
)

// RunResult reports the outcome of a write statement.
type RunResult struct {
	RowsAffected int64
}

// Executor is the capability surface repositories depend on. One
// implementation exists per host; callers never branch on the host.
type Executor interface {
	// Execute runs raw statements without parameters (DDL, pragmas).
	Execute(ctx context.Context, statements string) error
	// QueryOne scans the first row into dest and reports whether a row existed.
	QueryOne(ctx context.Context, dest any, query string, args ...any) (bool, error)
	// QueryMany scans every row into dest, which must point to a slice.
	QueryMany(ctx context.Context, dest any, query string, args ...any) error
	// Run executes a single parameterized write.
	Run(ctx context.Context, query string, args ...any) (RunResult, error)
	Driver() string
}

func (c *Client) Execute(ctx context.Context, statements string) error {
	return Classify(c.conn.WithContext(ctx).Exec(statements).Error)
}

func (c *Client) QueryOne(ctx context.Context, dest any, query string, args ...any) (bool, error) {
	res := c.conn.WithContext(ctx).Raw(query, args...).Scan(dest)
	if res.Error != nil {
		return false, Classify(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (c *Client) QueryMany(ctx context.Context, dest any, query string, args ...any) error {
	return Classify(c.conn.WithContext(ctx).Raw(query, args...).Scan(dest).Error)
}

func (c *Client) Run(ctx context.Context, query string, args ...any) (RunResult, error) {
	res := c.conn.WithContext(ctx).Exec(query, args...)
	if res.Error != nil {
		return RunResult{}, Classify(res.Error)
	}
	return RunResult{RowsAffected: res.RowsAffected}, nil
}

// Nop backs hosts that have no embedded store: reads come back empty and
// writes touch nothing.
type Nop struct{}

func (Nop) Execute(context.Context, string) error { return nil }

func (Nop) QueryOne(context.Context, any, string, ...any) (bool, error) { return false, nil }

func (Nop) QueryMany(context.Context, any, string, ...any) error { return nil }

func (Nop) Run(context.Context, string, ...any) (RunResult, error) { return RunResult{}, nil }

func (Nop) Driver() string { return config.DriverNone }

func (Nop) Ping(context.Context) error { return nil }

func (Nop) Close() error { return nil }
