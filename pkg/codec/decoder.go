package codec

import (
	"context"
	"time"

	"github.com/verifi-app/verifi-backend/pkg/logger"
)

// Decoder wraps the pure decoders for repository reads. A malformed column
// is logged and replaced with the empty value so the rest of the row and
// the rest of the batch survive.
type Decoder struct {
	logg *logger.Logger
}

// NewDecoder returns a Decoder that reports faults through logg. A nil
// logger discards them.
func NewDecoder(logg *logger.Logger) *Decoder {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Decoder{logg: logg}
}

// Column identifies the value being decoded in log output.
type Column struct {
	Table  string
	Column string
	RowID  string
}

func (d *Decoder) Strings(ctx context.Context, col Column, raw string) []string {
	out, err := DecodeStrings(raw)
	if err != nil {
		d.warn(ctx, col, err)
	}
	return out
}

func (d *Decoder) StringMap(ctx context.Context, col Column, raw string) map[string]string {
	out, err := DecodeStringMap(raw)
	if err != nil {
		d.warn(ctx, col, err)
	}
	return out
}

func (d *Decoder) Time(ctx context.Context, col Column, raw string) time.Time {
	out, err := DecodeTime(raw)
	if err != nil {
		d.warn(ctx, col, err)
	}
	return out
}

func (d *Decoder) warn(ctx context.Context, col Column, err error) {
	ctx = d.logg.WithFields(ctx, map[string]any{
		"table":  col.Table,
		"column": col.Column,
		"row_id": col.RowID,
		"error":  err.Error(),
	})
	d.logg.Warn(ctx, "malformed column value, using empty value")
}
