// Package source defines where the records of a table come from. Tables never
// fetch anything themselves; a Source loads the complete record set and the
// caller hands it to an engine.
package source

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/asaidimu/go-tabula/core/table"
)

// Source supplies the full record set of a table.
type Source[R any] interface {
	Load(ctx context.Context) ([]R, error)
}

// Func adapts a function to the Source interface.
type Func[R any] func(ctx context.Context) ([]R, error)

// Load calls f.
func (f Func[R]) Load(ctx context.Context) ([]R, error) {
	return f(ctx)
}

// Static serves records held in memory.
type Static[R any] struct {
	records []R
}

// NewStatic creates a source over a fixed record set.
func NewStatic[R any](records []R) *Static[R] {
	return &Static[R]{records: records}
}

// Load returns a copy of the records.
func (s *Static[R]) Load(ctx context.Context) ([]R, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(s.records), nil
}

// Refresh loads records from src and replaces the records of engine. On error
// the engine keeps its current records.
func Refresh[R any](ctx context.Context, src Source[R], engine *table.Engine[R], logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	records, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}
	engine.SetRecords(records)
	logger.Debug("Refreshed table records",
		zap.String("table", engine.Name()),
		zap.Int("count", len(records)))
	return nil
}
