package pipeline

import (
	"context"
	"fmt"

	"github.com/couchcryptid/disaster-risk-etl/internal/domain"
)

// FanOut loads every batch into each of its loaders in order, stopping at
// the first failure. Sinks must tolerate replays: a batch that fails on a
// later loader is redelivered to all of them.
type FanOut []BatchLoader

func (f FanOut) LoadBatch(ctx context.Context, incidents []domain.Incident) error {
	for i, l := range f {
		if err := l.LoadBatch(ctx, incidents); err != nil {
			return fmt.Errorf("loader %d: %w", i, err)
		}
	}
	return nil
}
