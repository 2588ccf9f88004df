package ports

import (
	"context"

	"mmmsynth/domain/mmm"
)

// RunLedger persists a record of every completed pipeline run
type RunLedger interface {
	Record(ctx context.Context, run *mmm.RunRecord) error

	// List returns the most recent runs first, at most limit of them
	List(ctx context.Context, limit int) ([]mmm.RunRecord, error)

	Close() error
}
