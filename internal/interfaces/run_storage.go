package interfaces

import (
	"context"

	"github.com/ternarybob/turngreen-e2e/internal/models"
)

// RunStorage persists scenario attempts for the history command.
type RunStorage interface {
	SaveRun(ctx context.Context, run *models.RunRecord) error
	GetRun(ctx context.Context, id string) (*models.RunRecord, error)
	// ListRuns returns the most recent runs first. An empty scenario matches all.
	ListRuns(ctx context.Context, scenario string, limit int) ([]*models.RunRecord, error)
	// PruneRuns deletes all but the newest keep runs of scenario and returns
	// how many were removed.
	PruneRuns(ctx context.Context, scenario string, keep int) (int, error)
	Close() error
}
