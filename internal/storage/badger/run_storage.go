package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/turngreen-e2e/internal/interfaces"
	"github.com/ternarybob/turngreen-e2e/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ErrRunNotFound is returned by GetRun for unknown IDs.
var ErrRunNotFound = errors.New("run not found")

// RunStorage implements interfaces.RunStorage for Badger
type RunStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewRunStorage creates a new RunStorage instance
func NewRunStorage(db *BadgerDB, logger arbor.ILogger) interfaces.RunStorage {
	return &RunStorage{
		db:     db,
		logger: logger,
	}
}

func (s *RunStorage) SaveRun(ctx context.Context, run *models.RunRecord) error {
	if run == nil || run.ID == "" {
		return fmt.Errorf("run ID is required")
	}
	if err := s.db.Store().Upsert(run.ID, run); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	s.logger.Debug().
		Str("run_id", run.ID).
		Str("scenario", run.Scenario).
		Str("status", string(run.Status)).
		Msg("Run saved")
	return nil
}

func (s *RunStorage) GetRun(ctx context.Context, id string) (*models.RunRecord, error) {
	var run models.RunRecord
	if err := s.db.Store().Get(id, &run); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

func (s *RunStorage) ListRuns(ctx context.Context, scenario string, limit int) ([]*models.RunRecord, error) {
	query := badgerhold.Where("ID").Ne("")
	if scenario != "" {
		query = query.And("Scenario").Eq(scenario)
	}
	query = query.SortBy("StartedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var runs []models.RunRecord
	if err := s.db.Store().Find(&runs, query); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	result := make([]*models.RunRecord, len(runs))
	for i := range runs {
		result[i] = &runs[i]
	}
	return result, nil
}

func (s *RunStorage) PruneRuns(ctx context.Context, scenario string, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}

	query := badgerhold.Where("Scenario").Eq(scenario).SortBy("StartedAt").Reverse().Skip(keep)

	var stale []models.RunRecord
	if err := s.db.Store().Find(&stale, query); err != nil {
		return 0, fmt.Errorf("failed to find runs to prune: %w", err)
	}

	deleted := 0
	for _, run := range stale {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		if err := s.db.Store().Delete(run.ID, models.RunRecord{}); err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
			return deleted, fmt.Errorf("failed to delete run %s: %w", run.ID, err)
		}
		deleted++
	}

	if deleted > 0 {
		rewritten, err := s.db.CollectGarbage()
		if err != nil {
			s.logger.Warn().Err(err).Msg("Run history garbage collection failed")
		}
		s.logger.Debug().
			Str("scenario", scenario).
			Int("deleted", deleted).
			Int("vlog_rewritten", rewritten).
			Msg("Pruned run history")
	}
	return deleted, nil
}

func (s *RunStorage) Close() error {
	return s.db.Close()
}
