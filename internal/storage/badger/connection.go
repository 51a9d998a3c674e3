// Package badger keeps the run history in an embedded Badger database.
package badger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	dgbadger "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/turngreen-e2e/internal/common"
	"github.com/timshannon/badgerhold/v4"
)

// BadgerDB owns the history database directory.
type BadgerDB struct {
	store  *badgerhold.Store
	logger arbor.ILogger
	path   string
}

// NewBadgerDB opens (or creates) the history database at config.Path.
func NewBadgerDB(logger arbor.ILogger, config *common.BadgerConfig) (*BadgerDB, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("badger path is required")
	}

	if config.ResetOnStartup {
		logger.Debug().Str("path", config.Path).Msg("Resetting run history (reset_on_startup=true)")
		if err := os.RemoveAll(config.Path); err != nil {
			logger.Warn().Err(err).Str("path", config.Path).Msg("Failed to reset run history")
		}
	}

	if err := os.MkdirAll(config.Path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create run history directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Options = dgbadger.DefaultOptions(config.Path).
		WithLogger(&badgerLogger{logger: logger}).
		WithLoggingLevel(dgbadger.WARNING).
		WithNumVersionsToKeep(1)

	store, err := badgerhold.Open(options)
	if err != nil {
		logger.Error().Err(err).Str("path", config.Path).Msg("Failed to open run history database")
		return nil, fmt.Errorf("failed to open run history at %s: %w", filepath.Clean(config.Path), err)
	}

	logger.Debug().Str("path", config.Path).Msg("Run history opened")
	return &BadgerDB{store: store, logger: logger, path: config.Path}, nil
}

// Store returns the underlying badgerhold store
func (b *BadgerDB) Store() *badgerhold.Store {
	return b.store
}

// CollectGarbage reclaims value log space left by deleted runs. It returns
// the number of value log files rewritten.
func (b *BadgerDB) CollectGarbage() (int, error) {
	rewritten := 0
	for {
		err := b.store.Badger().RunValueLogGC(0.5)
		if errors.Is(err, dgbadger.ErrNoRewrite) {
			return rewritten, nil
		}
		if err != nil {
			return rewritten, fmt.Errorf("value log gc: %w", err)
		}
		rewritten++
	}
}

// Close closes the database
func (b *BadgerDB) Close() error {
	if b.store != nil {
		return b.store.Close()
	}
	return nil
}

// badgerLogger routes Badger's internal logging to arbor.
type badgerLogger struct {
	logger arbor.ILogger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Str("component", "badger").Msg(badgerLine(format, args))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Str("component", "badger").Msg(badgerLine(format, args))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug().Str("component", "badger").Msg(badgerLine(format, args))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Trace().Str("component", "badger").Msg(badgerLine(format, args))
}

func badgerLine(format string, args []interface{}) string {
	return strings.TrimSpace(fmt.Sprintf(format, args...))
}
