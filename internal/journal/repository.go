package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codeberg.org/mutker/llmbind/internal/errors"
	"codeberg.org/mutker/llmbind/internal/logger"
	"codeberg.org/mutker/llmbind/pkg/llmerr"
	_ "github.com/mattn/go-sqlite3"
)

// Repository is the SQLite store behind the journal.
type Repository struct {
	db     *sql.DB
	logger logger.Logger
	mu     sync.Mutex
}

func NewRepository(cfg Config, log logger.Logger) (*Repository, error) {
	errFactory := errors.New()

	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "create_directory",
			Path:  cfg.DBPath,
			Error: err.Error(),
		})
	}

	dsn := cfg.DBPath + "?_journal=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "open_database",
			Error: err.Error(),
		})
	}

	if err := ValidateAndUpdateSchema(db, log); err != nil {
		db.Close()
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "schema_version",
			Error: err.Error(),
		})
	}

	log.Info().
		Str("path", cfg.DBPath).
		Int("schema_version", SchemaVersion).
		Msg("Failure journal initialized")

	return &Repository{
		db:     db,
		logger: log,
	}, nil
}

func (r *Repository) Record(ctx context.Context, failure *llmerr.Error) error {
	errFactory := errors.New()

	if failure == nil {
		return errFactory.New(ErrInvalidRecord)
	}

	stack := failure.MessageStack()
	if stack == nil {
		stack = []string{}
	}
	encoded, err := json.Marshal(stack)
	if err != nil {
		return errFactory.Wrap(ErrRecordFailed, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.ExecContext(ctx, insertFailureSQL,
		time.Now().UnixNano(),
		int64(failure.Status()),
		failure.Name(),
		failure.ShortMessage(),
		string(encoded),
		failure.Error(),
	); err != nil {
		r.logger.Error().Err(err).Msg("Failed to record engine failure")
		return errFactory.Wrap(ErrRecordFailed, err)
	}

	r.logger.Debug().
		Str("kind", failure.Name()).
		Int32("status", int32(failure.Status())).
		Msg("Recorded engine failure")

	return nil
}

// Recent returns up to limit entries, newest first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]Entry, error) {
	errFactory := errors.New()

	if limit <= 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, recentFailuresSQL, limit)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			nanos    int64
			status   int64
			rawStack string
		)
		if err := rows.Scan(&e.ID, &nanos, &status, &e.Kind, &e.ShortMessage, &rawStack, &e.Display); err != nil {
			return nil, errFactory.Wrap(ErrStorageAccess, err)
		}
		if err := json.Unmarshal([]byte(rawStack), &e.MessageStack); err != nil {
			return nil, errFactory.Wrap(ErrStorageAccess, err)
		}
		if len(e.MessageStack) == 0 {
			e.MessageStack = nil
		}
		e.RecordedAt = time.Unix(0, nanos)
		e.Status = llmerr.Status(status)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}

	return entries, nil
}

// CountByKind returns the number of recorded failures per discriminant name.
func (r *Repository) CountByKind(ctx context.Context) (map[string]int, error) {
	errFactory := errors.New()

	rows, err := r.db.QueryContext(ctx, countByKindSQL)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			kind  string
			count int
		)
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, errFactory.Wrap(ErrStorageAccess, err)
		}
		counts[kind] = count
	}
	if err := rows.Err(); err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}

	return counts, nil
}

func (r *Repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return errors.New().WithData(ErrStorageClose, struct {
			Phase string
			Error string
		}{
			Phase: "checkpoint_wal",
			Error: err.Error(),
		})
	}

	if err := r.db.Close(); err != nil {
		return errors.New().WithData(ErrStorageClose, struct {
			Phase string
			Error string
		}{
			Phase: "close_database",
			Error: err.Error(),
		})
	}

	r.logger.Info().Msg("Failure journal closed")

	return nil
}
