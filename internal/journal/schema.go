package journal

import (
	"database/sql"

	"codeberg.org/mutker/llmbind/internal/errors"
	"codeberg.org/mutker/llmbind/internal/logger"
)

const (
	SchemaVersion = 1

	createTablesSQL = `
	   CREATE TABLE IF NOT EXISTS schema_versions (
	       version     INTEGER PRIMARY KEY,
	       applied_at  TEXT NOT NULL
	   );
	   CREATE TABLE IF NOT EXISTS failures (
	       id            INTEGER PRIMARY KEY AUTOINCREMENT,
	       recorded_at   INTEGER NOT NULL,
	       status        INTEGER NOT NULL CHECK (typeof(status) = 'integer'),
	       kind          TEXT NOT NULL,
	       short_message TEXT NOT NULL,
	       message_stack TEXT NOT NULL,
	       display       TEXT NOT NULL
	   );
	   CREATE INDEX IF NOT EXISTS failures_kind ON failures (kind);`

	insertFailureSQL = `
    INSERT INTO failures (
        recorded_at, status, kind, short_message, message_stack, display
    ) VALUES (?, ?, ?, ?, ?, ?)`

	recentFailuresSQL = `
    SELECT id, recorded_at, status, kind, short_message, message_stack, display
    FROM failures
    ORDER BY id DESC
    LIMIT ?`

	countByKindSQL = `
    SELECT kind, COUNT(*)
    FROM failures
    GROUP BY kind`
)

// InitSchema creates a new database schema with the current version
func InitSchema(db *sql.DB, log logger.Logger) error {
	errFactory := errors.New()

	log.Debug().Msg("Creating journal database...")

	tx, err := db.Begin()
	if err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				log.Debug().Err(err).Msg("Failed to rollback transaction")
			}
		}
	}()

	if _, err := tx.Exec(createTablesSQL); err != nil {
		return errFactory.WithData(ErrSchemaInitFailed, struct {
			Error string
			SQL   string
		}{
			Error: err.Error(),
			SQL:   createTablesSQL,
		})
	}

	if _, err := tx.Exec(`
        INSERT INTO schema_versions (version, applied_at)
        VALUES (?, datetime('now'))
    `, SchemaVersion); err != nil {
		return errFactory.WithData(ErrSchemaInitFailed, struct {
			Error string
			Phase string
		}{
			Error: err.Error(),
			Phase: "record_version",
		})
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}
	committed = true

	log.Info().
		Int("version", SchemaVersion).
		Msg("Journal schema initialized")

	return nil
}

// GetSchemaVersion returns the current schema version, 0 for an empty database
func GetSchemaVersion(db *sql.DB) (int, error) {
	errFactory := errors.New()

	exists, err := TableExists(db, "schema_versions")
	if err != nil {
		return 0, errFactory.Wrap(ErrSchemaValidationFailed, err)
	}
	if !exists {
		return 0, nil
	}

	var version int
	err = db.QueryRow(`
        SELECT version
        FROM schema_versions
        ORDER BY version DESC
        LIMIT 1
    `).Scan(&version)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errFactory.WithData(ErrSchemaValidationFailed, struct {
			Phase string
			Error string
		}{
			Phase: "get_version",
			Error: err.Error(),
		})
	}

	return version, nil
}

// TableExists checks if a table exists
func TableExists(db *sql.DB, tableName string) (bool, error) {
	errFactory := errors.New()
	var exists bool
	err := db.QueryRow(`
        SELECT EXISTS (
            SELECT 1 FROM sqlite_master
            WHERE type='table' AND name=?
        )
    `, tableName).Scan(&exists)
	if err != nil {
		return false, errFactory.WithData(ErrSchemaValidationFailed, struct {
			Phase string
			Table string
			Error string
		}{
			Phase: "check_table_exists",
			Table: tableName,
			Error: err.Error(),
		})
	}
	return exists, nil
}

// ValidateAndUpdateSchema recreates the schema when the stored version is
// missing or differs from SchemaVersion. Recorded failures are not migrated.
func ValidateAndUpdateSchema(db *sql.DB, log logger.Logger) error {
	errFactory := errors.New()

	version, err := GetSchemaVersion(db)
	if err != nil {
		return errFactory.Wrap(ErrSchemaValidationFailed, err)
	}

	log.Debug().
		Int("version", version).
		Bool("init_db", version == 0).
		Msg("Current journal schema version")

	if version == SchemaVersion {
		return nil
	}

	if version != 0 {
		log.Warn().
			Int("found", version).
			Int("expected", SchemaVersion).
			Msg("Journal schema version mismatch, recreating")
	}

	if err := dropTables(db, log); err != nil {
		return err
	}

	return InitSchema(db, log)
}

func dropTables(db *sql.DB, log logger.Logger) error {
	errFactory := errors.New()

	tx, err := db.Begin()
	if err != nil {
		return errFactory.Wrap(ErrSchemaMigrationFailed, err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				log.Debug().Err(err).Msg("Failed to rollback drop tables")
			}
		}
	}()

	for _, table := range []string{"failures", "schema_versions"} {
		if _, err := tx.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return errFactory.WithData(ErrSchemaMigrationFailed, struct {
				Phase string
				Table string
				Error string
			}{
				Phase: "drop_table",
				Table: table,
				Error: err.Error(),
			})
		}
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrSchemaMigrationFailed, err)
	}
	committed = true

	return nil
}
