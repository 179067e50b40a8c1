package journal

import "codeberg.org/mutker/llmbind/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrInvalidConfig
	ErrInvalidDBPath = errors.ErrorCode("journal_invalid_db_path")

	// Schema Errors
	ErrSchemaInitFailed       = errors.ErrorCode("journal_schema_init_failed")
	ErrSchemaValidationFailed = errors.ErrorCode("journal_schema_validation_failed")
	ErrSchemaMigrationFailed  = errors.ErrorCode("journal_schema_migration_failed")

	// Storage Errors
	ErrStorageInit   = errors.ErrorCode("journal_storage_init_failed")
	ErrStorageAccess = errors.ErrorCode("journal_storage_access_failed")
	ErrStorageClose  = errors.ErrorCode("journal_storage_close_failed")

	// Record Errors
	ErrInvalidRecord = errors.ErrorCode("journal_invalid_record")
	ErrRecordFailed  = errors.ErrorCode("journal_record_failed")

	// Operation Errors
	ErrOperationTimeout = errors.ErrTimeout
)
