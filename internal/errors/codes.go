package errors

// Common error codes
const (
	// Configuration errors
	ErrInvalidConfig ErrorCode = "invalid_configuration"
	ErrBindFlags     ErrorCode = "bind_flags_failed"
	ErrReadConfig    ErrorCode = "read_config_failed"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Lifecycle errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"

	// Library errors
	ErrLibraryNotFound ErrorCode = "library_not_found"
	ErrLibraryLoad     ErrorCode = "library_load_failed"
	ErrSymbolNotFound  ErrorCode = "symbol_not_found"

	// Operation errors
	ErrTimeout ErrorCode = "operation_timeout"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInvalidConfig:   "Invalid configuration",
	ErrBindFlags:       "Failed to bind flags",
	ErrReadConfig:      "Failed to read configuration",
	ErrInvalidLogLevel: "Invalid log level",
	ErrInitFailed:      "Initialization failed",
	ErrShutdownFailed:  "Shutdown failed",
	ErrLibraryNotFound: "Engine library not found",
	ErrLibraryLoad:     "Failed to load engine library",
	ErrSymbolNotFound:  "Engine symbol not found",
	ErrTimeout:         "Operation timed out",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
