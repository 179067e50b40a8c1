package engine

import "codeberg.org/mutker/llmbind/internal/errors"

const (
	ErrLibraryNotFound = errors.ErrLibraryNotFound
	ErrLibraryLoad     = errors.ErrLibraryLoad
	ErrSymbolNotFound  = errors.ErrSymbolNotFound
	ErrInitFailed      = errors.ErrInitFailed
	ErrShutdownFailed  = errors.ErrShutdownFailed
)
