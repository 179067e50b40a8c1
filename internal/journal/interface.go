package journal

import (
	"context"
	"time"

	"codeberg.org/mutker/llmbind/pkg/llmerr"
)

// Recorder stores engine failures as they are translated.
type Recorder interface {
	Record(ctx context.Context, err *llmerr.Error) error
	Close() error
}

// Entry is one recorded engine failure.
type Entry struct {
	ID           int64
	RecordedAt   time.Time
	Status       llmerr.Status
	Kind         string
	ShortMessage string
	MessageStack []string
	Display      string
}
