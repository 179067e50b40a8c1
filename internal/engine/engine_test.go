package engine

import (
	"bytes"
	"context"
	stderrors "errors"
	"path/filepath"
	"runtime"
	"testing"
	"unsafe"

	"codeberg.org/mutker/llmbind/internal/config"
	"codeberg.org/mutker/llmbind/internal/errors"
	"codeberg.org/mutker/llmbind/internal/journal"
	"codeberg.org/mutker/llmbind/internal/logger"
	"codeberg.org/mutker/llmbind/pkg/llmerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cStrings lays out strs as a char ** array in Go memory.
func cStrings(t *testing.T, strs []string) uintptr {
	t.Helper()

	bufs := make([][]byte, len(strs))
	ptrs := make([]uintptr, len(strs))
	for i, s := range strs {
		bufs[i] = append([]byte(s), 0)
		ptrs[i] = uintptr(unsafe.Pointer(&bufs[i][0]))
	}
	t.Cleanup(func() {
		runtime.KeepAlive(bufs)
		runtime.KeepAlive(ptrs)
	})

	return uintptr(unsafe.Pointer(&ptrs[0]))
}

type fakeRecorder struct {
	recorded []*llmerr.Error
	err      error
	closeErr error
	closed   bool
}

func (r *fakeRecorder) Record(_ context.Context, failure *llmerr.Error) error {
	r.recorded = append(r.recorded, failure)
	return r.err
}

func (r *fakeRecorder) Close() error {
	r.closed = true
	return r.closeErr
}

type detail string

func (d detail) ErrorString() string { return string(d) }

func newTestEngine(t *testing.T, buf *bytes.Buffer, opts ...Option) (*Engine, *fakeRecorder) {
	t.Helper()

	rec := &fakeRecorder{}
	opts = append([]Option{
		WithLogger(logger.New(buf, logger.DebugLevel, false)),
		WithRecorder(rec),
	}, opts...)

	return newEngine(applyOptions(opts)), rec
}

func TestGoString(t *testing.T) {
	b := []byte("engine\x00trailing")
	assert.Equal(t, "engine", goString(uintptr(unsafe.Pointer(&b[0]))))
	assert.Equal(t, "", goString(0))
	runtime.KeepAlive(b)
}

func TestGoStrings(t *testing.T) {
	ptr := cStrings(t, []string{"first", "", "third"})

	assert.Equal(t, []string{"first", "", "third"}, goStrings(ptr, 3))
	assert.Equal(t, []string{"first"}, goStrings(ptr, 1))
	assert.Nil(t, goStrings(ptr, 0))
	assert.Nil(t, goStrings(0, 3))
}

func TestCheckSuccess(t *testing.T) {
	var buf bytes.Buffer
	e, rec := newTestEngine(t, &buf)
	e.getErrorStack = func(*uintptr, *int32) int32 {
		t.Fatal("error stack must not be read on success")
		return 0
	}

	assert.NoError(t, e.Check(context.Background(), 0, "init"))
	assert.Empty(t, rec.recorded)
}

func TestCheckReadsAndFreesErrorStack(t *testing.T) {
	var buf bytes.Buffer
	e, rec := newTestEngine(t, &buf)

	stack := cStrings(t, []string{"model file is corrupt", "failed to load"})
	var freed uintptr
	e.getErrorStack = func(out *uintptr, depth *int32) int32 {
		*out = stack
		*depth = 2
		return 0
	}
	e.freeErrorStack = func(p uintptr) { freed = p }

	err := e.Check(context.Background(), int32(llmerr.StatusIOError), "Initialization failed")
	require.Error(t, err)

	failure := llmerr.AsError(err)
	require.NotNil(t, failure)
	assert.Equal(t, llmerr.KindIO, failure.Kind())
	assert.Equal(t, "Initialization failed", failure.ShortMessage())
	assert.Equal(t, []string{"model file is corrupt", "failed to load"}, failure.MessageStack())
	assert.Equal(t, "Initialization failed: \n  [0] model file is corrupt\n  [1] failed to load", err.Error())
	assert.Equal(t, stack, freed)

	require.Len(t, rec.recorded, 1)
	assert.Same(t, failure, rec.recorded[0])
}

func TestCheckStackReadFailure(t *testing.T) {
	var buf bytes.Buffer
	e, _ := newTestEngine(t, &buf)

	e.getErrorStack = func(*uintptr, *int32) int32 { return int32(llmerr.StatusOutOfMemory) }
	e.freeErrorStack = func(uintptr) { t.Fatal("nothing to free") }
	e.statusToString = func(int32) string { return "OUT_OF_MEMORY" }

	err := e.Check(context.Background(), int32(llmerr.StatusRuntimeError), "Generate failed")
	require.Error(t, err)
	assert.Equal(t, "Generate failed", err.Error())
	assert.Contains(t, buf.String(), "Unable to get engine error state")
	assert.Contains(t, buf.String(), "OUT_OF_MEMORY")
}

func TestCheckWithDetail(t *testing.T) {
	var buf bytes.Buffer
	e, _ := newTestEngine(t, &buf, WithDetail(detail("wasm trap")))

	err := e.Check(context.Background(), int32(llmerr.StatusInvalidArgument), "bad prompt")
	assert.Equal(t, "bad prompt\nDetails: wasm trap", err.Error())
	assert.ErrorIs(t, err, llmerr.KindInvalidArgument)
}

func TestCheckUnmappedStatusWarns(t *testing.T) {
	var buf bytes.Buffer
	e, rec := newTestEngine(t, &buf)

	err := e.Check(context.Background(), 64, "strange")
	require.Error(t, err)
	assert.Equal(t, llmerr.KindBase, llmerr.AsError(err).Kind())
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("Unmapped error code")))
	assert.Len(t, rec.recorded, 1)
}

func TestCheckJournalFailureDoesNotMaskError(t *testing.T) {
	var buf bytes.Buffer
	e, rec := newTestEngine(t, &buf)
	rec.err = stderrors.New("disk full")

	err := e.Check(context.Background(), int32(llmerr.StatusKeyError), "bad access key")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, llmerr.KindKey))
	assert.Contains(t, buf.String(), "Failed to journal engine failure")
}

func TestCheckJournalsToSQLite(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, logger.DebugLevel, false)

	repo, err := journal.NewRepository(journal.Config{
		DBPath:  filepath.Join(t.TempDir(), "failures.db"),
		Enabled: true,
	}, log)
	require.NoError(t, err)
	defer repo.Close()

	e := newEngine(applyOptions([]Option{WithLogger(log), WithRecorder(repo)}))
	_ = e.Check(context.Background(), int32(llmerr.StatusActivationLimitReached), "Activation limit reached")

	entries, err := repo.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "LLMActivationLimitReachedError", entries[0].Kind)
}

func TestStatusStringAndVersionFallbacks(t *testing.T) {
	var buf bytes.Buffer
	e, _ := newTestEngine(t, &buf)

	assert.Equal(t, "IO_ERROR", e.StatusString(llmerr.StatusIOError))
	assert.Equal(t, "", e.Version())

	e.statusToString = func(status int32) string { return "engine says " + llmerr.Status(status).String() }
	e.version = func() string { return "1.2.3" }

	assert.Equal(t, "engine says IO_ERROR", e.StatusString(llmerr.StatusIOError))
	assert.Equal(t, "1.2.3", e.Version())
}

func TestCloseClosesRecorder(t *testing.T) {
	var buf bytes.Buffer
	e, rec := newTestEngine(t, &buf)

	require.NoError(t, e.Close())
	assert.True(t, rec.closed)
}

func TestCloseWrapsRecorderError(t *testing.T) {
	var buf bytes.Buffer
	e, rec := newTestEngine(t, &buf)
	rec.closeErr = stderrors.New("checkpoint failed")

	err := e.Close()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrShutdownFailed))
	assert.ErrorIs(t, err, rec.closeErr)
}

func TestDefaultRecorderIsNoop(t *testing.T) {
	var buf bytes.Buffer
	e := newEngine(applyOptions([]Option{WithLogger(logger.New(&buf, logger.DebugLevel, false))}))

	require.NotNil(t, e.recorder)
	err := e.Check(context.Background(), int32(llmerr.StatusIOError), "read failed")
	assert.ErrorIs(t, err, llmerr.KindIO)
	assert.NotContains(t, buf.String(), "Failed to journal engine failure")
	assert.NoError(t, e.Close())
}

func TestOpenClosesLibraryWithoutEngineSymbols(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("relies on the glibc soname")
	}

	var closed []uintptr
	saved := closeLib
	closeLib = func(lib uintptr) error {
		closed = append(closed, lib)
		return nil
	}
	t.Cleanup(func() { closeLib = saved })

	var buf bytes.Buffer
	_, err := Open("libc.so.6", WithLogger(logger.New(&buf, logger.DebugLevel, false)))
	require.Error(t, err)
	if errors.HasCode(err, ErrLibraryLoad) {
		t.Skip("libc.so.6 not available")
	}

	assert.True(t, errors.HasCode(err, ErrSymbolNotFound))
	require.Len(t, closed, 1)
	assert.NotZero(t, closed[0])
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrLibraryNotFound))
}

func TestOpenMissingLibrary(t *testing.T) {
	var buf bytes.Buffer
	_, err := Open(filepath.Join(t.TempDir(), "libmissing.so"), WithLogger(logger.New(&buf, logger.DebugLevel, false)))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrLibraryLoad))
}

func TestNewFromConfig(t *testing.T) {
	_, err := NewFromConfig(&config.Config{LogLevel: "info"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrLibraryNotFound))

	_, err = NewFromConfig(&config.Config{LogLevel: "loud", Library: "/x.so"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrInitFailed))
	assert.True(t, errors.HasCode(err, errors.ErrInvalidLogLevel))

	_, err = NewFromConfig(&config.Config{LogLevel: "info", Journal: true})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, journal.ErrInvalidDBPath))
}

func TestNewFromConfigLogsCodedFailure(t *testing.T) {
	before := logger.Default()

	var buf bytes.Buffer
	_, err := NewFromConfig(&config.Config{LogLevel: "info"}, WithLogger(logger.New(&buf, logger.DebugLevel, false)))
	require.Error(t, err)

	assert.Contains(t, buf.String(), `"error_code":"library_not_found"`)
	assert.Contains(t, buf.String(), "Failed to open engine")
	assert.Same(t, before, logger.Default(), "package logger must not be replaced")
}

func TestNewFromConfigKeepsCallerRecorder(t *testing.T) {
	var buf bytes.Buffer
	rec := &fakeRecorder{}

	_, err := NewFromConfig(&config.Config{LogLevel: "info", Journal: true},
		WithLogger(logger.New(&buf, logger.DebugLevel, false)),
		WithRecorder(rec),
	)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrLibraryNotFound), "caller recorder skips the journal config")
	assert.False(t, rec.closed, "caller recorder must stay open")
}

func TestNewFromConfigLogsJournalFailure(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewFromConfig(&config.Config{LogLevel: "info", Journal: true},
		WithLogger(logger.New(&buf, logger.DebugLevel, false)),
	)
	require.Error(t, err)
	assert.Contains(t, buf.String(), `"error_code":"initialization_failed"`)
	assert.Contains(t, buf.String(), "Failed to open failure journal")
}
