package memmgr

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/melix/astro4j-sub008/config"
	"github.com/melix/astro4j-sub008/image"
)

type testPaths struct {
	dir string
	n   int64
}

func (p *testPaths) NewScratchPath() (string, error) {
	id := atomic.AddInt64(&p.n, 1)
	return filepath.Join(p.dir, "scratch-"+strconv.FormatInt(id, 10)), nil
}

func testConfig() config.MemoryConfig {
	return config.MemoryConfig{
		FreeRatioFlushNow:  0.001, // effectively never trigger on a test machine
		FreeRatioFlushAll:  0.002,
		FlushRecoverRatio:  0.50,
		WatchdogInterval:   time.Hour,
		IdleFlushAfter:     time.Hour,
		FlushWorkerMinimum: 1,
	}
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := New(testConfig(), &testPaths{dir: t.TempDir()}, nil)
	t.Cleanup(m.Close)
	return m
}

func TestWrapReturnsHandleWithMatchingShape(t *testing.T) {
	m := newTestManager(t)
	src := image.NewMono(4, 3)
	src.Set(1, 1, 99)

	fb, err := m.Wrap(src)
	if err != nil {
		t.Fatalf("Wrap() error: %v", err)
	}
	if fb.Width() != 4 || fb.Height() != 3 {
		t.Errorf("dimensions = %dx%d, want 4x3", fb.Width(), fb.Height())
	}
	if fb.RefCount() != 1 {
		t.Errorf("RefCount() = %d, want 1", fb.RefCount())
	}
}

func TestWrapOnAlreadyFileBackedIsIdempotent(t *testing.T) {
	m := newTestManager(t)
	fb, err := m.Wrap(image.NewMono(2, 2))
	if err != nil {
		t.Fatalf("Wrap() error: %v", err)
	}
	fb2, err := m.Wrap(fb)
	if err != nil {
		t.Fatalf("Wrap() of FileBacked error: %v", err)
	}
	if fb2 != fb {
		t.Error("Wrap() of an existing FileBacked should return the same handle")
	}
}

func TestUnwrapToMemoryRoundTripsBeforeAndAfterFlush(t *testing.T) {
	m := newTestManager(t)
	src := image.NewMono(2, 2)
	src.Set(0, 0, 7)

	fb, err := m.Wrap(src)
	if err != nil {
		t.Fatalf("Wrap() error: %v", err)
	}

	got, err := fb.UnwrapToMemory()
	if err != nil {
		t.Fatalf("UnwrapToMemory() (cached) error: %v", err)
	}
	if got.(*image.Mono).At(0, 0) != 7 {
		t.Errorf("At(0,0) = %v, want 7", got.(*image.Mono).At(0, 0))
	}

	if err := fb.Flush(); err != nil {
		t.Fatalf("Flush() error: %v", err)
	}
	if !fb.Saved() {
		t.Error("Saved() = false after Flush()")
	}
	if _, err := os.Stat(fb.Path()); err != nil {
		t.Errorf("scratch file missing after flush: %v", err)
	}

	got2, err := fb.UnwrapToMemory()
	if err != nil {
		t.Fatalf("UnwrapToMemory() (post-flush) error: %v", err)
	}
	if got2.(*image.Mono).At(0, 0) != 7 {
		t.Errorf("At(0,0) after flush = %v, want 7", got2.(*image.Mono).At(0, 0))
	}
}

func TestReleaseAtZeroRefCountDeletesScratchFile(t *testing.T) {
	m := newTestManager(t)
	fb, err := m.Wrap(image.NewMono(2, 2))
	if err != nil {
		t.Fatalf("Wrap() error: %v", err)
	}
	if err := fb.Flush(); err != nil {
		t.Fatalf("Flush() error: %v", err)
	}
	path := fb.Path()

	fb.Release()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected scratch file removed after Release(), stat err = %v", err)
	}
}

func TestRetainKeepsFileAliveUntilMatchingRelease(t *testing.T) {
	m := newTestManager(t)
	fb, err := m.Wrap(image.NewMono(2, 2))
	if err != nil {
		t.Fatalf("Wrap() error: %v", err)
	}
	if err := fb.Flush(); err != nil {
		t.Fatalf("Flush() error: %v", err)
	}
	fb.Retain()
	if fb.RefCount() != 2 {
		t.Fatalf("RefCount() after Retain() = %d, want 2", fb.RefCount())
	}

	fb.Release()
	if _, err := os.Stat(fb.Path()); err != nil {
		t.Errorf("scratch file removed too early: %v", err)
	}
	fb.Release()
	if _, err := os.Stat(fb.Path()); !os.IsNotExist(err) {
		t.Errorf("expected scratch file removed after final Release(), stat err = %v", err)
	}
}

func TestFlushImagesIsNoopWhenHeapHealthy(t *testing.T) {
	m := New(config.MemoryConfig{
		FreeRatioFlushNow:  0.01,
		FreeRatioFlushAll:  0.02, // far below any real free-heap ratio
		FlushRecoverRatio:  0.50,
		WatchdogInterval:   time.Hour,
		IdleFlushAfter:     time.Hour,
		FlushWorkerMinimum: 1,
	}, &testPaths{dir: t.TempDir()}, nil)
	defer m.Close()

	fb, err := m.Wrap(image.NewMono(2, 2))
	if err != nil {
		t.Fatalf("Wrap() error: %v", err)
	}
	if err := m.FlushImages(context.Background()); err != nil {
		t.Fatalf("FlushImages() error: %v", err)
	}
	if fb.Saved() {
		t.Error("Saved() = true, want false: FlushImages should be a no-op when heap is healthy")
	}
}
