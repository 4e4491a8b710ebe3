// Package memmgr implements the image memory manager of spec §4.1: it keeps
// the working set of Mono/RGB images in RAM while spilling least-recently
// used materializations to disk under memory pressure.
package memmgr

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/melix/astro4j-sub008/apperrors"
	"github.com/melix/astro4j-sub008/config"
	"github.com/melix/astro4j-sub008/core"
	"github.com/melix/astro4j-sub008/image"
)

// PathAllocator mints fresh scratch file paths; backed by the scratch
// package's per-PID directory in production, and by t.TempDir() in tests.
type PathAllocator interface {
	NewScratchPath() (string, error)
}

// cacheEntry is the explicit, non-GC-driven analogue of the original's soft
// reference: an in-memory materialization plus the LRU bookkeeping that
// decides when it becomes a spill candidate (spec §9, Open Question b).
type cacheEntry struct {
	img        image.Image
	lastAccess time.Time
}

// Manager owns the ref-count, saved-status and soft-reference-cache
// registries described in spec §5 ("FileBacked registries... guarded by
// explicit locks").
type Manager struct {
	cfg   config.MemoryConfig
	paths PathAllocator
	log   core.Logger

	mu       sync.Mutex
	refCount map[string]int
	saved    map[string]bool
	cache    map[string]*cacheEntry
	cond     *sync.Cond // signaled whenever a path's saved flag flips to true

	flushWorkers int

	stop      chan struct{}
	stopOnce  sync.Once
	watchdogs sync.WaitGroup
}

// New creates a Manager and starts its background watchdogs. Call Close to
// stop them.
func New(cfg config.MemoryConfig, paths PathAllocator, log core.Logger) *Manager {
	if log == nil {
		log = core.NopLogger{}
	}
	workers := cfg.FlushWorkerMinimum
	if n := runtime.NumCPU() / 2; n > workers {
		workers = n
	}
	m := &Manager{
		cfg:          cfg,
		paths:        paths,
		log:          log,
		refCount:     make(map[string]int),
		saved:        make(map[string]bool),
		cache:        make(map[string]*cacheEntry),
		flushWorkers: workers,
		stop:         make(chan struct{}),
	}
	m.cond = sync.NewCond(&m.mu)
	m.watchdogs.Add(2)
	go m.autoFlushWatchdog()
	go m.reclaimWatchdog()
	return m
}

// Close stops the background watchdogs. It does not flush or delete any
// remaining handles.
func (m *Manager) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
	m.watchdogs.Wait()
}

// Wrap registers img under a new scratch path and returns a FileBacked
// handle owning it. If free heap is below FreeRatioFlushNow, the new
// handle's materialization is flushed to disk immediately rather than left
// pending.
func (m *Manager) Wrap(img image.Image) (*FileBacked, error) {
	if fb, ok := img.(*FileBacked); ok {
		return fb, nil
	}

	path, err := m.paths.NewScratchPath()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryIO, "memmgr.wrap", err)
	}

	m.mu.Lock()
	m.refCount[path] = 1
	m.saved[path] = false
	m.cache[path] = &cacheEntry{img: img, lastAccess: time.Now()}
	m.mu.Unlock()

	fb := &FileBacked{
		PathV: path,
		W:     img.Width(),
		H:     img.Height(),
		KindV: img.Kind(),
		Meta:  img.Metadata().Clone(),
		mgr:   m,
	}
	runtime.SetFinalizer(fb, finalizeFileBacked)

	if freeHeapRatio() < m.cfg.FreeRatioFlushNow {
		if err := m.flushOne(path); err != nil {
			return fb, err
		}
	}
	return fb, nil
}

func finalizeFileBacked(fb *FileBacked) {
	if fb.mgr != nil {
		fb.mgr.release(fb.PathV)
	}
}

// unwrapToMemory returns the cached materialization for path. Only when
// there is no cache entry does it wait for path to be saved and read it
// back from disk.
func (m *Manager) unwrapToMemory(path string) (image.Image, error) {
	m.mu.Lock()
	if entry, ok := m.cache[path]; ok {
		entry.lastAccess = time.Now()
		img := entry.img
		m.mu.Unlock()
		return img, nil
	}
	for !m.saved[path] {
		m.cond.Wait()
	}
	m.mu.Unlock()

	img, err := readScratch(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryIO, "memmgr.unwrap", err)
	}

	m.mu.Lock()
	m.cache[path] = &cacheEntry{img: img, lastAccess: time.Now()}
	m.mu.Unlock()
	return img, nil
}

// flushOne writes path's cached materialization to disk and marks it saved.
// The cache entry stays in memory; only release drops it. Safe to call even
// if the entry has already been flushed (idempotent).
func (m *Manager) flushOne(path string) error {
	m.mu.Lock()
	entry, cached := m.cache[path]
	alreadySaved := m.saved[path]
	m.mu.Unlock()

	if alreadySaved || !cached {
		return nil
	}

	if err := writeScratch(path, entry.img); err != nil {
		return err
	}

	m.mu.Lock()
	m.saved[path] = true
	m.cond.Broadcast()
	m.mu.Unlock()
	return nil
}

// FlushImages is the global flush operation of spec §4.1: when free heap is
// below FreeRatioFlushAll, it enqueues flushes for every live handle whose
// materialization is still cached, using a small worker pool, and blocks
// until all selected handles report saved.
func (m *Manager) FlushImages(ctx context.Context) error {
	if freeHeapRatio() >= m.cfg.FreeRatioFlushAll {
		return nil
	}
	time.Sleep(50 * time.Millisecond) // brief settle, per spec §9 Open Question b

	m.mu.Lock()
	targets := make([]string, 0, len(m.cache))
	for path, entry := range m.cache {
		if entry != nil && !m.saved[path] {
			targets = append(targets, path)
		}
	}
	m.mu.Unlock()

	if len(targets) == 0 {
		return nil
	}

	sem := make(chan struct{}, m.flushWorkers)
	var wg sync.WaitGroup
	errs := make(chan error, len(targets))

	for _, path := range targets {
		if freeHeapRatio() > m.cfg.FlushRecoverRatio {
			break // heap recovered; abort remaining flushes
		}
		select {
		case <-ctx.Done():
			return apperrors.Wrap(apperrors.CategoryCancelled, "memmgr.flushImages", ctx.Err())
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			defer func() { <-sem }()
			if freeHeapRatio() > m.cfg.FlushRecoverRatio {
				return
			}
			if err := m.flushOne(p); err != nil {
				errs <- err
			}
		}(path)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		return err
	}
	return nil
}

// release decrements path's reference count; at zero it deletes the
// backing file and removes all status tracking for the path.
func (m *Manager) release(path string) {
	m.mu.Lock()
	m.refCount[path]--
	n := m.refCount[path]
	if n <= 0 {
		delete(m.refCount, path)
		delete(m.saved, path)
		delete(m.cache, path)
	}
	m.mu.Unlock()

	if n <= 0 {
		_ = removeScratchFile(path)
	}
}

// retain increments path's reference count (used when a caller duplicates a
// FileBacked handle without re-wrapping the underlying pixels).
func (m *Manager) retain(path string) {
	m.mu.Lock()
	m.refCount[path]++
	m.mu.Unlock()
}

func (m *Manager) refCountOf(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refCount[path]
}

func (m *Manager) autoFlushWatchdog() {
	defer m.watchdogs.Done()
	interval := m.cfg.WatchdogInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.flushIdle()
		}
	}
}

func (m *Manager) flushIdle() {
	idleAfter := m.cfg.IdleFlushAfter
	if idleAfter <= 0 {
		idleAfter = 10 * time.Second
	}
	now := time.Now()
	m.mu.Lock()
	var stale []string
	for path, entry := range m.cache {
		if !m.saved[path] && now.Sub(entry.lastAccess) > idleAfter {
			stale = append(stale, path)
		}
	}
	m.mu.Unlock()

	for _, path := range stale {
		if err := m.flushOne(path); err != nil {
			m.log.Error("memmgr.autoflush.failed", "path", path, "err", err.Error())
		}
	}
}

// reclaimWatchdog is the explicit stand-in for the original's reference
// queue: since Go has no notion of a cleared soft reference, this watchdog
// just re-runs the idle sweep at a tighter cadence so a handle that falls
// out of use is flushed promptly even between full flushIdle ticks.
func (m *Manager) reclaimWatchdog() {
	defer m.watchdogs.Done()
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			if freeHeapRatio() < m.cfg.FreeRatioFlushAll {
				m.flushIdle()
			}
		}
	}
}
