// Package scratch implements the per-PID scratch-directory lifecycle of
// spec §4.10/§6.3: on startup it sweeps stale sibling directories left by
// crashed runs, then owns a fresh <tmp>/<namespace>/<pid>/ directory for the
// lifetime of this process.
package scratch

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/valyala/fastrand"

	"github.com/melix/astro4j-sub008/apperrors"
	"github.com/melix/astro4j-sub008/config"
	"github.com/melix/astro4j-sub008/core"
)

// Lifecycle owns this process's scratch directory and mints fresh file
// paths under it. It satisfies memmgr.PathAllocator.
type Lifecycle struct {
	baseDir string // <tmp>/<namespace>
	dir     string // <tmp>/<namespace>/<pid>
	log     core.Logger
	rng     fastrand.RNG
}

// New sweeps stale siblings under the configured base directory (§4.10) and
// creates this run's own scratch directory.
func New(cfg config.ScratchConfig, log core.Logger) (*Lifecycle, error) {
	if log == nil {
		log = core.NopLogger{}
	}
	base := cfg.BaseDir
	if base == "" {
		base = filepath.Join(os.TempDir(), cfg.Namespace)
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryIO, "scratch.new", err)
	}

	l := &Lifecycle{baseDir: base, log: log}
	l.Sweep()

	dir := filepath.Join(base, strconv.Itoa(os.Getpid()))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryIO, "scratch.new", err)
	}
	l.dir = dir
	return l, nil
}

// Sweep is the startup cleanup of spec §4.10: every entry under the base
// scratch directory that is not a directory, or whose name is not a live
// PID, is removed. It is the only producer or cleaner of base-dir siblings.
func (l *Lifecycle) Sweep() {
	entries, err := os.ReadDir(l.baseDir)
	if err != nil {
		l.log.Warn("scratch.sweep.readdir", "err", err.Error())
		return
	}
	for _, e := range entries {
		full := filepath.Join(l.baseDir, e.Name())
		if !e.IsDir() {
			l.removeAll(full)
			continue
		}
		pid, err := strconv.Atoi(e.Name())
		if err != nil {
			l.removeAll(full)
			continue
		}
		if pidAlive(pid) {
			continue
		}
		l.removeAll(full)
	}
}

func (l *Lifecycle) removeAll(path string) {
	if err := os.RemoveAll(path); err != nil {
		l.log.Warn("scratch.sweep.remove", "path", path, "err", err.Error())
	}
}

// NewScratchPath mints a fresh, unique file path under this run's scratch
// directory (memmgr.PathAllocator).
func (l *Lifecycle) NewScratchPath() (string, error) {
	suffix := l.rng.Uint32()
	name := fmt.Sprintf("img-%08x.scratch", suffix)
	return filepath.Join(l.dir, name), nil
}

// Dir returns this run's scratch directory.
func (l *Lifecycle) Dir() string { return l.dir }

// Close removes this run's entire scratch directory and its contents,
// equivalent to the delete-on-exit registration of every scratch file
// created under it.
func (l *Lifecycle) Close() error {
	if l.dir == "" {
		return nil
	}
	if err := os.RemoveAll(l.dir); err != nil {
		return apperrors.Wrap(apperrors.CategoryIO, "scratch.close", err)
	}
	return nil
}

// pidAlive reports whether pid identifies a running process, by sending it
// the null signal (POSIX convention for a liveness probe).
func pidAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
