package memmgr

import (
	"os"

	"github.com/melix/astro4j-sub008/apperrors"
	"github.com/melix/astro4j-sub008/image"
)

func removeScratchFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return apperrors.Wrap(apperrors.CategoryIO, "memmgr.release", err)
	}
	return nil
}

// FileBacked is a handle (W, H, path, metadata) exclusively owning a scratch
// file, per spec §3. It caches the most-recent in-memory materialization
// behind the Manager's explicit LRU cache rather than a runtime soft
// reference.
type FileBacked struct {
	PathV string
	W, H  int
	KindV image.Kind
	Meta  *image.Bag

	mgr *Manager
}

func (f *FileBacked) Width() int         { return f.W }
func (f *FileBacked) Height() int        { return f.H }
func (f *FileBacked) Metadata() *image.Bag { return f.Meta }
func (f *FileBacked) Kind() image.Kind   { return f.KindV }
func (f *FileBacked) Path() string       { return f.PathV }

// Copy satisfies image.Image: it materializes the wrapped image and returns
// a deep copy of it as a plain in-memory image, not as a FileBacked, so a
// FileBacked never ends up wrapping another FileBacked.
func (f *FileBacked) Copy() image.Image {
	mem, err := f.UnwrapToMemory()
	if err != nil {
		// Deep-copy failure here cannot surface through the image.Image
		// interface's error-free Copy signature; callers that need to
		// observe I/O errors should call UnwrapToMemory directly.
		return nil
	}
	return mem.Copy()
}

// UnwrapToMemory returns a concrete Mono or RGB image, waiting for a
// pending flush to complete if the handle has no cached materialization.
func (f *FileBacked) UnwrapToMemory() (image.Image, error) {
	return f.mgr.unwrapToMemory(f.PathV)
}

// Retain increments the handle's backing-path reference count; pair with a
// later Release.
func (f *FileBacked) Retain() { f.mgr.retain(f.PathV) }

// Release decrements the handle's backing-path reference count; at zero,
// the scratch file is deleted and status tracking removed.
func (f *FileBacked) Release() { f.mgr.release(f.PathV) }

// RefCount reports the current reference count for diagnostics/tests.
func (f *FileBacked) RefCount() int { return f.mgr.refCountOf(f.PathV) }

// Saved reports whether the backing file currently holds canonical bytes.
func (f *FileBacked) Saved() bool {
	f.mgr.mu.Lock()
	defer f.mgr.mu.Unlock()
	return f.mgr.saved[f.PathV]
}

// Flush forces this handle's materialization to disk now, regardless of
// memory pressure.
func (f *FileBacked) Flush() error { return f.mgr.flushOne(f.PathV) }
