package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/melix/astro4j-sub008/apperrors"
	"github.com/melix/astro4j-sub008/utils"
)

// Local stores deliverables on the local filesystem, one subdirectory per
// Key.Bucket.
type Local struct {
	rootDir     string
	permissions os.FileMode
	maxBytes    int64 // 0 = unbounded
}

// NewLocal creates a Local adapter rooted at dir, creating it if necessary.
func NewLocal(dir string, perm os.FileMode) (*Local, error) {
	if perm == 0 {
		perm = 0o644
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryIO, "storage.local.new", err)
	}
	return &Local{rootDir: dir, permissions: perm}, nil
}

// WithMaxObjectBytes bounds the size of any single object accepted by Put,
// guarding against a runaway FITS export filling the deliverables volume.
func (l *Local) WithMaxObjectBytes(max int64) *Local {
	l.maxBytes = max
	return l
}

func (l *Local) absPath(key Key) string {
	return filepath.Join(l.rootDir, filepath.Clean(key.Bucket), filepath.Clean(key.Path))
}

func (l *Local) Put(ctx context.Context, key Key, r io.Reader, meta map[string]string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.CategoryCancelled, "storage.local.put", err)
	}

	path := l.absPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperrors.Wrap(apperrors.CategoryIO, "storage.local.put.mkdir", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, l.permissions)
	if err != nil {
		return apperrors.Wrap(apperrors.CategoryIO, "storage.local.put.open", err)
	}
	defer f.Close()

	if l.maxBytes > 0 {
		r = &utils.LimitedReader{R: r, Max: l.maxBytes}
	}
	if _, err := io.Copy(f, r); err != nil {
		return apperrors.Wrap(apperrors.CategoryIO, "storage.local.put.copy", err)
	}

	if len(meta) > 0 {
		mf, err := os.OpenFile(path+".meta.json", os.O_WRONLY|os.O_CREATE|os.O_TRUNC, l.permissions)
		if err == nil {
			_ = json.NewEncoder(mf).Encode(meta)
			mf.Close()
		}
	}
	return nil
}

func (l *Local) Get(ctx context.Context, key Key) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryCancelled, "storage.local.get", err)
	}
	f, err := os.Open(l.absPath(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.New(apperrors.CategoryIO, "storage.local.get", ErrKeyNotFound)
		}
		return nil, apperrors.Wrap(apperrors.CategoryIO, "storage.local.get.open", err)
	}
	return f, nil
}

func (l *Local) Delete(ctx context.Context, key Key) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.CategoryCancelled, "storage.local.delete", err)
	}
	path := l.absPath(key)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return apperrors.Wrap(apperrors.CategoryIO, "storage.local.delete", err)
	}
	_ = os.Remove(path + ".meta.json")
	return nil
}

func (l *Local) Exists(ctx context.Context, key Key) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, apperrors.Wrap(apperrors.CategoryCancelled, "storage.local.exists", err)
	}
	_, err := os.Stat(l.absPath(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, apperrors.Wrap(apperrors.CategoryIO, "storage.local.exists.stat", err)
}

var _ Adapter = (*Local)(nil)
