// Package utils holds small streaming helpers shared by the storage and
// preview export paths.
package utils

import (
	"bytes"
	"context"
	"io"
	"sync"
)

var bufPool = sync.Pool{
	New: func() interface{} { return new(bytes.Buffer) },
}

// AcquireBuffer returns a reset buffer from the pool.
func AcquireBuffer() *bytes.Buffer {
	b := bufPool.Get().(*bytes.Buffer)
	b.Reset()
	return b
}

// ReleaseBuffer returns b to the pool. Callers must not use b after this
// call. Oversized buffers are dropped rather than pooled so one large
// deliverable export doesn't pin memory for every future caller.
func ReleaseBuffer(b *bytes.Buffer) {
	if b.Cap() > 8*1024*1024 {
		return
	}
	bufPool.Put(b)
}

// DrainReader reads all of r into a pooled buffer, checking ctx between
// chunks so a long FITS/preview read can be cancelled.
func DrainReader(ctx context.Context, r io.Reader, chunkSize int) (*bytes.Buffer, error) {
	if chunkSize <= 0 {
		chunkSize = 32 * 1024
	}
	buf := AcquireBuffer()
	chunk := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			ReleaseBuffer(buf)
			return nil, err
		}
		n, err := r.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			ReleaseBuffer(buf)
			return nil, err
		}
	}
	return buf, nil
}

// LimitedReader wraps r and returns io.ErrUnexpectedEOF once more than Max
// bytes have been read, bounding untrusted FITS/deliverable uploads.
type LimitedReader struct {
	R   io.Reader
	Max int64
	n   int64
}

func (l *LimitedReader) Read(p []byte) (int, error) {
	if l.Max > 0 && l.n >= l.Max {
		// Exactly at the limit: only an error if the source still has more
		// to give, otherwise this is a clean EOF.
		var probe [1]byte
		if pn, perr := l.R.Read(probe[:]); pn > 0 {
			return 0, io.ErrUnexpectedEOF
		} else if perr != nil && perr != io.EOF {
			return 0, perr
		}
		return 0, io.EOF
	}
	if l.Max > 0 {
		if remain := l.Max - l.n; int64(len(p)) > remain {
			p = p[:remain]
		}
	}
	n, err := l.R.Read(p)
	l.n += int64(n)
	return n, err
}
