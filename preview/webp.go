package preview

import (
	stdimage "image"
	"image/jpeg"
	"io"

	"github.com/melix/astro4j-sub008/apperrors"
)

// WebPEncoder is a fallback WebP "encoder" for builds without libvips.
//
// Pure-Go WebP encoding is not available in the standard library or
// x/image: x/image/webp only decodes. When VipsBackend isn't wired in,
// this shim re-encodes as JPEG so the export path still produces bytes for
// the requested quality, clearly reachable via WebPEncoder so callers can
// tell a real libvips-backed WebP (VipsBackend) from this placeholder.
type WebPEncoder struct {
	DefaultQuality int
}

func NewWebPEncoder(defaultQuality int) *WebPEncoder {
	if defaultQuality <= 0 {
		defaultQuality = 85
	}
	return &WebPEncoder{DefaultQuality: defaultQuality}
}

func (w *WebPEncoder) CanEncode(format Format) bool { return format == FormatWebP }

func (w *WebPEncoder) Encode(out io.Writer, img stdimage.Image, format Format, opts Options) error {
	quality := opts.Quality
	if quality <= 0 {
		quality = w.DefaultQuality
	}
	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: quality}); err != nil {
		return apperrors.Wrap(apperrors.CategoryIO, "preview.webp.shim", err)
	}
	return nil
}
