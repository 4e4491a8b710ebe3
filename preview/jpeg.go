package preview

import (
	stdimage "image"
	"image/jpeg"
	"io"

	"github.com/melix/astro4j-sub008/apperrors"
)

// JPEGEncoder encodes deliverables to JPEG using the standard library codec.
type JPEGEncoder struct {
	DefaultQuality int
}

func NewJPEGEncoder(defaultQuality int) *JPEGEncoder {
	if defaultQuality <= 0 {
		defaultQuality = 85
	}
	return &JPEGEncoder{DefaultQuality: defaultQuality}
}

func (j *JPEGEncoder) CanEncode(format Format) bool { return format == FormatJPEG }

func (j *JPEGEncoder) Encode(w io.Writer, img stdimage.Image, format Format, opts Options) error {
	quality := opts.Quality
	if quality <= 0 {
		quality = j.DefaultQuality
	}
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: quality}); err != nil {
		return apperrors.Wrap(apperrors.CategoryIO, "preview.jpeg.encode", err)
	}
	return nil
}
