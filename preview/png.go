package preview

import (
	stdimage "image"
	"image/png"
	"io"

	"github.com/melix/astro4j-sub008/apperrors"
)

// PNGEncoder encodes deliverables to PNG using the standard library codec.
type PNGEncoder struct{}

func NewPNGEncoder() *PNGEncoder { return &PNGEncoder{} }

func (p *PNGEncoder) CanEncode(format Format) bool { return format == FormatPNG }

func (p *PNGEncoder) Encode(w io.Writer, img stdimage.Image, format Format, opts Options) error {
	enc := &png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(w, img); err != nil {
		return apperrors.Wrap(apperrors.CategoryIO, "preview.png.encode", err)
	}
	return nil
}
