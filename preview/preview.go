// Package preview renders float Mono/RGB kernel images down to 8-bit
// consumer deliverables (PNG/JPEG/WebP), the one place this kernel produces
// lossy, display-oriented output from its float pixel planes (spec §2).
package preview

import (
	stdimage "image"
	"image/color"
	"io"

	"github.com/melix/astro4j-sub008/apperrors"
	"github.com/melix/astro4j-sub008/image"
	"github.com/melix/astro4j-sub008/utils"
)

// Format selects the deliverable container.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatWebP Format = "webp"
)

// Options controls tone mapping and encoding for a deliverable export.
type Options struct {
	Quality   int      // 1-100, JPEG/WebP only; default 85
	Lossless  bool     // WebP only
	Palette   *Palette // nil => grayscale / RGB passthrough
	BlackClip float64  // pixel values <= this map to 0; default 0
	WhiteClip float64  // pixel values >= this map to 255; default 65535
}

func (o Options) normalized() Options {
	if o.Quality <= 0 {
		o.Quality = 85
	}
	if o.WhiteClip <= o.BlackClip {
		o.WhiteClip = o.BlackClip + 65535
	}
	return o
}

// Encoder is the narrow codec surface every deliverable backend implements,
// mirroring the teacher's encoder.Encoder contract.
type Encoder interface {
	CanEncode(format Format) bool
	Encode(w io.Writer, img stdimage.Image, format Format, opts Options) error
}

// Export tone-maps img to 8-bit and encodes it with the first encoder in
// backends that claims the requested format, trying each in order — this
// lets callers register the libvips backend first and fall back to the
// pure-Go stdlib encoders when govips is unavailable.
func Export(w io.Writer, img image.Image, format Format, opts Options, backends ...Encoder) error {
	opts = opts.normalized()
	rendered, err := ToneMap(img, opts)
	if err != nil {
		return err
	}
	for _, b := range backends {
		if b != nil && b.CanEncode(format) {
			return b.Encode(w, rendered, format, opts)
		}
	}
	return apperrors.New(apperrors.CategoryIO, "preview.export", apperrors.ErrUnsupportedKind)
}

// ExportBytes is a convenience wrapper returning the encoded buffer directly.
// It borrows a pooled buffer for the encode so repeated deliverable exports
// in a batch job don't each allocate their own backing array.
func ExportBytes(img image.Image, format Format, opts Options, backends ...Encoder) ([]byte, error) {
	buf := utils.AcquireBuffer()
	defer utils.ReleaseBuffer(buf)
	if err := Export(buf, img, format, opts, backends...); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// ToneMap converts a Mono or RGB float image into an 8-bit stdlib image,
// clipping to [BlackClip, WhiteClip] and applying opts.Palette for Mono
// sources when set (false-color Doppler/continuum deliverables).
func ToneMap(img image.Image, opts Options) (stdimage.Image, error) {
	opts = opts.normalized()
	switch v := img.(type) {
	case *image.Mono:
		return toneMapMono(v, opts), nil
	case *image.RGB:
		return toneMapRGB(v, opts), nil
	default:
		return nil, apperrors.New(apperrors.CategoryInput, "preview.tonemap", apperrors.ErrUnsupportedKind)
	}
}

func toneMapMono(m *image.Mono, opts Options) stdimage.Image {
	if opts.Palette != nil {
		out := stdimage.NewRGBA(stdimage.Rect(0, 0, m.W, m.H))
		for y := 0; y < m.H; y++ {
			for x := 0; x < m.W; x++ {
				u := scaleTo8Bit(float64(m.At(x, y)), opts)
				out.Set(x, y, opts.Palette.Map(u))
			}
		}
		return out
	}
	out := stdimage.NewGray(stdimage.Rect(0, 0, m.W, m.H))
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			out.SetGray(x, y, color.Gray{Y: scaleTo8Bit(float64(m.At(x, y)), opts)})
		}
	}
	return out
}

func toneMapRGB(r *image.RGB, opts Options) stdimage.Image {
	out := stdimage.NewRGBA(stdimage.Rect(0, 0, r.W, r.H))
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			out.SetRGBA(x, y, color.RGBA{
				R: scaleTo8Bit(float64(r.R[y][x]), opts),
				G: scaleTo8Bit(float64(r.G[y][x]), opts),
				B: scaleTo8Bit(float64(r.B[y][x]), opts),
				A: 255,
			})
		}
	}
	return out
}

func scaleTo8Bit(v float64, opts Options) uint8 {
	if v <= opts.BlackClip {
		return 0
	}
	if v >= opts.WhiteClip {
		return 255
	}
	norm := (v - opts.BlackClip) / (opts.WhiteClip - opts.BlackClip)
	return uint8(norm*255 + 0.5)
}
