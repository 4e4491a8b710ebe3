package fitsio

import (
	"io"
	"time"

	gofits "github.com/astrogo/fits"

	"github.com/melix/astro4j-sub008/apperrors"
	"github.com/melix/astro4j-sub008/image"
)

// Write encodes img (plus its table-backed metadata-bag entries) as a FITS
// file: a 16-bit primary HDU (BITPIX=16, BZERO=32768, BSCALE=1) followed by
// one binary-table HDU per present kind that encodeMetadataTables handles,
// each tagged with a JSOLEX header card. Other metadata kinds, PixelShift
// included, are not written.
func Write(w io.Writer, img image.Image, dispersionNmPerPx float64) error {
	axes := []int{img.Width(), img.Height()}
	if rgb, ok := img.(*image.RGB); ok {
		axes = []int{rgb.Width(), rgb.Height(), 3}
	}

	primary, err := gofits.NewImage(16, axes)
	if err != nil {
		return apperrors.Wrap(apperrors.CategoryIO, "fitsio.write", err)
	}
	hdr := primary.Header()
	if err := hdr.Set("BZERO", 32768.0, "unsigned short offset"); err != nil {
		return apperrors.Wrap(apperrors.CategoryIO, "fitsio.write", err)
	}
	if err := hdr.Set("BSCALE", 1.0, ""); err != nil {
		return apperrors.Wrap(apperrors.CategoryIO, "fitsio.write", err)
	}

	shorts, err := shortsFor(img)
	if err != nil {
		return err
	}
	if err := primary.Write(shorts); err != nil {
		return apperrors.Wrap(apperrors.CategoryIO, "fitsio.write", err)
	}

	hdus := []gofits.HDU{primary}
	tableHDUs, err := encodeMetadataTables(img.Metadata(), dispersionNmPerPx)
	if err != nil {
		return err
	}
	hdus = append(hdus, tableHDUs...)

	f, err := gofits.Create(w)
	if err != nil {
		return apperrors.Wrap(apperrors.CategoryIO, "fitsio.write", err)
	}
	defer f.Close()
	for _, hdu := range hdus {
		if err := f.Write(hdu); err != nil {
			return apperrors.Wrap(apperrors.CategoryIO, "fitsio.write", err)
		}
	}
	return nil
}

func shortsFor(img image.Image) ([]int16, error) {
	switch v := img.(type) {
	case *image.Mono:
		out := make([]int16, 0, v.W*v.H)
		for y := 0; y < v.H; y++ {
			for x := 0; x < v.W; x++ {
				out = append(out, ToShort(float64(v.At(x, y))))
			}
		}
		return out, nil
	case *image.RGB:
		out := make([]int16, 0, v.W*v.H*3)
		for y := 0; y < v.H; y++ {
			for x := 0; x < v.W; x++ {
				out = append(out, ToShort(float64(v.R[y][x])))
			}
		}
		for y := 0; y < v.H; y++ {
			for x := 0; x < v.W; x++ {
				out = append(out, ToShort(float64(v.G[y][x])))
			}
		}
		for y := 0; y < v.H; y++ {
			for x := 0; x < v.W; x++ {
				out = append(out, ToShort(float64(v.B[y][x])))
			}
		}
		return out, nil
	default:
		return nil, apperrors.New(apperrors.CategoryInput, "fitsio.write", apperrors.ErrUnsupportedKind)
	}
}

// Read decodes a FITS file written by Write (or a compatible JSol'Ex / INTI
// producer) back into a Mono or RGB image with its metadata bag restored.
func Read(r io.Reader) (image.Image, error) {
	f, err := gofits.Open(r)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryIO, "fitsio.read", err)
	}
	defer f.Close()

	hdus := f.HDUs()
	if len(hdus) == 0 {
		return nil, apperrors.New(apperrors.CategoryIO, "fitsio.read", apperrors.ErrInvalidParameter)
	}

	primary, ok := hdus[0].(*gofits.Image)
	if !ok {
		return nil, apperrors.New(apperrors.CategoryIO, "fitsio.read", apperrors.ErrUnsupportedKind)
	}
	hdr := primary.Header()
	axes := hdr.Axes()
	if len(axes) < 2 {
		return nil, apperrors.New(apperrors.CategoryIO, "fitsio.read", apperrors.ErrInvalidParameter)
	}
	w, h := axes[0], axes[1]

	bzero := 32768.0
	if card := hdr.Get("BZERO"); card != nil {
		if v, ok := card.Value.(float64); ok {
			bzero = v
		}
	}
	if jsolexDetected(hdus) && bzero == 0 {
		bzero = 32768 // old-file compatibility (spec §4.6)
	}

	shorts := make([]int16, w*h*planeCount(axes))
	if err := primary.Read(&shorts); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryIO, "fitsio.read", err)
	}

	var out image.Image
	if len(axes) >= 3 && axes[2] == 3 {
		out = decodeRGB(shorts, w, h, bzero)
	} else {
		out = decodeMono(shorts, w, h, bzero)
	}

	bag, err := decodeMetadataTables(hdus[1:])
	if err != nil {
		return nil, err
	}
	if cx, cy, radius, ok := intiEllipseCards(hdr); ok {
		bag.Set(image.KindEllipse, SynthesizeINTIEllipse(cx, cy, radius))
	}

	switch v := out.(type) {
	case *image.Mono:
		v.Meta = bag
	case *image.RGB:
		v.Meta = bag
	}
	return out, nil
}

func planeCount(axes []int) int {
	if len(axes) >= 3 {
		return axes[2]
	}
	return 1
}

func decodeMono(shorts []int16, w, h int, bzero float64) *image.Mono {
	m := image.NewMono(w, h)
	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Set(x, y, float32(FromShort(shorts[i], bzero)))
			i++
		}
	}
	return m
}

func decodeRGB(shorts []int16, w, h int, bzero float64) *image.RGB {
	r := image.NewRGB(w, h)
	plane := w * h
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			r.R[y][x] = float32(FromShort(shorts[idx], bzero))
			r.G[y][x] = float32(FromShort(shorts[plane+idx], bzero))
			r.B[y][x] = float32(FromShort(shorts[2*plane+idx], bzero))
		}
	}
	return r
}

func jsolexDetected(hdus []gofits.HDU) bool {
	for _, hdu := range hdus {
		if hdu.Header().Get("JSOLEX") != nil {
			return true
		}
	}
	return false
}

func intiEllipseCards(hdr *gofits.Header) (cx, cy, r float64, ok bool) {
	cxCard, cyCard, rCard := hdr.Get("CENTER_X"), hdr.Get("CENTER_Y"), hdr.Get("SOLAR_R")
	if cxCard == nil || cyCard == nil || rCard == nil {
		return 0, 0, 0, false
	}
	cx, cxOK := cxCard.Value.(float64)
	cy2, cyOK := cyCard.Value.(float64)
	r2, rOK := rCard.Value.(float64)
	if !cxOK || !cyOK || !rOK {
		return 0, 0, 0, false
	}
	return cx, cy2, r2, true
}

// Now returns the timestamp used for SourceInfo round-trips; factored out
// so callers can stamp deterministic times in tests.
var Now = func() time.Time { return time.Now() }
