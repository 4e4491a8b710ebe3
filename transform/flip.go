package transform

import (
	"fmt"

	"github.com/melix/astro4j-sub008/apperrors"
	"github.com/melix/astro4j-sub008/image"
)

// HFlip mirrors img across its vertical midline: destination column dx
// samples source column width-1-dx. No resampling is needed since the
// mapping is pixel-exact.
func HFlip(img image.Image) (image.Image, error) {
	w, h := img.Width(), img.Height()

	mapPoint := func(x, y float64) (float64, float64) { return float64(w-1) - x, y }
	mapEllipse := func(e *image.Ellipse) *image.Ellipse { return e.HFlip(w) }

	var out image.Image
	switch src := img.(type) {
	case *image.Mono:
		m := image.NewMono(w, h)
		mirrorCols(src.Data, m.Data)
		out = m
	case *image.RGB:
		r := image.NewRGB(w, h)
		mirrorCols(src.R, r.R)
		mirrorCols(src.G, r.G)
		mirrorCols(src.B, r.B)
		out = r
	default:
		return nil, apperrors.New(apperrors.CategoryInput, "hflip", apperrors.ErrUnsupportedKind)
	}

	refOp := image.ReferenceCoordOp{Kind: "hflip", Value: float64(w)}
	bag := carryMetadata(img.Metadata(), mapPoint, mapEllipse, refOp, fmt.Sprintf("hflip(width=%d)", w))
	setMetadata(out, bag)
	return out, nil
}

// VFlip mirrors img across its horizontal midline: destination row dy
// samples source row height-1-dy.
func VFlip(img image.Image) (image.Image, error) {
	w, h := img.Width(), img.Height()

	mapPoint := func(x, y float64) (float64, float64) { return x, float64(h-1) - y }
	mapEllipse := func(e *image.Ellipse) *image.Ellipse { return e.VFlip(h) }

	var out image.Image
	switch src := img.(type) {
	case *image.Mono:
		m := image.NewMono(w, h)
		mirrorRows(src.Data, m.Data)
		out = m
	case *image.RGB:
		r := image.NewRGB(w, h)
		mirrorRows(src.R, r.R)
		mirrorRows(src.G, r.G)
		mirrorRows(src.B, r.B)
		out = r
	default:
		return nil, apperrors.New(apperrors.CategoryInput, "vflip", apperrors.ErrUnsupportedKind)
	}

	refOp := image.ReferenceCoordOp{Kind: "vflip", Value: float64(h)}
	bag := carryMetadata(img.Metadata(), mapPoint, mapEllipse, refOp, fmt.Sprintf("vflip(height=%d)", h))
	setMetadata(out, bag)
	return out, nil
}

func mirrorCols(src, dst [][]float32) {
	w := len(src[0])
	for y := range src {
		srow, drow := src[y], dst[y]
		for x := 0; x < w; x++ {
			drow[x] = srow[w-1-x]
		}
	}
}

func mirrorRows(src, dst [][]float32) {
	h := len(src)
	for y := 0; y < h; y++ {
		copy(dst[y], src[h-1-y])
	}
}
