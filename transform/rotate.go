// Package transform implements the geometric transforms of spec §4.3:
// Rotate, RotateLeft/Right, HFlip/VFlip, EllipseMask and Thumbnail. Every
// transform keeps the pixel data and the metadata bag's geometric entries
// (Ellipse, Redshifts, ActiveRegions, EllermanBombs, ReferenceCoords,
// TransformationHistory) in lock-step, per spec §5.
package transform

import (
	"fmt"
	"math"

	"github.com/melix/astro4j-sub008/apperrors"
	"github.com/melix/astro4j-sub008/core"
	"github.com/melix/astro4j-sub008/image"
	"github.com/melix/astro4j-sub008/interp"
)

// Rotate rotates img by alpha (radians, positive counter-clockwise) about
// its own center. When resize is true the output canvas grows to the
// bounding box of the rotated source, so no content is cropped; otherwise
// the output keeps the source's dimensions and corners are cropped.
// Destination pixels with no contributing source sample are painted
// blackpoint.
func Rotate(img image.Image, alpha core.Angle, resize bool, blackpoint float64) (image.Image, error) {
	a := alpha.Radians()
	cosA, sinA := math.Cos(a), math.Sin(a)

	srcW, srcH := img.Width(), img.Height()
	cx, cy := float64(srcW-1)/2, float64(srcH-1)/2

	dstW, dstH := srcW, srcH
	var sx, sy float64
	if resize {
		dstW = int(math.Ceil(math.Abs(float64(srcW)*cosA) + math.Abs(float64(srcH)*sinA) - 1e-9))
		dstH = int(math.Ceil(math.Abs(float64(srcW)*sinA) + math.Abs(float64(srcH)*cosA) - 1e-9))
		sx = float64(dstW-srcW) / 2
		sy = float64(dstH-srcH) / 2
	}

	// mapPixel is the inverse of mapPoint: destination pixel -> source point.
	mapPixel := func(dx, dy int) (float64, float64) {
		ex, ey := float64(dx)-cx-sx, float64(dy)-cy-sy
		srcX := ex*cosA + ey*sinA + cx
		srcY := -ex*sinA + ey*cosA + cy
		return srcX, srcY
	}

	mapPoint := func(x, y float64) (float64, float64) {
		ex, ey := x-cx, y-cy
		nx := ex*cosA - ey*sinA + cx + sx
		ny := ex*sinA + ey*cosA + cy + sy
		return nx, ny
	}
	mapEllipse := func(e *image.Ellipse) *image.Ellipse {
		return e.Rotate(alpha, cx, cy).Translate(sx, sy)
	}

	var out image.Image
	switch src := img.(type) {
	case *image.Mono:
		m := image.NewMono(dstW, dstH)
		rotatePlane(src.Data, srcW, srcH, m.Data, mapPixel, blackpoint)
		out = m
	case *image.RGB:
		r := image.NewRGB(dstW, dstH)
		rotatePlane(src.R, srcW, srcH, r.R, mapPixel, blackpoint)
		rotatePlane(src.G, srcW, srcH, r.G, mapPixel, blackpoint)
		rotatePlane(src.B, srcW, srcH, r.B, mapPixel, blackpoint)
		out = r
	default:
		return nil, apperrors.New(apperrors.CategoryInput, "rotate", apperrors.ErrUnsupportedKind)
	}

	refOp := image.ReferenceCoordOp{Kind: "rotation", Value: a}
	bag := carryMetadata(img.Metadata(), mapPoint, mapEllipse, refOp, fmt.Sprintf("rotate(%.6f,resize=%v)", a, resize))
	setMetadata(out, bag)
	return out, nil
}

func rotatePlane(src [][]float32, srcW, srcH int, dst [][]float32, mapPixel func(dx, dy int) (float64, float64), blackpoint float64) {
	dstH := len(dst)
	for dy := 0; dy < dstH; dy++ {
		row := dst[dy]
		for dx := range row {
			srcX, srcY := mapPixel(dx, dy)
			row[dx] = float32(interp.Lanczos2DFill(src, srcX, srcY, srcW, srcH, blackpoint))
		}
	}
}

// RotateLeft rotates img 90 degrees counter-clockwise without resizing.
func RotateLeft(img image.Image, blackpoint float64) (image.Image, error) {
	return Rotate(img, core.AngleFromRadians(math.Pi/2), false, blackpoint)
}

// RotateRight rotates img 90 degrees clockwise without resizing.
func RotateRight(img image.Image, blackpoint float64) (image.Image, error) {
	return Rotate(img, core.AngleFromRadians(-math.Pi/2), false, blackpoint)
}

// setMetadata installs bag onto out's concrete type. out is always freshly
// allocated by Rotate/HFlip/VFlip, so this never aliases a
// caller-visible bag.
func setMetadata(out image.Image, bag *image.Bag) {
	switch v := out.(type) {
	case *image.Mono:
		v.Meta = bag
	case *image.RGB:
		v.Meta = bag
	}
}
