package transform

import "github.com/melix/astro4j-sub008/image"

// pointMap moves a single (x, y) feature coordinate under a geometric
// transform. Rotate, HFlip and VFlip each supply one of these to
// carryMetadata so every feature kind moves consistently with the pixels.
type pointMap func(x, y float64) (float64, float64)

// ellipseMap moves an Ellipse under the same transform as pointMap.
type ellipseMap func(*image.Ellipse) *image.Ellipse

// carryMetadata rewrites every geometry-bearing metadata kind in src using
// mapPoint/mapEllipse, appends refOp to ReferenceCoords and historyName to
// TransformationHistory, and returns the resulting bag. src is never
// mutated (spec §5 shared-resource policy). Kinds with no positional
// meaning (SourceInfo, MetadataTable, the opaque payloads, PixelShift)
// carry over unchanged via Clone.
func carryMetadata(src *image.Bag, mapPoint pointMap, mapEllipse ellipseMap, refOp image.ReferenceCoordOp, historyName string) *image.Bag {
	out := src.Clone()

	if v, ok := out.Get(image.KindEllipse); ok {
		if e, ok := v.(*image.Ellipse); ok && e != nil {
			out.Set(image.KindEllipse, mapEllipse(e))
		}
	}

	if v, ok := out.Get(image.KindRedshifts); ok {
		src := v.(image.Redshifts)
		cp := make(image.Redshifts, len(src))
		for i, r := range src {
			r.X1, r.Y1 = mapPoint(r.X1, r.Y1)
			r.X2, r.Y2 = mapPoint(r.X2, r.Y2)
			r.MaxX, r.MaxY = mapPoint(r.MaxX, r.MaxY)
			cp[i] = r
		}
		out.Set(image.KindRedshifts, cp)
	}

	if v, ok := out.Get(image.KindActiveRegions); ok {
		src := v.(image.ActiveRegions)
		cp := make(image.ActiveRegions, len(src))
		for i, p := range src {
			p.X, p.Y = mapPoint(p.X, p.Y)
			cp[i] = p
		}
		out.Set(image.KindActiveRegions, cp)
	}

	if v, ok := out.Get(image.KindEllermanBombs); ok {
		src := v.(image.EllermanBombs)
		cp := make(image.EllermanBombs, len(src))
		for i, p := range src {
			p.X, p.Y = mapPoint(p.X, p.Y)
			cp[i] = p
		}
		out.Set(image.KindEllermanBombs, cp)
	}

	out = out.AppendReferenceCoord(refOp)
	out = out.AppendTransformationHistory(historyName)
	return out
}
