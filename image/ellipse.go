package image

import (
	"math"

	"github.com/melix/astro4j-sub008/core"
)

// Ellipse is a general conic section A x^2 + B xy + C y^2 + D x + E y + F = 0,
// constrained (by construction) to describe an ellipse. It satisfies the
// external ellipse-conic math contract of spec §6.4: Rotate, Translate,
// HFlip, VFlip, Contains, FindVertices, Geometry/ToCartesian, SemiAxis,
// Center, RotationAngle.
type Ellipse struct {
	A, B, C, D, E, F float64
}

// Geometry is the (center, semi-axes, rotation) parameterization of an
// Ellipse, convenient for masking and metadata-point transforms.
type Geometry struct {
	CX, CY       float64
	SemiA, SemiB float64
	Rotation     core.Angle
}

// ToCartesian converts a Geometry back into Cartesian conic coefficients.
func (g Geometry) ToCartesian() *Ellipse {
	ct, st := math.Cos(g.Rotation.Radians()), math.Sin(g.Rotation.Radians())
	a2, b2 := g.SemiA*g.SemiA, g.SemiB*g.SemiB
	if a2 <= 0 {
		a2 = 1e-12
	}
	if b2 <= 0 {
		b2 = 1e-12
	}
	// Quadratic form in the rotated frame: X^2/a^2 + Y^2/b^2 = 1, where
	// X = (x-cx)cosθ + (y-cy)sinθ, Y = -(x-cx)sinθ + (y-cy)cosθ.
	A := ct*ct/a2 + st*st/b2
	B := 2 * ct * st * (1/a2 - 1/b2)
	C := st*st/a2 + ct*ct/b2
	D := -2*A*g.CX - B*g.CY
	E := -B*g.CX - 2*C*g.CY
	F := A*g.CX*g.CX + B*g.CX*g.CY + C*g.CY*g.CY - 1
	return &Ellipse{A: A, B: B, C: C, D: D, E: E, F: F}
}

// NewEllipseFromGeometry is a convenience constructor equivalent to
// Geometry{...}.ToCartesian().
func NewEllipseFromGeometry(cx, cy, semiA, semiB float64, rotation core.Angle) *Ellipse {
	return Geometry{CX: cx, CY: cy, SemiA: semiA, SemiB: semiB, Rotation: rotation}.ToCartesian()
}

// Center solves the linear system formed by the conic's partial derivatives.
func (e *Ellipse) Center() (cx, cy float64) {
	det := 4*e.A*e.C - e.B*e.B
	if det == 0 {
		return 0, 0
	}
	cx = (e.B*e.E - 2*e.C*e.D) / det
	cy = (e.B*e.D - 2*e.A*e.E) / det
	return cx, cy
}

// RotationAngle returns the angle of the ellipse's major axis relative to
// the x-axis.
func (e *Ellipse) RotationAngle() core.Angle {
	if e.A == e.C && e.B == 0 {
		return 0
	}
	return core.AngleFromRadians(0.5 * math.Atan2(-e.B, e.C-e.A))
}

// SemiAxis returns the semi-major and semi-minor axis lengths.
func (e *Ellipse) SemiAxis() (a, b float64) {
	cx, cy := e.Center()
	fPrime := e.A*cx*cx + e.B*cx*cy + e.C*cy*cy + e.D*cx + e.E*cy + e.F

	mid := (e.A + e.C) / 2
	half := math.Sqrt(math.Max(0, math.Pow((e.A-e.C)/2, 2)+math.Pow(e.B/2, 2)))
	lambda1 := mid + half
	lambda2 := mid - half

	axis := func(lambda float64) float64 {
		if lambda == 0 {
			return 0
		}
		v := -fPrime / lambda
		if v < 0 {
			v = 0
		}
		return math.Sqrt(v)
	}
	a1, a2 := axis(lambda1), axis(lambda2)
	if a1 >= a2 {
		return a1, a2
	}
	return a2, a1
}

// Geometry decomposes the conic into (center, semi-axes, rotation).
func (e *Ellipse) Geometry() Geometry {
	cx, cy := e.Center()
	a, b := e.SemiAxis()
	return Geometry{CX: cx, CY: cy, SemiA: a, SemiB: b, Rotation: e.RotationAngle()}
}

// Contains reports whether (x, y) lies within the ellipse boundary
// (inclusive), using the geometric (center/axes/rotation) form so the test
// is robust regardless of the Cartesian coefficients' overall scale.
func (e *Ellipse) Contains(x, y float64) bool {
	g := e.Geometry()
	if g.SemiA <= 0 || g.SemiB <= 0 {
		return false
	}
	ct, st := math.Cos(g.Rotation.Radians()), math.Sin(g.Rotation.Radians())
	dx, dy := x-g.CX, y-g.CY
	X := dx*ct + dy*st
	Y := -dx*st + dy*ct
	return (X*X)/(g.SemiA*g.SemiA)+(Y*Y)/(g.SemiB*g.SemiB) <= 1.0
}

// Rotate returns a new Ellipse rotated by alpha about (aroundX, aroundY).
func (e *Ellipse) Rotate(alpha core.Angle, aroundX, aroundY float64) *Ellipse {
	g := e.Geometry()
	ct, st := math.Cos(alpha.Radians()), math.Sin(alpha.Radians())
	dx, dy := g.CX-aroundX, g.CY-aroundY
	newCX := aroundX + dx*ct - dy*st
	newCY := aroundY + dx*st + dy*ct
	g.CX, g.CY = newCX, newCY
	g.Rotation = core.AngleFromRadians(g.Rotation.Radians() + alpha.Radians())
	return g.ToCartesian()
}

// Translate returns a new Ellipse with its center shifted by (dx, dy).
func (e *Ellipse) Translate(dx, dy float64) *Ellipse {
	g := e.Geometry()
	g.CX += dx
	g.CY += dy
	return g.ToCartesian()
}

// HFlip returns a new Ellipse reflected across the vertical midline of an
// image of the given width: x' = width - 1 - x. The rotation angle negates
// because a reflection reverses orientation.
func (e *Ellipse) HFlip(width int) *Ellipse {
	g := e.Geometry()
	g.CX = float64(width-1) - g.CX
	g.Rotation = -g.Rotation
	return g.ToCartesian()
}

// VFlip returns a new Ellipse reflected across the horizontal midline of an
// image of the given height: y' = height - 1 - y.
func (e *Ellipse) VFlip(height int) *Ellipse {
	g := e.Geometry()
	g.CY = float64(height-1) - g.CY
	g.Rotation = -g.Rotation
	return g.ToCartesian()
}

// FindVertices returns the four vertex points along the major and minor
// axes: [major+, major-, minor+, minor-].
func (e *Ellipse) FindVertices() []core.PointF {
	g := e.Geometry()
	ct, st := math.Cos(g.Rotation.Radians()), math.Sin(g.Rotation.Radians())
	majDX, majDY := g.SemiA*ct, g.SemiA*st
	minDX, minDY := -g.SemiB*st, g.SemiB*ct
	return []core.PointF{
		{X: g.CX + majDX, Y: g.CY + majDY},
		{X: g.CX - majDX, Y: g.CY - majDY},
		{X: g.CX + minDX, Y: g.CY + minDY},
		{X: g.CX - minDX, Y: g.CY - minDY},
	}
}
