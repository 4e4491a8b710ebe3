package image

import "github.com/melix/astro4j-sub008/apperrors"

// Kind identifies the on-disk/in-memory pixel layout (spec §4.1 scratch
// format: byte kind, 0=Mono, 2=RGB).
type Kind byte

const (
	KindMonoImage Kind = 0
	KindRGBImage  Kind = 2
)

// Image is the common surface shared by Mono and RGB (spec §3).
type Image interface {
	Width() int
	Height() int
	Metadata() *Bag
	Kind() Kind
	// Copy returns a deep copy: new pixel storage and a cloned metadata bag.
	Copy() Image
}

// Mono is a single-plane floating point image, row-major [y][x].
type Mono struct {
	W, H int
	Data [][]float32
	Meta *Bag
}

// NewMono allocates a zero-filled Mono of the given dimensions with an
// empty metadata bag.
func NewMono(w, h int) *Mono {
	data := make([][]float32, h)
	for y := range data {
		data[y] = make([]float32, w)
	}
	return &Mono{W: w, H: h, Data: data, Meta: NewBag()}
}

func (m *Mono) Width() int     { return m.W }
func (m *Mono) Height() int    { return m.H }
func (m *Mono) Metadata() *Bag { return m.Meta }
func (m *Mono) Kind() Kind     { return KindMonoImage }

// At returns the pixel value at (x, y); panics on out-of-range access as the
// invariant in §3 guarantees data[y] has length W for all y < H.
func (m *Mono) At(x, y int) float32 { return m.Data[y][x] }

// Set writes the pixel value at (x, y).
func (m *Mono) Set(x, y int, v float32) { m.Data[y][x] = v }

// Copy deep-copies pixel data and clones the metadata bag.
func (m *Mono) Copy() Image {
	out := &Mono{W: m.W, H: m.H, Data: make([][]float32, m.H), Meta: m.Meta.Clone()}
	for y := 0; y < m.H; y++ {
		out.Data[y] = make([]float32, m.W)
		copy(out.Data[y], m.Data[y])
	}
	return out
}

// ToRGB promotes a Mono image to RGB by replicating the luminance into all
// three channels; metadata is cloned unchanged.
func (m *Mono) ToRGB() *RGB {
	out := &RGB{W: m.W, H: m.H, Meta: m.Meta.Clone()}
	out.R = make([][]float32, m.H)
	out.G = make([][]float32, m.H)
	out.B = make([][]float32, m.H)
	for y := 0; y < m.H; y++ {
		out.R[y] = make([]float32, m.W)
		out.G[y] = make([]float32, m.W)
		out.B[y] = make([]float32, m.W)
		copy(out.R[y], m.Data[y])
		copy(out.G[y], m.Data[y])
		copy(out.B[y], m.Data[y])
	}
	return out
}

// RGB is a three-plane floating point image sharing one metadata bag.
type RGB struct {
	W, H    int
	R, G, B [][]float32
	Meta    *Bag
}

// NewRGB allocates a zero-filled RGB of the given dimensions.
func NewRGB(w, h int) *RGB {
	mk := func() [][]float32 {
		d := make([][]float32, h)
		for y := range d {
			d[y] = make([]float32, w)
		}
		return d
	}
	return &RGB{W: w, H: h, R: mk(), G: mk(), B: mk(), Meta: NewBag()}
}

func (r *RGB) Width() int     { return r.W }
func (r *RGB) Height() int    { return r.H }
func (r *RGB) Metadata() *Bag { return r.Meta }
func (r *RGB) Kind() Kind     { return KindRGBImage }

// Copy deep-copies all three planes and clones the metadata bag.
func (r *RGB) Copy() Image {
	out := &RGB{W: r.W, H: r.H, Meta: r.Meta.Clone()}
	clonePlane := func(src [][]float32) [][]float32 {
		d := make([][]float32, len(src))
		for y := range src {
			d[y] = make([]float32, len(src[y]))
			copy(d[y], src[y])
		}
		return d
	}
	out.R, out.G, out.B = clonePlane(r.R), clonePlane(r.G), clonePlane(r.B)
	return out
}

// ToMono reduces the RGB image to luminance using the standard Rec.601-style
// weights used throughout this kernel: 0.299 R + 0.587 G + 0.114 B.
func (r *RGB) ToMono() *Mono {
	out := &Mono{W: r.W, H: r.H, Data: make([][]float32, r.H), Meta: r.Meta.Clone()}
	for y := 0; y < r.H; y++ {
		row := make([]float32, r.W)
		for x := 0; x < r.W; x++ {
			row[x] = 0.299*r.R[y][x] + 0.587*r.G[y][x] + 0.114*r.B[y][x]
		}
		out.Data[y] = row
	}
	return out
}

// CheckSameShape returns ErrShapeMismatch if a and b differ in width or
// height, for operations that require all inputs to share dimensions.
func CheckSameShape(a, b Image) error {
	if a.Width() != b.Width() || a.Height() != b.Height() {
		return apperrors.New(apperrors.CategoryInput, "shape-check", apperrors.ErrShapeMismatch)
	}
	return nil
}
