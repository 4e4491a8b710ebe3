// Package image defines the Mono/RGB image entities and the metadata bag
// that travels with every image through the transform pipeline (spec §3).
package image

import "time"

// MetadataKind tags a value stored in a MetadataBag. The set is closed per
// spec §3/§9 ("record-like metadata values... a small-map keyed by a tag
// enum").
type MetadataKind int

const (
	KindPixelShift MetadataKind = iota
	KindEllipse
	KindRedshifts
	KindActiveRegions
	KindEllermanBombs
	KindReferenceCoords
	KindTransformationHistory
	KindSourceInfo
	KindMetadataTable
	KindDistorsionMap
	KindProcessParams
	KindSolarParameters
)

func (k MetadataKind) String() string {
	switch k {
	case KindPixelShift:
		return "PixelShift"
	case KindEllipse:
		return "Ellipse"
	case KindRedshifts:
		return "Redshifts"
	case KindActiveRegions:
		return "ActiveRegions"
	case KindEllermanBombs:
		return "EllermanBombs"
	case KindReferenceCoords:
		return "ReferenceCoords"
	case KindTransformationHistory:
		return "TransformationHistory"
	case KindSourceInfo:
		return "SourceInfo"
	case KindMetadataTable:
		return "MetadataTable"
	case KindDistorsionMap:
		return "DistorsionMap"
	case KindProcessParams:
		return "ProcessParams"
	case KindSolarParameters:
		return "SolarParameters"
	default:
		return "Unknown"
	}
}

// PixelShift is a signed offset (in detector rows) around the scan's nominal
// reference wavelength; zero denotes line center. Spatial transforms never
// modify it.
type PixelShift float64

// RedshiftArea describes one Doppler measurement region.
type RedshiftArea struct {
	ID                   *string
	PixelShift, RelShift float64
	KmPerSec             float64
	X1, Y1, X2, Y2       float64
	MaxX, MaxY           float64
}

// Redshifts is a list of RedshiftArea values.
type Redshifts []RedshiftArea

// Point is a detected-feature point (active region, Ellerman bomb).
type Point struct {
	X, Y float64
}

// ActiveRegions is a collection of detected active-region points.
type ActiveRegions []Point

// EllermanBombs is a collection of detected Ellerman-bomb points.
type EllermanBombs []Point

// ReferenceCoordOp is one entry in the append-only ReferenceCoords log.
type ReferenceCoordOp struct {
	Kind  string // "rotation", "hflip", "vflip"
	Value float64
}

// ReferenceCoords is the append-only log of geometric operations applied to
// an image, with their scalar operand. Never dropped by a transform.
type ReferenceCoords []ReferenceCoordOp

// TransformationHistory is the append-only log of human-readable transform
// names applied to an image. Never dropped by a transform.
type TransformationHistory []string

// SourceInfo is immutable provenance carried from the upstream producer.
type SourceInfo struct {
	SerFileName string
	ParentDir   string
	DateTime    time.Time
}

// MetadataTable is a free-form key/value map.
type MetadataTable map[string]string

// DistorsionMap, ProcessParams and SolarParameters are opaque payloads that
// round-trip through FITS without interpretation by the transform layer.
type DistorsionMap map[string]interface{}
type ProcessParams map[string]interface{}
type SolarParameters map[string]interface{}

// Bag is a copy-on-transform metadata bag keyed by MetadataKind.
//
// Transforms never mutate a source's bag in place. AppendReferenceCoord and
// AppendTransformationHistory always produce a fresh bag entry — even though
// the underlying slice may be shared with the source — so earlier snapshots
// of the bag never observe a later append (spec §5 shared-resource policy).
type Bag struct {
	values map[MetadataKind]interface{}
}

// NewBag returns an empty metadata bag.
func NewBag() *Bag {
	return &Bag{values: make(map[MetadataKind]interface{})}
}

// Get returns the value stored under kind, if any.
func (b *Bag) Get(kind MetadataKind) (interface{}, bool) {
	if b == nil || b.values == nil {
		return nil, false
	}
	v, ok := b.values[kind]
	return v, ok
}

// Set stores value under kind, replacing any existing entry.
func (b *Bag) Set(kind MetadataKind, value interface{}) {
	if b.values == nil {
		b.values = make(map[MetadataKind]interface{})
	}
	b.values[kind] = value
}

// Delete removes kind from the bag, if present.
func (b *Bag) Delete(kind MetadataKind) {
	delete(b.values, kind)
}

// Clone returns a shallow-per-key, deep-enough copy of the bag suitable for
// carrying across a transform: slice-valued entries (Redshifts,
// ActiveRegions, EllermanBombs, ReferenceCoords, TransformationHistory) are
// copied into fresh backing arrays so a later append on one copy is never
// observed by the other.
func (b *Bag) Clone() *Bag {
	out := NewBag()
	if b == nil {
		return out
	}
	for k, v := range b.values {
		out.values[k] = cloneValue(k, v)
	}
	return out
}

func cloneValue(kind MetadataKind, v interface{}) interface{} {
	switch kind {
	case KindRedshifts:
		src := v.(Redshifts)
		cp := make(Redshifts, len(src))
		copy(cp, src)
		return cp
	case KindActiveRegions:
		src := v.(ActiveRegions)
		cp := make(ActiveRegions, len(src))
		copy(cp, src)
		return cp
	case KindEllermanBombs:
		src := v.(EllermanBombs)
		cp := make(EllermanBombs, len(src))
		copy(cp, src)
		return cp
	case KindReferenceCoords:
		src := v.(ReferenceCoords)
		cp := make(ReferenceCoords, len(src))
		copy(cp, src)
		return cp
	case KindTransformationHistory:
		src := v.(TransformationHistory)
		cp := make(TransformationHistory, len(src))
		copy(cp, src)
		return cp
	case KindMetadataTable:
		src := v.(MetadataTable)
		cp := make(MetadataTable, len(src))
		for k, v := range src {
			cp[k] = v
		}
		return cp
	default:
		// Ellipse, PixelShift, SourceInfo and the opaque payloads are
		// themselves immutable value types; a shallow copy is sufficient.
		return v
	}
}

// AppendReferenceCoord returns a new Bag with op appended to the
// ReferenceCoords log (creating the log if absent). b is left unmodified.
func (b *Bag) AppendReferenceCoord(op ReferenceCoordOp) *Bag {
	out := b.Clone()
	var log ReferenceCoords
	if v, ok := out.Get(KindReferenceCoords); ok {
		log = v.(ReferenceCoords)
	}
	fresh := make(ReferenceCoords, len(log), len(log)+1)
	copy(fresh, log)
	fresh = append(fresh, op)
	out.Set(KindReferenceCoords, fresh)
	return out
}

// AppendTransformationHistory returns a new Bag with name appended to the
// TransformationHistory log. b is left unmodified.
func (b *Bag) AppendTransformationHistory(name string) *Bag {
	out := b.Clone()
	var log TransformationHistory
	if v, ok := out.Get(KindTransformationHistory); ok {
		log = v.(TransformationHistory)
	}
	fresh := make(TransformationHistory, len(log), len(log)+1)
	copy(fresh, log)
	fresh = append(fresh, name)
	out.Set(KindTransformationHistory, fresh)
	return out
}
