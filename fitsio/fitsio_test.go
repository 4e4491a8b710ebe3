package fitsio

import (
	"bytes"
	"testing"
	"time"

	"github.com/melix/astro4j-sub008/image"
)

func TestToShortFromShortRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 1, 32768, 65535, 40000.4} {
		s := ToShort(v)
		got := FromShort(s, 32768)
		want := v
		if want < 0 {
			want = 0
		}
		if want > 65535 {
			want = 65535
		}
		if diff := got - want; diff > 0.6 || diff < -0.6 {
			t.Errorf("ToShort/FromShort(%v) round-tripped to %v", v, got)
		}
	}
}

func TestToShortClipsOutOfRange(t *testing.T) {
	if s := ToShort(-100); s != ToShort(0) {
		t.Errorf("expected negative values clipped to 0, got %d", s)
	}
	if s := ToShort(1e9); s != ToShort(65535) {
		t.Errorf("expected large values clipped to 65535, got %d", s)
	}
}

func TestNormalizeHeaderStringStripsDiacriticsAndNonASCII(t *testing.T) {
	got := NormalizeHeaderString("François ☃")
	if got != "Francois _" {
		t.Errorf("NormalizeHeaderString() = %q", got)
	}
}

func TestAdjustedWavelengthNm(t *testing.T) {
	got := AdjustedWavelengthNm(656.28, 10, 0.001)
	want := 656.29
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("AdjustedWavelengthNm() = %v, want %v", got, want)
	}
}

func TestWriteReadRoundTripsMonoImageAndEllipse(t *testing.T) {
	src := image.NewMono(4, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			src.Set(x, y, float32(1000*(y*4+x)))
		}
	}
	src.Meta = image.NewBag()
	src.Meta.Set(image.KindEllipse, &image.Ellipse{A: 1, B: 0, C: 1, D: -20, E: -12, F: 50})
	src.Meta.Set(image.KindTransformationHistory, image.TransformationHistory{"rotate", "hflip"})

	var buf bytes.Buffer
	if err := Write(&buf, src, 0.001); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	mono, ok := got.(*image.Mono)
	if !ok {
		t.Fatalf("Read() returned %T, want *image.Mono", got)
	}
	if mono.W != 4 || mono.H != 3 {
		t.Fatalf("Read() dims = %dx%d, want 4x3", mono.W, mono.H)
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			want := float32(1000 * (y*4 + x))
			if diff := mono.At(x, y) - want; diff > 1 || diff < -1 {
				t.Errorf("pixel (%d,%d) = %v, want ~%v", x, y, mono.At(x, y), want)
			}
		}
	}

	if e, ok := mono.Meta.Get(image.KindEllipse); !ok {
		t.Error("ellipse metadata lost on round trip")
	} else if el := e.(*image.Ellipse); el.D != -20 || el.E != -12 {
		t.Errorf("ellipse = %+v, want D=-20 E=-12", el)
	}

	if h, ok := mono.Meta.Get(image.KindTransformationHistory); !ok {
		t.Error("transformation history lost on round trip")
	} else if hist := h.(image.TransformationHistory); len(hist) != 2 || hist[0] != "rotate" {
		t.Errorf("history = %v, want [rotate hflip]", hist)
	}
}

func TestWriteReadRoundTripsRGBImage(t *testing.T) {
	src := image.NewRGB(2, 2)
	src.R[0][0], src.G[0][0], src.B[0][0] = 100, 200, 300
	src.Meta = image.NewBag()

	var buf bytes.Buffer
	if err := Write(&buf, src, 0); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	rgb, ok := got.(*image.RGB)
	if !ok {
		t.Fatalf("Read() returned %T, want *image.RGB", got)
	}
	if diff := rgb.R[0][0] - 100; diff > 1 || diff < -1 {
		t.Errorf("R[0][0] = %v, want ~100", rgb.R[0][0])
	}
	if diff := rgb.G[0][0] - 200; diff > 1 || diff < -1 {
		t.Errorf("G[0][0] = %v, want ~200", rgb.G[0][0])
	}
}

func TestWriteReadRoundTripsRedshiftsAndReferenceCoords(t *testing.T) {
	src := image.NewMono(2, 2)
	src.Meta = image.NewBag()
	src.Meta.Set(image.KindRedshifts, image.Redshifts{
		{PixelShift: 3, RelShift: 0.5, KmPerSec: 12.3, X1: 1, Y1: 1, X2: 2, Y2: 2, MaxX: 1.5, MaxY: 1.5},
	})
	src.Meta = src.Meta.AppendReferenceCoord(image.ReferenceCoordOp{Kind: "rotation", Value: 0.1})

	var buf bytes.Buffer
	if err := Write(&buf, src, 0); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	mono := got.(*image.Mono)

	if v, ok := mono.Meta.Get(image.KindRedshifts); !ok {
		t.Error("redshifts lost on round trip")
	} else if rs := v.(image.Redshifts); len(rs) != 1 || rs[0].KmPerSec != 12.3 {
		t.Errorf("redshifts = %+v", rs)
	}

	if v, ok := mono.Meta.Get(image.KindReferenceCoords); !ok {
		t.Error("reference coords lost on round trip")
	} else if ops := v.(image.ReferenceCoords); len(ops) != 1 || ops[0].Kind != "rotation" {
		t.Errorf("reference coords = %+v", ops)
	}
}

func TestWriteReadRoundTripsSourceInfoAndMetadataTable(t *testing.T) {
	src := image.NewMono(2, 2)
	src.Meta = image.NewBag()
	src.Meta.Set(image.KindSourceInfo, image.SourceInfo{
		SerFileName: "sun_2026-07-30.ser",
		ParentDir:   "/captures/2026-07-30",
		DateTime:    time.Date(2026, 7, 30, 10, 0, 0, 0, time.UTC),
	})
	src.Meta.Set(image.KindMetadataTable, image.MetadataTable{"instrument": "sol-ex"})

	var buf bytes.Buffer
	if err := Write(&buf, src, 0); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	mono := got.(*image.Mono)

	if v, ok := mono.Meta.Get(image.KindSourceInfo); !ok {
		t.Error("source info lost on round trip")
	} else if si := v.(image.SourceInfo); si.SerFileName != "sun_2026-07-30.ser" || !si.DateTime.Equal(time.Date(2026, 7, 30, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("source info = %+v", si)
	}

	if v, ok := mono.Meta.Get(image.KindMetadataTable); !ok {
		t.Error("metadata table lost on round trip")
	} else if table := v.(image.MetadataTable); table["instrument"] != "sol-ex" {
		t.Errorf("metadata table = %+v", table)
	}
}

func TestSynthesizeINTIEllipseCenteredOnGivenPoint(t *testing.T) {
	e := SynthesizeINTIEllipse(10, 10, 5)
	cx, cy := e.Center()
	if diff := cx - 10; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("center x = %v, want 10", cx)
	}
	if diff := cy - 10; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("center y = %v, want 10", cy)
	}
}
