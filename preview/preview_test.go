package preview

import (
	"bytes"
	stdimage "image"
	"image/png"
	"testing"

	"github.com/melix/astro4j-sub008/image"
)

func newTestMono(w, h int, fill float32) *image.Mono {
	m := image.NewMono(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Set(x, y, fill)
		}
	}
	return m
}

func TestToneMapMonoClipsToGrayRange(t *testing.T) {
	m := newTestMono(2, 2, 65535)
	out, err := ToneMap(m, Options{})
	if err != nil {
		t.Fatalf("ToneMap() error: %v", err)
	}
	gray, ok := out.(*stdimage.Gray)
	if !ok {
		t.Fatalf("ToneMap() returned %T, want *image.Gray", out)
	}
	if gray.GrayAt(0, 0).Y != 255 {
		t.Errorf("GrayAt(0,0) = %d, want 255", gray.GrayAt(0, 0).Y)
	}
}

func TestToneMapMonoBelowBlackClipIsZero(t *testing.T) {
	m := newTestMono(1, 1, 10)
	out, err := ToneMap(m, Options{BlackClip: 100, WhiteClip: 65535})
	if err != nil {
		t.Fatalf("ToneMap() error: %v", err)
	}
	gray := out.(*stdimage.Gray)
	if gray.GrayAt(0, 0).Y != 0 {
		t.Errorf("GrayAt(0,0) = %d, want 0", gray.GrayAt(0, 0).Y)
	}
}

func TestToneMapAppliesPalette(t *testing.T) {
	m := newTestMono(1, 1, 65535)
	out, err := ToneMap(m, Options{Palette: DopplerPalette()})
	if err != nil {
		t.Fatalf("ToneMap() error: %v", err)
	}
	rgba, ok := out.(*stdimage.RGBA)
	if !ok {
		t.Fatalf("ToneMap() with palette returned %T, want *image.RGBA", out)
	}
	c := rgba.RGBAAt(0, 0)
	if c.R < 150 || c.G > 100 {
		t.Errorf("high value should map toward the red stop, got %+v", c)
	}
}

func TestExportPNGRoundTripsDimensions(t *testing.T) {
	m := newTestMono(3, 2, 32768)
	var buf bytes.Buffer
	if err := Export(&buf, m, FormatPNG, Options{}, NewPNGEncoder()); err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode() error: %v", err)
	}
	b := decoded.Bounds()
	if b.Dx() != 3 || b.Dy() != 2 {
		t.Errorf("decoded dims = %dx%d, want 3x2", b.Dx(), b.Dy())
	}
}

func TestExportFallsThroughBackendsToMatchingFormat(t *testing.T) {
	m := newTestMono(1, 1, 0)
	var buf bytes.Buffer
	err := Export(&buf, m, FormatJPEG, Options{}, NewPNGEncoder(), NewJPEGEncoder(85))
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected non-empty JPEG output")
	}
}

func TestExportReturnsErrorWhenNoBackendMatches(t *testing.T) {
	m := newTestMono(1, 1, 0)
	var buf bytes.Buffer
	if err := Export(&buf, m, FormatWebP, Options{}, NewPNGEncoder()); err == nil {
		t.Error("expected error when no backend can encode the requested format")
	}
}

func TestPaletteMapIsMonotonicInLuminance(t *testing.T) {
	p := ContinuumPalette()
	dark := p.Map(0)
	bright := p.Map(255)
	darkSum := int(dark.R) + int(dark.G) + int(dark.B)
	brightSum := int(bright.R) + int(bright.G) + int(bright.B)
	if brightSum <= darkSum {
		t.Errorf("expected brighter mapped sum > darker, got dark=%d bright=%d", darkSum, brightSum)
	}
}
