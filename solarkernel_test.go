package solarkernel_test

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	solarkernel "github.com/melix/astro4j-sub008"
	"github.com/melix/astro4j-sub008/image"
	"github.com/melix/astro4j-sub008/pipeline"
	"github.com/melix/astro4j-sub008/preview"
)

func newTestKernel(t *testing.T) *solarkernel.Kernel {
	t.Helper()
	cfg := solarkernel.DefaultConfig()
	cfg.Scratch.BaseDir = t.TempDir()
	k, err := solarkernel.New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { _ = k.Close() })
	return k
}

func newTestMono(w, h int, fill float32) *image.Mono {
	m := image.NewMono(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Set(x, y, fill)
		}
	}
	return m
}

type doublingStep struct{}

func (doublingStep) Name() string { return "double" }
func (doublingStep) Execute(_ context.Context, img image.Image) (image.Image, error) {
	m := img.(*image.Mono)
	out := image.NewMono(m.W, m.H)
	out.Meta = m.Meta.Clone()
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			out.Set(x, y, m.At(x, y)*2)
		}
	}
	return out, nil
}

func TestKernelProcessRunsStepsAndRecordsMetrics(t *testing.T) {
	k := newTestKernel(t)
	src := newTestMono(2, 2, 10)

	out, err := k.Process(context.Background(), src, doublingStep{})
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	mono := out.(*image.Mono)
	if mono.At(0, 0) != 20 {
		t.Errorf("At(0,0) = %v, want 20", mono.At(0, 0))
	}

	snap := k.Stats()
	if snap.StepCalls["double"] != 1 {
		t.Errorf("StepCalls[double] = %d, want 1", snap.StepCalls["double"])
	}
	if snap.TotalPixels == 0 {
		t.Error("expected non-zero pixel throughput recorded")
	}
}

func TestKernelWrapAndUnwrapRoundTrips(t *testing.T) {
	k := newTestKernel(t)
	src := newTestMono(3, 3, 42)

	fb, err := k.Wrap(src)
	if err != nil {
		t.Fatalf("Wrap() error: %v", err)
	}
	got, err := fb.UnwrapToMemory()
	if err != nil {
		t.Fatalf("UnwrapToMemory() error: %v", err)
	}
	mono := got.(*image.Mono)
	if mono.At(0, 0) != 42 {
		t.Errorf("At(0,0) = %v, want 42", mono.At(0, 0))
	}
}

func TestKernelWriteReadFITSRoundTrips(t *testing.T) {
	k := newTestKernel(t)
	src := newTestMono(2, 2, 1000)

	var buf bytes.Buffer
	if err := k.WriteFITS(&buf, src, 0.001); err != nil {
		t.Fatalf("WriteFITS() error: %v", err)
	}
	got, err := k.ReadFITS(&buf)
	if err != nil {
		t.Fatalf("ReadFITS() error: %v", err)
	}
	mono := got.(*image.Mono)
	if diff := mono.At(0, 0) - 1000; diff > 1 || diff < -1 {
		t.Errorf("At(0,0) = %v, want ~1000", mono.At(0, 0))
	}
}

func TestKernelExportPreviewEncodesPNG(t *testing.T) {
	k := newTestKernel(t)
	src := newTestMono(4, 4, 32768)

	data, err := k.ExportPreview(src, solarkernel.PNG, preview.Options{}, preview.NewPNGEncoder())
	if err != nil {
		t.Fatalf("ExportPreview() error: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error: %v", err)
	}
	if decoded.Bounds().Dx() != 4 {
		t.Errorf("decoded width = %d, want 4", decoded.Bounds().Dx())
	}
}

func TestKernelForkJoinRunsConcurrentWork(t *testing.T) {
	k := newTestKernel(t)
	res := k.ForkJoin().ForkJoinRun(context.Background(),
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error { return nil },
	)
	if res.Err() != nil {
		t.Errorf("ForkJoinRun() error: %v", res.Err())
	}
}

func TestKernelNewPipelineAttachesHooks(t *testing.T) {
	k := newTestKernel(t)
	pl := k.NewPipeline(doublingStep{})
	out, _, err := pl.Run(context.Background(), newTestMono(1, 1, 5))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if out.(*image.Mono).At(0, 0) != 10 {
		t.Error("pipeline built via NewPipeline did not execute the step")
	}
	var _ pipeline.Step = doublingStep{}
}
