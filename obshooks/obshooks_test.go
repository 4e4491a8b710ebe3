package obshooks_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/melix/astro4j-sub008/image"
	"github.com/melix/astro4j-sub008/obshooks"
	"github.com/melix/astro4j-sub008/pipeline"
)

func TestLoggingHookSatisfiesPipelineHook(t *testing.T) {
	var _ pipeline.Hook = obshooks.NewLoggingHook(obshooks.NewSlogLogger(slog.Default()))
}

func TestMetricsHookRecordsThroughputAndErrors(t *testing.T) {
	metrics := obshooks.NewInMemoryMetrics()
	hook := obshooks.NewMetricsHook(metrics)

	img := image.NewMono(10, 4)
	hook.BeforeStep(context.Background(), "rotate", img)
	hook.AfterStep(context.Background(), "rotate", img, 5*time.Millisecond, nil)
	hook.AfterStep(context.Background(), "rotate", img, 2*time.Millisecond, errors.New("boom"))

	snap := metrics.Snapshot()
	if snap.StepCalls["rotate"] != 2 {
		t.Fatalf("expected 2 recorded calls, got %d", snap.StepCalls["rotate"])
	}
	if snap.StepErrors["rotate"] != 1 {
		t.Fatalf("expected 1 recorded error, got %d", snap.StepErrors["rotate"])
	}
	if snap.TotalPixels != 80 {
		t.Fatalf("expected total pixels 80 (2 x 10x4), got %d", snap.TotalPixels)
	}
	if snap.StepDurationsMs["rotate"] != 7 {
		t.Fatalf("expected cumulative duration 7ms, got %d", snap.StepDurationsMs["rotate"])
	}
}

func TestMetricsHookSkipsThroughputWhenImageNil(t *testing.T) {
	metrics := obshooks.NewInMemoryMetrics()
	hook := obshooks.NewMetricsHook(metrics)

	hook.AfterStep(context.Background(), "step", nil, time.Millisecond, nil)

	snap := metrics.Snapshot()
	if snap.TotalPixels != 0 {
		t.Fatalf("expected no throughput recorded for a nil image, got %d", snap.TotalPixels)
	}
}
