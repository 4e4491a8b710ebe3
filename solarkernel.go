// Package solarkernel is the facade that wires together every package in
// this module — memory management, scratch lifecycle, the transform/stretch
// pipeline, FITS persistence and preview export — into one entry point
// analogous to the teacher's core.Processor.
package solarkernel

import (
	"context"
	"io"
	"log/slog"

	"github.com/melix/astro4j-sub008/concurrency"
	"github.com/melix/astro4j-sub008/config"
	"github.com/melix/astro4j-sub008/core"
	"github.com/melix/astro4j-sub008/fitsio"
	"github.com/melix/astro4j-sub008/image"
	"github.com/melix/astro4j-sub008/memmgr"
	"github.com/melix/astro4j-sub008/obshooks"
	"github.com/melix/astro4j-sub008/pipeline"
	"github.com/melix/astro4j-sub008/preview"
	"github.com/melix/astro4j-sub008/scratch"
)

// Re-export preview Format constants for convenience at the facade level.
const (
	PNG  = preview.FormatPNG
	JPEG = preview.FormatJPEG
	WebP = preview.FormatWebP
)

// DefaultConfig returns a sensible production configuration.
func DefaultConfig() config.Config { return config.Default() }

// Kernel is the primary entry point: it owns the scratch directory, the
// image memory manager, and the observability hooks every pipeline run
// reports through.
type Kernel struct {
	cfg     config.Config
	log     core.Logger
	metrics *obshooks.InMemoryMetrics
	memory  *memmgr.Manager
	scratch *scratch.Lifecycle
	forkJoin *concurrency.ForkJoin
}

// New wires a fully configured Kernel: starts the scratch-directory
// lifecycle, the memory manager's watchdogs, and a default fork/join pool
// sized from the detected CPU topology. Call Close to release all of it.
func New(cfg config.Config) (*Kernel, error) {
	log := obshooks.NewSlogLogger(slog.Default())

	lifecycle, err := scratch.New(cfg.Scratch, log)
	if err != nil {
		return nil, err
	}

	metrics := obshooks.NewInMemoryMetrics()
	mgr := memmgr.New(cfg.Memory, lifecycle, log)

	maxParallel := cfg.Concurrency.MaxParallel
	if maxParallel <= 0 {
		maxParallel = concurrency.DetectSizing().LogicalCores
	}

	return &Kernel{
		cfg:      cfg,
		log:      log,
		metrics:  metrics,
		memory:   mgr,
		scratch:  lifecycle,
		forkJoin: concurrency.NewForkJoin(maxParallel),
	}, nil
}

// Close stops the memory manager's watchdogs and sweeps the scratch
// directory.
func (k *Kernel) Close() error {
	k.memory.Close()
	return k.scratch.Close()
}

// Logger returns the structured logger every background watchdog and hook
// reports through.
func (k *Kernel) Logger() core.Logger { return k.log }

// Stats returns a point-in-time snapshot of per-step timing, call, error and
// pixel-throughput counters.
func (k *Kernel) Stats() obshooks.MetricsSnapshot { return k.metrics.Snapshot() }

// NewPipeline builds a pipeline.Pipeline preloaded with this Kernel's
// logging and metrics hooks, ready to Use() additional steps.
func (k *Kernel) NewPipeline(steps ...pipeline.Step) *pipeline.Pipeline {
	pl := pipeline.New().Use(steps...)
	pl.AddHook(obshooks.NewLoggingHook(k.log))
	pl.AddHook(obshooks.NewMetricsHook(k.metrics))
	return pl
}

// Process runs steps over img synchronously through a freshly built
// pipeline and returns the final image.
func (k *Kernel) Process(ctx context.Context, img image.Image, steps ...pipeline.Step) (image.Image, error) {
	out, _, err := k.NewPipeline(steps...).Run(ctx, img)
	return out, err
}

// Wrap hands img to the memory manager, returning a FileBacked handle whose
// materialization may be spilled to the scratch directory under memory
// pressure (spec §4.1).
func (k *Kernel) Wrap(img image.Image) (*memmgr.FileBacked, error) {
	return k.memory.Wrap(img)
}

// FlushImages runs the memory manager's global flush: when free heap is
// below FreeRatioFlushAll it writes every cached, unsaved image to disk and
// waits for the writes; otherwise it does nothing.
func (k *Kernel) FlushImages(ctx context.Context) error {
	return k.memory.FlushImages(ctx)
}

// ForkJoin returns the Kernel's shared fork/join pool, sized from the
// configured (or detected) CPU topology.
func (k *Kernel) ForkJoin() *concurrency.ForkJoin { return k.forkJoin }

// WriteFITS persists img (plus its metadata bag) to w as a JSol'Ex-tagged
// FITS file.
func (k *Kernel) WriteFITS(w io.Writer, img image.Image, dispersionNmPerPx float64) error {
	return fitsio.Write(w, img, dispersionNmPerPx)
}

// ReadFITS reads a FITS file previously written by WriteFITS or a
// compatible JSol'Ex/INTI producer.
func (k *Kernel) ReadFITS(r io.Reader) (image.Image, error) {
	return fitsio.Read(r)
}

// ExportPreview tone-maps img and encodes it as a deliverable PNG/JPEG/WebP
// using the first backend in backends that claims format.
func (k *Kernel) ExportPreview(img image.Image, format preview.Format, opts preview.Options, backends ...preview.Encoder) ([]byte, error) {
	return preview.ExportBytes(img, format, opts, backends...)
}
