// Package pipeline wires transform/stretch steps together, runs hooks, and
// handles retries, generalizing the teacher's step-runner to operate on
// image.Image rather than an encoded byte stream.
package pipeline

import (
	"context"
	"time"

	"github.com/melix/astro4j-sub008/apperrors"
	"github.com/melix/astro4j-sub008/image"
)

// Step is one unit of pipeline work: a named, pure function from one
// image.Image to another.
type Step interface {
	Name() string
	Execute(ctx context.Context, img image.Image) (image.Image, error)
}

// Hook observes pipeline execution around each step.
type Hook interface {
	BeforeStep(ctx context.Context, stepName string, img image.Image)
	AfterStep(ctx context.Context, stepName string, img image.Image, d time.Duration, err error)
}

// MetricsCollector receives step timing/throughput/error events.
type MetricsCollector interface {
	RecordProcessingTime(stepName string, d time.Duration)
	RecordThroughput(pixels int64)
	RecordError(stepName, category string)
}

// Pipeline executes a sequence of Steps with hook and retry support.
type Pipeline struct {
	steps      []Step
	hooks      []Hook
	maxRetries int
	retryDelay time.Duration
}

// New returns an empty Pipeline.
func New() *Pipeline { return &Pipeline{} }

// Use appends steps to the pipeline. Returns the same Pipeline for chaining.
func (p *Pipeline) Use(s ...Step) *Pipeline {
	p.steps = append(p.steps, s...)
	return p
}

// AddHook registers an observer.
func (p *Pipeline) AddHook(h Hook) *Pipeline {
	p.hooks = append(p.hooks, h)
	return p
}

// WithRetry sets the maximum retry count and delay for transient failures.
func (p *Pipeline) WithRetry(maxRetries int, delay time.Duration) *Pipeline {
	p.maxRetries = maxRetries
	p.retryDelay = delay
	return p
}

// Run executes the pipeline on img, returning the final image and a map of
// per-step timing observations.
func (p *Pipeline) Run(ctx context.Context, img image.Image) (image.Image, map[string]time.Duration, error) {
	timings := make(map[string]time.Duration, len(p.steps))
	current := img

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return nil, timings, apperrors.Wrap(apperrors.CategoryCancelled, step.Name(), err)
		}

		result, elapsed, err := p.runStep(ctx, step, current)
		timings[step.Name()] = elapsed
		if err != nil {
			return nil, timings, err
		}
		current = result
	}
	return current, timings, nil
}

func (p *Pipeline) runStep(ctx context.Context, step Step, img image.Image) (image.Image, time.Duration, error) {
	p.callHooksBefore(ctx, step.Name(), img)

	var (
		result  image.Image
		elapsed time.Duration
		err     error
	)

	attempts := p.maxRetries + 1
	for i := 0; i < attempts; i++ {
		start := time.Now()
		result, err = step.Execute(ctx, img)
		elapsed = time.Since(start)

		if err == nil {
			break
		}
		if !apperrors.IsRetryable(err) || i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			err = apperrors.Wrap(apperrors.CategoryCancelled, step.Name(), ctx.Err())
			goto done
		case <-time.After(p.retryDelay):
		}
	}

done:
	p.callHooksAfter(ctx, step.Name(), result, elapsed, err)
	return result, elapsed, err
}

func (p *Pipeline) callHooksBefore(ctx context.Context, name string, img image.Image) {
	for _, h := range p.hooks {
		h.BeforeStep(ctx, name, img)
	}
}

func (p *Pipeline) callHooksAfter(ctx context.Context, name string, img image.Image, d time.Duration, err error) {
	for _, h := range p.hooks {
		h.AfterStep(ctx, name, img, d, err)
	}
}

// Clone returns a shallow copy of the pipeline so templates can be reused
// safely across goroutines.
func (p *Pipeline) Clone() *Pipeline {
	cp := &Pipeline{
		steps:      make([]Step, len(p.steps)),
		hooks:      make([]Hook, len(p.hooks)),
		maxRetries: p.maxRetries,
		retryDelay: p.retryDelay,
	}
	copy(cp.steps, p.steps)
	copy(cp.hooks, p.hooks)
	return cp
}
