package pipeline

import (
	"context"

	"github.com/melix/astro4j-sub008/apperrors"
	"github.com/melix/astro4j-sub008/core"
	"github.com/melix/astro4j-sub008/image"
	"github.com/melix/astro4j-sub008/stretch"
	"github.com/melix/astro4j-sub008/transform"
)

// ── Rotate ────────────────────────────────────────────────────────────────────

// RotateStep rotates by an arbitrary angle, optionally growing the canvas.
type RotateStep struct {
	AlphaRadians float64
	Resize       bool
	Blackpoint   float64
}

func (s *RotateStep) Name() string { return "rotate" }

func (s *RotateStep) Execute(ctx context.Context, img image.Image) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryCancelled, s.Name(), err)
	}
	return transform.Rotate(img, core.AngleFromRadians(s.AlphaRadians), s.Resize, s.Blackpoint)
}

// RotateLeftStep rotates 90 degrees counter-clockwise without resizing,
// resampling with Lanczos like RotateStep.
type RotateLeftStep struct {
	Blackpoint float64
}

func (s *RotateLeftStep) Name() string { return "rotate_left" }

func (s *RotateLeftStep) Execute(ctx context.Context, img image.Image) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryCancelled, s.Name(), err)
	}
	return transform.RotateLeft(img, s.Blackpoint)
}

// RotateRightStep rotates 90 degrees clockwise without resizing,
// resampling with Lanczos like RotateStep.
type RotateRightStep struct {
	Blackpoint float64
}

func (s *RotateRightStep) Name() string { return "rotate_right" }

func (s *RotateRightStep) Execute(ctx context.Context, img image.Image) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryCancelled, s.Name(), err)
	}
	return transform.RotateRight(img, s.Blackpoint)
}

// ── Flip ──────────────────────────────────────────────────────────────────────

// HFlipStep mirrors the image horizontally.
type HFlipStep struct{}

func (s *HFlipStep) Name() string { return "hflip" }

func (s *HFlipStep) Execute(ctx context.Context, img image.Image) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryCancelled, s.Name(), err)
	}
	return transform.HFlip(img)
}

// VFlipStep mirrors the image vertically.
type VFlipStep struct{}

func (s *VFlipStep) Name() string { return "vflip" }

func (s *VFlipStep) Execute(ctx context.Context, img image.Image) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryCancelled, s.Name(), err)
	}
	return transform.VFlip(img)
}

// ── Ellipse mask ──────────────────────────────────────────────────────────────

// EllipseMaskStep paints pixels covered by an ellipse with Fill, blending by
// sub-pixel coverage; with Outside set, uncovered pixels are painted Outside.
type EllipseMaskStep struct {
	Ellipse *image.Ellipse
	Fill    float64
	Outside *float64
}

func (s *EllipseMaskStep) Name() string { return "ellipse_mask" }

func (s *EllipseMaskStep) Execute(ctx context.Context, img image.Image) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryCancelled, s.Name(), err)
	}
	return transform.EllipseMask(img, s.Ellipse, s.Fill, s.Outside)
}

// ── Thumbnail ────────────────────────────────────────────────────────────────

// ThumbnailStep downsizes the image to fit within MaxWidth x MaxHeight.
type ThumbnailStep struct {
	MaxWidth  int
	MaxHeight int
}

func (s *ThumbnailStep) Name() string { return "thumbnail" }

func (s *ThumbnailStep) Execute(ctx context.Context, img image.Image) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryCancelled, s.Name(), err)
	}
	return transform.Thumbnail(img, s.MaxWidth, s.MaxHeight)
}

// ── Stretch operators ─────────────────────────────────────────────────────────

// GammaStep applies a per-image-max normalized power stretch.
type GammaStep struct {
	Gamma float64
}

func (s *GammaStep) Name() string { return "gamma" }

func (s *GammaStep) Execute(ctx context.Context, img image.Image) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryCancelled, s.Name(), err)
	}
	return stretch.Gamma(img, s.Gamma)
}

// MTFAutostretchStep applies a SIRIL-style midtones transfer function,
// solved from a sigma-clipped shadows clip and target background level.
type MTFAutostretchStep struct {
	ShadowsClip      float64
	TargetBackground float64
}

func (s *MTFAutostretchStep) Name() string { return "mtf_autostretch" }

func (s *MTFAutostretchStep) Execute(ctx context.Context, img image.Image) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryCancelled, s.Name(), err)
	}
	shadows := s.ShadowsClip
	if shadows == 0 {
		shadows = stretch.DefaultShadowsClip
	}
	target := s.TargetBackground
	if target == 0 {
		target = stretch.DefaultTargetBackground
	}
	return stretch.MTFAutostretch(img, shadows, target)
}

// LinearStretchStep rescales [Low, High] to the full [0, 65535] range.
type LinearStretchStep struct {
	Low  float64
	High float64
}

func (s *LinearStretchStep) Name() string { return "linear_stretch" }

func (s *LinearStretchStep) Execute(ctx context.Context, img image.Image) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryCancelled, s.Name(), err)
	}
	return stretch.Linear(img, s.Low, s.High)
}
