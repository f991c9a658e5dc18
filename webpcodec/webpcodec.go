// Package webpcodec adapts animated WebP images decoded by
// github.com/deepteams/webp to the animate.Codec interface.
package webpcodec

import (
	"errors"
	"fmt"
	"image"
	"io"
	"time"

	"golang.org/x/image/draw"

	// Registers the VP8/VP8L frame decoder with the animation package.
	_ "github.com/deepteams/webp"
	"github.com/deepteams/webp/animation"

	"github.com/deepteams/animate"
)

var ErrNoFrames = errors.New("webpcodec: no frames")

// Codec exposes a decoded animated WebP as an animate.Codec.
type Codec struct {
	anim *animation.Animation
}

// Decode reads a WebP image from r, decodes every frame bitstream, and
// wraps the result as a Codec.
func Decode(r io.Reader) (*Codec, error) {
	anim, err := animation.Decode(r)
	if err != nil {
		return nil, err
	}
	return New(anim)
}

// New wraps a parsed animation, decoding any frames whose pixels are not
// yet available.
func New(anim *animation.Animation) (*Codec, error) {
	if len(anim.Frames) == 0 {
		return nil, ErrNoFrames
	}
	if err := anim.DecodeFrames(); err != nil {
		return nil, err
	}
	return &Codec{anim: anim}, nil
}

// Size returns the canvas dimensions.
func (c *Codec) Size() image.Point {
	return image.Pt(c.anim.CanvasWidth, c.anim.CanvasHeight)
}

// FrameCount returns the number of frames.
func (c *Codec) FrameCount() int { return len(c.anim.Frames) }

// FrameDuration returns frame index's display duration.
func (c *Codec) FrameDuration(index int) time.Duration {
	return c.anim.Frames[index].Duration
}

// Disposal maps the WebP dispose mode for frame index. WebP has no
// restore-previous disposal.
func (c *Codec) Disposal(index int) animate.DisposalMethod {
	if c.anim.Frames[index].Dispose == animation.DisposeBackground {
		return animate.DisposalRestoreBackground
	}
	return animate.DisposalKeep
}

// RequiredFrame returns the frame whose composited canvas frame index is
// drawn over, or NoFrame for keyframes.
func (c *Codec) RequiredFrame(index int) int {
	if index == 0 || c.keyframe(index) {
		return animate.NoFrame
	}
	return index - 1
}

// keyframe reports whether frame index can be composited without the
// previous canvas: a full-canvas frame whose bitstream signals no alpha,
// or one that overwrites without blending.
func (c *Codec) keyframe(index int) bool {
	f := &c.anim.Frames[index]
	b := f.Bounds()
	if b != image.Rect(0, 0, c.anim.CanvasWidth, c.anim.CanvasHeight) {
		return false
	}
	return !f.HasAlpha || f.Blend == animation.BlendNone
}

// DecodeFrame composites frame index onto dst at the frame's offset,
// alpha-blending or overwriting per the frame's blend mode.
func (c *Codec) DecodeFrame(index int, dst *image.NRGBA) error {
	if index < 0 || index >= len(c.anim.Frames) {
		return fmt.Errorf("webpcodec: frame %d out of range [0, %d)", index, len(c.anim.Frames))
	}
	f := &c.anim.Frames[index]
	if f.Image == nil {
		return animation.ErrNilImage
	}
	op := draw.Over
	if f.Blend == animation.BlendNone {
		op = draw.Src
	}
	draw.Copy(dst, image.Pt(f.OffsetX, f.OffsetY), f.Image, f.Image.Bounds(), op, nil)
	return nil
}

// RepetitionCount maps the WebP loop count: 0 loops forever, n plays n
// passes.
func (c *Codec) RepetitionCount() int {
	if c.anim.LoopCount == 0 {
		return animate.RepetitionCountInfinite
	}
	return c.anim.LoopCount
}
