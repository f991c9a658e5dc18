// Package gifcodec adapts animated GIFs decoded by the standard library's
// image/gif to the animate.Codec interface.
package gifcodec

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"io"
	"time"

	"golang.org/x/image/draw"

	"github.com/deepteams/animate"
)

var ErrNoFrames = errors.New("gifcodec: no frames")

// Codec exposes a decoded GIF as an animate.Codec. It does not retain any
// playback state of its own; the engine owns the canvas.
type Codec struct {
	g    *gif.GIF
	size image.Point
}

// Decode reads a GIF image from r and wraps it as a Codec.
func Decode(r io.Reader) (*Codec, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, err
	}
	return New(g)
}

// New wraps an already-decoded GIF. The delay and disposal slices, when
// present, must match the frame count.
func New(g *gif.GIF) (*Codec, error) {
	if len(g.Image) == 0 {
		return nil, ErrNoFrames
	}
	if g.Delay != nil && len(g.Delay) != len(g.Image) {
		return nil, fmt.Errorf("gifcodec: mismatched image count and delay count: %d != %d", len(g.Image), len(g.Delay))
	}
	if g.Disposal != nil && len(g.Disposal) != len(g.Image) {
		return nil, fmt.Errorf("gifcodec: mismatched image count and disposal count: %d != %d", len(g.Image), len(g.Disposal))
	}
	size := image.Pt(g.Config.Width, g.Config.Height)
	if size.X <= 0 || size.Y <= 0 {
		// Some encoders omit the logical screen size; fall back to the
		// first frame's extent.
		b := g.Image[0].Bounds()
		size = image.Pt(b.Max.X, b.Max.Y)
	}
	return &Codec{g: g, size: size}, nil
}

// Size returns the GIF's logical screen size.
func (c *Codec) Size() image.Point { return c.size }

// FrameCount returns the number of frames.
func (c *Codec) FrameCount() int { return len(c.g.Image) }

// FrameDuration returns frame index's delay. GIF delays are in 100ths of
// a second; zero delays are reported as-is and clamped by the engine.
func (c *Codec) FrameDuration(index int) time.Duration {
	if c.g.Delay == nil {
		return 0
	}
	return time.Duration(c.g.Delay[index]) * 10 * time.Millisecond
}

// Disposal maps the GIF disposal byte for frame index. Unspecified
// disposal leaves the canvas in place, like gif.DisposalNone.
func (c *Codec) Disposal(index int) animate.DisposalMethod {
	if c.g.Disposal == nil {
		return animate.DisposalKeep
	}
	switch c.g.Disposal[index] {
	case gif.DisposalBackground:
		return animate.DisposalRestoreBackground
	case gif.DisposalPrevious:
		return animate.DisposalRestorePrevious
	default:
		return animate.DisposalKeep
	}
}

// RequiredFrame returns the frame whose composited canvas frame index is
// drawn over. Full-canvas opaque frames are independent; frames disposed
// with restore-previous are invisible to the frames after them.
func (c *Codec) RequiredFrame(index int) int {
	if index == 0 || c.independent(index) {
		return animate.NoFrame
	}
	j := index - 1
	for j >= 0 && c.Disposal(j) == animate.DisposalRestorePrevious {
		j--
	}
	if j < 0 {
		// Every earlier frame was rewound away; the frame composites over
		// the blank canvas.
		return animate.NoFrame
	}
	return j
}

// independent reports whether frame index covers the whole canvas with no
// transparent palette entries, so it needs nothing from earlier frames.
func (c *Codec) independent(index int) bool {
	fr := c.g.Image[index]
	if fr.Bounds() != (image.Rectangle{Max: c.size}) {
		return false
	}
	for _, entry := range fr.Palette {
		if _, _, _, a := entry.RGBA(); a != 0xffff {
			return false
		}
	}
	return true
}

// DecodeFrame composites frame index over dst at the frame's own bounds.
// Transparent palette entries leave the canvas showing through, per the
// GIF compositing model.
func (c *Codec) DecodeFrame(index int, dst *image.NRGBA) error {
	if index < 0 || index >= len(c.g.Image) {
		return fmt.Errorf("gifcodec: frame %d out of range [0, %d)", index, len(c.g.Image))
	}
	fr := c.g.Image[index]
	draw.Copy(dst, fr.Bounds().Min, fr, fr.Bounds(), draw.Over, nil)
	return nil
}

// RepetitionCount maps gif.GIF.LoopCount to the engine's repetition
// semantics: 0 loops forever, -1 plays a single pass, and n plays n+1
// passes (the GIF loop count is the number of restarts after the first
// showing).
func (c *Codec) RepetitionCount() int {
	switch {
	case c.g.LoopCount == 0:
		return animate.RepetitionCountInfinite
	case c.g.LoopCount < 0:
		return 1
	default:
		return c.g.LoopCount + 1
	}
}
