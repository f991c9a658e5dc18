package animate

import (
	"image"
	"time"
)

// DisposalMethod controls what happens to the composited canvas after a
// frame has been shown, before the next frame is drawn.
type DisposalMethod int

const (
	// DisposalKeep leaves the canvas as-is; the next frame composites on
	// top of it.
	DisposalKeep DisposalMethod = 1
	// DisposalRestoreBackground clears the canvas to transparent before
	// the next frame is drawn.
	DisposalRestoreBackground DisposalMethod = 2
	// DisposalRestorePrevious rewinds the canvas to its state from before
	// this frame was drawn.
	DisposalRestorePrevious DisposalMethod = 3
)

// String returns a short name for the disposal method.
func (d DisposalMethod) String() string {
	switch d {
	case DisposalKeep:
		return "keep"
	case DisposalRestoreBackground:
		return "restore-background"
	case DisposalRestorePrevious:
		return "restore-previous"
	}
	return "unknown"
}

// NoFrame is returned by Codec.RequiredFrame for frames that can be
// decoded without reference to any earlier frame.
const NoFrame = -1

// RepetitionCountInfinite makes the animation loop forever.
const RepetitionCountInfinite = -1

// Codec decodes the individual frames of an encoded animation. It is the
// collaborator an AnimatedImage drives; implementations for GIF and WebP
// are provided in the gifcodec and webpcodec subpackages.
type Codec interface {
	// Size returns the canvas dimensions frames are composited at.
	Size() image.Point

	// FrameCount returns the number of frames in the animation.
	FrameCount() int

	// FrameDuration returns how long frame index is displayed.
	// Non-positive durations are replaced with a default by the engine.
	FrameDuration(index int) time.Duration

	// Disposal returns the disposal method that applies after frame
	// index has been shown.
	Disposal(index int) DisposalMethod

	// RequiredFrame returns the index of the frame whose composited
	// canvas frame index is decoded on top of, or NoFrame if the frame
	// is independent.
	RequiredFrame(index int) int

	// DecodeFrame composites frame index onto dst. The canvas passed in
	// already reflects the disposal of every earlier frame; the codec
	// applies only its own blend and delta rules. DecodeFrame must
	// either composite the frame completely or return an error leaving
	// dst unchanged.
	DecodeFrame(index int, dst *image.NRGBA) error

	// RepetitionCount returns the number of full passes encoded in the
	// stream, or RepetitionCountInfinite. It is used as the default
	// until SetRepetitionCount overrides it.
	RepetitionCount() int
}
