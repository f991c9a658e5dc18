package animate

import (
	"errors"
	"fmt"
	"image"
	"time"

	"golang.org/x/image/draw"
)

var (
	ErrNilCodec    = errors.New("animate: nil codec")
	ErrNoFrames    = errors.New("animate: codec reports no frames")
	ErrAllocation  = errors.New("animate: cannot allocate frame buffer")
	ErrScaledSize  = errors.New("animate: invalid scaled size")
	ErrInvalidCrop = errors.New("animate: crop rectangle outside scaled image")
)

// DecodeError reports a frame that could not be decoded during playback.
// The animation stops at the last good frame when one occurs.
type DecodeError struct {
	Index int
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("animate: decoding frame %d: %v", e.Index, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// NotRunning is returned by Update when the animation is stopped or has
// finished.
const NotRunning time.Duration = -2 * time.Millisecond

// defaultFrameDuration replaces non-positive frame durations reported by
// the codec, matching common browser handling of 0-delay frames. Without
// it a zero-duration frame would let Update spin through entire
// repetitions in a single call.
const defaultFrameDuration = 100 * time.Millisecond

// Options configures construction beyond the codec's native output.
// The zero value of each field means "default".
type Options struct {
	// ScaledSize is the size the composited canvas is scaled to before
	// cropping. Zero means the codec's native size.
	ScaledSize image.Point

	// CropRect is the rectangle of the scaled image retained for output.
	// Zero means the whole scaled image.
	CropRect image.Rectangle

	// PostProcess, if non-nil, is applied to the scaled and cropped
	// output immediately before each draw.
	PostProcess func(*image.NRGBA)

	// Scaler interpolates when ScaledSize differs from the native size.
	// Nil means draw.ApproxBiLinear.
	Scaler draw.Scaler
}

// AnimatedImage plays a multi-frame raster image over caller-supplied
// time. It owns two frame buffers (the composited canvas and a saved copy
// for restore-previous disposal) and the codec handle passed to New.
//
// An AnimatedImage is not safe for concurrent use. Update, Start, Stop,
// Reset, SetRepetitionCount and Draw must all be called from a single
// goroutine, typically the rendering loop.
type AnimatedImage struct {
	codec Codec

	nativeSize  image.Point
	scaledSize  image.Point
	cropRect    image.Rectangle
	postProcess func(*image.NRGBA)
	scaler      draw.Scaler
	frameCount  int
	// simple means no crop, scale or post-process, so the canvas can be
	// drawn directly with no intermediate transform pass.
	simple  bool
	scratch *image.NRGBA // transform buffer, nil when simple

	finished  bool
	running   bool
	now       time.Duration
	remaining time.Duration

	active  frame
	restore frame

	repetitionCount      int
	repetitionsCompleted int

	err error
}

// New creates an AnimatedImage that plays at the codec's native size with
// no cropping or post-processing. The codec's ownership transfers to the
// returned image. Frame 0 is decoded eagerly, so Draw produces a valid
// image before Start is ever called. The animation does not advance until
// Start.
func New(codec Codec) (*AnimatedImage, error) {
	return NewWithOptions(codec, nil)
}

// NewWithOptions is New with scaling, cropping and post-processing
// applied to the composited output. It returns an error and no partial
// object if the configuration is invalid, a buffer cannot be allocated,
// or frame 0 cannot be decoded.
func NewWithOptions(codec Codec, opts *Options) (*AnimatedImage, error) {
	if codec == nil {
		return nil, ErrNilCodec
	}
	n := codec.FrameCount()
	if n <= 0 {
		return nil, ErrNoFrames
	}
	img := &AnimatedImage{
		codec:           codec,
		nativeSize:      codec.Size(),
		frameCount:      n,
		repetitionCount: codec.RepetitionCount(),
		scaler:          draw.ApproxBiLinear,
	}
	img.scaledSize = img.nativeSize
	if opts != nil {
		if opts.ScaledSize != (image.Point{}) {
			img.scaledSize = opts.ScaledSize
		}
		img.cropRect = opts.CropRect
		img.postProcess = opts.PostProcess
		if opts.Scaler != nil {
			img.scaler = opts.Scaler
		}
	}
	if img.scaledSize.X <= 0 || img.scaledSize.Y <= 0 {
		return nil, ErrScaledSize
	}
	scaledRect := image.Rectangle{Max: img.scaledSize}
	if img.cropRect == (image.Rectangle{}) {
		img.cropRect = scaledRect
	}
	if img.cropRect.Empty() || !img.cropRect.In(scaledRect) {
		return nil, ErrInvalidCrop
	}

	img.simple = img.scaledSize == img.nativeSize &&
		img.cropRect == scaledRect &&
		img.postProcess == nil

	buf, err := newBuffer(img.nativeSize)
	if err != nil {
		return nil, err
	}
	img.active.bitmap = buf
	if !img.simple {
		img.scratch, err = newBuffer(img.scaledSize)
		if err != nil {
			return nil, err
		}
	}

	if err := img.Reset(); err != nil {
		return nil, err
	}
	return img, nil
}

// IsRunning reports whether the animation is active: started and not yet
// finished. If true, Update advances it.
func (img *AnimatedImage) IsRunning() bool { return img.running && !img.finished }

// IsFinished reports whether the animation has completed, either because
// all repetitions played or because a decode failed (see Err). It is
// cleared only by Reset.
func (img *AnimatedImage) IsFinished() bool { return img.finished }

// Err returns the playback error that finished the animation, or nil.
// It is cleared by Reset.
func (img *AnimatedImage) Err() error { return img.err }

// Start starts or resumes the animation. It has no effect once the
// animation has finished until Reset is called.
func (img *AnimatedImage) Start() {
	if img.finished {
		return
	}
	img.running = true
}

// Stop stops the animation. The current frame remains displayed and
// Update has no effect until Start is called again.
func (img *AnimatedImage) Stop() { img.running = false }

// Reset rewinds the animation to the beginning: frame 0 is decoded
// again, the repetition counter and clock are cleared, and a finished
// animation becomes restartable. The running state is not changed. On
// failure the animation is marked finished with the prior canvas intact.
func (img *AnimatedImage) Reset() error {
	img.finished = false
	img.err = nil
	img.now = 0
	img.repetitionsCompleted = 0
	img.restore.index = NoFrame
	img.active.index = NoFrame
	// Frame 0 may itself carry restore-previous disposal; its rewind
	// target is the blank canvas that precedes it.
	if img.codec.Disposal(0) == DisposalRestorePrevious {
		clearCanvas(img.active.bitmap)
		if err := img.active.copyTo(&img.restore); err != nil {
			img.finish(err)
			return err
		}
	}
	if err := img.decodeFrame(0); err != nil {
		img.finish(err)
		return err
	}
	img.remaining = img.frameDuration(0)
	return nil
}

// SetRepetitionCount overrides the codec's repetition count. count is
// the number of full passes to play before finishing;
// RepetitionCountInfinite loops forever. The new value is consulted the
// next time the animation wraps; it does not retroactively finish or
// unfinish the animation.
func (img *AnimatedImage) SetRepetitionCount(count int) { img.repetitionCount = count }

// RepetitionCount returns the configured repetition count.
func (img *AnimatedImage) RepetitionCount() int { return img.repetitionCount }

// Update advances the animation to the given elapsed time, decoding
// frames as needed, and returns the time at which the next frame change
// is due. The host should call Update again no later than that. It
// returns NotRunning if the animation is stopped or finished, including
// when it finishes during this call.
//
// When the elapsed time spans several frames, each skipped frame's
// disposal is replayed in sequence so the composited canvas stays
// correct; only the final frame remains visible.
func (img *AnimatedImage) Update(now time.Duration) time.Duration {
	if !img.IsRunning() {
		return NotRunning
	}
	elapsed := now - img.now
	img.now = now

	for elapsed >= img.remaining {
		next := img.active.index + 1
		if next == img.frameCount {
			next = 0
			img.repetitionsCompleted++
			if img.repetitionCount >= 0 && img.repetitionsCompleted >= img.repetitionCount {
				return img.finish(nil)
			}
		}
		if err := img.advanceTo(next); err != nil {
			return img.finish(err)
		}
		elapsed -= img.remaining
		img.remaining = img.frameDuration(next)
	}

	img.remaining -= elapsed
	return img.now + img.remaining
}

// finish stops the animation permanently, retaining err (if any) for Err.
func (img *AnimatedImage) finish(err error) time.Duration {
	img.finished = true
	if img.err == nil {
		img.err = err
	}
	return NotRunning
}

// advanceTo supersedes the current frame with frame next: the current
// frame's disposal is applied to the canvas, a restore snapshot is taken
// if next will need one, and next is decoded on top.
func (img *AnimatedImage) advanceTo(next int) error {
	switch img.active.disposal {
	case DisposalRestoreBackground:
		// The whole canvas, not just the superseded frame's rectangle:
		// frame rectangles are the codec's private knowledge, and the next
		// decode recomposites everything that should survive.
		clearCanvas(img.active.bitmap)
	case DisposalRestorePrevious:
		if err := img.restore.copyTo(&img.active); err != nil {
			return err
		}
	}
	// Snapshot the canvas next will be drawn over, so it can be rewound
	// when next is itself superseded.
	if img.codec.Disposal(next) == DisposalRestorePrevious {
		if err := img.active.copyTo(&img.restore); err != nil {
			return err
		}
	}
	return img.decodeFrame(next)
}

// decodeFrame composites frame index onto the active canvas, first
// checking that the canvas holds the reference frame the codec needs.
func (img *AnimatedImage) decodeFrame(index int) error {
	if req := img.codec.RequiredFrame(index); req != NoFrame && req != img.active.index {
		return &DecodeError{
			Index: index,
			Err:   fmt.Errorf("required frame %d not composited (canvas holds %d)", req, img.active.index),
		}
	}
	if err := img.codec.DecodeFrame(index, img.active.bitmap); err != nil {
		return &DecodeError{Index: index, Err: err}
	}
	img.active.index = index
	img.active.disposal = img.codec.Disposal(index)
	return nil
}

// frameDuration returns the codec's duration for frame index, clamped to
// defaultFrameDuration when non-positive.
func (img *AnimatedImage) frameDuration(index int) time.Duration {
	if d := img.codec.FrameDuration(index); d > 0 {
		return d
	}
	return defaultFrameDuration
}

// Bounds returns the composited output rectangle, post-scale and
// post-crop, anchored at the origin.
func (img *AnimatedImage) Bounds() image.Rectangle {
	if img.simple {
		return image.Rectangle{Max: img.nativeSize}
	}
	return image.Rect(0, 0, img.cropRect.Dx(), img.cropRect.Dy())
}

// Draw renders the current composited frame into dst at dst's origin,
// applying the scale, crop and post-process configured at construction.
// It reads playback state but never changes it, and always renders the
// last good frame even after a decode failure.
func (img *AnimatedImage) Draw(dst draw.Image) {
	if img.simple {
		draw.Copy(dst, dst.Bounds().Min, img.active.bitmap, img.active.bitmap.Bounds(), draw.Src, nil)
		return
	}
	if img.scaledSize == img.nativeSize {
		draw.Copy(img.scratch, img.scratch.Bounds().Min, img.active.bitmap, img.active.bitmap.Bounds(), draw.Src, nil)
	} else {
		img.scaler.Scale(img.scratch, img.scratch.Bounds(), img.active.bitmap, img.active.bitmap.Bounds(), draw.Src, nil)
	}
	view := img.scratch.SubImage(img.cropRect).(*image.NRGBA)
	if img.postProcess != nil {
		img.postProcess(view)
	}
	draw.Copy(dst, dst.Bounds().Min, view, img.cropRect, draw.Src, nil)
}
