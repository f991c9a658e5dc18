package animate

import "image"

// maxPixels bounds frame buffer allocation (256 MiB of RGBA).
const maxPixels = 1 << 26

// newBuffer allocates a transparent canvas of the given size. It fails
// with ErrAllocation rather than panicking on absurd dimensions.
func newBuffer(size image.Point) (*image.NRGBA, error) {
	if size.X <= 0 || size.Y <= 0 || int64(size.X)*int64(size.Y) > maxPixels {
		return nil, ErrAllocation
	}
	return image.NewNRGBA(image.Rect(0, 0, size.X, size.Y)), nil
}

// frame is one of the two live raster buffers owned by an AnimatedImage:
// the active composited canvas, and the saved copy used to undo a
// restore-previous disposal. index records which source frame the canvas
// reflects (NoFrame before the first decode), disposal the method that
// applies after that frame.
type frame struct {
	bitmap   *image.NRGBA
	index    int
	disposal DisposalMethod
}

// copyTo duplicates the pixel data, frame index and disposal metadata
// into dst, allocating dst's bitmap if needed. On allocation failure dst
// is left unchanged.
func (f *frame) copyTo(dst *frame) error {
	if dst.bitmap == nil || !dst.bitmap.Bounds().Eq(f.bitmap.Bounds()) {
		b, err := newBuffer(f.bitmap.Bounds().Size())
		if err != nil {
			return err
		}
		dst.bitmap = b
	}
	copy(dst.bitmap.Pix, f.bitmap.Pix)
	dst.index = f.index
	dst.disposal = f.disposal
	return nil
}

// clearCanvas fills the entire canvas with transparent (0,0,0,0).
func clearCanvas(canvas *image.NRGBA) {
	for i := range canvas.Pix {
		canvas.Pix[i] = 0
	}
}
