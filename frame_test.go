package animate

import (
	"image"
	"image/color"
	"testing"
)

func solidNRGBA(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestNewBuffer(t *testing.T) {
	buf, err := newBuffer(image.Pt(4, 6))
	if err != nil {
		t.Fatalf("newBuffer: %v", err)
	}
	if got, want := buf.Bounds(), image.Rect(0, 0, 4, 6); got != want {
		t.Errorf("bounds = %v, want %v", got, want)
	}
	// Fresh buffers are transparent.
	if got := buf.NRGBAAt(2, 3); got != (color.NRGBA{}) {
		t.Errorf("pixel = %v, want transparent", got)
	}
}

func TestNewBufferInvalid(t *testing.T) {
	tests := []struct {
		name string
		size image.Point
	}{
		{"zero width", image.Pt(0, 4)},
		{"negative height", image.Pt(4, -1)},
		{"too many pixels", image.Pt(1 << 14, 1 << 14)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := newBuffer(tt.size); err != ErrAllocation {
				t.Errorf("newBuffer(%v) = %v, want ErrAllocation", tt.size, err)
			}
		})
	}
}

func TestFrameCopyTo(t *testing.T) {
	src := frame{
		bitmap:   solidNRGBA(4, 4, color.NRGBA{R: 255, A: 255}),
		index:    3,
		disposal: DisposalRestorePrevious,
	}
	var dst frame
	if err := src.copyTo(&dst); err != nil {
		t.Fatalf("copyTo: %v", err)
	}
	if dst.index != 3 || dst.disposal != DisposalRestorePrevious {
		t.Errorf("metadata = (%d, %v), want (3, restore-previous)", dst.index, dst.disposal)
	}
	if &src.bitmap.Pix[0] == &dst.bitmap.Pix[0] {
		t.Fatal("copyTo shared pixel data instead of duplicating it")
	}

	// Mutating the source must not affect the copy.
	src.bitmap.SetNRGBA(0, 0, color.NRGBA{B: 255, A: 255})
	if got := dst.bitmap.NRGBAAt(0, 0); got != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("dst pixel = %v after src mutation, want red", got)
	}
}

func TestFrameCopyToReusesBuffer(t *testing.T) {
	src := frame{bitmap: solidNRGBA(4, 4, color.NRGBA{G: 255, A: 255}), index: 1, disposal: DisposalKeep}
	dst := frame{bitmap: solidNRGBA(4, 4, color.NRGBA{})}
	before := &dst.bitmap.Pix[0]
	if err := src.copyTo(&dst); err != nil {
		t.Fatalf("copyTo: %v", err)
	}
	if &dst.bitmap.Pix[0] != before {
		t.Error("copyTo reallocated a correctly sized destination buffer")
	}
	if got := dst.bitmap.NRGBAAt(2, 2); got != (color.NRGBA{G: 255, A: 255}) {
		t.Errorf("pixel = %v, want green", got)
	}
}

func TestFrameCopyToAllocationFailure(t *testing.T) {
	// A source whose declared bounds exceed the allocation limit forces
	// the copy to fail before anything is written.
	src := frame{
		bitmap:   &image.NRGBA{Rect: image.Rect(0, 0, 1<<14, 1<<14)},
		index:    7,
		disposal: DisposalKeep,
	}
	dst := frame{
		bitmap:   solidNRGBA(2, 2, color.NRGBA{B: 255, A: 255}),
		index:    1,
		disposal: DisposalRestoreBackground,
	}
	if err := src.copyTo(&dst); err != ErrAllocation {
		t.Fatalf("copyTo = %v, want ErrAllocation", err)
	}
	// Destination is untouched on failure.
	if dst.index != 1 || dst.disposal != DisposalRestoreBackground {
		t.Errorf("metadata = (%d, %v), want (1, restore-background)", dst.index, dst.disposal)
	}
	if got := dst.bitmap.NRGBAAt(1, 1); got != (color.NRGBA{B: 255, A: 255}) {
		t.Errorf("pixel = %v, want blue (unchanged)", got)
	}
}

func TestClearCanvas(t *testing.T) {
	canvas := solidNRGBA(3, 3, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	clearCanvas(canvas)
	for i, p := range canvas.Pix {
		if p != 0 {
			t.Fatalf("Pix[%d] = %d, want 0", i, p)
		}
	}
}

func TestDisposalMethodString(t *testing.T) {
	tests := []struct {
		d    DisposalMethod
		want string
	}{
		{DisposalKeep, "keep"},
		{DisposalRestoreBackground, "restore-background"},
		{DisposalRestorePrevious, "restore-previous"},
		{DisposalMethod(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.d.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", int(tt.d), got, tt.want)
		}
	}
}
