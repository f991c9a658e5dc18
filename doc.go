// Package animate provides a time-driven playback engine for multi-frame
// raster images such as animated GIF and WebP.
//
// The engine does not parse image formats itself. It is constructed with a
// Codec, which knows how to decode individual frames, and it takes care of
// everything that happens between frames: deciding which frame should be
// visible at a given time, replaying inter-frame disposal rules so the
// composited canvas stays correct across arbitrary pause/resume/reset
// patterns, counting repetitions, and reporting completion.
//
// Codec implementations for the standard library's image/gif and for
// animated WebP (via github.com/deepteams/webp) live in the gifcodec and
// webpcodec subpackages.
//
// Basic usage:
//
//	codec, err := gifcodec.Decode(r)
//	img, err := animate.New(codec)
//	img.Start()
//	next := img.Update(elapsed) // returns when the next frame is due
//	img.Draw(dst)
//
// The caller owns the clock: Update is handed the current elapsed time and
// returns the time at which the next frame change is due, or NotRunning if
// the animation is stopped or finished. An AnimatedImage is not safe for
// concurrent use; all methods must be called from a single goroutine.
package animate
