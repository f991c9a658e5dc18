// Command animplay inspects and unrolls animated GIF and WebP images.
//
// Usage:
//
//	animplay info <input>                Display animation metadata
//	animplay dump [options] <input>      Write each frame as a PNG (use "-" for stdin)
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/deepteams/animate"
	"github.com/deepteams/animate/gifcodec"
	"github.com/deepteams/animate/webpcodec"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "info":
		err = runInfo(os.Args[2:])
	case "dump":
		err = runDump(os.Args[2:])
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "animplay: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "animplay: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  animplay info <input>                Display animation metadata
  animplay dump [options] <input>      Write each frame as a PNG

Use "-" as input to read from stdin.

Run "animplay <command> -h" for command-specific options.
`)
}

// openInput returns an io.ReadCloser for the given path.
// If path is "-", stdin is returned (caller should not close).
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// openCodec reads the whole input and picks a codec by sniffing the
// container magic.
func openCodec(path string) (animate.Codec, error) {
	in, err := openInput(path)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(in)
	in.Close()
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	switch {
	case bytes.HasPrefix(data, []byte("GIF8")):
		return gifcodec.Decode(bytes.NewReader(data))
	case len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return webpcodec.Decode(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unrecognized input format (want GIF or WebP)")
	}
}

// --- info ---

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	frames := fs.Bool("frames", false, "list per-frame duration and disposal")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("info: missing input file\nUsage: animplay info [options] <input>")
	}
	inputPath := fs.Arg(0)

	codec, err := openCodec(inputPath)
	if err != nil {
		return fmt.Errorf("info: %w", err)
	}

	name := inputPath
	if inputPath == "-" {
		name = "<stdin>"
	}

	size := codec.Size()
	fmt.Printf("File:        %s\n", name)
	fmt.Printf("Dimensions:  %d x %d\n", size.X, size.Y)
	fmt.Printf("Frames:      %d\n", codec.FrameCount())
	loop := "infinite"
	if n := codec.RepetitionCount(); n != animate.RepetitionCountInfinite {
		loop = strconv.Itoa(n)
	}
	fmt.Printf("Repetitions: %s\n", loop)

	if *frames {
		for i := 0; i < codec.FrameCount(); i++ {
			fmt.Printf("  frame %3d: %8s  %s\n", i, codec.FrameDuration(i), codec.Disposal(i))
		}
	}

	if inputPath != "-" {
		fi, err := os.Stat(inputPath)
		if err == nil {
			fmt.Printf("File size:   %d bytes\n", fi.Size())
		}
	}

	return nil
}

// --- dump ---

func runDump(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	outDir := fs.String("o", ".", "output directory for frame PNGs")
	scale := fs.String("scale", "", "scale output to WxH (e.g. 320x240)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("dump: missing input file\nUsage: animplay dump [options] <input>")
	}
	inputPath := fs.Arg(0)

	var opts animate.Options
	if *scale != "" {
		size, err := parseScale(*scale)
		if err != nil {
			return fmt.Errorf("dump: %w", err)
		}
		opts.ScaledSize = size
	}

	codec, err := openCodec(inputPath)
	if err != nil {
		return fmt.Errorf("dump: %w", err)
	}

	img, err := animate.NewWithOptions(codec, &opts)
	if err != nil {
		return fmt.Errorf("dump: %w", err)
	}

	base := "frame"
	if inputPath != "-" {
		base = strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	}

	// Unroll a single pass, stepping the clock to each frame's due time.
	img.SetRepetitionCount(1)
	img.Start()
	next := img.Update(0)
	for i := 0; ; i++ {
		outputPath := filepath.Join(*outDir, fmt.Sprintf("%s-%03d.png", base, i))
		if err := writePNG(outputPath, img); err != nil {
			return fmt.Errorf("dump: %w", err)
		}
		if next = img.Update(next); next == animate.NotRunning {
			if err := img.Err(); err != nil {
				return fmt.Errorf("dump: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Wrote %d frames to %s\n", i+1, *outDir)
			return nil
		}
	}
}

func writePNG(path string, img *animate.AnimatedImage) error {
	dst := image.NewNRGBA(img.Bounds())
	img.Draw(dst)

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(out, dst); err != nil {
		out.Close()
		os.Remove(path)
		return err
	}
	return out.Close()
}

// parseScale parses a WxH size like "320x240".
func parseScale(s string) (image.Point, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return image.Point{}, fmt.Errorf("bad scale %q (want WxH)", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return image.Point{}, fmt.Errorf("bad scale width %q", w)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return image.Point{}, fmt.Errorf("bad scale height %q", h)
	}
	if width <= 0 || height <= 0 {
		return image.Point{}, fmt.Errorf("bad scale %q (dimensions must be positive)", s)
	}
	return image.Pt(width, height), nil
}
