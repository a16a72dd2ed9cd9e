package main

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	watermark "github.com/gcslaoli/text-watermark-go"
)

// stampOptions are the flags of the root command.
type stampOptions struct {
	Input          string
	InputBase64    string
	Output         string
	OutputBase64   bool
	Ext            string
	Text           string
	Color          string
	Corner         string
	Padding        int
	FontSize       int
	FontFamily     string
	FontStyle      string
	SkipSmall      bool
	SmallThreshold int
	Plan           bool
}

var opts stampOptions

// isTerminal reports whether f is attached to a terminal.
var isTerminal = func(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// stampFlagSet binds the watermark flags to o.
func stampFlagSet(o *stampOptions) *pflag.FlagSet {
	fs := &pflag.FlagSet{}
	fs.StringVar(&o.Input, "in", "", "path to the source image (png/jpg/bmp)")
	fs.StringVar(&o.InputBase64, "inbase64", "", "base64 image input (optionally data URL)")
	fs.StringVar(&o.Output, "out", "", "output path, - for stdout (defaults to <name>_watermarked<ext>)")
	fs.BoolVar(&o.OutputBase64, "outbase64", false, "write the watermarked image as base64 to stdout")
	fs.StringVar(&o.Ext, "ext", "", "output extension hint, eg .png (defaults to the input extension)")
	fs.StringVar(&o.Text, "text", "", "watermark text (required)")
	fs.StringVar(&o.Color, "color", "white", "text color: #rrggbb[aa], an SVG color name, or auto")
	fs.StringVar(&o.Corner, "corner", watermark.BottomRight.String(), "top-left|top-right|bottom-left|bottom-right")
	fs.IntVar(&o.Padding, "padding", watermark.DefaultPadding, "inset from the corner in pixels")
	fs.IntVar(&o.FontSize, "font-size", watermark.DefaultFontSize, "font size in pixels")
	fs.StringVar(&o.FontFamily, "font-family", "", "sans-serif|monospace|basic (defaults to bold sans-serif)")
	fs.StringVar(&o.FontStyle, "font-style", "", "regular|bold|italic|bold-italic")
	fs.BoolVar(&o.SkipSmall, "skip-small", false, "leave images below --small-threshold pixels untouched")
	fs.IntVar(&o.SmallThreshold, "small-threshold", 0, "pixel count (width*height) under which images are skipped")
	fs.BoolVar(&o.Plan, "plan", false, "print the watermark placement without writing an image")
	return fs
}

// request converts the flags into a watermark request and skip policy.
func (o *stampOptions) request() (watermark.Request, watermark.SkipPolicy, error) {
	policy := watermark.SkipPolicy{
		SkipSmallImages:          o.SkipSmall,
		SmallImagePixelThreshold: o.SmallThreshold,
	}

	corner, err := watermark.ParseCorner(o.Corner)
	if err != nil {
		return watermark.Request{}, policy, err
	}

	reqOpts := []watermark.Option{
		watermark.WithCorner(corner),
		watermark.WithPadding(o.Padding),
		watermark.WithFontSize(o.FontSize),
	}

	var fill color.Color
	if strings.EqualFold(o.Color, "auto") {
		reqOpts = append(reqOpts, watermark.WithAutoContrast())
	} else if fill, err = watermark.ParseColor(o.Color); err != nil {
		return watermark.Request{}, policy, err
	}

	if o.FontFamily != "" || o.FontStyle != "" {
		family := o.FontFamily
		if family == "" {
			family = watermark.FamilySansSerif
		}
		style, err := watermark.ParseStyle(o.FontStyle)
		if err != nil {
			return watermark.Request{}, policy, err
		}
		reqOpts = append(reqOpts, watermark.WithFont(watermark.Font{
			Family: family,
			Size:   float64(o.FontSize),
			Style:  style,
		}))
	}

	req, err := watermark.NewRequest(o.Text, fill, reqOpts...)
	return req, policy, err
}

// stamp runs the root command.
func stamp(stdout, stderr io.Writer, o *stampOptions) error {
	if o.Input == "" && o.InputBase64 == "" {
		return errors.New("one of --in or --inbase64 is required")
	}

	req, policy, err := o.request()
	if err != nil {
		return err
	}

	ext := o.Ext
	if ext == "" && o.Input != "" {
		ext = filepath.Ext(o.Input)
	}
	ext = strings.ToLower(ext)

	if o.Plan {
		return plan(stdout, o, req, policy)
	}

	if o.InputBase64 != "" {
		return stampBase64(stdout, stderr, o, ext, req, policy)
	}

	inFile, err := os.Open(o.Input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}

	wm := watermark.NewWatermarker(inFile, ext, nil)
	defer wm.Close()
	wm.SkipSmallImages = policy.SkipSmallImages
	wm.SmallImagePixelThreshold = policy.SmallImagePixelThreshold

	res, err := wm.AddWatermark(req)
	if err != nil {
		return err
	}
	if res.Skipped {
		fmt.Fprintf(stderr, "%s (%dx%d) is below the skip threshold. Skipping watermark.\n",
			o.Input, res.Info.Image.Dx(), res.Info.Image.Dy())
		return nil
	}

	return writeResult(stdout, stderr, o, ext, res)
}

// plan prints where the watermark would be drawn without writing an image.
func plan(stdout io.Writer, o *stampOptions, req watermark.Request, policy watermark.SkipPolicy) error {
	var (
		data   []byte
		source = o.Input
		err    error
	)
	if o.InputBase64 != "" {
		data, _, err = watermark.DecodeBase64(o.InputBase64)
		source = "base64 input"
	} else {
		data, err = os.ReadFile(o.Input)
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	info, skipped, err := watermark.NewEngine(nil).Plan(data, req, policy)
	if err != nil {
		return err
	}
	if skipped {
		fmt.Fprintf(stdout, "%s (%dx%d) is below the skip threshold.\n", source, info.Image.Dx(), info.Image.Dy())
		return nil
	}
	fmt.Fprintf(stdout, "%s (%dx%d): text %dx%d at %v (%v)\n", source, info.Image.Dx(), info.Image.Dy(),
		info.Text.Dx(), info.Text.Dy(), info.Text.Min, info.Corner)
	return nil
}

func stampBase64(stdout, stderr io.Writer, o *stampOptions, ext string, req watermark.Request, policy watermark.SkipPolicy) error {
	encoded, res, err := watermark.ApplyBase64(o.InputBase64, ext, req, policy)
	if err != nil {
		return err
	}
	if res.Skipped {
		fmt.Fprintf(stderr, "base64 input (%dx%d) is below the skip threshold. Skipping watermark.\n",
			res.Info.Image.Dx(), res.Info.Image.Dy())
		return nil
	}
	if o.OutputBase64 || o.Output == "" {
		fmt.Fprintln(stdout, encoded)
		return nil
	}
	return writeResult(stdout, stderr, o, ext, res)
}

// writeResult writes res to --out, stdout, or the default output path.
func writeResult(stdout, stderr io.Writer, o *stampOptions, ext string, res watermark.Result) error {
	if o.OutputBase64 {
		fmt.Fprintln(stdout, watermark.EncodeBase64(res))
		return nil
	}

	if o.Output == "-" {
		if f, ok := stdout.(*os.File); ok && isTerminal(f) {
			return errors.New("refusing to write binary image data to a terminal")
		}
		_, err := stdout.Write(res.Data)
		return err
	}

	outPath := o.Output
	if outPath == "" {
		base := strings.TrimSuffix(filepath.Base(o.Input), filepath.Ext(o.Input))
		outPath = filepath.Join(filepath.Dir(o.Input), base+"_watermarked"+ext)
	}

	if err := os.WriteFile(outPath, res.Data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	fmt.Fprintf(stderr, "Processed %s -> %s (%v) [text %dx%d at %v]\n", o.Input, outPath, res.Codec,
		res.Info.Text.Dx(), res.Info.Text.Dy(), res.Info.Text.Min)
	return nil
}
