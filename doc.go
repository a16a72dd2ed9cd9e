// Package watermark stamps a text watermark onto a raster image.
//
// The text is placed in one of four corners with a pixel padding, rendered in
// a caller supplied color and font, and the image is re-encoded in the codec
// matching the input file extension (.png, .jpg/.jpeg or .bmp). Small images
// can be skipped entirely with a pixel-count threshold. Decoding, text
// measurement, drawing and encoding go through the Renderer interface; the
// default Raster renderer uses golang.org/x/image and the embedded Go fonts,
// so the package works entirely in memory.
package watermark
