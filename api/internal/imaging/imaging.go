// Package imaging reproduces the pre-OCR pipeline the recognizer was tuned
// for: grayscale, invert (the drawing canvas is white-on-black), and resize
// to a fixed 800x600 working size.
package imaging

import (
	"bytes"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

const (
	TargetWidth  = 800
	TargetHeight = 600
)

// PrepareForOCR decodes PNG/JPEG bytes and runs the full pipeline, returning
// PNG bytes for the recognizer. Undecodable input is handed back untouched so
// the OCR service can still try.
func PrepareForOCR(raw []byte) []byte {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return raw
	}
	out := Resize(Invert(Grayscale(src)), TargetWidth, TargetHeight)

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return raw
	}
	return buf.Bytes()
}

func Grayscale(src image.Image) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x, y, color.GrayModel.Convert(src.At(x, y)))
		}
	}
	return dst
}

func Invert(src *image.Gray) *image.Gray {
	dst := image.NewGray(src.Bounds())
	for i, v := range src.Pix {
		dst.Pix[i] = 255 - v
	}
	return dst
}

func Resize(src image.Image, w, h int) image.Image {
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
