package render

import (
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	tlerrors "tlog.app/go/errors"

	"mathmap/internal/mathlib"
)

// Drawable converts img to the 8-bit RGBA layout the sampler reads
func Drawable(img image.Image) *mathlib.Drawable {
	b := img.Bounds()
	n, ok := img.(*image.NRGBA)
	if !ok || b.Min != (image.Point{}) {
		n = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(n, n.Bounds(), img, b.Min, draw.Src)
	}
	return &mathlib.Drawable{
		Width:     b.Dx(),
		Height:    b.Dy(),
		RowStride: n.Stride,
		Pix:       n.Pix,
	}
}

// LoadImage decodes a png, jpeg, gif, bmp, tiff or webp file
func LoadImage(path string) (*mathlib.Drawable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, tlerrors.Wrap(err, "open image")
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, tlerrors.Wrap(err, "decode %s", path)
	}

	log.Debugf("loaded %s image %s (%dx%d)", format, path, img.Bounds().Dx(), img.Bounds().Dy())
	return Drawable(img), nil
}

// SaveImage encodes img in the format its extension names; png is the
// default
func SaveImage(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return tlerrors.Wrap(err, "create image")
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = tlerrors.Wrap(cerr, "close %s", path)
		}
	}()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 95})
	case ".bmp":
		err = bmp.Encode(f, img)
	case ".tif", ".tiff":
		err = tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		return tlerrors.Wrap(err, "encode %s", path)
	}
	return nil
}
