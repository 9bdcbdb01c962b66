package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrNoData is returned when a decoded image has no pixels.
var ErrNoData = errors.New("texture: image has no data")

// Image is decoded pixel data in tightly packed rows, top row first unless flipped.
type Image struct {
	Pix      []byte
	Width    int
	Height   int
	Channels int
}

// Complete reports whether Pix holds every pixel the dimensions promise.
func (img Image) Complete() bool {
	return img.Width > 0 && img.Height > 0 && img.Channels > 0 &&
		len(img.Pix) >= img.Width*img.Height*img.Channels
}

// Decoder turns an image file into pixel data.
type Decoder interface {
	Decode(path string, flipVertically bool) (Image, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(path string, flipVertically bool) (Image, error)

func (f DecoderFunc) Decode(path string, flipVertically bool) (Image, error) {
	return f(path, flipVertically)
}

// FileDecoder decodes PNG, JPEG, GIF, BMP, TIFF, WebP and TGA files from disk.
type FileDecoder struct{}

// Decode reads path and returns its pixels with the file's native channel count.
func (FileDecoder) Decode(path string, flipVertically bool) (Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("read texture %s: %w", path, err)
	}
	img, err := DecodeBytes(data, filepath.Ext(path))
	if err != nil {
		return Image{}, fmt.Errorf("decode texture %s: %w", path, err)
	}
	if flipVertically {
		img.FlipVertical()
	}
	return img, nil
}

// DecodeBytes decodes an in-memory image. ext is used only for formats
// without a magic number (TGA).
func DecodeBytes(data []byte, ext string) (Image, error) {
	if len(data) == 0 {
		return Image{}, ErrNoData
	}

	kind, _ := filetype.Match(data)
	if kind == filetype.Unknown {
		if strings.EqualFold(ext, ".tga") {
			return decodeTGA(data)
		}
		return Image{}, fmt.Errorf("unrecognized image format (ext %q)", ext)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("%s: %w", kind.Extension, err)
	}
	return FromImage(src), nil
}

// FromImage converts a decoded image to packed pixels. Greyscale sources keep
// one channel, opaque colour sources three and everything else four.
func FromImage(src image.Image) Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	channels := 4
	switch src.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		channels = 1
	default:
		if o, ok := src.(interface{ Opaque() bool }); ok && o.Opaque() {
			channels = 3
		}
	}

	img := Image{
		Pix:      make([]byte, 0, w*h*channels),
		Width:    w,
		Height:   h,
		Channels: channels,
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			switch channels {
			case 1:
				img.Pix = append(img.Pix, c.R)
			case 3:
				img.Pix = append(img.Pix, c.R, c.G, c.B)
			default:
				img.Pix = append(img.Pix, c.R, c.G, c.B, c.A)
			}
		}
	}
	return img
}

// FlipVertical reverses the row order in place.
func (img *Image) FlipVertical() {
	rowLen := img.Width * img.Channels
	if rowLen == 0 || len(img.Pix) < rowLen*img.Height {
		return
	}
	tmp := make([]byte, rowLen)
	for top, bottom := 0, img.Height-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := img.Pix[top*rowLen : (top+1)*rowLen]
		z := img.Pix[bottom*rowLen : (bottom+1)*rowLen]
		copy(tmp, a)
		copy(a, z)
		copy(z, tmp)
	}
}

// Convert repacks the pixels to the given channel count. Grey sources fill
// every colour channel; a missing alpha channel is opaque. An incomplete
// image is returned unchanged.
func (img Image) Convert(channels int) Image {
	if channels == img.Channels || channels <= 0 || !img.Complete() {
		return img
	}
	n := img.Width * img.Height
	out := Image{
		Pix:      make([]byte, n*channels),
		Width:    img.Width,
		Height:   img.Height,
		Channels: channels,
	}
	for i := 0; i < n; i++ {
		src := img.Pix[i*img.Channels : (i+1)*img.Channels]
		dst := out.Pix[i*channels : (i+1)*channels]
		r, g, b, a := src[0], src[0], src[0], byte(255)
		switch len(src) {
		case 2:
			a = src[1]
		case 3:
			g, b = src[1], src[2]
		default:
			if len(src) >= 4 {
				g, b, a = src[1], src[2], src[3]
			}
		}
		px := [4]byte{r, g, b, a}
		if channels == 2 {
			px[1] = a
		}
		copy(dst, px[:])
	}
	return out
}
