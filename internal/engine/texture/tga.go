package texture

import (
	"errors"
	"fmt"
)

// TGA image type constants.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeGray         = 3  // Uncompressed greyscale
	TGATypeRLE          = 10 // RLE compressed true-color
	TGATypeRLEGray      = 11 // RLE compressed greyscale
)

const (
	tgaHeaderSize            = 18
	tgaDescriptorTopToBottom = 0x20
)

var errTGATruncated = errors.New("TGA data truncated")

// decodeTGA decodes a TGA file into tightly packed rows, top row first.
// 8-bit greyscale keeps one channel, 24-bit becomes RGB and 32-bit RGBA.
func decodeTGA(data []byte) (Image, error) {
	if len(data) < tgaHeaderSize {
		return Image{}, fmt.Errorf("TGA data too short")
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return Image{}, fmt.Errorf("color-mapped TGA not supported")
	}

	gray := imageType == TGATypeGray || imageType == TGATypeRLEGray
	switch {
	case imageType != TGATypeUncompressed && imageType != TGATypeRLE && !gray:
		return Image{}, fmt.Errorf("unsupported TGA type %d", imageType)
	case gray && bpp != 8:
		return Image{}, fmt.Errorf("unsupported greyscale TGA bit depth %d", bpp)
	case !gray && bpp != 24 && bpp != 32:
		return Image{}, fmt.Errorf("unsupported TGA bit depth %d (only 24/32 supported)", bpp)
	}
	if width == 0 || height == 0 {
		return Image{}, ErrNoData
	}

	offset := tgaHeaderSize + idLength
	if offset > len(data) {
		return Image{}, errTGATruncated
	}

	bytesPerPixel := bpp / 8
	// TGA stores pixels in file order; expand RLE packets first.
	raw := data[offset:]
	if imageType == TGATypeRLE || imageType == TGATypeRLEGray {
		var err error
		raw, err = expandTGARLE(raw, width*height, bytesPerPixel)
		if err != nil {
			return Image{}, err
		}
	} else if len(raw) < width*height*bytesPerPixel {
		return Image{}, errTGATruncated
	}

	img := Image{
		Pix:      make([]byte, width*height*bytesPerPixel),
		Width:    width,
		Height:   height,
		Channels: bytesPerPixel,
	}

	// Bit 5 of the descriptor set means rows are already top-to-bottom.
	topToBottom := descriptor&tgaDescriptorTopToBottom != 0
	rowLen := width * bytesPerPixel
	for y := 0; y < height; y++ {
		src := raw[y*rowLen : (y+1)*rowLen]
		destY := y
		if !topToBottom {
			destY = height - 1 - y
		}
		dst := img.Pix[destY*rowLen : (destY+1)*rowLen]
		copy(dst, src)
		if bytesPerPixel >= 3 {
			// BGR(A) -> RGB(A)
			for i := 0; i < len(dst); i += bytesPerPixel {
				dst[i], dst[i+2] = dst[i+2], dst[i]
			}
		}
	}

	return img, nil
}

// expandTGARLE expands RLE packets into raw pixel data.
func expandTGARLE(data []byte, pixelCount, bytesPerPixel int) ([]byte, error) {
	out := make([]byte, 0, pixelCount*bytesPerPixel)
	dataIdx := 0

	for len(out) < pixelCount*bytesPerPixel {
		if dataIdx >= len(data) {
			return nil, errTGATruncated
		}
		packet := data[dataIdx]
		dataIdx++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			if dataIdx+bytesPerPixel > len(data) {
				return nil, errTGATruncated
			}
			px := data[dataIdx : dataIdx+bytesPerPixel]
			dataIdx += bytesPerPixel
			for i := 0; i < count; i++ {
				out = append(out, px...)
			}
		} else {
			n := count * bytesPerPixel
			if dataIdx+n > len(data) {
				return nil, errTGATruncated
			}
			out = append(out, data[dataIdx:dataIdx+n]...)
			dataIdx += n
		}
	}

	return out[:pixelCount*bytesPerPixel], nil
}
