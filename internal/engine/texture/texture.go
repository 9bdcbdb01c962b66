// Package texture provides the texture handle, pixel format selection and image decoding.
package texture

import (
	"github.com/Faultbox/lumen/internal/engine/gpu"
)

// Texture is a handle to an uploaded texture. Copies share the same GPU
// object; only the resource manager deletes it.
type Texture struct {
	ID     gpu.TextureID
	Width  int
	Height int

	InternalFormat gpu.Format
	ImageFormat    gpu.Format

	WrapS     gpu.Wrap
	WrapT     gpu.Wrap
	WrapR     gpu.Wrap
	FilterMin gpu.Filter
	FilterMag gpu.Filter
	Mipmap    bool

	// Desc is the shader role tag, e.g. "texture_diffuse".
	Desc string
}

// New returns a texture description with the default RGB, repeat, linear settings.
func New() Texture {
	return Texture{
		InternalFormat: gpu.FormatRGB,
		ImageFormat:    gpu.FormatRGB,
		WrapS:          gpu.WrapRepeat,
		WrapT:          gpu.WrapRepeat,
		WrapR:          gpu.WrapRepeat,
		FilterMin:      gpu.FilterLinear,
		FilterMag:      gpu.FilterLinear,
	}
}

// NewCubeMap returns the default cube map settings (clamped, linear).
func NewCubeMap() Texture {
	t := New()
	t.WrapS = gpu.WrapClampToEdge
	t.WrapT = gpu.WrapClampToEdge
	t.WrapR = gpu.WrapClampToEdge
	return t
}

// Spec returns the upload description for the given image size.
func (t Texture) Spec() gpu.TextureSpec {
	return gpu.TextureSpec{
		Width:          t.Width,
		Height:         t.Height,
		InternalFormat: t.InternalFormat,
		ImageFormat:    t.ImageFormat,
		WrapS:          t.WrapS,
		WrapT:          t.WrapT,
		WrapR:          t.WrapR,
		FilterMin:      t.FilterMin,
		FilterMag:      t.FilterMag,
		Mipmap:         t.Mipmap,
	}
}

// Loaded reports whether the texture refers to a GPU object.
func (t Texture) Loaded() bool {
	return t.ID != 0
}

// WithDesc returns a copy tagged with a role description. The copy shares the GPU object.
func (t Texture) WithDesc(desc string) Texture {
	t.Desc = desc
	return t
}

// FormatForChannels maps a decoded channel count to a pixel format:
// 1 -> red, 3 -> RGB, 4 -> RGBA. Any other count falls back to RGB and ok is false.
func FormatForChannels(channels int) (f gpu.Format, ok bool) {
	switch channels {
	case 1:
		return gpu.FormatRed, true
	case 3:
		return gpu.FormatRGB, true
	case 4:
		return gpu.FormatRGBA, true
	default:
		return gpu.FormatRGB, false
	}
}
