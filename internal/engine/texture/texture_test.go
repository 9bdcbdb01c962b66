package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/lumen/internal/engine/gpu"
)

func TestFormatForChannels(t *testing.T) {
	tests := []struct {
		channels int
		want     gpu.Format
		ok       bool
	}{
		{1, gpu.FormatRed, true},
		{3, gpu.FormatRGB, true},
		{4, gpu.FormatRGBA, true},
		{2, gpu.FormatRGB, false},
		{0, gpu.FormatRGB, false},
		{5, gpu.FormatRGB, false},
	}

	for _, tt := range tests {
		got, ok := FormatForChannels(tt.channels)
		if got != tt.want || ok != tt.ok {
			t.Errorf("FormatForChannels(%d) = %v, %v; want %v, %v", tt.channels, got, ok, tt.want, tt.ok)
		}
	}
}

func TestTextureDefaults(t *testing.T) {
	tex := New()
	if tex.InternalFormat != gpu.FormatRGB || tex.WrapS != gpu.WrapRepeat || tex.FilterMin != gpu.FilterLinear {
		t.Errorf("unexpected defaults: %+v", tex)
	}
	if tex.Loaded() {
		t.Error("new texture should not be loaded")
	}

	cube := NewCubeMap()
	if cube.WrapR != gpu.WrapClampToEdge {
		t.Errorf("cube map WrapR = %v, want clamp", cube.WrapR)
	}

	tex.ID = 7
	tagged := tex.WithDesc("texture_diffuse")
	if tagged.ID != tex.ID || tagged.Desc != "texture_diffuse" || tex.Desc != "" {
		t.Errorf("WithDesc should copy: %+v / %+v", tagged, tex)
	}
}

func writePNG(t *testing.T, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write png: %v", err)
	}
	return path
}

func TestFileDecoderChannels(t *testing.T) {
	opaque := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	translucent := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			opaque.Set(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
			translucent.Set(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 128})
			gray.Set(x, y, color.Gray{Y: 99})
		}
	}

	tests := []struct {
		name     string
		img      image.Image
		channels int
		first    []byte
	}{
		{"opaque", opaque, 3, []byte{10, 20, 30}},
		{"translucent", translucent, 4, []byte{10, 20, 30, 128}},
		{"gray", gray, 1, []byte{99}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writePNG(t, tt.name+".png", tt.img)
			img, err := FileDecoder{}.Decode(path, false)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if img.Channels != tt.channels {
				t.Errorf("Channels = %d, want %d", img.Channels, tt.channels)
			}
			if img.Width != 2 || img.Height != 2 {
				t.Errorf("size = %dx%d, want 2x2", img.Width, img.Height)
			}
			if len(img.Pix) != 4*tt.channels {
				t.Errorf("len(Pix) = %d, want %d", len(img.Pix), 4*tt.channels)
			}
			if !bytes.Equal(img.Pix[:tt.channels], tt.first) {
				t.Errorf("first pixel = %v, want %v", img.Pix[:tt.channels], tt.first)
			}
		})
	}
}

func TestFileDecoderFlip(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 2))
	src.Set(0, 0, color.NRGBA{R: 255, A: 255})
	src.Set(0, 1, color.NRGBA{B: 255, A: 255})
	path := writePNG(t, "flip.png", src)

	plain, err := FileDecoder{}.Decode(path, false)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	flipped, err := FileDecoder{}.Decode(path, true)
	if err != nil {
		t.Fatalf("Decode flipped: %v", err)
	}

	if !bytes.Equal(plain.Pix, []byte{255, 0, 0, 0, 0, 255}) {
		t.Errorf("plain = %v", plain.Pix)
	}
	if !bytes.Equal(flipped.Pix, []byte{0, 0, 255, 255, 0, 0}) {
		t.Errorf("flipped = %v", flipped.Pix)
	}
}

func TestFileDecoderErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := (FileDecoder{}).Decode(filepath.Join(dir, "missing.png"), false); err == nil {
		t.Error("expected error for missing file")
	}

	empty := filepath.Join(dir, "empty.png")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := (FileDecoder{}).Decode(empty, false); !errors.Is(err, ErrNoData) {
		t.Errorf("empty file error = %v, want ErrNoData", err)
	}

	junk := filepath.Join(dir, "junk.dat")
	if err := os.WriteFile(junk, []byte("not an image at all"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := (FileDecoder{}).Decode(junk, false); err == nil {
		t.Error("expected error for unrecognized data")
	}
}

func tgaHeader(imageType byte, width, height int, bpp, descriptor byte) []byte {
	h := make([]byte, tgaHeaderSize)
	h[2] = imageType
	h[12] = byte(width)
	h[13] = byte(width >> 8)
	h[14] = byte(height)
	h[15] = byte(height >> 8)
	h[16] = bpp
	h[17] = descriptor
	return h
}

func TestDecodeTGA(t *testing.T) {
	// 1x2 bottom-up: the first stored row is the bottom one.
	bottomUp := append(tgaHeader(TGATypeUncompressed, 1, 2, 24, 0),
		0, 0, 255, // red (BGR)
		255, 0, 0, // blue
	)
	// 3x1 RLE, one run packet of three BGRA pixels.
	rle := append(tgaHeader(TGATypeRLE, 3, 1, 32, tgaDescriptorTopToBottom),
		0x82, 1, 2, 3, 4,
	)
	grey := append(tgaHeader(TGATypeGray, 2, 1, 8, tgaDescriptorTopToBottom), 7, 9)

	tests := []struct {
		name     string
		data     []byte
		channels int
		pix      []byte
		wantErr  bool
	}{
		{"uncompressed bottom-up", bottomUp, 3, []byte{0, 0, 255, 255, 0, 0}, false},
		{"rle top-down", rle, 4, []byte{3, 2, 1, 4, 3, 2, 1, 4, 3, 2, 1, 4}, false},
		{"greyscale", grey, 1, []byte{7, 9}, false},
		{"too short", []byte{1, 2, 3}, 0, nil, true},
		{"truncated", tgaHeader(TGATypeUncompressed, 4, 4, 24, 0), 0, nil, true},
		{"color mapped", append([]byte{0, 1}, make([]byte, 16)...), 0, nil, true},
		{"16 bit", tgaHeader(TGATypeUncompressed, 1, 1, 16, 0), 0, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := DecodeBytes(tt.data, ".tga")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeBytes: %v", err)
			}
			if img.Channels != tt.channels {
				t.Errorf("Channels = %d, want %d", img.Channels, tt.channels)
			}
			if !bytes.Equal(img.Pix, tt.pix) {
				t.Errorf("Pix = %v, want %v", img.Pix, tt.pix)
			}
		})
	}
}

func TestImageConvert(t *testing.T) {
	tests := []struct {
		name string
		in   Image
		to   int
		want []byte
	}{
		{"grey alpha to rgb", Image{Pix: []byte{5, 200}, Width: 1, Height: 1, Channels: 2}, 3, []byte{5, 5, 5}},
		{"grey alpha to rgba", Image{Pix: []byte{5, 200}, Width: 1, Height: 1, Channels: 2}, 4, []byte{5, 5, 5, 200}},
		{"rgb to rgba", Image{Pix: []byte{1, 2, 3}, Width: 1, Height: 1, Channels: 3}, 4, []byte{1, 2, 3, 255}},
		{"rgba to rgb", Image{Pix: []byte{1, 2, 3, 4}, Width: 1, Height: 1, Channels: 4}, 3, []byte{1, 2, 3}},
		{"rgb to red", Image{Pix: []byte{1, 2, 3}, Width: 1, Height: 1, Channels: 3}, 1, []byte{1}},
		{"same", Image{Pix: []byte{1, 2, 3}, Width: 1, Height: 1, Channels: 3}, 3, []byte{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Convert(tt.to)
			if got.Channels != tt.to {
				t.Errorf("Channels = %d, want %d", got.Channels, tt.to)
			}
			if !bytes.Equal(got.Pix, tt.want) {
				t.Errorf("Pix = %v, want %v", got.Pix, tt.want)
			}
		})
	}
}

func TestImageConvertShortBuffer(t *testing.T) {
	in := Image{Pix: []byte{1, 2, 3}, Width: 2, Height: 1, Channels: 3}
	got := in.Convert(4)
	if got.Channels != 3 || !bytes.Equal(got.Pix, in.Pix) {
		t.Errorf("Convert(4) = %d channels %v, want the input unchanged", got.Channels, got.Pix)
	}
}

func TestImageComplete(t *testing.T) {
	tests := []struct {
		name string
		img  Image
		want bool
	}{
		{"exact", Image{Pix: make([]byte, 12), Width: 2, Height: 2, Channels: 3}, true},
		{"short", Image{Pix: make([]byte, 11), Width: 2, Height: 2, Channels: 3}, false},
		{"empty", Image{Width: 2, Height: 2, Channels: 3}, false},
		{"no size", Image{Pix: make([]byte, 4), Channels: 4}, false},
	}
	for _, tt := range tests {
		if got := tt.img.Complete(); got != tt.want {
			t.Errorf("%s: Complete() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
