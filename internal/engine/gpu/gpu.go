// Package gpu defines the graphics API surface the engine core depends on.
//
// The core never calls OpenGL directly. Shader handles, the resource manager
// and meshes talk to a Device, which GLDevice implements on top of go-gl.
package gpu

import "github.com/go-gl/mathgl/mgl32"

// ProgramID identifies a linked shader program. Zero is never a valid program.
type ProgramID uint32

// TextureID identifies a texture object. Zero is never a valid texture.
type TextureID uint32

// Format is a pixel format used for both the internal and the source layout.
type Format uint32

const (
	FormatRed Format = iota + 1
	FormatRGB
	FormatRGBA
)

// Channels returns the number of 8-bit channels per pixel.
func (f Format) Channels() int {
	switch f {
	case FormatRed:
		return 1
	case FormatRGBA:
		return 4
	default:
		return 3
	}
}

func (f Format) String() string {
	switch f {
	case FormatRed:
		return "red"
	case FormatRGB:
		return "rgb"
	case FormatRGBA:
		return "rgba"
	default:
		return "unknown"
	}
}

// Wrap is a texture coordinate wrapping mode.
type Wrap int

const (
	WrapRepeat Wrap = iota
	WrapClampToEdge
	WrapMirroredRepeat
)

// Filter is a texture sampling filter.
type Filter int

const (
	FilterLinear Filter = iota
	FilterNearest
	FilterLinearMipmapLinear
)

// TextureSpec describes how pixel data is uploaded and sampled.
type TextureSpec struct {
	Width          int
	Height         int
	InternalFormat Format
	ImageFormat    Format
	WrapS          Wrap
	WrapT          Wrap
	WrapR          Wrap
	FilterMin      Filter
	FilterMag      Filter
	Mipmap         bool
}

// CubeFace is the pixel data of one cube map face.
type CubeFace struct {
	Width  int
	Height int
	Pix    []byte
}

// Attrib describes one float vertex attribute inside an interleaved buffer.
type Attrib struct {
	Location uint32
	Size     int32 // number of float components
	Offset   int   // byte offset inside a vertex
}

// MeshBuffers holds the buffer objects of an uploaded mesh.
type MeshBuffers struct {
	VAO         uint32
	VBO         uint32
	EBO         uint32
	IndexCount  int32
	VertexCount int32
}

// Device is the graphics API boundary. Implementations are not safe for
// concurrent use and must be driven from the thread owning the context.
type Device interface {
	// CompileProgram compiles and links a vertex/fragment pair.
	CompileProgram(vertexSrc, fragmentSrc string) (ProgramID, error)
	DeleteProgram(id ProgramID)
	UseProgram(id ProgramID)
	UniformLocation(id ProgramID, name string) int32

	SetInt(loc int32, v int32)
	SetFloat(loc int32, v float32)
	SetVec3(loc int32, v mgl32.Vec3)
	SetMat4(loc int32, m mgl32.Mat4)

	CreateTexture2D(spec TextureSpec, pix []byte) TextureID
	CreateCubeMap(spec TextureSpec, faces [6]CubeFace) TextureID
	DeleteTexture(id TextureID)
	// BindTexture activates the given unit and binds a 2D texture to it.
	BindTexture(unit uint32, id TextureID)
	BindCubeMap(unit uint32, id TextureID)

	// UploadMesh uploads interleaved float vertex data and optional indices.
	UploadMesh(vertices []float32, stride int32, attribs []Attrib, indices []uint32) MeshBuffers
	DeleteMesh(mb MeshBuffers)
	// Draw issues an indexed draw when the mesh has indices, otherwise an array draw.
	Draw(mb MeshBuffers)

	// DepthLessEqual switches the depth test between LEQUAL and LESS.
	DepthLessEqual(enable bool)
}

// FrameDevice is a Device that also drives the default framebuffer.
type FrameDevice interface {
	Device
	Viewport(width, height int)
	Clear(r, g, b, a float32)
	// ReadPixels returns the RGBA bytes of the framebuffer, bottom row first.
	ReadPixels(width, height int) []byte
}
