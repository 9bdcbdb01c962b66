package gpu

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/lumen/internal/logger"
)

// GLDevice implements Device with OpenGL 4.1 core.
// IMPORTANT: must be created AFTER the OpenGL context is current.
type GLDevice struct{}

// NewGLDevice loads the OpenGL function pointers and sets default state.
func NewGLDevice() (*GLDevice, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	return &GLDevice{}, nil
}

// Viewport sets the viewport to the given framebuffer size.
func (d *GLDevice) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Clear clears the colour and depth buffers.
func (d *GLDevice) Clear(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// ReadPixels reads the back buffer as tightly packed RGBA.
func (d *GLDevice) ReadPixels(width, height int) []byte {
	pixels := make([]byte, width*height*4)
	if len(pixels) == 0 {
		return pixels
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels
}

// CompileProgram compiles vertex and fragment shaders and links them into a program.
func (d *GLDevice) CompileProgram(vertexSrc, fragmentSrc string) (ProgramID, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		msg := programLog(program)
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", msg)
	}

	return ProgramID(program), nil
}

func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	if source == "" {
		return 0, fmt.Errorf("%s shader: empty source", name)
	}
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, gl.GoStr(&log[0]))
	}

	return shader, nil
}

func programLog(program uint32) string {
	var logLen int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
	log := make([]byte, logLen+1)
	gl.GetProgramInfoLog(program, logLen, nil, &log[0])
	return gl.GoStr(&log[0])
}

func (d *GLDevice) DeleteProgram(id ProgramID) {
	gl.DeleteProgram(uint32(id))
}

func (d *GLDevice) UseProgram(id ProgramID) {
	gl.UseProgram(uint32(id))
}

// UniformLocation returns -1 if the uniform is not found or inactive.
func (d *GLDevice) UniformLocation(id ProgramID, name string) int32 {
	return gl.GetUniformLocation(uint32(id), gl.Str(name+"\x00"))
}

func (d *GLDevice) SetInt(loc int32, v int32) {
	gl.Uniform1i(loc, v)
}

func (d *GLDevice) SetFloat(loc int32, v float32) {
	gl.Uniform1f(loc, v)
}

func (d *GLDevice) SetVec3(loc int32, v mgl32.Vec3) {
	gl.Uniform3f(loc, v[0], v[1], v[2])
}

func (d *GLDevice) SetMat4(loc int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(loc, 1, false, &m[0])
}

// CreateTexture2D uploads a 2D texture and returns its id.
func (d *GLDevice) CreateTexture2D(spec TextureSpec, pix []byte) TextureID {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, int32(glFormat(spec.InternalFormat)),
		int32(spec.Width), int32(spec.Height), 0,
		glFormat(spec.ImageFormat), gl.UNSIGNED_BYTE, pixPtr(pix))
	if spec.Mipmap {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, glWrap(spec.WrapS))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, glWrap(spec.WrapT))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, glFilter(spec.FilterMin))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, glFilter(spec.FilterMag))

	gl.BindTexture(gl.TEXTURE_2D, 0)
	return TextureID(id)
}

// CreateCubeMap uploads six faces in +X, -X, +Y, -Y, +Z, -Z order.
func (d *GLDevice) CreateCubeMap(spec TextureSpec, faces [6]CubeFace) TextureID {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, id)

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	for i, face := range faces {
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), 0, int32(glFormat(spec.InternalFormat)),
			int32(face.Width), int32(face.Height), 0,
			glFormat(spec.ImageFormat), gl.UNSIGNED_BYTE, pixPtr(face.Pix))
	}

	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, glFilter(spec.FilterMin))
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, glFilter(spec.FilterMag))
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, glWrap(spec.WrapS))
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, glWrap(spec.WrapT))
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, glWrap(spec.WrapR))

	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	return TextureID(id)
}

func (d *GLDevice) DeleteTexture(id TextureID) {
	tex := uint32(id)
	gl.DeleteTextures(1, &tex)
}

func (d *GLDevice) BindTexture(unit uint32, id TextureID) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, uint32(id))
}

func (d *GLDevice) BindCubeMap(unit uint32, id TextureID) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, uint32(id))
}

// UploadMesh creates a VAO with one interleaved VBO and an optional EBO.
func (d *GLDevice) UploadMesh(vertices []float32, stride int32, attribs []Attrib, indices []uint32) MeshBuffers {
	var mb MeshBuffers
	gl.GenVertexArrays(1, &mb.VAO)
	gl.GenBuffers(1, &mb.VBO)
	gl.BindVertexArray(mb.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, mb.VBO)
	if len(vertices) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	}
	if stride > 0 {
		mb.VertexCount = int32(len(vertices)*4) / stride
	}

	if len(indices) > 0 {
		gl.GenBuffers(1, &mb.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, mb.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)
		mb.IndexCount = int32(len(indices))
	}

	for _, a := range attribs {
		gl.EnableVertexAttribArray(a.Location)
		gl.VertexAttribPointerWithOffset(a.Location, a.Size, gl.FLOAT, false, stride, uintptr(a.Offset))
	}

	gl.BindVertexArray(0)
	return mb
}

func (d *GLDevice) DeleteMesh(mb MeshBuffers) {
	if mb.VAO != 0 {
		gl.DeleteVertexArrays(1, &mb.VAO)
	}
	if mb.VBO != 0 {
		gl.DeleteBuffers(1, &mb.VBO)
	}
	if mb.EBO != 0 {
		gl.DeleteBuffers(1, &mb.EBO)
	}
}

func (d *GLDevice) Draw(mb MeshBuffers) {
	gl.BindVertexArray(mb.VAO)
	if mb.EBO != 0 {
		gl.DrawElements(gl.TRIANGLES, mb.IndexCount, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, mb.VertexCount)
	}
	gl.BindVertexArray(0)
	gl.ActiveTexture(gl.TEXTURE0)
}

func (d *GLDevice) DepthLessEqual(enable bool) {
	if enable {
		gl.DepthFunc(gl.LEQUAL)
	} else {
		gl.DepthFunc(gl.LESS)
	}
}

func glFormat(f Format) uint32 {
	switch f {
	case FormatRed:
		return gl.RED
	case FormatRGBA:
		return gl.RGBA
	default:
		return gl.RGB
	}
}

func glWrap(w Wrap) int32 {
	switch w {
	case WrapClampToEdge:
		return gl.CLAMP_TO_EDGE
	case WrapMirroredRepeat:
		return gl.MIRRORED_REPEAT
	default:
		return gl.REPEAT
	}
}

func glFilter(f Filter) int32 {
	switch f {
	case FilterNearest:
		return gl.NEAREST
	case FilterLinearMipmapLinear:
		return gl.LINEAR_MIPMAP_LINEAR
	default:
		return gl.LINEAR
	}
}

func pixPtr(pix []byte) unsafe.Pointer {
	if len(pix) == 0 {
		return nil
	}
	return gl.Ptr(pix)
}

var _ FrameDevice = (*GLDevice)(nil)
