// Package gputest provides a recording gpu.Device for tests that run without a GL context.
package gputest

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/lumen/internal/engine/gpu"
)

// UniformSet is one recorded uniform assignment.
type UniformSet struct {
	Program gpu.ProgramID
	Name    string
	Value   any
}

// Binding is one recorded texture bind.
type Binding struct {
	Unit uint32
	ID   gpu.TextureID
	Cube bool
}

// Recorder implements gpu.Device by recording every call.
type Recorder struct {
	// FailCompile makes every CompileProgram call fail.
	FailCompile bool
	// FailWhen makes CompileProgram fail when it returns true for the sources.
	FailWhen func(vertexSrc, fragmentSrc string) bool

	Compiles         int
	LastVertexSrc    string
	LastFragmentSrc  string
	DeletedPrograms  []gpu.ProgramID
	Textures         map[gpu.TextureID]gpu.TextureSpec
	DeletedTextures  []gpu.TextureID
	Uniforms         []UniformSet
	Bindings         []Binding
	Uploads          int
	DeletedMeshes    int
	Draws            int
	DepthLEqualCalls int
	Clears           int
	LastViewport     [2]int
	// Pixels is returned by ReadPixels when its length fits the request.
	Pixels []byte

	nextProgram gpu.ProgramID
	nextTexture gpu.TextureID
	nextBuffer  uint32
	current     gpu.ProgramID
	locations   map[gpu.ProgramID]map[string]int32
	names       map[gpu.ProgramID][]string
}

// New returns an empty recorder.
func New() *Recorder {
	return &Recorder{
		Textures:  make(map[gpu.TextureID]gpu.TextureSpec),
		locations: make(map[gpu.ProgramID]map[string]int32),
		names:     make(map[gpu.ProgramID][]string),
	}
}

func (r *Recorder) CompileProgram(vertexSrc, fragmentSrc string) (gpu.ProgramID, error) {
	r.Compiles++
	r.LastVertexSrc = vertexSrc
	r.LastFragmentSrc = fragmentSrc
	if r.FailCompile || vertexSrc == "" || fragmentSrc == "" {
		return 0, fmt.Errorf("compile failed")
	}
	if r.FailWhen != nil && r.FailWhen(vertexSrc, fragmentSrc) {
		return 0, fmt.Errorf("compile failed")
	}
	r.nextProgram++
	r.locations[r.nextProgram] = make(map[string]int32)
	return r.nextProgram, nil
}

func (r *Recorder) DeleteProgram(id gpu.ProgramID) {
	r.DeletedPrograms = append(r.DeletedPrograms, id)
}

func (r *Recorder) UseProgram(id gpu.ProgramID) {
	r.current = id
}

func (r *Recorder) UniformLocation(id gpu.ProgramID, name string) int32 {
	locs, ok := r.locations[id]
	if !ok {
		return -1
	}
	if loc, ok := locs[name]; ok {
		return loc
	}
	loc := int32(len(r.names[id]))
	locs[name] = loc
	r.names[id] = append(r.names[id], name)
	return loc
}

func (r *Recorder) record(loc int32, v any) {
	names := r.names[r.current]
	if loc < 0 || int(loc) >= len(names) {
		return
	}
	r.Uniforms = append(r.Uniforms, UniformSet{Program: r.current, Name: names[loc], Value: v})
}

func (r *Recorder) SetInt(loc int32, v int32)       { r.record(loc, v) }
func (r *Recorder) SetFloat(loc int32, v float32)   { r.record(loc, v) }
func (r *Recorder) SetVec3(loc int32, v mgl32.Vec3) { r.record(loc, v) }
func (r *Recorder) SetMat4(loc int32, m mgl32.Mat4) { r.record(loc, m) }
func (r *Recorder) DepthLessEqual(enable bool)      { r.DepthLEqualCalls++ }
func (r *Recorder) DeleteMesh(mb gpu.MeshBuffers)   { r.DeletedMeshes++ }
func (r *Recorder) Draw(mb gpu.MeshBuffers)         { r.Draws++ }
func (r *Recorder) DeleteTexture(id gpu.TextureID)  { r.DeletedTextures = append(r.DeletedTextures, id) }

func (r *Recorder) BindTexture(u uint32, id gpu.TextureID) {
	r.Bindings = append(r.Bindings, Binding{Unit: u, ID: id})
}

func (r *Recorder) BindCubeMap(u uint32, id gpu.TextureID) {
	r.Bindings = append(r.Bindings, Binding{Unit: u, ID: id, Cube: true})
}

func (r *Recorder) CreateTexture2D(spec gpu.TextureSpec, pix []byte) gpu.TextureID {
	r.nextTexture++
	r.Textures[r.nextTexture] = spec
	return r.nextTexture
}

func (r *Recorder) CreateCubeMap(spec gpu.TextureSpec, faces [6]gpu.CubeFace) gpu.TextureID {
	r.nextTexture++
	r.Textures[r.nextTexture] = spec
	return r.nextTexture
}

func (r *Recorder) UploadMesh(vertices []float32, stride int32, attribs []gpu.Attrib, indices []uint32) gpu.MeshBuffers {
	r.Uploads++
	r.nextBuffer += 3
	mb := gpu.MeshBuffers{VAO: r.nextBuffer - 2, VBO: r.nextBuffer - 1, IndexCount: int32(len(indices))}
	if len(indices) > 0 {
		mb.EBO = r.nextBuffer
	}
	if stride > 0 {
		mb.VertexCount = int32(len(vertices)*4) / stride
	}
	return mb
}

func (r *Recorder) Viewport(width, height int) {
	r.LastViewport = [2]int{width, height}
}

func (r *Recorder) Clear(red, green, blue, alpha float32) {
	r.Clears++
}

func (r *Recorder) ReadPixels(width, height int) []byte {
	if len(r.Pixels) == width*height*4 {
		return r.Pixels
	}
	return make([]byte, width*height*4)
}

// UniformsNamed returns recorded values for the given uniform name in call order.
func (r *Recorder) UniformsNamed(name string) []any {
	var out []any
	for _, u := range r.Uniforms {
		if u.Name == name {
			out = append(out, u.Value)
		}
	}
	return out
}

// ResetCalls clears the uniform, binding and draw logs.
func (r *Recorder) ResetCalls() {
	r.Uniforms = nil
	r.Bindings = nil
	r.Draws = 0
	r.Clears = 0
}

var _ gpu.FrameDevice = (*Recorder)(nil)
