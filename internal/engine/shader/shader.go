// Package shader provides the shader program handle used by meshes and the resource manager.
package shader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/lumen/internal/engine/gpu"
	"github.com/Faultbox/lumen/internal/logger"
)

// Shader is a compiled and linked program plus its validity.
// The zero value is an invalid handle.
type Shader struct {
	dev   gpu.Device
	id    gpu.ProgramID
	valid bool
	err   error

	// uniform location cache, reset whenever the program changes
	locations map[string]int32
}

// New compiles and links the given sources. Compile or link failure does not
// return an error: the handle is marked invalid and the cause kept in Err.
func New(dev gpu.Device, vertexSrc, fragmentSrc string) *Shader {
	s := &Shader{dev: dev, locations: make(map[string]int32)}
	id, err := dev.CompileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		s.err = err
		logger.Warn("shader program failed", zap.Error(err))
		return s
	}
	s.id = id
	s.valid = id != 0
	return s
}

// FromFiles reads both sources and compiles them. A missing or unreadable
// file is logged and treated as empty source, which yields an invalid shader.
func FromFiles(dev gpu.Device, vertexPath, fragmentPath string) *Shader {
	return New(dev, ReadSource(vertexPath, "VERTEX"), ReadSource(fragmentPath, "FRAGMENT"))
}

// ReadSource returns the contents of path, or "" after logging when it cannot be read.
func ReadSource(path, stage string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Error("shader file not found", zap.String("stage", stage), zap.String("path", path))
		} else {
			logger.Error("shader file not read", zap.String("stage", stage), zap.String("path", path), zap.Error(err))
		}
		return ""
	}
	return string(data)
}

// ID returns the program identifier (0 when invalid).
func (s *Shader) ID() gpu.ProgramID {
	if s == nil {
		return 0
	}
	return s.id
}

// Valid reports whether the program compiled and linked.
func (s *Shader) Valid() bool {
	return s != nil && s.valid
}

// Err returns the compile or link error of an invalid shader.
func (s *Shader) Err() error {
	if s == nil {
		return errors.New("nil shader")
	}
	return s.err
}

// Use activates the program.
func (s *Shader) Use() *Shader {
	if s.id == 0 {
		logger.Debug("using shader with id 0")
	}
	s.dev.UseProgram(s.id)
	return s
}

// Delete releases the program. Safe to call more than once.
func (s *Shader) Delete() {
	if s == nil || s.id == 0 {
		return
	}
	s.dev.DeleteProgram(s.id)
	s.id = 0
	s.valid = false
	s.locations = make(map[string]int32)
}

// Replace moves next's program into s and deletes the program s held, so
// existing holders of s see the new program. next is left as an empty handle.
func (s *Shader) Replace(next *Shader) {
	if s == next || next == nil {
		return
	}
	s.Delete()
	s.dev = next.dev
	s.id, s.valid, s.err = next.id, next.valid, next.err
	s.locations = make(map[string]int32)
	next.id, next.valid = 0, false
}

// Location returns the cached uniform location for name (-1 when inactive).
func (s *Shader) Location(name string) int32 {
	if loc, ok := s.locations[name]; ok {
		return loc
	}
	loc := s.dev.UniformLocation(s.id, name)
	s.locations[name] = loc
	return loc
}

// SetBool sets a bool uniform as an int.
func (s *Shader) SetBool(name string, v bool) *Shader {
	var i int32
	if v {
		i = 1
	}
	return s.SetInt(name, i)
}

// SetInt sets an int uniform.
func (s *Shader) SetInt(name string, v int32) *Shader {
	if loc := s.Location(name); loc >= 0 {
		s.dev.SetInt(loc, v)
	}
	return s
}

// SetFloat sets a float uniform.
func (s *Shader) SetFloat(name string, v float32) *Shader {
	if loc := s.Location(name); loc >= 0 {
		s.dev.SetFloat(loc, v)
	}
	return s
}

// SetVec3 sets a vec3 uniform.
func (s *Shader) SetVec3(name string, v mgl32.Vec3) *Shader {
	if loc := s.Location(name); loc >= 0 {
		s.dev.SetVec3(loc, v)
	}
	return s
}

// SetMat4 sets a mat4 uniform.
func (s *Shader) SetMat4(name string, m mgl32.Mat4) *Shader {
	if loc := s.Location(name); loc >= 0 {
		s.dev.SetMat4(loc, m)
	}
	return s
}

func (s *Shader) String() string {
	if s == nil {
		return "shader(nil)"
	}
	return fmt.Sprintf("shader(%d, valid=%t)", s.id, s.valid)
}
