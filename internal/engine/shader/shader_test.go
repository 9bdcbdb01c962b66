package shader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/lumen/internal/engine/gpu"
	"github.com/Faultbox/lumen/internal/engine/gpu/gputest"
)

func TestNewValid(t *testing.T) {
	dev := gputest.New()
	s := New(dev, "void main() {}", "void main() {}")

	assert.True(t, s.Valid())
	assert.NotZero(t, s.ID())
	assert.NoError(t, s.Err())
}

func TestNewInvalidIsRecoverable(t *testing.T) {
	dev := gputest.New()
	dev.FailCompile = true

	s := New(dev, "broken", "broken")
	assert.False(t, s.Valid())
	assert.Zero(t, s.ID())
	assert.Error(t, s.Err())

	// Setting uniforms on an invalid shader is a no-op, not a crash.
	s.Use().SetInt("x", 1).SetMat4("model", mgl32.Ident4())
	assert.Empty(t, dev.Uniforms)
}

func TestFromFilesMissingIsInvalid(t *testing.T) {
	dev := gputest.New()
	dir := t.TempDir()
	vs := filepath.Join(dir, "a.vert")
	require.NoError(t, os.WriteFile(vs, []byte("void main() {}"), 0644))

	s := FromFiles(dev, vs, filepath.Join(dir, "missing.frag"))
	assert.False(t, s.Valid())
	assert.Equal(t, "", dev.LastFragmentSrc)
	assert.Equal(t, "void main() {}", dev.LastVertexSrc)
}

func TestUniformSettersChainAndCache(t *testing.T) {
	dev := gputest.New()
	s := New(dev, "v", "f")

	s.Use().
		SetInt("texture_diffuse1", 0).
		SetFloat("material.shininess", 32).
		SetVec3("viewPos", mgl32.Vec3{1, 2, 3}).
		SetBool("flag", true).
		SetInt("texture_diffuse1", 4)

	require.Len(t, dev.Uniforms, 5)
	assert.Equal(t, []any{int32(0), int32(4)}, dev.UniformsNamed("texture_diffuse1"))
	assert.Equal(t, []any{float32(32)}, dev.UniformsNamed("material.shininess"))
	assert.Equal(t, []any{mgl32.Vec3{1, 2, 3}}, dev.UniformsNamed("viewPos"))
	assert.Equal(t, []any{int32(1)}, dev.UniformsNamed("flag"))
	assert.Equal(t, s.Location("texture_diffuse1"), s.Location("texture_diffuse1"))
}

func TestDeleteIdempotent(t *testing.T) {
	dev := gputest.New()
	s := New(dev, "v", "f")
	id := s.ID()

	s.Delete()
	s.Delete()

	assert.Equal(t, 1, len(dev.DeletedPrograms))
	assert.Equal(t, id, dev.DeletedPrograms[0])
	assert.False(t, s.Valid())
}

func TestReplaceKeepsHandle(t *testing.T) {
	dev := gputest.New()
	s := New(dev, "v", "f")
	oldID := s.ID()
	s.SetInt("flag", 1)

	next := New(dev, "v2", "f2")
	newID := next.ID()
	s.Replace(next)

	assert.Equal(t, newID, s.ID())
	assert.True(t, s.Valid())
	assert.Equal(t, []gpu.ProgramID{oldID}, dev.DeletedPrograms)
	assert.Zero(t, next.ID())
	assert.False(t, next.Valid())

	// locations are looked up again against the new program
	dev.ResetCalls()
	s.Use().SetInt("flag", 2)
	assert.Equal(t, []any{int32(2)}, dev.UniformsNamed("flag"))

	next.Delete()
	assert.Len(t, dev.DeletedPrograms, 1)
	s.Replace(s)
	assert.Equal(t, newID, s.ID())
}

func TestNilShader(t *testing.T) {
	var s *Shader
	assert.False(t, s.Valid())
	assert.Zero(t, s.ID())
	assert.Error(t, s.Err())
	s.Delete()
}
