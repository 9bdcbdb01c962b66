// Package resource provides the shared cache of shaders, textures, cube maps and
// sound registrations. It is the single owner of every GPU object it hands out.
//
// The manager is not safe for concurrent use; it is driven from the render thread.
package resource

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/lumen/internal/engine/gpu"
	"github.com/Faultbox/lumen/internal/engine/shader"
	"github.com/Faultbox/lumen/internal/engine/texture"
	"github.com/Faultbox/lumen/internal/logger"
)

// ErrNotFound is returned when a name was never loaded.
var ErrNotFound = errors.New("resource not found")

// Stats holds cache counters.
type Stats struct {
	Hits     int
	Misses   int
	Shaders  int
	Textures int
	CubeMaps int
	Sounds   int
}

type shaderEntry struct {
	shader       *shader.Shader
	vertexPath   string
	fragmentPath string
}

// Option configures a Manager.
type Option func(*Manager)

// WithDecoder replaces the image decoder used for textures and cube maps.
func WithDecoder(d texture.Decoder) Option {
	return func(m *Manager) { m.decoder = d }
}

// WithDebug enables the never-used audit and call-site diagnostics.
func WithDebug(enabled bool) Option {
	return func(m *Manager) { m.debug = enabled }
}

// Manager caches resources by name.
type Manager struct {
	dev     gpu.Device
	decoder texture.Decoder
	debug   bool
	log     *zap.Logger

	shaders  map[string]*shaderEntry
	textures map[string]texture.Texture
	cubeMaps map[string]texture.Texture
	sounds   map[string]string

	// names inserted but never retrieved, debug only
	unused map[Key]struct{}

	hits   int
	misses int

	watcher *fsnotify.Watcher
	changed chan string
	done    chan struct{}
}

// NewManager creates an empty cache uploading through dev.
func NewManager(dev gpu.Device, opts ...Option) *Manager {
	m := &Manager{
		dev:      dev,
		decoder:  texture.FileDecoder{},
		log:      logger.Named("resource"),
		shaders:  make(map[string]*shaderEntry),
		textures: make(map[string]texture.Texture),
		cubeMaps: make(map[string]texture.Texture),
		sounds:   make(map[string]string),
		unused:   make(map[Key]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Debug reports whether debug diagnostics are enabled.
func (m *Manager) Debug() bool {
	return m.debug
}

// Device returns the device resources are uploaded through.
func (m *Manager) Device() gpu.Device {
	return m.dev
}

func (m *Manager) track(kind Kind, name string) {
	if m.debug {
		m.unused[Key{Kind: kind, Name: name}] = struct{}{}
	}
}

func (m *Manager) markUsed(kind Kind, name string) {
	delete(m.unused, Key{Kind: kind, Name: name})
}

// notFound logs a miss and returns the wrapped error. depth is the number of
// frames between the public getter's caller and this function.
func (m *Manager) notFound(kind Kind, name string, depth int) error {
	m.misses++
	fields := []zap.Field{zap.String("kind", kind.String()), zap.String("name", name)}
	if m.debug {
		if _, file, line, ok := runtime.Caller(depth); ok {
			fields = append(fields, zap.String("file", filepath.Base(file)), zap.Int("line", line))
			m.log.Error("resource not found", fields...)
			return fmt.Errorf("%s %q (%s:%d): %w", kind, name, filepath.Base(file), line, ErrNotFound)
		}
	}
	m.log.Error("resource not found", fields...)
	return fmt.Errorf("%s %q: %w", kind, name, ErrNotFound)
}

// LoadShader reads and compiles a program and stores it under name. When name
// is taken the new program replaces the old one inside the existing handle,
// so shaders returned earlier stay current. Missing files yield an invalid
// shader, never an error.
func (m *Manager) LoadShader(vertexPath, fragmentPath, name string) *shader.Shader {
	s := shader.FromFiles(m.dev, vertexPath, fragmentPath)
	s = m.storeShader(name, &shaderEntry{shader: s, vertexPath: vertexPath, fragmentPath: fragmentPath})
	if m.watcher != nil {
		m.watchPaths(vertexPath, fragmentPath)
	}
	return s
}

// LoadShaderSource compiles in-memory sources and stores them under name with
// the same overwrite semantics as LoadShader.
func (m *Manager) LoadShaderSource(vertexSrc, fragmentSrc, name string) *shader.Shader {
	s := shader.New(m.dev, vertexSrc, fragmentSrc)
	return m.storeShader(name, &shaderEntry{shader: s})
}

// storeShader files e under name and returns the handle callers should keep.
func (m *Manager) storeShader(name string, e *shaderEntry) *shader.Shader {
	if old, ok := m.shaders[name]; ok && old.shader != e.shader {
		old.shader.Replace(e.shader)
		e.shader = old.shader
	}
	m.shaders[name] = e
	m.track(KindShader, name)
	if !e.shader.Valid() {
		m.log.Warn("shader stored invalid", zap.String("name", name), zap.Error(e.shader.Err()))
	}
	return e.shader
}

// GetShader returns the shader stored under name and marks it used.
func (m *Manager) GetShader(name string) (*shader.Shader, error) {
	return m.getShader(name, 3)
}

// MustGetShader is GetShader for names the caller loaded itself; a miss panics.
func (m *Manager) MustGetShader(name string) *shader.Shader {
	s, err := m.getShader(name, 3)
	if err != nil {
		panic(err)
	}
	return s
}

func (m *Manager) getShader(name string, depth int) (*shader.Shader, error) {
	e, ok := m.shaders[name]
	if !ok {
		return nil, m.notFound(KindShader, name, depth)
	}
	m.hits++
	m.markUsed(KindShader, name)
	return e.shader, nil
}

// MarkShaderUsed exempts a shader from the never-used audit without retrieving it.
func (m *Manager) MarkShaderUsed(name string) {
	m.markUsed(KindShader, name)
}

// LoadTexture decodes and uploads the image at path under name. If name is
// already cached the stored texture is returned without touching disk.
func (m *Manager) LoadTexture(path, name string, flipVertically, mipmap bool) (texture.Texture, error) {
	if tex, ok := m.textures[name]; ok {
		m.hits++
		return tex, nil
	}
	m.misses++

	img, err := m.decoder.Decode(path, flipVertically)
	if err != nil {
		m.log.Error("texture failed to load", zap.String("name", name), zap.String("path", path), zap.Error(err))
		return texture.Texture{}, fmt.Errorf("load texture %q: %w", name, err)
	}
	if !img.Complete() {
		m.log.Error("texture has no data", zap.String("name", name), zap.String("path", path),
			zap.Int("bytes", len(img.Pix)), zap.Int("width", img.Width), zap.Int("height", img.Height), zap.Int("channels", img.Channels))
		return texture.Texture{}, fmt.Errorf("load texture %q: %w", name, texture.ErrNoData)
	}

	img = m.normalizeChannels(img, name, path, 0)

	tex := texture.New()
	tex.Width = img.Width
	tex.Height = img.Height
	tex.Mipmap = mipmap
	tex.InternalFormat, _ = texture.FormatForChannels(img.Channels)
	tex.ImageFormat = tex.InternalFormat
	if mipmap {
		tex.FilterMin = gpu.FilterLinearMipmapLinear
	}
	tex.ID = m.dev.CreateTexture2D(tex.Spec(), img.Pix)

	m.textures[name] = tex
	m.track(KindTexture, name)
	m.log.Debug("texture loaded",
		zap.String("name", name),
		zap.String("path", path),
		zap.Int("width", img.Width),
		zap.Int("height", img.Height),
		zap.Int("channels", img.Channels))
	return tex, nil
}

// LoadTextureKey loads a texture under the name derived from key.
func (m *Manager) LoadTextureKey(key TextureKey) (texture.Texture, error) {
	return m.LoadTexture(key.Path, key.Name(), key.Flip, key.Mipmap)
}

// normalizeChannels converts img to want channels, or when want is 0 to a
// supported layout, falling back to RGB for unrecognized counts.
func (m *Manager) normalizeChannels(img texture.Image, name, path string, want int) texture.Image {
	if want == 0 {
		if _, ok := texture.FormatForChannels(img.Channels); ok {
			return img
		}
		m.log.Warn("unrecognized channel count, assuming RGB",
			zap.String("name", name), zap.String("path", path), zap.Int("channels", img.Channels))
		want = 3
	}
	return img.Convert(want)
}

// TextureLoaded reports whether name is cached. It does not count as a use.
func (m *Manager) TextureLoaded(name string) bool {
	_, ok := m.textures[name]
	return ok
}

// GetTexture returns the texture stored under name and marks it used.
func (m *Manager) GetTexture(name string) (texture.Texture, error) {
	tex, ok := m.textures[name]
	if !ok {
		return texture.Texture{}, m.notFound(KindTexture, name, 2)
	}
	m.hits++
	m.markUsed(KindTexture, name)
	return tex, nil
}

// MarkTextureUsed exempts a texture from the never-used audit without retrieving it.
func (m *Manager) MarkTextureUsed(name string) {
	m.markUsed(KindTexture, name)
}

// LoadCubeMap uploads six faces (+X, -X, +Y, -Y, +Z, -Z) under name. It always
// reloads; a cube map previously stored under name is deleted. The first face
// decides the format and the remaining faces are converted to match.
func (m *Manager) LoadCubeMap(faces [6]string, flipVertically bool, name string) (texture.Texture, error) {
	var data [6]gpu.CubeFace
	tex := texture.NewCubeMap()

	want := 0
	for i, path := range faces {
		img, err := m.decoder.Decode(path, flipVertically)
		if err == nil && !img.Complete() {
			err = texture.ErrNoData
		}
		if err != nil {
			m.log.Error("cube map face failed to load",
				zap.String("name", name), zap.Int("face", i), zap.String("path", path), zap.Error(err))
			return texture.Texture{}, fmt.Errorf("load cube map %q face %d: %w", name, i, err)
		}
		img = m.normalizeChannels(img, name, path, want)
		if i == 0 {
			want = img.Channels
			tex.Width, tex.Height = img.Width, img.Height
			tex.InternalFormat, _ = texture.FormatForChannels(img.Channels)
			tex.ImageFormat = tex.InternalFormat
		}
		data[i] = gpu.CubeFace{Width: img.Width, Height: img.Height, Pix: img.Pix}
	}

	tex.ID = m.dev.CreateCubeMap(tex.Spec(), data)
	if old, ok := m.cubeMaps[name]; ok {
		m.dev.DeleteTexture(old.ID)
	}
	m.cubeMaps[name] = tex
	m.track(KindCubeMap, name)
	return tex, nil
}

// GetCubeMap returns the cube map stored under name and marks it used.
func (m *Manager) GetCubeMap(name string) (texture.Texture, error) {
	tex, ok := m.cubeMaps[name]
	if !ok {
		return texture.Texture{}, m.notFound(KindCubeMap, name, 2)
	}
	m.hits++
	m.markUsed(KindCubeMap, name)
	return tex, nil
}

// RegisterSound records the path of a sound under name and returns the name.
func (m *Manager) RegisterSound(path, name string) string {
	m.sounds[name] = path
	m.track(KindSound, name)
	return name
}

// GetSound returns the path registered under name and marks it used.
func (m *Manager) GetSound(name string) (string, error) {
	path, ok := m.sounds[name]
	if !ok {
		return "", m.notFound(KindSound, name, 2)
	}
	m.hits++
	m.markUsed(KindSound, name)
	return path, nil
}

// Stats returns cache counters.
func (m *Manager) Stats() Stats {
	return Stats{
		Hits:     m.hits,
		Misses:   m.misses,
		Shaders:  len(m.shaders),
		Textures: len(m.textures),
		CubeMaps: len(m.cubeMaps),
		Sounds:   len(m.sounds),
	}
}

// Unused returns the names that were stored but never retrieved, sorted.
// It is always empty when debug is off.
func (m *Manager) Unused() []Key {
	keys := make([]Key, 0, len(m.unused))
	for k := range m.unused {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Kind != keys[j].Kind {
			return keys[i].Kind < keys[j].Kind
		}
		return keys[i].Name < keys[j].Name
	})
	return keys
}

// Clear deletes every cached GPU object. In debug mode it first warns once
// for each resource that was loaded but never used. Safe to call repeatedly.
func (m *Manager) Clear() {
	for _, k := range m.Unused() {
		m.log.Warn("resource loaded but never used", zap.String("kind", k.Kind.String()), zap.String("name", k.Name))
	}
	m.unused = make(map[Key]struct{})

	for _, e := range m.shaders {
		e.shader.Delete()
	}
	for _, tex := range m.textures {
		m.dev.DeleteTexture(tex.ID)
	}
	for _, tex := range m.cubeMaps {
		m.dev.DeleteTexture(tex.ID)
	}
	m.shaders = make(map[string]*shaderEntry)
	m.textures = make(map[string]texture.Texture)
	m.cubeMaps = make(map[string]texture.Texture)
	m.sounds = make(map[string]string)
	m.hits, m.misses = 0, 0
}

// Close stops shader watching and clears the cache.
func (m *Manager) Close() error {
	err := m.stopWatching()
	m.Clear()
	return err
}
