package lighting

import "fmt"

// Counts is a per-category snapshot of the registry.
type Counts struct {
	Dir   int
	Point int
	Spot  int
	Flash int
}

// Total returns the number of lights of all categories.
func (c Counts) Total() int {
	return c.Dir + c.Point + c.Spot + c.Flash
}

// Spots returns the size of the shader spot light array (spot + flash).
func (c Counts) Spots() int {
	return c.Spot + c.Flash
}

// Manager is the ordered light registry. Lights keep insertion order within
// their category; that order is the shader array index order.
//
// Every mutation increments Version so readers can detect changes cheaply.
type Manager struct {
	dir   []DirLight
	point []PointLight
	spot  []SpotLight
	flash []FlashLight

	version uint64
}

// NewManager returns an empty registry.
func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) touch() {
	m.version++
}

// AddDirLight appends a directional light and returns its index.
func (m *Manager) AddDirLight(l DirLight) int {
	m.dir = append(m.dir, l)
	m.touch()
	return len(m.dir) - 1
}

// AddPointLight appends a point light and returns its index.
func (m *Manager) AddPointLight(l PointLight) int {
	m.point = append(m.point, l)
	m.touch()
	return len(m.point) - 1
}

// AddSpotLight appends a spot light and returns its index.
func (m *Manager) AddSpotLight(l SpotLight) int {
	m.spot = append(m.spot, l)
	m.touch()
	return len(m.spot) - 1
}

// AddFlashLight appends a flash light and returns its index among flash lights.
func (m *Manager) AddFlashLight(l FlashLight) int {
	m.flash = append(m.flash, l)
	m.touch()
	return len(m.flash) - 1
}

// DirLights returns the directional lights in insertion order. The slice must not be modified.
func (m *Manager) DirLights() []DirLight { return m.dir }

// PointLights returns the point lights in insertion order. The slice must not be modified.
func (m *Manager) PointLights() []PointLight { return m.point }

// SpotLights returns the true spot lights in insertion order. The slice must not be modified.
func (m *Manager) SpotLights() []SpotLight { return m.spot }

// FlashLights returns the flash lights in insertion order. The slice must not be modified.
func (m *Manager) FlashLights() []FlashLight { return m.flash }

// Spots returns spot lights followed by flash lights, the layout of the
// shader spotLights array.
func (m *Manager) Spots() []SpotLight {
	out := make([]SpotLight, 0, len(m.spot)+len(m.flash))
	out = append(out, m.spot...)
	return append(out, m.flash...)
}

// SetDirLight replaces the directional light at i.
func (m *Manager) SetDirLight(i int, l DirLight) error {
	if i < 0 || i >= len(m.dir) {
		return fmt.Errorf("dir light %d out of range [0,%d)", i, len(m.dir))
	}
	m.dir[i] = l
	m.touch()
	return nil
}

// SetPointLight replaces the point light at i.
func (m *Manager) SetPointLight(i int, l PointLight) error {
	if i < 0 || i >= len(m.point) {
		return fmt.Errorf("point light %d out of range [0,%d)", i, len(m.point))
	}
	m.point[i] = l
	m.touch()
	return nil
}

// SetSpotLight replaces the spot light at i.
func (m *Manager) SetSpotLight(i int, l SpotLight) error {
	if i < 0 || i >= len(m.spot) {
		return fmt.Errorf("spot light %d out of range [0,%d)", i, len(m.spot))
	}
	m.spot[i] = l
	m.touch()
	return nil
}

// SetFlashLight replaces the flash light at i.
func (m *Manager) SetFlashLight(i int, l FlashLight) error {
	if i < 0 || i >= len(m.flash) {
		return fmt.Errorf("flash light %d out of range [0,%d)", i, len(m.flash))
	}
	m.flash[i] = l
	m.touch()
	return nil
}

// Count returns the total number of lights. Models compare it between
// frames to decide whether mesh shaders must be regenerated.
func (m *Manager) Count() int {
	return len(m.dir) + len(m.point) + len(m.spot) + len(m.flash)
}

// SpotCount returns the length of the shader spotLights array.
func (m *Manager) SpotCount() int {
	return len(m.spot) + len(m.flash)
}

// Counts returns the per-category sizes.
func (m *Manager) Counts() Counts {
	return Counts{Dir: len(m.dir), Point: len(m.point), Spot: len(m.spot), Flash: len(m.flash)}
}

// Signature identifies the shader layout the current lights need. Unlike
// Count it distinguishes a point light from a directional one.
func (m *Manager) Signature() string {
	return fmt.Sprintf("d%d-p%d-s%d", len(m.dir), len(m.point), m.SpotCount())
}

// Version increases on every mutation.
func (m *Manager) Version() uint64 {
	return m.version
}

// Clear removes every light.
func (m *Manager) Clear() {
	m.dir = nil
	m.point = nil
	m.spot = nil
	m.flash = nil
	m.touch()
}
