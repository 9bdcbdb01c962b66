// Package config handles engine configuration loading and management.
package config

// Config holds all engine settings.
type Config struct {
	Window   WindowConfig   `yaml:"window" toml:"window"`
	Graphics GraphicsConfig `yaml:"graphics" toml:"graphics"`
	Audio    AudioConfig    `yaml:"audio" toml:"audio"`
	Assets   AssetsConfig   `yaml:"assets" toml:"assets"`
	Lighting LightingConfig `yaml:"lighting" toml:"lighting"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
	Debug    DebugConfig    `yaml:"debug" toml:"debug"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title" toml:"title"`
	Width      int    `yaml:"width" toml:"width"`
	Height     int    `yaml:"height" toml:"height"`
	Fullscreen bool   `yaml:"fullscreen" toml:"fullscreen"`
	VSync      bool   `yaml:"vsync" toml:"vsync"`
	// Samples is the MSAA sample count; 0 or 1 disables multisampling.
	Samples int `yaml:"samples" toml:"samples"`
}

// GraphicsConfig holds rendering settings.
type GraphicsConfig struct {
	ClearColour [4]float32 `yaml:"clear_colour" toml:"clear_colour"`
	FOV         float32    `yaml:"fov" toml:"fov"`
	Near        float32    `yaml:"near" toml:"near"`
	Far         float32    `yaml:"far" toml:"far"`
	// OutColour is the fragment output variable name used by generated shaders.
	OutColour string `yaml:"out_colour" toml:"out_colour"`
}

// AudioConfig holds audio settings.
type AudioConfig struct {
	Enabled      bool    `yaml:"enabled" toml:"enabled"`
	MasterVolume float64 `yaml:"master_volume" toml:"master_volume"`
	SFXVolume    float64 `yaml:"sfx_volume" toml:"sfx_volume"`
}

// AssetsConfig holds asset locations.
type AssetsConfig struct {
	Root   string   `yaml:"root" toml:"root"`
	Model  string   `yaml:"model" toml:"model"`
	Skybox []string `yaml:"skybox" toml:"skybox"` // +X, -X, +Y, -Y, +Z, -Z
}

// LightingConfig holds the lights the viewer starts with.
type LightingConfig struct {
	Sun    SunConfig     `yaml:"sun" toml:"sun"`
	Points []PointConfig `yaml:"points" toml:"points"`
	// Flashlight attaches a flash light to the camera.
	Flashlight bool `yaml:"flashlight" toml:"flashlight"`
}

// SunConfig is a directional light given by angles in degrees.
type SunConfig struct {
	Enabled   bool       `yaml:"enabled" toml:"enabled"`
	Azimuth   float32    `yaml:"azimuth" toml:"azimuth"`
	Elevation float32    `yaml:"elevation" toml:"elevation"`
	Colour    [3]float32 `yaml:"colour" toml:"colour"`
}

// PointConfig is a point light with a range in world units. A zero range
// uses DefaultPointRange.
type PointConfig struct {
	Position [3]float32 `yaml:"position" toml:"position"`
	Colour   [3]float32 `yaml:"colour" toml:"colour"`
	Range    float32    `yaml:"range" toml:"range"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// DebugConfig enables development diagnostics.
type DebugConfig struct {
	// Enabled turns on unused-resource auditing, call-site diagnostics and
	// generated shader dumps.
	Enabled bool `yaml:"enabled" toml:"enabled"`
	// HotReload recompiles file-backed shaders when their sources change.
	HotReload bool `yaml:"hot_reload" toml:"hot_reload"`
	// ScreenshotDir receives captures taken with Engine.Screenshot.
	ScreenshotDir string `yaml:"screenshot_dir" toml:"screenshot_dir"`
}

// DefaultPointRange is the reach of a point light that sets no range.
const DefaultPointRange = 50

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "lumen",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			Samples:    4,
		},
		Graphics: GraphicsConfig{
			ClearColour: [4]float32{0.1, 0.1, 0.15, 1.0},
			FOV:         45,
			Near:        0.1,
			Far:         100,
			OutColour:   "FragColour",
		},
		Audio: AudioConfig{
			Enabled:      true,
			MasterVolume: 0.8,
			SFXVolume:    1.0,
		},
		Assets: AssetsConfig{
			Root: "assets",
		},
		Lighting: LightingConfig{
			Sun: SunConfig{
				Enabled:   true,
				Azimuth:   45,
				Elevation: 50,
				Colour:    [3]float32{1, 1, 1},
			},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Debug: DebugConfig{
			ScreenshotDir: "screenshots",
		},
	}
}
