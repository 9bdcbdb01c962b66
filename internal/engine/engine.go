// Package engine runs the frame loop and owns the subsystems a game uses:
// window, graphics device, resource cache, light registry, 3D camera state
// and sound playback.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/lumen/internal/config"
	"github.com/Faultbox/lumen/internal/engine/audio"
	"github.com/Faultbox/lumen/internal/engine/debug"
	"github.com/Faultbox/lumen/internal/engine/gpu"
	"github.com/Faultbox/lumen/internal/engine/input"
	"github.com/Faultbox/lumen/internal/engine/lighting"
	"github.com/Faultbox/lumen/internal/engine/model"
	"github.com/Faultbox/lumen/internal/engine/resource"
	"github.com/Faultbox/lumen/internal/engine/window"
	"github.com/Faultbox/lumen/internal/logger"
)

// Game is the hook a program implements to drive the engine.
type Game interface {
	// Init loads resources. It runs once before the first frame.
	Init(e *Engine) error
	ProcessInput(e *Engine, events []input.Event, dt float64)
	Update(e *Engine, dt float64)
	Render(e *Engine)
}

// Surface is the window the engine presents to.
type Surface interface {
	SwapBuffers()
	Size() (int, int)
	SetMouseCaptured(captured bool)
	SetTitle(title string)
	Close() error
}

// EventSource delivers input once per frame.
type EventSource interface {
	// Update polls pending events and reports whether quit was requested.
	Update() bool
	Events() []input.Event
	IsKeyDown(key sdl.Scancode) bool
	IsKeyPressed(key sdl.Scancode) bool
	Axis(neg, pos sdl.Scancode) float32
}

// SoundPlayer plays a sound file.
type SoundPlayer interface {
	Play(path string) error
	Close() error
}

// Engine owns the subsystems and runs the loop.
type Engine struct {
	cfg *config.Config

	surface  Surface
	input    EventSource
	dev      gpu.FrameDevice
	res      *resource.Manager
	lights   *lighting.Manager
	renderer *Renderer3D
	sound    SoundPlayer
	shots    *debug.Screenshotter

	running bool
	closed  bool
	frames  uint64
}

// New opens the window, the GL device and audio, then builds the resource
// cache and light registry from cfg.
func New(cfg *config.Config) (*Engine, error) {
	logger.Info("initializing engine",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.Bool("debug", cfg.Debug.Enabled),
	)

	win, err := window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
		Samples:    cfg.Window.Samples,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// the device needs the context the window just made current
	dev, err := gpu.NewGLDevice()
	if err != nil {
		win.Close()
		return nil, fmt.Errorf("failed to create device: %w", err)
	}

	var sound SoundPlayer
	if cfg.Audio.Enabled {
		p := audio.New()
		p.SetMasterVolume(cfg.Audio.MasterVolume)
		p.SetSFXVolume(cfg.Audio.SFXVolume)
		if err := p.Init(); err != nil {
			logger.Warn("audio disabled", zap.Error(err))
		} else {
			sound = p
		}
	}

	return newEngine(cfg, win, input.New(), dev, sound)
}

func newEngine(cfg *config.Config, surface Surface, events EventSource, dev gpu.FrameDevice, sound SoundPlayer) (*Engine, error) {
	e := &Engine{
		cfg:     cfg,
		surface: surface,
		input:   events,
		dev:     dev,
		sound:   sound,
		res:     resource.NewManager(dev, resource.WithDebug(cfg.Debug.Enabled)),
		lights:  lighting.NewManager(),
		shots:   debug.NewScreenshotter(cfg.Debug.ScreenshotDir, "lumen"),
	}

	width, height := surface.Size()
	dev.Viewport(width, height)
	e.renderer = NewRenderer3D(cfg.Graphics.FOV, cfg.Graphics.Near, cfg.Graphics.Far, width, height)

	if cfg.Debug.HotReload {
		if err := e.res.WatchShaders(); err != nil {
			logger.Warn("shader hot reload disabled", zap.Error(err))
		}
	}
	return e, nil
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() *config.Config { return e.cfg }

// Device returns the graphics device.
func (e *Engine) Device() gpu.Device { return e.dev }

// Resources returns the resource cache.
func (e *Engine) Resources() *resource.Manager { return e.res }

// Lights returns the light registry.
func (e *Engine) Lights() *lighting.Manager { return e.lights }

// Renderer returns the camera state as seen by meshes.
func (e *Engine) Renderer() model.Viewer { return e.renderer }

// Renderer3D returns the camera state for updating.
func (e *Engine) Renderer3D() *Renderer3D { return e.renderer }

// Input returns the input state of the current frame.
func (e *Engine) Input() EventSource { return e.input }

// Surface returns the window.
func (e *Engine) Surface() Surface { return e.surface }

// Frames returns the number of completed frames.
func (e *Engine) Frames() uint64 { return e.frames }

// Stop ends the loop after the current frame.
func (e *Engine) Stop() {
	e.running = false
}

// PlaySound plays the sound registered under name. Without audio it only logs.
func (e *Engine) PlaySound(name string) error {
	path, err := e.res.GetSound(name)
	if err != nil {
		return err
	}
	if e.sound == nil {
		logger.Debug("sound skipped, audio disabled", zap.String("name", name))
		return nil
	}
	if err := e.sound.Play(path); err != nil {
		return fmt.Errorf("play %q: %w", name, err)
	}
	return nil
}

// Screenshot saves the current back buffer as a PNG and returns its path.
func (e *Engine) Screenshot() (string, error) {
	width, height := e.surface.Size()
	path, err := e.shots.Capture(e.dev, width, height)
	if err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	logger.Info("screenshot saved", zap.String("path", path))
	return path, nil
}

// Run calls g.Init and then runs frames until quit is requested, Escape is
// pressed or g calls Stop.
func (e *Engine) Run(g Game) error {
	if e.closed {
		return errors.New("engine closed")
	}
	if err := g.Init(e); err != nil {
		return fmt.Errorf("game init: %w", err)
	}

	e.running = true
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := lastTime

	logger.Info("starting frame loop")
	for e.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if e.input.Update() {
			break
		}
		events := e.input.Events()
		for _, event := range events {
			switch event.Type {
			case input.EventWindowResize:
				width, height := e.surface.Size()
				e.dev.Viewport(width, height)
				e.renderer.Resize(width, height)
			case input.EventKeyDown:
				if event.Key == sdl.SCANCODE_ESCAPE {
					e.running = false
				}
			}
		}

		g.ProcessInput(e, events, dt)
		g.Update(e, dt)

		c := e.cfg.Graphics.ClearColour
		e.dev.Clear(c[0], c[1], c[2], c[3])
		g.Render(e)

		if n := e.res.PollReloads(); n > 0 {
			logger.Info("shaders reloaded", zap.Int("count", n))
		}
		e.surface.SwapBuffers()
		e.frames++

		frameCount++
		if now.Sub(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("frames", frameCount))
			frameCount = 0
			fpsTimer = now
		}
	}
	e.running = false
	logger.Info("frame loop stopped", zap.Uint64("frames", e.frames))
	return nil
}

// Close clears the resource cache (running the unused-resource audit in
// debug), then shuts down audio and the window. Safe to call more than once.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	logger.Info("closing engine")

	var err error
	err = multierr.Append(err, e.res.Close())
	if e.sound != nil {
		err = multierr.Append(err, e.sound.Close())
	}
	err = multierr.Append(err, e.surface.Close())
	return err
}
