// Package main is the entry point for the lumen model viewer.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/lumen/internal/config"
	"github.com/Faultbox/lumen/internal/engine"
	"github.com/Faultbox/lumen/internal/engine/camera"
	"github.com/Faultbox/lumen/internal/engine/input"
	"github.com/Faultbox/lumen/internal/engine/lighting"
	"github.com/Faultbox/lumen/internal/engine/model"
	"github.com/Faultbox/lumen/internal/engine/skybox"
	"github.com/Faultbox/lumen/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== lumen viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	e, err := engine.New(cfg)
	if err != nil {
		logger.Error("failed to create engine", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		if err := e.Close(); err != nil {
			logger.Warn("engine close", zap.Error(err))
		}
	}()

	if err := e.Run(&viewer{}); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("viewer closed normally")
}

// viewer shows one model lit by the configured lights, with an orbit camera
// (mouse drag and wheel) and a fly camera (WASD, Space, Ctrl) toggled by Tab.
// F12 saves a screenshot.
type viewer struct {
	model  *model.Model
	sky    *skybox.Skybox
	orbit  *camera.OrbitCamera
	fly    *camera.FlyCamera
	flying bool

	dragging   bool
	flashlight int
	screenshot bool
}

func assetPath(cfg *config.Config, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cfg.Assets.Root, p)
}

func (v *viewer) Init(e *engine.Engine) error {
	cfg := e.Config()
	if cfg.Assets.Model == "" {
		return errors.New("no model configured, pass --model or set assets.model")
	}

	v.addLights(e)

	v.model = model.LoadModel(e, assetPath(cfg, cfg.Assets.Model), model.WithOutColour(cfg.Graphics.OutColour))
	if v.model.NumMeshes() == 0 {
		return fmt.Errorf("model %s has no meshes", cfg.Assets.Model)
	}
	v.model.Init(e)
	e.Surface().SetTitle(cfg.Window.Title + " - " + filepath.Base(cfg.Assets.Model))

	v.orbit = camera.NewOrbitCamera()
	b := v.model.Bounds()
	v.orbit.FitToBounds(b.Min, b.Max)
	v.fly = camera.NewFlyCamera(v.orbit.Position())

	if len(cfg.Assets.Skybox) == 6 {
		var faces [6]string
		for i, f := range cfg.Assets.Skybox {
			faces[i] = assetPath(cfg, f)
		}
		sky, err := skybox.New(e.Resources(), e.Renderer3D(), faces, "skybox", cfg.Graphics.OutColour)
		if err != nil {
			logger.Warn("skybox disabled", zap.Error(err))
		} else {
			v.sky = sky
		}
	} else if len(cfg.Assets.Skybox) > 0 {
		logger.Warn("skybox needs six faces", zap.Int("faces", len(cfg.Assets.Skybox)))
	}

	v.updateCamera(e)
	logger.Info("viewer ready",
		zap.Int("meshes", v.model.NumMeshes()),
		zap.Int("lights", e.Lights().Count()),
		zap.Bool("skybox", v.sky != nil),
	)
	return nil
}

func (v *viewer) addLights(e *engine.Engine) {
	lc := e.Config().Lighting
	lights := e.Lights()
	if lc.Sun.Enabled {
		lights.AddDirLight(lighting.NewSun(lc.Sun.Azimuth, lc.Sun.Elevation, lc.Sun.Colour))
	}
	for _, p := range lc.Points {
		r := p.Range
		if r == 0 {
			r = config.DefaultPointRange
		}
		lights.AddPointLight(lighting.NewPointLight(p.Position, p.Colour, r))
	}
	v.flashlight = -1
	if lc.Flashlight {
		v.flashlight = lights.AddFlashLight(lighting.NewSpotLight(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{1, 1, 1}, 12.5, 17.5, 50))
	}
}

func (v *viewer) current() camera.Camera {
	if v.flying {
		return v.fly
	}
	return v.orbit
}

func (v *viewer) ProcessInput(e *engine.Engine, events []input.Event, dt float64) {
	for _, ev := range events {
		switch ev.Type {
		case input.EventKeyDown:
			if ev.Key == sdl.SCANCODE_F12 && !ev.Repeat {
				v.screenshot = true
			}
			if ev.Key == sdl.SCANCODE_TAB && !ev.Repeat {
				v.flying = !v.flying
				if v.flying {
					v.fly = camera.NewFlyCamera(v.orbit.Position())
					v.fly.Face(v.orbit.Front())
				}
				e.Surface().SetMouseCaptured(v.flying)
			}
		case input.EventMouseDown:
			if ev.Button == sdl.BUTTON_LEFT {
				v.dragging = true
			}
		case input.EventMouseUp:
			if ev.Button == sdl.BUTTON_LEFT {
				v.dragging = false
			}
		case input.EventMouseMove:
			if v.flying {
				v.fly.HandleLook(float32(ev.RelX), float32(ev.RelY))
			} else if v.dragging {
				v.orbit.HandleDrag(float32(ev.RelX), float32(ev.RelY))
			}
		case input.EventMouseWheel:
			if v.flying {
				v.fly.HandleZoom(ev.Wheel)
				e.Renderer3D().SetFOV(v.fly.Zoom)
			} else {
				v.orbit.HandleZoom(ev.Wheel)
			}
		}
	}

	if v.flying {
		in := e.Input()
		v.fly.HandleMovement(
			in.Axis(sdl.SCANCODE_S, sdl.SCANCODE_W),
			in.Axis(sdl.SCANCODE_A, sdl.SCANCODE_D),
			in.Axis(sdl.SCANCODE_LCTRL, sdl.SCANCODE_SPACE),
			float32(dt),
		)
	}
}

func (v *viewer) updateCamera(e *engine.Engine) {
	cam := v.current()
	e.Renderer3D().UseCamera(cam)
	if v.flashlight >= 0 {
		lights := e.Lights()
		fl := lights.FlashLights()[v.flashlight]
		fl.Position = cam.Position()
		fl.Direction = cam.Front()
		if err := lights.SetFlashLight(v.flashlight, fl); err != nil {
			logger.Warn("flashlight update failed", zap.Error(err))
		}
	}
}

func (v *viewer) Update(e *engine.Engine, dt float64) {
	v.updateCamera(e)
	v.model.UpdatePerspective(e)
}

func (v *viewer) Render(e *engine.Engine) {
	v.model.Draw(mgl32.Ident4())
	if v.sky != nil {
		v.sky.Draw(mgl32.Ident4())
	}
	if v.screenshot {
		v.screenshot = false
		if _, err := e.Screenshot(); err != nil {
			logger.Warn("screenshot failed", zap.Error(err))
		}
	}
}
