// Package window owns the SDL2 window and its OpenGL 4.1 core context.
package window

import (
	"fmt"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/lumen/internal/logger"
)

func init() {
	// GL calls must stay on the thread that created the context
	runtime.LockOSThread()
}

// Config describes the window to open.
type Config struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
	// Samples enables multisampling when greater than 1.
	Samples int
}

// Window is an SDL2 window with a current GL context.
type Window struct {
	win *sdl.Window
	ctx sdl.GLContext
}

// contextAttributes match the "#version 410 core" sources the engine generates.
func contextAttributes(samples int) map[sdl.GLattr]int {
	attrs := map[sdl.GLattr]int{
		sdl.GL_CONTEXT_MAJOR_VERSION: 4,
		sdl.GL_CONTEXT_MINOR_VERSION: 1,
		sdl.GL_CONTEXT_PROFILE_MASK:  sdl.GL_CONTEXT_PROFILE_CORE,
		sdl.GL_DOUBLEBUFFER:          1,
		sdl.GL_DEPTH_SIZE:            24,
	}
	if samples > 1 {
		attrs[sdl.GL_MULTISAMPLEBUFFERS] = 1
		attrs[sdl.GL_MULTISAMPLESAMPLES] = samples
	}
	return attrs
}

// New initializes SDL video, opens the window and makes its GL context current.
func New(cfg Config) (*Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	var attrErr error
	for attr, value := range contextAttributes(cfg.Samples) {
		attrErr = multierr.Append(attrErr, sdl.GLSetAttribute(attr, value))
	}
	if attrErr != nil {
		logger.Warn("GL attributes rejected", zap.Error(attrErr))
	}

	flags := uint32(sdl.WINDOW_OPENGL | sdl.WINDOW_RESIZABLE | sdl.WINDOW_ALLOW_HIGHDPI)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}

	win, err := sdl.CreateWindow(cfg.Title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width), int32(cfg.Height), flags)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	ctx, err := win.GLCreateContext()
	if err != nil {
		win.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}

	w := &Window{win: win, ctx: ctx}
	w.SetVSync(cfg.VSync)

	width, height := w.Size()
	logger.Info("window created",
		zap.String("title", cfg.Title),
		zap.Int("drawable_width", width),
		zap.Int("drawable_height", height),
		zap.Bool("fullscreen", cfg.Fullscreen),
		zap.Int("samples", cfg.Samples),
	)
	return w, nil
}

// SetVSync prefers adaptive sync and falls back to plain vsync.
func (w *Window) SetVSync(enabled bool) {
	if !enabled {
		if err := sdl.GLSetSwapInterval(0); err != nil {
			logger.Warn("failed to disable vsync", zap.Error(err))
		}
		return
	}
	if sdl.GLSetSwapInterval(-1) == nil {
		return
	}
	if err := sdl.GLSetSwapInterval(1); err != nil {
		logger.Warn("failed to enable vsync", zap.Error(err))
	}
}

// Close deletes the context, destroys the window and shuts SDL down.
// Calling it again does nothing.
func (w *Window) Close() error {
	if w.win == nil {
		return nil
	}
	logger.Info("closing window")

	sdl.GLDeleteContext(w.ctx)
	err := w.win.Destroy()
	w.win, w.ctx = nil, nil
	sdl.Quit()
	return err
}

// SwapBuffers presents the back buffer.
func (w *Window) SwapBuffers() {
	w.win.GLSwap()
}

// Size returns the drawable size in pixels, which differs from the window
// size on high-DPI displays.
func (w *Window) Size() (int, int) {
	width, height := w.win.GLGetDrawableSize()
	return int(width), int(height)
}

// SetTitle replaces the window title.
func (w *Window) SetTitle(title string) {
	w.win.SetTitle(title)
}

// SetMouseCaptured hides the cursor and reports relative motion while captured.
func (w *Window) SetMouseCaptured(captured bool) {
	sdl.SetRelativeMouseMode(captured)
}
