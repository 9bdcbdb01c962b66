package input

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name  string
		event sdl.Event
		want  Event
		ok    bool
	}{
		{"quit", &sdl.QuitEvent{Type: sdl.QUIT}, Event{Type: EventQuit}, true},
		{
			"resize",
			&sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_RESIZED, Data1: 640, Data2: 480},
			Event{Type: EventWindowResize, Width: 640, Height: 480},
			true,
		},
		{"window focus", &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_FOCUS_GAINED}, Event{}, false},
		{
			"key down",
			&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_W}},
			Event{Type: EventKeyDown, Key: sdl.SCANCODE_W},
			true,
		},
		{
			"key repeat",
			&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Repeat: 1, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_W}},
			Event{Type: EventKeyDown, Key: sdl.SCANCODE_W, Repeat: true},
			true,
		},
		{
			"mouse move",
			&sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, X: 10, Y: 20, XRel: -3, YRel: 4},
			Event{Type: EventMouseMove, MouseX: 10, MouseY: 20, RelX: -3, RelY: 4},
			true,
		},
		{
			"button up",
			&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONUP, X: 1, Y: 2, Button: sdl.BUTTON_LEFT},
			Event{Type: EventMouseUp, MouseX: 1, MouseY: 2, Button: sdl.BUTTON_LEFT},
			true,
		},
		{"wheel", &sdl.MouseWheelEvent{Type: sdl.MOUSEWHEEL, Y: -1}, Event{Type: EventMouseWheel, Wheel: -1}, true},
		{"text", &sdl.TextInputEvent{Type: sdl.TEXTINPUT}, Event{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Translate(tt.event)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("Translate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHeldKeys(t *testing.T) {
	in := New()
	in.Feed(&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_D}})

	if !in.IsKeyDown(sdl.SCANCODE_D) || !in.IsKeyPressed(sdl.SCANCODE_D) {
		t.Fatal("expected D held and pressed")
	}
	if got := in.Axis(sdl.SCANCODE_A, sdl.SCANCODE_D); got != 1 {
		t.Errorf("Axis = %f, want 1", got)
	}

	in.Feed(&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_A}})
	if got := in.Axis(sdl.SCANCODE_A, sdl.SCANCODE_D); got != 0 {
		t.Errorf("Axis with both held = %f, want 0", got)
	}

	in.Feed(&sdl.KeyboardEvent{Type: sdl.KEYUP, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_D}})
	if got := in.Axis(sdl.SCANCODE_A, sdl.SCANCODE_D); got != -1 {
		t.Errorf("Axis = %f, want -1", got)
	}
	if len(in.Events()) != 3 {
		t.Errorf("events = %d, want 3", len(in.Events()))
	}
}
