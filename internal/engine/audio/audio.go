// Package audio plays the sound files registered with the resource manager.
package audio

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	"go.uber.org/zap"

	"github.com/Faultbox/lumen/internal/logger"
)

// DefaultSampleRate is the default sample rate for audio playback.
const DefaultSampleRate = beep.SampleRate(44100)

var (
	// ErrNotInitialized is returned when playing before Init.
	ErrNotInitialized = errors.New("audio not initialized")
	// ErrUnsupportedFormat is returned for file extensions without a decoder.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// Player decodes sound files once and mixes any number of them concurrently.
type Player struct {
	mu sync.RWMutex

	initialized bool
	sampleRate  beep.SampleRate

	// Volume settings (0.0 to 1.0)
	masterVolume float64
	sfxVolLevel  float64

	buffers map[string]*beep.Buffer
	mixer   *beep.Mixer
}

// New creates a player. Nothing is sent to the speaker until Init.
func New() *Player {
	return &Player{
		masterVolume: 1.0,
		sfxVolLevel:  1.0,
		buffers:      make(map[string]*beep.Buffer),
		mixer:        &beep.Mixer{},
	}
}

// Init opens the speaker.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}

	p.sampleRate = DefaultSampleRate
	if err := speaker.Init(p.sampleRate, p.sampleRate.N(time.Second/30)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(p.mixer)

	p.initialized = true
	logger.Info("audio initialized", zap.Int("sample_rate", int(p.sampleRate)))
	return nil
}

// Close stops playback and releases the speaker.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return nil
	}
	speaker.Clear()
	speaker.Close()
	p.initialized = false
	return nil
}

// Initialized reports whether Init succeeded.
func (p *Player) Initialized() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.initialized
}

// SetMasterVolume sets the master volume (0.0 to 1.0).
func (p *Player) SetMasterVolume(vol float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.masterVolume = clamp(vol, 0, 1)
}

// SetSFXVolume sets the sound effect volume (0.0 to 1.0).
func (p *Player) SetSFXVolume(vol float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sfxVolLevel = clamp(vol, 0, 1)
}

// MasterVolume returns the master volume.
func (p *Player) MasterVolume() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.masterVolume
}

// SFXVolume returns the sound effect volume.
func (p *Player) SFXVolume() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sfxVolLevel
}

// volumeToDb converts a 0-1 volume to decibel scale: 1 -> 0dB, 0.5 -> -6dB.
func volumeToDb(vol float64) float64 {
	if vol <= 0 {
		return -100
	}
	return 20 * math.Log10(vol)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Load decodes the file at path into memory, or returns the copy decoded earlier.
func (p *Player) Load(path string) (*beep.Buffer, error) {
	p.mu.RLock()
	buf, ok := p.buffers[path]
	p.mu.RUnlock()
	if ok {
		return buf, nil
	}

	buf, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.buffers[path] = buf
	p.mu.Unlock()
	logger.Debug("sound decoded",
		zap.String("path", path),
		zap.Int("samples", buf.Len()),
		zap.Int("sample_rate", int(buf.Format().SampleRate)))
	return buf, nil
}

func decodeFile(path string) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sound: %w", err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	default:
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	defer streamer.Close()

	buf := beep.NewBuffer(format)
	buf.Append(streamer)
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return buf, nil
}

// Play starts the sound at path on the shared mixer and returns immediately.
func (p *Player) Play(path string) error {
	p.mu.RLock()
	initialized := p.initialized
	rate := p.sampleRate
	vol := p.masterVolume * p.sfxVolLevel
	p.mu.RUnlock()

	if !initialized {
		return ErrNotInitialized
	}

	buf, err := p.Load(path)
	if err != nil {
		return err
	}

	var s beep.Streamer = buf.Streamer(0, buf.Len())
	if buf.Format().SampleRate != rate {
		s = beep.Resample(4, buf.Format().SampleRate, rate, s)
	}

	speaker.Lock()
	p.mixer.Add(&effects.Volume{
		Streamer: s,
		Base:     2,
		Volume:   volumeToDb(vol),
		Silent:   vol <= 0,
	})
	speaker.Unlock()
	return nil
}
