package resource

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchShaders starts watching the source directories of every file-backed
// shader. Changes are queued and applied by PollReloads on the render thread.
func (m *Manager) WatchShaders() error {
	if m.watcher != nil {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create shader watcher: %w", err)
	}
	m.watcher = w
	m.changed = make(chan string, 64)
	m.done = make(chan struct{})

	for _, e := range m.shaders {
		m.watchPaths(e.vertexPath, e.fragmentPath)
	}

	go func(w *fsnotify.Watcher, changed chan<- string, done <-chan struct{}) {
		for {
			select {
			case <-done:
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				select {
				case changed <- filepath.Clean(event.Name):
				default:
					// queue full; the next poll reloads what is already queued
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				m.log.Warn("shader watcher error", zap.Error(err))
			}
		}
	}(w, m.changed, m.done)

	m.log.Info("watching shader sources", zap.Int("shaders", len(m.shaders)))
	return nil
}

func (m *Manager) watchPaths(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		dir := filepath.Dir(p)
		if err := m.watcher.Add(dir); err != nil {
			m.log.Warn("cannot watch shader directory", zap.String("dir", dir), zap.Error(err))
		}
	}
}

// PollReloads recompiles every file-backed shader whose source changed since
// the last poll and returns how many were reloaded. A failed recompile keeps
// the stored entry as the new, invalid program, like LoadShader.
func (m *Manager) PollReloads() int {
	if m.changed == nil {
		return 0
	}
	dirty := make(map[string]struct{})
drain:
	for {
		select {
		case p := <-m.changed:
			dirty[p] = struct{}{}
		default:
			break drain
		}
	}
	return m.reload(dirty)
}

func (m *Manager) reload(dirty map[string]struct{}) int {
	if len(dirty) == 0 {
		return 0
	}
	var names []string
	for name, e := range m.shaders {
		_, vs := dirty[filepath.Clean(e.vertexPath)]
		_, fs := dirty[filepath.Clean(e.fragmentPath)]
		if (vs && e.vertexPath != "") || (fs && e.fragmentPath != "") {
			names = append(names, name)
		}
	}
	for _, name := range names {
		e := m.shaders[name]
		_, wasUnused := m.unused[Key{Kind: KindShader, Name: name}]
		s := m.LoadShader(e.vertexPath, e.fragmentPath, name)
		if !wasUnused {
			m.markUsed(KindShader, name)
		}
		m.log.Info("shader reloaded", zap.String("name", name), zap.Bool("valid", s.Valid()))
	}
	return len(names)
}

func (m *Manager) stopWatching() error {
	if m.watcher == nil {
		return nil
	}
	close(m.done)
	err := m.watcher.Close()
	m.watcher = nil
	m.changed = nil
	m.done = nil
	return err
}
