package shader

import (
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// debounce suppresses repeated events for one file.
const debounce = 100 * time.Millisecond

// Watcher reports shader files in a directory which changed on disk.
type Watcher struct {
	watcher *fsnotify.Watcher
	changes chan string
	done    chan struct{}
	wg      sync.WaitGroup
	last    map[string]time.Time
}

// NewWatcher starts watching dir. Changed shaders are reported by id on
// the Changes channel.
func NewWatcher(dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "shader: create watcher")
	}

	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, errors.Wrapf(err, "shader: watch %s", dir)
	}

	w := &Watcher{
		watcher: fw,
		changes: make(chan string, 8),
		done:    make(chan struct{}),
		last:    make(map[string]time.Time),
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Changes returns the channel on which changed shader ids are posted.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Name implements systems.System.
func (w *Watcher) Name() string { return "watcher" }

// Startup implements systems.System.
func (w *Watcher) Startup() error { return nil }

// Shutdown implements systems.System.
func (w *Watcher) Shutdown() error {
	return w.Close()
}

// Close stops watching.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}

	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if id, ok := w.accept(ev.Name, time.Now()); ok {
				w.post(id)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Println("shader: watcher:", err)
		}
	}
}

// accept returns the shader id for path unless the file is not a shader or
// was reported less than debounce ago.
func (w *Watcher) accept(path string, now time.Time) (string, bool) {
	id, ok := IDFromPath(path)
	if !ok {
		return "", false
	}
	if t, seen := w.last[id]; seen && now.Sub(t) < debounce {
		return "", false
	}
	w.last[id] = now
	return id, true
}

func (w *Watcher) post(id string) {
	select {
	case w.changes <- id:
	case <-w.done:
	default:
		log.Printf("shader: dropping change of %s; consumer is behind", id)
	}
}

// IDFromPath returns the shader id for a shader file path.
func IDFromPath(path string) (string, bool) {
	base := filepath.Base(path)
	if filepath.Ext(base) != Ext {
		return "", false
	}
	return strings.TrimSuffix(base, Ext), true
}

// DirPaths lists the shader files in dir as an id to file name map,
// suitable for NewLoader with os.DirFS(dir).
func DirPaths(dir string) (map[string]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+Ext))
	if err != nil {
		return nil, errors.Wrapf(err, "shader: list %s", dir)
	}

	paths := make(map[string]string, len(matches))
	for _, m := range matches {
		id, _ := IDFromPath(m)
		paths[id] = filepath.Base(m)
	}
	return paths, nil
}
