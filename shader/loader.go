// Package shader loads GLSL source text by shader id.
package shader

import (
	"context"
	"io/fs"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// ErrNotFound is returned for unknown shader ids and missing files.
var ErrNotFound = errors.New("shader not found")

// Loader reads shader sources from a file system. Concurrent loads of the
// same id share one read.
type Loader struct {
	fsys  fs.FS
	mu    sync.RWMutex
	paths map[string]string
	group singleflight.Group
}

// NewLoader creates a loader reading the files named in paths from fsys.
func NewLoader(fsys fs.FS, paths map[string]string) *Loader {
	l := &Loader{
		fsys:  fsys,
		paths: make(map[string]string, len(paths)),
	}
	for id, p := range paths {
		l.paths[id] = p
	}
	return l
}

// NewBuiltinLoader creates a loader for the bundled shaders.
func NewBuiltinLoader() *Loader {
	return NewLoader(Builtin(), DefaultPaths())
}

// Load returns the source of the shader with the given id.
func (l *Loader) Load(ctx context.Context, id string) (string, error) {
	path, ok := l.Path(id)
	if !ok {
		return "", errors.Wrapf(ErrNotFound, "unknown shader id %q", id)
	}

	ch := l.group.DoChan(id, func() (interface{}, error) {
		data, err := fs.ReadFile(l.fsys, path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, errors.Wrapf(ErrNotFound, "%s: %s", id, path)
			}
			return nil, errors.Wrapf(err, "read %s", path)
		}
		return string(data), nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return "", r.Err
		}
		return r.Val.(string), nil
	}
}

// Path returns the file name registered for id.
func (l *Loader) Path(id string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.paths[id]
	return p, ok
}

// IDs returns the registered fragment shader ids, sorted.
func (l *Loader) IDs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return IDs(l.paths)
}

// Forget drops any in-progress load of id so the next Load reads the file
// again. It is used after the file changed on disk.
func (l *Loader) Forget(id string) {
	l.group.Forget(id)
}
