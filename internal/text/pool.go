package text

import (
	"errors"
	"sync"

	"github.com/ivlev/quiz2video/internal/logging"
)

type faceKey struct {
	resource string
	size     int
}

type poolEntry struct {
	face *Face
	refs int
}

// Pool caches faces by (resource, pixel size) for the lifetime of a render
// batch, so a face is opened once instead of once per frame. Acquired faces
// are reference counted; Close releases every backend face.
//
// Faces are handed out without copying, so a Pool must serve a single
// worker at a time. Workers share the Library, not the Pool.
type Pool struct {
	lib *Library

	mu      sync.Mutex
	entries map[faceKey]*poolEntry
	closed  bool
}

var errPoolClosed = errors.New("text: pool is closed")

// NewPool returns an empty pool backed by lib.
func NewPool(lib *Library) *Pool {
	return &Pool{lib: lib, entries: make(map[faceKey]*poolEntry)}
}

// Acquire returns the cached face for (resource, size), opening it on first
// use. Every successful Acquire must be paired with Release.
func (p *Pool) Acquire(resource string, size int) (*Face, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, &FontLoadError{Resource: resource, Size: size, Err: errPoolClosed}
	}

	key := faceKey{resource: resource, size: size}
	if e, ok := p.entries[key]; ok {
		e.refs++
		return e.face, nil
	}

	face, err := p.lib.Open(resource, size)
	if err != nil {
		return nil, err
	}
	logging.Logger().Debug("glyph context opened", "font", resource, "size", size, "engine", p.lib.Engine())
	p.entries[key] = &poolEntry{face: face, refs: 1}
	return face, nil
}

// Release gives back a face obtained from Acquire. The face stays cached.
func (p *Pool) Release(f *Face) {
	if f == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if e, ok := p.entries[faceKey{resource: f.resource, size: f.size}]; ok && e.face == f && e.refs > 0 {
		e.refs--
	}
}

// Refs reports how many holders the face for (resource, size) has.
func (p *Pool) Refs(resource string, size int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.entries[faceKey{resource: resource, size: size}]; ok {
		return e.refs
	}
	return 0
}

// Len returns the number of cached faces.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Close closes every cached face. It returns ErrFacesInUse if some face was
// still acquired; those faces are closed regardless.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	inUse := false
	for key, e := range p.entries {
		if e.refs > 0 {
			inUse = true
		}
		if err := e.face.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(p.entries, key)
	}
	if inUse {
		errs = append(errs, ErrFacesInUse)
	}
	return errors.Join(errs...)
}
