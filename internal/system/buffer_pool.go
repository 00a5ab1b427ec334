package system

import (
	"sync"

	"github.com/ivlev/quiz2video/internal/raster"
)

type frameSize struct {
	w, h int
}

// FramePool предоставляет механизмы повторного использования кадров RGB24
// для снижения нагрузки на Garbage Collector (GC).
type FramePool struct {
	pools map[frameSize]*sync.Pool
	mu    sync.RWMutex
}

func NewFramePool() *FramePool {
	return &FramePool{pools: make(map[frameSize]*sync.Pool)}
}

// Get возвращает кадр из пула или создает новый.
// Содержимое кадра не определено.
func (p *FramePool) Get(width, height int) *raster.Frame {
	key := frameSize{width, height}
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		// Double check
		pool, exists = p.pools[key]
		if !exists {
			pool = &sync.Pool{
				New: func() any {
					return raster.NewFrame(width, height)
				},
			}
			p.pools[key] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*raster.Frame)
}

// Put возвращает кадр в пул для повторного использования.
func (p *FramePool) Put(f *raster.Frame) {
	if f == nil {
		return
	}
	p.mu.RLock()
	pool, exists := p.pools[frameSize{f.Width, f.Height}]
	p.mu.RUnlock()

	if exists {
		pool.Put(f)
	}
}
