package wipe

import "sync"

// Chunk buffers are pooled by size class.
type bufferPool struct {
	mu    sync.RWMutex
	pools map[int]*sync.Pool
}

var buffers = &bufferPool{pools: make(map[int]*sync.Pool)}

// GetBuffer returns a buffer of exactly size bytes.
func GetBuffer(size int) []byte {
	if size <= 0 {
		return nil
	}
	return buffers.get(size)
}

// PutBuffer returns buf to the pool. The contents are zeroed first so random
// data does not linger in memory.
func PutBuffer(buf []byte) {
	if cap(buf) == 0 {
		return
	}
	buffers.put(buf)
}

func (bp *bufferPool) get(size int) []byte {
	class := sizeClass(size)

	bp.mu.RLock()
	pool, ok := bp.pools[class]
	bp.mu.RUnlock()

	if !ok {
		bp.mu.Lock()
		pool, ok = bp.pools[class]
		if !ok {
			pool = &sync.Pool{New: func() interface{} { return make([]byte, class) }}
			bp.pools[class] = pool
		}
		bp.mu.Unlock()
	}

	buf := pool.Get().([]byte)
	return buf[:size]
}

func (bp *bufferPool) put(buf []byte) {
	class := sizeClass(cap(buf))
	if class != cap(buf) {
		return
	}

	bp.mu.RLock()
	pool, ok := bp.pools[class]
	bp.mu.RUnlock()
	if !ok {
		return
	}

	full := buf[:cap(buf)]
	clear(full)
	pool.Put(full)
}

func sizeClass(size int) int {
	for _, class := range []int{64 << 10, 1 << 20, 4 << 20, 16 << 20} {
		if size <= class {
			return class
		}
	}
	return ((size + 4095) / 4096) * 4096
}
