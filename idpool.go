package tracekit

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"
	"sync"
)

// idPool manages a pool of pre-generated random IDs to amortize
// crypto/rand overhead off the span-creation path.
type idPool struct {
	ids    chan uint64
	stopCh chan struct{}
	mu     sync.Mutex
	closed bool
}

// newIDPool creates an ID pool with the specified capacity and starts its
// background refill goroutine.
func newIDPool(capacity int) *idPool {
	pool := &idPool{
		ids:    make(chan uint64, capacity),
		stopCh: make(chan struct{}),
	}
	go pool.refill()
	return pool
}

// get retrieves an ID from the pool or generates one directly if the pool
// is empty (burst load). Never blocks.
func (p *idPool) get() uint64 {
	select {
	case id := <-p.ids:
		return id
	default:
		return randomID()
	}
}

// refill keeps the pool topped up in the background.
func (p *idPool) refill() {
	for {
		select {
		case <-p.stopCh:
			return
		case p.ids <- randomID():
		}
	}
}

// close shuts down the refill goroutine. Idempotent.
func (p *idPool) close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.closed {
		close(p.stopCh)
		p.closed = true
	}
}

// randomID draws a nonzero 64-bit random identifier. Uniqueness is
// probabilistic: collisions are possible but vanishingly rare.
func randomID() uint64 {
	var buf [8]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			// Fallback if crypto/rand fails. math/rand/v2's global
			// source is safe for concurrent use.
			if id := mrand.Uint64(); id != 0 {
				return id
			}
			continue
		}
		if id := binary.BigEndian.Uint64(buf[:]); id != 0 {
			return id
		}
	}
}
