package backend

import "sync"

// authHub fans auth updates out to subscribers. All three variants embed one.
type authHub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(AuthUpdate)
}

func newAuthHub() *authHub {
	return &authHub{subs: make(map[int]func(AuthUpdate))}
}

// Subscribe registers fn and returns an unsubscribe func.
func (h *authHub) Subscribe(fn func(AuthUpdate)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

// publish delivers an update to every subscriber synchronously.
func (h *authHub) publish(u AuthUpdate) {
	h.mu.Lock()
	fns := make([]func(AuthUpdate), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(u)
	}
}
