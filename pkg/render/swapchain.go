package render

import "sync"

// SwapChain owns a front and a back framebuffer. The renderer draws into
// Back; Swap exchanges the roles without copying pixels. Presenters read
// the front buffer through Present or FrontPixels, which hold the read
// lock so a concurrent Swap never exposes a half-drawn frame.
type SwapChain struct {
	mu      sync.RWMutex
	buffers [2]*Framebuffer
	front   int
}

// NewSwapChain allocates two framebuffers of the given size.
func NewSwapChain(width, height int) (*SwapChain, error) {
	a, err := NewFramebuffer(width, height)
	if err != nil {
		return nil, err
	}
	b, err := NewFramebuffer(width, height)
	if err != nil {
		return nil, err
	}
	return &SwapChain{buffers: [2]*Framebuffer{a, b}}, nil
}

// Back returns the buffer currently being drawn. Only the rendering
// goroutine may use it.
func (s *SwapChain) Back() *Framebuffer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buffers[1-s.front]
}

// Swap makes the back buffer the new front buffer.
func (s *SwapChain) Swap() {
	s.mu.Lock()
	s.front = 1 - s.front
	s.mu.Unlock()
}

// Present calls fn with the front buffer under the read lock. fn must not
// retain the buffer.
func (s *SwapChain) Present(fn func(*Framebuffer)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.buffers[s.front])
}

// FrontPixels returns a copy of the front color plane.
func (s *SwapChain) FrontPixels() []byte {
	var out []byte
	s.Present(func(fb *Framebuffer) {
		out = make([]byte, len(fb.color))
		copy(out, fb.color)
	})
	return out
}
