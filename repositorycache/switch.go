package repositorycache

import "sync/atomic"

// Switch is the global cache disable flag. While disabled, reads bypass the
// cache entirely. A nil Switch is never disabled.
type Switch struct {
	disabled atomic.Bool
}

// NewSwitch returns a switch in the given state.
func NewSwitch(disabled bool) *Switch {
	s := &Switch{}
	s.disabled.Store(disabled)
	return s
}

// Disable makes every read bypass the cache.
func (s *Switch) Disable() { s.disabled.Store(true) }

// Enable restores normal cache routing.
func (s *Switch) Enable() { s.disabled.Store(false) }

// Disabled reports whether the cache is switched off.
func (s *Switch) Disabled() bool {
	return s != nil && s.disabled.Load()
}
