package menu

import "sync/atomic"

// Holder hands the current menu to concurrent readers. A reload swaps the
// whole menu; readers keep the one they loaded.
type Holder struct {
	cur atomic.Pointer[Menu]
}

// NewHolder returns a Holder serving m.
func NewHolder(m *Menu) *Holder {
	h := &Holder{}
	h.cur.Store(m)
	return h
}

// Load returns the current menu.
func (h *Holder) Load() *Menu { return h.cur.Load() }

// Store replaces the current menu.
func (h *Holder) Store(m *Menu) { h.cur.Store(m) }
