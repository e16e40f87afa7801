package device

import "github.com/openclimate-io/climasim-core/internal/crypto"

// HistoryCapacity is the maximum number of encrypted history entries kept
// in memory.
const HistoryCapacity = 500

// History is a bounded FIFO log of encrypted reading envelopes. The node
// appends one entry per update tick and never reads entries back; the buffer
// exists purely as an append-and-bound audit trail.
//
// History is not self-locking: the owning Node serialises access through its
// own mutex.
type History struct {
	capacity int
	entries  []crypto.Envelope
}

// NewHistory creates a history buffer with the given capacity.
// A capacity below 1 falls back to HistoryCapacity.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = HistoryCapacity
	}
	return &History{
		capacity: capacity,
		entries:  make([]crypto.Envelope, 0, capacity),
	}
}

// Append pushes an envelope onto the end of the log, evicting the oldest
// entries until the size is back within capacity.
func (h *History) Append(env crypto.Envelope) {
	h.entries = append(h.entries, env)
	if overflow := len(h.entries) - h.capacity; overflow > 0 {
		// Shift in place rather than re-slicing so evicted envelopes do not
		// pin the backing array.
		n := copy(h.entries, h.entries[overflow:])
		h.entries = h.entries[:n]
	}
}

// Len returns the number of entries currently held.
func (h *History) Len() int {
	return len(h.entries)
}

// Oldest returns the oldest entry, or false if the log is empty.
func (h *History) Oldest() (crypto.Envelope, bool) {
	if len(h.entries) == 0 {
		return crypto.Envelope{}, false
	}
	return h.entries[0], true
}

// Newest returns the most recently appended entry, or false if the log is
// empty.
func (h *History) Newest() (crypto.Envelope, bool) {
	if len(h.entries) == 0 {
		return crypto.Envelope{}, false
	}
	return h.entries[len(h.entries)-1], true
}
