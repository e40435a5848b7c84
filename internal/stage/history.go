package stage

import "jengabiashara/internal/assetcodec"

// MaxHistorySize bounds each stage's result history. Once full, the oldest
// entry is evicted first.
const MaxHistorySize = 10

// History is a bounded linear undo/redo sequence of generated images for one
// stage. The entry at the cursor is the active asset shown to the user and
// handed to downstream stages. A new append discards any redo branch beyond
// the cursor; there is no branching tree.
type History struct {
	entries []assetcodec.DataURL
	index   int
}

// NewHistory returns an empty history with the cursor parked at -1.
func NewHistory() *History {
	return &History{index: -1}
}

// Append truncates the history to everything up to and including the cursor,
// appends the new entry, applies the FIFO bound, and moves the cursor to the
// new entry.
func (h *History) Append(url assetcodec.DataURL) {
	kept := h.entries[:h.index+1]
	h.entries = append(append([]assetcodec.DataURL(nil), kept...), url)
	if len(h.entries) > MaxHistorySize {
		h.entries = h.entries[len(h.entries)-MaxHistorySize:]
	}
	h.index = len(h.entries) - 1
}

// Undo moves the cursor back one entry. It reports whether the cursor moved;
// at the oldest entry it is a no-op.
func (h *History) Undo() bool {
	if !h.CanUndo() {
		return false
	}
	h.index--
	return true
}

// Redo moves the cursor forward one entry. It reports whether the cursor
// moved; at the newest entry it is a no-op.
func (h *History) Redo() bool {
	if !h.CanRedo() {
		return false
	}
	h.index++
	return true
}

// CanUndo reports whether an older entry exists.
func (h *History) CanUndo() bool { return h.index > 0 }

// CanRedo reports whether a newer entry exists.
func (h *History) CanRedo() bool { return h.index < len(h.entries)-1 }

// Active returns the entry at the cursor, or false when the history is empty.
func (h *History) Active() (assetcodec.DataURL, bool) {
	if h.index < 0 || h.index >= len(h.entries) {
		return "", false
	}
	return h.entries[h.index], true
}

// Len returns the number of stored entries.
func (h *History) Len() int { return len(h.entries) }

// Index returns the cursor position, -1 when empty.
func (h *History) Index() int { return h.index }

// Reset drops every entry and parks the cursor.
func (h *History) Reset() {
	h.entries = nil
	h.index = -1
}
