package consumer

import (
	"sync"
	"time"
)

// Entry is one submitted prompt and its final result.
type Entry struct {
	Version  int       `json:"version"`
	Prompt   string    `json:"prompt"`
	Response string    `json:"response"`
	Feedback string    `json:"feedback,omitempty"`
	Failed   bool      `json:"failed,omitempty"`
	At       time.Time `json:"at"`
}

// History is the append-only, ordered record of a session's results.
type History struct {
	mu      sync.RWMutex
	entries []Entry
}

// Append records a result and returns the stored entry. Versions start at 1.
func (h *History) Append(prompt, response string, failed bool, at time.Time) Entry {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry := Entry{
		Version:  len(h.entries) + 1,
		Prompt:   prompt,
		Response: response,
		Failed:   failed,
		At:       at,
	}
	h.entries = append(h.entries, entry)
	return entry
}

// SetFeedback attaches feedback text to a version. It reports whether the
// version exists.
func (h *History) SetFeedback(version int, text string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if version < 1 || version > len(h.entries) {
		return false
	}
	h.entries[version-1].Feedback = text
	return true
}

// Entries returns a copy of the recorded entries.
func (h *History) Entries() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of recorded entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}
