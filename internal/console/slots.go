// Package console holds the pure state behind the operator console: the
// four-slot session multiplexer and the quick-response picker. The TUI in
// cmd/operator-console drives both; keeping them here keeps them testable
// without a terminal.
package console

// SlotCount is the number of concurrent viewing/response positions.
const SlotCount = 4

// SlotManager assigns live sessions to fixed console slots. Opening a session
// that is already on screen is a no-op; when all slots are taken, slot 0 is
// evicted and replaced (fixed-position eviction, not LRU).
type SlotManager struct {
	slots [SlotCount]string
}

func NewSlotManager() *SlotManager {
	return &SlotManager{}
}

// Open places the session in a slot and returns the slot index plus the
// session evicted to make room, if any.
func (m *SlotManager) Open(sessionID string) (int, string) {
	if idx := m.IndexOf(sessionID); idx >= 0 {
		return idx, ""
	}
	for i, occupant := range m.slots {
		if occupant == "" {
			m.slots[i] = sessionID
			return i, ""
		}
	}
	evicted := m.slots[0]
	m.slots[0] = sessionID
	return 0, evicted
}

// Close frees the slot and returns the session that occupied it. The
// underlying session's persisted status is untouched.
func (m *SlotManager) Close(index int) string {
	if index < 0 || index >= SlotCount {
		return ""
	}
	occupant := m.slots[index]
	m.slots[index] = ""
	return occupant
}

func (m *SlotManager) Occupant(index int) string {
	if index < 0 || index >= SlotCount {
		return ""
	}
	return m.slots[index]
}

// IndexOf returns the slot holding the session, or -1.
func (m *SlotManager) IndexOf(sessionID string) int {
	if sessionID == "" {
		return -1
	}
	for i, occupant := range m.slots {
		if occupant == sessionID {
			return i
		}
	}
	return -1
}

func (m *SlotManager) Occupied() int {
	count := 0
	for _, occupant := range m.slots {
		if occupant != "" {
			count++
		}
	}
	return count
}
