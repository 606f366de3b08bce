package console

import "testing"

func TestOpenFillsSlotsInOrder(t *testing.T) {
	m := NewSlotManager()

	for i, id := range []string{"a", "b", "c", "d"} {
		idx, evicted := m.Open(id)
		if idx != i || evicted != "" {
			t.Fatalf("Open(%s) = (%d, %q), want (%d, \"\")", id, idx, evicted, i)
		}
	}
	if m.Occupied() != SlotCount {
		t.Fatalf("Occupied = %d, want %d", m.Occupied(), SlotCount)
	}
}

func TestOpenExistingIsNoOp(t *testing.T) {
	m := NewSlotManager()
	m.Open("a")
	m.Open("b")

	idx, evicted := m.Open("a")
	if idx != 0 || evicted != "" {
		t.Fatalf("re-open = (%d, %q), want (0, \"\")", idx, evicted)
	}
	if m.Occupied() != 2 {
		t.Fatalf("Occupied = %d, want 2", m.Occupied())
	}
}

func TestOpenFullEvictsSlotZero(t *testing.T) {
	m := NewSlotManager()
	for _, id := range []string{"a", "b", "c", "d"} {
		m.Open(id)
	}

	idx, evicted := m.Open("e")
	if idx != 0 || evicted != "a" {
		t.Fatalf("Open(e) = (%d, %q), want (0, \"a\")", idx, evicted)
	}
	if m.Occupant(0) != "e" {
		t.Fatalf("slot 0 = %q, want e", m.Occupant(0))
	}
	if m.IndexOf("a") != -1 {
		t.Fatal("evicted session still assigned")
	}
}

func TestCloseFreesSlot(t *testing.T) {
	m := NewSlotManager()
	m.Open("a")
	m.Open("b")

	if got := m.Close(0); got != "a" {
		t.Fatalf("Close(0) = %q, want a", got)
	}
	if m.Occupant(0) != "" {
		t.Fatal("slot 0 still occupied")
	}

	// The freed slot is reused before eviction kicks in.
	idx, evicted := m.Open("c")
	if idx != 0 || evicted != "" {
		t.Fatalf("Open(c) = (%d, %q), want the freed slot", idx, evicted)
	}
}

func TestCloseOutOfRange(t *testing.T) {
	m := NewSlotManager()
	if got := m.Close(-1); got != "" {
		t.Fatalf("Close(-1) = %q", got)
	}
	if got := m.Close(SlotCount); got != "" {
		t.Fatalf("Close(%d) = %q", SlotCount, got)
	}
}

func TestIndexOfEmptyID(t *testing.T) {
	m := NewSlotManager()
	if m.IndexOf("") != -1 {
		t.Fatal("empty session ID matched a slot")
	}
}
