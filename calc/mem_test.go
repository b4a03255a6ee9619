package calc

import "testing"

func TestLtopBank0Fixed(t *testing.T) {
	m := NewMemory(0x10000, 0x8000)
	// bank 0 defaults to page 0 until SetPage is called.
	if got := m.Ltop(0x1234, 0, 0); got != 0x1234 {
		t.Fatalf("Ltop(0x1234) = %#x, want 0x1234", got)
	}
}

func TestLtopHonorsPageMap(t *testing.T) {
	m := NewMemory(0x40000, 0x8000)
	m.SetPage(1, 5)
	got := m.Ltop(0x4100, 0, 0)
	want := uint32(5)<<14 | 0x100
	if got != want {
		t.Fatalf("Ltop(0x4100) = %#x, want %#x", got, want)
	}
}

func TestLtopPtolRoundTrip(t *testing.T) {
	m := NewMemory(0x40000, 0x8000)
	m.SetPage(1, 3)
	m.SetPage(2, 7)
	m.SetPage(3, 11)

	for _, addr := range []uint16{0x0000, 0x3FFF, 0x4000, 0x7FFF, 0x8000, 0xBFFF, 0xC000, 0xFFFF} {
		pa := m.Ltop(addr, 0, 0)
		back := m.Ptol(pa, 0, 0)
		if back != addr {
			t.Errorf("Ptol(Ltop(%#04x)) = %#04x, want %#04x", addr, back, addr)
		}
	}
}

func TestPtolCacheInvalidatedBySetPage(t *testing.T) {
	m := NewMemory(0x40000, 0x8000)
	m.SetPage(1, 3)

	pa := m.Ltop(0x4100, 0, 0)
	if got := m.Ptol(pa, 0, 0); got != 0x4100 {
		t.Fatalf("Ptol = %#x, want 0x4100", got)
	}

	// Repage bank 1 elsewhere; pa now belongs to nothing mapped via bank 1.
	m.SetPage(1, 9)
	if got := m.Ptol(pa, 0, 0); got == 0x4100 {
		t.Fatalf("Ptol returned stale cached logical address %#x after repage", got)
	}
}

func TestPtolUnmappedReturnsNoPage(t *testing.T) {
	m := NewMemory(0x40000, 0x8000)
	// Nothing maps to a page far outside any bank's current page.
	if got := m.Ptol(0xFF<<14, 0, 0); got != noPage {
		t.Fatalf("Ptol(unmapped) = %#x, want noPage", got)
	}
}

func TestAdvanceProtectStateFullSequence(t *testing.T) {
	const base = uint32(0x3B0000)
	state := uint32(0)
	for i, b := range protectBytes {
		state = advanceProtectState(state, base, b)
		if state != uint32(i+1) {
			t.Fatalf("after byte %d: state = %d, want %d", i, state, i+1)
		}
	}
	// The read after the sequence (OUT's port operand) completes it.
	state = advanceProtectState(state, base, 0x01)
	if state != 7 {
		t.Fatalf("final state = %d, want 7", state)
	}
}

func TestAdvanceProtectStateResetsOnMismatch(t *testing.T) {
	const base = uint32(0x3B0000)
	state := advanceProtectState(0, base, 0x00)
	state = advanceProtectState(state, base, 0xFF) // not the expected second byte
	if state != 0 {
		t.Fatalf("state after mismatch = %d, want 0", state)
	}
}

func TestAdvanceProtectStateOutsideWatchedRegion(t *testing.T) {
	state := advanceProtectState(5, 0x000000, 0x00)
	if state != 0 {
		t.Fatalf("state outside watched region = %d, want reset to 0", state)
	}
}
