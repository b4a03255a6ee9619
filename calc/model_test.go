package calc

import "testing"

func TestModelsRegisteredAtInit(t *testing.T) {
	for _, id := range []byte{'1', 'p', 's'} {
		if LookupModel(id) == nil {
			t.Errorf("model %q not registered", id)
		}
	}
}

func TestLookupModelUnknownReturnsNil(t *testing.T) {
	if LookupModel(0xFF) != nil {
		t.Fatal("expected nil for an unregistered model id")
	}
}

func TestModelIDsIncludesAllRegistered(t *testing.T) {
	ids := ModelIDs()
	seen := map[byte]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	for _, want := range []byte{'1', 'p', 's'} {
		if !seen[want] {
			t.Errorf("ModelIDs() missing %q", want)
		}
	}
}

func TestNewCalcUnknownModel(t *testing.T) {
	if _, err := NewCalc(0xFF, nil); err != ErrUnknownModel {
		t.Fatalf("err = %v, want ErrUnknownModel", err)
	}
}

func TestTI83PlusFeaturesAndSectorTable(t *testing.T) {
	m := LookupModel('p')
	if !m.Features.Has(HasFlash) || !m.Features.Has(HasLink) {
		t.Fatal("TI-83 Plus should have flash and link")
	}
	if m.Features.Has(HasMD5Assist) {
		t.Fatal("TI-83 Plus (non-SE) should not have MD5 assist")
	}
	var total uint32
	for _, s := range m.FlashSectors {
		total += s.Size
	}
	if total != m.FlashSize {
		t.Fatalf("sector sizes sum to %#x, want %#x", total, m.FlashSize)
	}
}

func TestTI83PlusSESectorTableFineSectorsAtTop(t *testing.T) {
	m := LookupModel('s')
	var total uint32
	for _, s := range m.FlashSectors {
		total += s.Size
	}
	if total != m.FlashSize {
		t.Fatalf("sector sizes sum to %#x, want %#x", total, m.FlashSize)
	}
	last := m.FlashSectors[len(m.FlashSectors)-1]
	if last.Offset+last.Size != m.FlashSize {
		t.Fatalf("last sector does not reach end of flash: %#x+%#x != %#x",
			last.Offset, last.Size, m.FlashSize)
	}
	if last.Group != 2 {
		t.Fatalf("top fine sector group = %d, want 2", last.Group)
	}
}
