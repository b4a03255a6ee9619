package calc

import lru "github.com/hashicorp/golang-lru/v2"

// protectBytes is the byte sequence "00 00 ED 56 F3 D3" (NOP / NOP / IM 1 /
// DI / OUT (n),A) that PROTECTSTATE watches for in flash reads, taken
// verbatim from libtilemcore's readbyte() (original_source/emu/xc/xc_memory.c).
var protectBytes = [6]uint8{0x00, 0x00, 0xED, 0x56, 0xF3, 0xD3}

// Memory is the address-translation and backing-storage half of the bus
// (spec §4.2): logical-to-physical translation honoring the PORT27/PORT28
// privileged windows, and the flat byte array backing flash then RAM.
type Memory struct {
	Bytes     []byte
	FlashSize uint32

	// PageMap holds the four logical-bank page indices (spec §3); bank 0
	// is fixed to ROM page 0 and must never be mutated after reset.
	PageMap [4]uint32

	ptolCache *lru.Cache[ptolKey, uint32]
	cacheGen  uint64
}

type ptolKey struct {
	gen uint64
	pa  uint32
}

const noPage = 0xFFFFFFFF

// NewMemory allocates the backing array (flashSize + ramSize bytes) with
// page 0 fixed to ROM page 0 per the invariant in spec §3.
func NewMemory(flashSize, ramSize uint32) *Memory {
	cache, _ := lru.New[ptolKey, uint32](256)
	return &Memory{
		Bytes:     make([]byte, flashSize+ramSize),
		FlashSize: flashSize,
		ptolCache: cache,
	}
}

// SetPage sets a logical bank's page, invalidating the Ptol cache since
// the forward mapping (and therefore every cached reverse lookup) changed.
func (m *Memory) SetPage(bank int, page uint32) {
	m.PageMap[bank] = page
	m.cacheGen++
}

// pageFor resolves the logical page for addr, honoring the PORT27/PORT28
// privileged windows (sized in 64-byte units, per xc_memory.c) that open
// pseudo-pages 0x100/0x101 at the extremes of the upper 32K.
func (m *Memory) pageFor(addr uint16, port27, port28 uint32) uint32 {
	page := m.PageMap[addr>>14]
	if addr&0x8000 != 0 {
		if uint32(addr) > 0xFFFF-64*port27 {
			page = 0x100
		} else if uint32(addr) < 0x8000+64*port28 {
			page = 0x101
		}
	}
	return page
}

// Ltop computes the physical address for a logical address, the
// deterministic forward half of page translation (spec §4.2, §8.5).
func (m *Memory) Ltop(addr uint16, port27, port28 uint32) uint32 {
	page := m.pageFor(addr, port27, port28)
	return uint32(addr&0x3FFF) | page<<14
}

// Ptol is the "best" inverse of Ltop: given a physical address, find a
// logical address currently mapped to it, or noPage if none is visible.
// The algorithm (including the 64-byte PORT27/PORT28 boundary tests) is
// taken from xc_mem_ptol in original_source/emu/xc/xc_memory.c; the
// result is memoized in a small LRU keyed on (page-map generation,
// physical address) since debuggers call this far more often than the
// page map actually changes.
func (m *Memory) Ptol(pa uint32, port27, port28 uint32) uint32 {
	key := ptolKey{gen: m.cacheGen, pa: pa}
	if v, ok := m.ptolCache.Get(key); ok {
		return v
	}
	v := m.ptolUncached(pa, port27, port28)
	m.ptolCache.Add(key, v)
	return v
}

func (m *Memory) ptolUncached(pa uint32, port27, port28 uint32) uint32 {
	page := pa >> 14
	low := pa & 0x3FFF

	if page == 0 {
		return low
	}
	if page == m.PageMap[1] {
		return 0x4000 | low
	}
	if low < 64*port28 {
		if page == 0x101 {
			return 0x8000 | low
		}
	} else if page == m.PageMap[2] {
		return 0x8000 | low
	}
	if low >= 0x4000-64*port27 {
		if page == 0x100 {
			return 0xC000 | low
		}
	} else if page == m.PageMap[3] {
		return 0xC000 | low
	}
	return noPage
}

// advanceProtectState updates the PROTECTSTATE counter for a flash read
// at physical address pa, per readbyte() in xc_memory.c: the counter
// resets outside of a narrow watched region and on any mismatch. After the
// six sequence bytes the counter is 6; the next read in the region (any
// value) makes it 7, and the read after that returns it to 0.
func advanceProtectState(state uint32, pa uint32, value uint8) uint32 {
	if pa < 0x3B0000 || pa >= 0x400000 || (pa >= 0x3C0000 && pa < 0x3F0000) {
		return 0
	}
	if state == 6 {
		return 7
	}
	if state < 6 && value == protectBytes[state] {
		return state + 1
	}
	return 0
}
