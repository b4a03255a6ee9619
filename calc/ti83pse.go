package calc

// The TI-83+ Silver Edition class: 2MB flash where the top 64KB is split
// into four finer-grained sectors (the boot-code region), plus the MD5
// hardware assist flag. Sector boundaries transcribed from the
// hardware_ti83pse descriptor in libtilemcore's xs_subcore.c.
func init() {
	registerModel(&Model{
		Name:     "TI-83 Plus Silver Edition",
		ID:       's',
		Features: HasLink | HasLinkAssist | HasFlash | HasMD5Assist | HasT6A04,

		LCDWidth:          96,
		LCDHeight:         64,
		RAMSize:           128 * 1024,
		FlashSize:         2 * 1024 * 1024,
		FlashSectors:      ti83pseSectors(),
		ProgramBusyCycles: 20000,
		EraseBusyCycles:   4000000,
		ClockHz:           15000000,

		Reset:         ti83xReset,
		StateLoaded:   ti83xStateLoaded,
		In:            ti83xIn,
		Out:           ti83xOut,
		PeriodicTimer: ti83xPeriodicTimer,
	})
}

func ti83pseSectors() []FlashSector {
	sectors := make([]FlashSector, 0, 35)
	for i := 0; i < 31; i++ {
		sectors = append(sectors, FlashSector{Offset: uint32(i) * 0x10000, Size: 0x10000, Group: 0})
	}
	sectors = append(sectors,
		FlashSector{Offset: 0x1F0000, Size: 0x8000, Group: 2},
		FlashSector{Offset: 0x1F8000, Size: 0x2000, Group: 2},
		FlashSector{Offset: 0x1FA000, Size: 0x2000, Group: 2},
		FlashSector{Offset: 0x1FC000, Size: 0x4000, Group: 2},
	)
	return sectors
}
