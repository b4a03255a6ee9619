package calc

// The TI-83+ class: 512KB flash in eight uniform 64KB sectors, link
// assist, bank-3 switching, and the shared TI-83+ family port map (spec
// §11's worked example model).
func init() {
	registerModel(&Model{
		Name:     "TI-83 Plus",
		ID:       'p',
		Features: HasLink | HasLinkAssist | HasFlash | HasT6A04,

		LCDWidth:  96,
		LCDHeight: 64,
		RAMSize:   32 * 1024,
		FlashSize: 512 * 1024,
		FlashSectors: func() []FlashSector {
			sectors := make([]FlashSector, 8)
			for i := range sectors {
				sectors[i] = FlashSector{Offset: uint32(i) * 0x10000, Size: 0x10000, Group: 0}
			}
			return sectors
		}(),
		ProgramBusyCycles: 20000,
		EraseBusyCycles:   4000000,
		ClockHz:           6000000,

		Reset:         ti83xReset,
		StateLoaded:   ti83xStateLoaded,
		In:            ti83xIn,
		Out:           ti83xOut,
		PeriodicTimer: ti83xPeriodicTimer,
	})
}
