package calc

// KeyCode packs a keypad matrix position: high nibble is the scan group
// (row), low nibble is the column, an 8x8 keycode space per spec §6.
type KeyCode uint8

func NewKeyCode(group, col int) KeyCode { return KeyCode(group<<4 | col&0xF) }

func (k KeyCode) Group() int { return int(k >> 4) }
func (k KeyCode) Col() int   { return int(k & 0xF) }

// pressEntry schedules a timed key press/release for macro playback.
type pressEntry struct {
	key   KeyCode
	timer TimerID
}

// Keypad is an 8x8 scan matrix (spec §4.6): writes to the scan-group port
// select active rows, reads return the OR of pressed keys in those rows.
// matrix bits are modeled active-high internally even though the real
// hardware is active-low; port handlers invert at the boundary.
type Keypad struct {
	matrix    [8]uint8 // matrix[group] bit col = 1 if pressed
	scanGroup uint8    // bitmask of active groups selected by the last scan write

	queue []pressEntry
}

// NewKeypad creates an empty (no keys pressed) keypad.
func NewKeypad() *Keypad { return &Keypad{} }

// Press marks a key as held down.
func (k *Keypad) Press(key KeyCode) {
	k.matrix[key.Group()] |= 1 << uint(key.Col())
}

// Release marks a key as released.
func (k *Keypad) Release(key KeyCode) {
	k.matrix[key.Group()] &^= 1 << uint(key.Col())
}

// IsPressed reports whether key is currently held.
func (k *Keypad) IsPressed(key KeyCode) bool {
	return k.matrix[key.Group()]&(1<<uint(key.Col())) != 0
}

// SetScanGroup records which groups the last scan-select write activated.
func (k *Keypad) SetScanGroup(mask uint8) { k.scanGroup = mask }

// Scan returns the OR of the pressed-key bitmaps for every group selected
// by the most recent scan-group write.
func (k *Keypad) Scan() uint8 {
	var result uint8
	for g := 0; g < 8; g++ {
		if k.scanGroup&(1<<uint(g)) != 0 {
			result |= k.matrix[g]
		}
	}
	return result
}

// SchedulePress presses key now and schedules its release after
// delayCycles, supporting macro/scripted key playback (spec §4.6).
func (k *Keypad) SchedulePress(c *Calc, key KeyCode, delayCycles uint64) {
	k.Press(key)
	id := c.Timers.Add(c.Z80.Clock, delayCycles, 0, func(c *Calc, _ TimerID, user any) {
		c.Keypad.Release(user.(KeyCode))
	}, key)
	k.queue = append(k.queue, pressEntry{key: key, timer: id})
}
