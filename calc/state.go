package calc

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/zstd"
)

// State file layout (spec §6 "Save/restore"), modeled directly on the
// magic+version+CRC header the teacher's emulator.go writes for its own
// save states:
//
//	magic      [5]byte  "TILEM"
//	version    uint16
//	modelID    byte
//	headerCRC  uint32   crc32(payload)
//	payload    ...      sections below, each length-prefixed so an older
//	                     reader can skip a section a newer writer added
const (
	stateMagic       = "TILEM"
	stateVersion     = 1
	stateHeaderSize  = len(stateMagic) + 2 + 1 + 4
)

// Serialize captures the complete machine state as a single byte slice
// suitable for writing to a file (spec's `state_save`).
func (c *Calc) Serialize() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var payload bytes.Buffer
	if err := c.writeSection(&payload, "CPU ", c.serializeCPU()); err != nil {
		return nil, err
	}
	if err := c.writeSection(&payload, "HWRG", c.serializeHWRegs()); err != nil {
		return nil, err
	}
	ram, err := c.serializeRAM()
	if err != nil {
		return nil, err
	}
	if err := c.writeSection(&payload, "RAM ", ram); err != nil {
		return nil, err
	}
	flash, err := c.serializeFlash()
	if err != nil {
		return nil, err
	}
	if err := c.writeSection(&payload, "FLSH", flash); err != nil {
		return nil, err
	}
	if err := c.writeSection(&payload, "LCD ", c.serializeLCD()); err != nil {
		return nil, err
	}
	if err := c.writeSection(&payload, "KEYP", c.serializeKeypad()); err != nil {
		return nil, err
	}
	if err := c.writeSection(&payload, "LINK", c.serializeLink()); err != nil {
		return nil, err
	}

	out := make([]byte, 0, stateHeaderSize+payload.Len())
	buf := bytes.NewBuffer(out)
	buf.WriteString(stateMagic)
	binary.Write(buf, binary.LittleEndian, uint16(stateVersion))
	buf.WriteByte(c.Model.ID)
	binary.Write(buf, binary.LittleEndian, crc32.ChecksumIEEE(payload.Bytes()))
	buf.Write(payload.Bytes())
	return buf.Bytes(), nil
}

func (c *Calc) writeSection(w *bytes.Buffer, tag string, data []byte) error {
	w.WriteString(tag)
	binary.Write(w, binary.LittleEndian, uint32(len(data)))
	_, err := w.Write(data)
	return err
}

// VerifyState checks the magic, model id, and checksum of a state
// buffer without mutating the Calc, mirroring the teacher's
// pre-deserialize sanity check.
func (c *Calc) VerifyState(data []byte) error {
	if len(data) < stateHeaderSize || string(data[:5]) != stateMagic {
		return ErrBadMagic
	}
	modelID := data[7]
	if modelID != c.Model.ID {
		return ErrUnknownModel
	}
	wantCRC := binary.LittleEndian.Uint32(data[8:12])
	if crc32.ChecksumIEEE(data[stateHeaderSize:]) != wantCRC {
		return ErrBadChecksum
	}
	return nil
}

// Deserialize restores machine state previously produced by Serialize.
// Unknown sections (from a newer writer) are skipped with a warning
// rather than rejected, per spec §6's forward-compatibility rule. Per
// spec §7 ("no partial mutation of the target Calc"), every section is
// decoded into a scratch holder first; only once the whole buffer has
// decoded without error are the results swapped into c under the lock.
func (c *Calc) Deserialize(data []byte) error {
	if err := c.VerifyState(data); err != nil {
		return err
	}

	var pending pendingState
	r := bytes.NewReader(data[stateHeaderSize:])
	for r.Len() > 0 {
		tag, body, err := readSection(r)
		if err != nil {
			return err
		}
		switch tag {
		case "CPU ":
			pending.cpu, err = decodeCPU(body)
			pending.haveCPU = err == nil
		case "HWRG":
			pending.hw = decodeHWRegs(body)
			pending.haveHW = true
		case "RAM ":
			pending.ram, err = zstdDecompress(body)
			if err == nil && len(pending.ram) != len(c.Mem.Bytes)-int(c.Mem.FlashSize) {
				err = ErrSizeMismatch
			}
		case "FLSH":
			pending.flash, err = decodeFlash(body, c.Mem.FlashSize)
			pending.haveFlash = err == nil
		case "LCD ":
			pending.lcd = decodeLCD(body)
			pending.haveLCD = true
		case "KEYP":
			if len(body) >= 9 {
				pending.keypad = body[:9]
			}
		case "LINK":
			if len(body) >= 1 {
				pending.linkLines = LinkLines(body[0])
				pending.haveLink = true
			}
		default:
			c.warn("skipping unknown state section %q", tag)
		}
		if err != nil {
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	pending.apply(c)
	return nil
}

// pendingState accumulates a fully-decoded state image before it is
// swapped into a live Calc, so a mid-stream decode failure never leaves
// the Calc partially mutated.
type pendingState struct {
	haveCPU   bool
	cpu       Z80
	haveHW    bool
	hw        HWRegs
	ram       []byte
	haveFlash bool
	flash     decodedFlash
	haveLCD   bool
	lcd       decodedLCD
	keypad    []byte
	haveLink  bool
	linkLines LinkLines
}

func (p *pendingState) apply(c *Calc) {
	if p.haveCPU {
		stopMask, emuFlags := c.Z80.StopMask, c.Z80.EmuFlags
		c.Z80 = p.cpu
		c.Z80.StopMask, c.Z80.EmuFlags = stopMask, emuFlags
	}
	if p.haveHW {
		c.HW = p.hw
	}
	if p.ram != nil {
		copy(c.Mem.Bytes[c.Mem.FlashSize:], p.ram)
	}
	if p.haveFlash {
		p.flash.applyTo(c)
	}
	if p.haveLCD {
		p.lcd.applyTo(c.LCD)
	}
	if p.keypad != nil {
		copy(c.Keypad.matrix[:], p.keypad[:8])
		c.Keypad.scanGroup = p.keypad[8]
	}
	if p.haveLink {
		c.Link.Lines = p.linkLines
	}
	c.Mem.cacheGen++
}

func readSection(r *bytes.Reader) (string, []byte, error) {
	tag := make([]byte, 4)
	if _, err := io.ReadFull(r, tag); err != nil {
		return "", nil, ErrTruncated
	}
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", nil, ErrTruncated
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return "", nil, ErrTruncated
	}
	return string(tag), body, nil
}

func (c *Calc) serializeCPU() []byte {
	var buf bytes.Buffer
	z := &c.Z80
	for _, pair := range []RegPair{z.AF, z.BC, z.DE, z.HL, z.AFalt, z.BCalt, z.DEalt, z.HLalt} {
		binary.Write(&buf, binary.LittleEndian, pair.U16())
	}
	binary.Write(&buf, binary.LittleEndian, z.IX)
	binary.Write(&buf, binary.LittleEndian, z.IY)
	binary.Write(&buf, binary.LittleEndian, z.SP)
	binary.Write(&buf, binary.LittleEndian, z.PC)
	buf.WriteByte(z.I)
	buf.WriteByte(z.R)
	binary.Write(&buf, binary.LittleEndian, z.WZ)
	var flags uint8
	if z.IFF1 {
		flags |= 1
	}
	if z.IFF2 {
		flags |= 2
	}
	if z.Halted {
		flags |= 4
	}
	flags |= uint8(z.IM) << 3
	buf.WriteByte(flags)
	binary.Write(&buf, binary.LittleEndian, z.Clock)
	return buf.Bytes()
}

// decodeCPU parses a "CPU " section into a standalone Z80 value without
// touching any live Calc, so Deserialize can fail after this point
// without having mutated anything (spec §7).
func decodeCPU(data []byte) (Z80, error) {
	var z Z80
	r := bytes.NewReader(data)
	pairs := []*RegPair{&z.AF, &z.BC, &z.DE, &z.HL, &z.AFalt, &z.BCalt, &z.DEalt, &z.HLalt}
	for _, p := range pairs {
		var v uint16
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return Z80{}, ErrTruncated
		}
		p.SetU16(v)
	}
	if err := binary.Read(r, binary.LittleEndian, &z.IX); err != nil {
		return Z80{}, ErrTruncated
	}
	if err := binary.Read(r, binary.LittleEndian, &z.IY); err != nil {
		return Z80{}, ErrTruncated
	}
	if err := binary.Read(r, binary.LittleEndian, &z.SP); err != nil {
		return Z80{}, ErrTruncated
	}
	if err := binary.Read(r, binary.LittleEndian, &z.PC); err != nil {
		return Z80{}, ErrTruncated
	}
	var err error
	if z.I, err = r.ReadByte(); err != nil {
		return Z80{}, ErrTruncated
	}
	if z.R, err = r.ReadByte(); err != nil {
		return Z80{}, ErrTruncated
	}
	if err := binary.Read(r, binary.LittleEndian, &z.WZ); err != nil {
		return Z80{}, ErrTruncated
	}
	flags, err := r.ReadByte()
	if err != nil {
		return Z80{}, ErrTruncated
	}
	z.IFF1 = flags&1 != 0
	z.IFF2 = flags&2 != 0
	z.Halted = flags&4 != 0
	z.IM = InterruptMode(flags >> 3)
	if err := binary.Read(r, binary.LittleEndian, &z.Clock); err != nil {
		return Z80{}, ErrTruncated
	}
	return z, nil
}

func (c *Calc) serializeHWRegs() []byte {
	buf := make([]byte, NumHWRegs*4)
	for i, v := range c.HW {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return buf
}

// decodeHWRegs parses a "HWRG" section into a standalone HWRegs value.
// A section shorter than NumHWRegs (written by an older version with
// fewer registers) leaves the trailing slots at zero.
func decodeHWRegs(data []byte) HWRegs {
	var hw HWRegs
	for i := 0; i < int(NumHWRegs) && (i+1)*4 <= len(data); i++ {
		hw[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return hw
}

func (c *Calc) serializeRAM() ([]byte, error) {
	return zstdCompress(c.Mem.Bytes[c.Mem.FlashSize:])
}

// serializeFlash stores the compressed flash image plus the state
// machine's mode byte and busy-timing fields.
func (c *Calc) serializeFlash() ([]byte, error) {
	img, err := zstdCompress(c.Mem.Bytes[:c.Mem.FlashSize])
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	var flags uint8
	if c.Flash.Unlock {
		flags |= 1
	}
	if c.Flash.Busy {
		flags |= 2
	}
	buf.WriteByte(flags)
	buf.WriteByte(uint8(c.Flash.state))
	binary.Write(&buf, binary.LittleEndian, c.Flash.busyDeadline)
	binary.Write(&buf, binary.LittleEndian, uint32(len(img)))
	buf.Write(img)
	return buf.Bytes(), nil
}

// decodedFlash is the scratch form of a "FLSH" section: the flash state
// machine's mode/timing fields plus its decompressed image, held apart
// from any live Calc until the whole state buffer is known-good.
type decodedFlash struct {
	unlock, busy bool
	state        flashState
	busyDeadline uint64
	image        []byte
}

func decodeFlash(data []byte, flashSize uint32) (decodedFlash, error) {
	r := bytes.NewReader(data)
	flags, err := r.ReadByte()
	if err != nil {
		return decodedFlash{}, ErrTruncated
	}
	stateByte, err := r.ReadByte()
	if err != nil {
		return decodedFlash{}, ErrTruncated
	}
	var d decodedFlash
	d.unlock = flags&1 != 0
	d.busy = flags&2 != 0
	d.state = flashState(stateByte)
	if err := binary.Read(r, binary.LittleEndian, &d.busyDeadline); err != nil {
		return decodedFlash{}, ErrTruncated
	}
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return decodedFlash{}, ErrTruncated
	}
	img := make([]byte, n)
	if _, err := io.ReadFull(r, img); err != nil {
		return decodedFlash{}, ErrTruncated
	}
	raw, err := zstdDecompress(img)
	if err != nil {
		return decodedFlash{}, err
	}
	if uint32(len(raw)) != flashSize {
		return decodedFlash{}, ErrSizeMismatch
	}
	d.image = raw
	return d, nil
}

func (d *decodedFlash) applyTo(c *Calc) {
	c.Flash.Unlock = d.unlock
	c.Flash.Busy = d.busy
	c.Flash.state = d.state
	c.Flash.busyDeadline = d.busyDeadline
	copy(c.Mem.Bytes[:c.Mem.FlashSize], d.image)
}

func (c *Calc) serializeLCD() []byte {
	var buf bytes.Buffer
	var flags uint8
	if c.LCD.Active {
		flags |= 1
	}
	if c.LCD.XIncreasing {
		flags |= 2
	}
	if c.LCD.YIncreasing {
		flags |= 4
	}
	if c.LCD.WordSize8 {
		flags |= 8
	}
	buf.WriteByte(flags)
	buf.WriteByte(c.LCD.Contrast)
	binary.Write(&buf, binary.LittleEndian, uint32(c.LCD.Row))
	binary.Write(&buf, binary.LittleEndian, uint32(c.LCD.Col))
	binary.Write(&buf, binary.LittleEndian, uint32(len(c.LCD.frame)))
	buf.Write(c.LCD.frame)
	return buf.Bytes()
}

// decodedLCD is the scratch form of an "LCD " section.
type decodedLCD struct {
	active, xInc, yInc, word8 bool
	contrast                  uint8
	row, col                  int
	frame                     []byte
}

func decodeLCD(data []byte) decodedLCD {
	var d decodedLCD
	r := bytes.NewReader(data)
	flags, _ := r.ReadByte()
	d.active = flags&1 != 0
	d.xInc = flags&2 != 0
	d.yInc = flags&4 != 0
	d.word8 = flags&8 != 0
	d.contrast, _ = r.ReadByte()
	var row, col, n uint32
	binary.Read(r, binary.LittleEndian, &row)
	binary.Read(r, binary.LittleEndian, &col)
	d.row, d.col = int(row), int(col)
	binary.Read(r, binary.LittleEndian, &n)
	frame := make([]byte, n)
	io.ReadFull(r, frame)
	d.frame = frame
	return d
}

func (d *decodedLCD) applyTo(l *LCD) {
	l.Active = d.active
	l.XIncreasing = d.xInc
	l.YIncreasing = d.yInc
	l.WordSize8 = d.word8
	l.Contrast = d.contrast
	l.Row, l.Col = d.row, d.col
	for i := 0; i < len(d.frame) && i < len(l.frame); i++ {
		l.frame[i] = d.frame[i]
	}
}

func (c *Calc) serializeKeypad() []byte {
	buf := make([]byte, 9)
	copy(buf, c.Keypad.matrix[:])
	buf[8] = c.Keypad.scanGroup
	return buf
}

func (c *Calc) serializeLink() []byte {
	buf := make([]byte, 1)
	buf[0] = uint8(c.Link.Lines)
	return buf
}

func zstdCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func zstdDecompress(data []byte) ([]byte, error) {
	r, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
