package calc

import "testing"

func TestLCDCommandContrastAndOnOff(t *testing.T) {
	l := NewLCD(96, 64, false)
	l.Command(0x03) // display on
	if !l.Active {
		t.Fatal("expected Active after 0x03")
	}
	l.Command(0x80 | 0x20) // set contrast to 0x20
	if l.Contrast != 0x20 {
		t.Fatalf("Contrast = %#02x, want 0x20", l.Contrast)
	}
	l.Command(0x02) // display off
	if l.Active {
		t.Fatal("expected inactive after 0x02")
	}
}

func TestLCDWriteReadDataRoundTrip(t *testing.T) {
	l := NewLCD(96, 64, false)
	l.Command(0x04) // X increasing
	l.Row, l.Col = 0, 0
	l.WriteData(0xA5)
	l.Col = 0 // ReadData reads without re-walking the increment
	got := l.ReadData()
	if got != 0xA5 {
		t.Fatalf("ReadData = %#02x, want 0xA5", got)
	}
}

func TestLCDWriteDataAutoIncrementsColumn(t *testing.T) {
	l := NewLCD(96, 64, false)
	l.Command(0x04) // X increasing
	before := l.Col
	l.WriteData(0x00)
	if l.Col != before+1 {
		t.Fatalf("Col = %d, want %d", l.Col, before+1)
	}
}

func TestLCDGetFramePacksBitsMono(t *testing.T) {
	l := NewLCD(8, 1, false)
	l.Command(0x04)
	l.Row, l.Col = 0, 0
	l.WriteData(0xFF)
	buf := make([]byte, 1)
	n := l.GetFrame(buf)
	if n != 1 || buf[0] != 0xFF {
		t.Fatalf("GetFrame = %#02x (n=%d), want 0xFF (n=1)", buf[0], n)
	}
}

func TestLCDGrayLevelAveragesHistory(t *testing.T) {
	l := NewLCD(8, 1, false)
	l.Command(0x04)
	l.Row, l.Col = 0, 0

	l.WriteData(0xFF) // all pixels on
	l.SampleGray()
	l.Row, l.Col = 0, 0
	l.WriteData(0x00) // all pixels off
	l.SampleGray()

	level := l.GrayLevel(0)
	if level == 0 || level == 255 {
		t.Fatalf("GrayLevel = %d, want an intermediate value between on and off samples", level)
	}
}

func TestLCDColorFrameIsRGB565Sized(t *testing.T) {
	l := NewLCD(4, 4, true)
	buf := make([]byte, 4*4*2)
	n := l.GetFrame(buf)
	if n != len(buf) {
		t.Fatalf("GetFrame returned %d bytes, want %d for a color frame", n, len(buf))
	}
}
