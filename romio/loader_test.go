package romio

import (
	"archive/zip"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func createTestROMFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.rom")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write test rom: %v", err)
	}
	return path
}

func createTestZipFile(t *testing.T, romData []byte, romName string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.zip")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	fw, err := w.Create(romName)
	if err != nil {
		t.Fatalf("create entry in zip: %v", err)
	}
	if _, err := fw.Write(romData); err != nil {
		t.Fatalf("write entry in zip: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return path
}

func createTestGzipFile(t *testing.T, romData []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.rom.gz")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create gzip: %v", err)
	}
	defer f.Close()

	w := gzip.NewWriter(f)
	if _, err := w.Write(romData); err != nil {
		t.Fatalf("write gzip: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	return path
}

func TestLoadROM_Raw(t *testing.T) {
	want := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	path := createTestROMFile(t, want)

	data, name, err := LoadROM(path)
	if err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	if name != "test.rom" {
		t.Errorf("name = %q, want test.rom", name)
	}
	if string(data) != string(want) {
		t.Errorf("data = %v, want %v", data, want)
	}
}

func TestLoadROM_Zip(t *testing.T) {
	want := []byte{0xAA, 0xBB, 0xCC}
	path := createTestZipFile(t, want, "image.8xu")

	data, name, err := LoadROM(path)
	if err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	if name != "image.8xu" {
		t.Errorf("name = %q, want image.8xu", name)
	}
	if string(data) != string(want) {
		t.Errorf("data = %v, want %v", data, want)
	}
}

func TestLoadROM_ZipNoROMMember(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	w := zip.NewWriter(f)
	fw, _ := w.Create("readme.txt")
	fw.Write([]byte("not a rom"))
	w.Close()
	f.Close()

	if _, _, err := LoadROM(path); err != ErrNoROMFile {
		t.Errorf("err = %v, want ErrNoROMFile", err)
	}
}

func TestLoadROM_Gzip(t *testing.T) {
	want := []byte{0x10, 0x20, 0x30}
	path := createTestGzipFile(t, want)

	data, _, err := LoadROM(path)
	if err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	if string(data) != string(want) {
		t.Errorf("data = %v, want %v", data, want)
	}
}

func TestLoadROM_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.unknown")
	if err := os.WriteFile(path, []byte{0x00, 0x11, 0x22}, 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	_, _, err := LoadROM(path)
	if err == nil {
		t.Fatal("expected an error for unrecognized format")
	}
}

func TestLoadROM_TooLarge(t *testing.T) {
	path := createTestROMFile(t, make([]byte, maxImageSize+1))

	_, _, err := LoadROM(path)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("err = %v, want ErrFileTooLarge", err)
	}
}

func TestDetectFormat_MagicOverridesExtension(t *testing.T) {
	// A .rom file that's actually a zip archive should be detected by
	// its magic bytes, not its extension.
	f := detectFormat(magicZIP, "fake.rom")
	if f != formatZIP {
		t.Errorf("detectFormat = %v, want formatZIP", f)
	}
}

func TestIsROMFile(t *testing.T) {
	cases := map[string]bool{
		"game.8xu":     true,
		"STATE.SAV":    true,
		"backup.tilem": true,
		"readme.txt":   false,
		"archive.zip":  false,
	}
	for name, want := range cases {
		if got := isROMFile(name); got != want {
			t.Errorf("isROMFile(%q) = %v, want %v", name, got, want)
		}
	}
}
