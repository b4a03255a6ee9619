// Package romio loads calculator ROM images and save-state files from
// disk or from inside compressed archives (ZIP, 7z, gzip/tar.gz, RAR),
// the same set of containers distributors have historically shipped
// TI calculator ROM dumps in.
package romio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Magic bytes for format detection.
var (
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06} // empty zip
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip   = []byte{0x1F, 0x8B}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21} // "Rar!"
)

// maxImageSize bounds any single extracted file: the largest modeled
// flash (TI-83+SE, 2MB) plus generous save-state headroom.
const maxImageSize = 8 * 1024 * 1024

var (
	// ErrNoROMFile is returned when an archive contains no recognizable
	// ROM or state file.
	ErrNoROMFile = errors.New("no rom or state file found in archive")
	// ErrUnsupportedFormat is returned for unrecognized container formats.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrFileTooLarge is returned when extracted content exceeds maxImageSize.
	ErrFileTooLarge = errors.New("file exceeds maximum size limit")
)

// Fs is the filesystem LoadROM reads from (the 7z and RAR extractors open
// their archives directly and do not go through it). Defaulting to
// afero's OS-backed implementation lets callers swap in an in-memory
// afero.Fs for tests without touching disk.
var Fs afero.Fs = afero.NewOsFs()

type formatType int

const (
	formatUnknown formatType = iota
	formatRaw
	formatZIP
	format7z
	formatGzip
	formatRAR
)

// romExtensions lists the raw (uncompressed) ROM/state extensions this
// family of calculators is shipped and saved under. Archive members are
// matched against the same list.
var romExtensions = []string{
	".rom", ".8xu", ".82u", ".83u", ".8xs", ".sav", ".tib", ".tilem",
}

// LoadROM loads a ROM or save-state image from path, transparently
// extracting it from a recognized archive if needed. It returns the raw
// bytes, the display name of the member that was loaded, and any error.
func LoadROM(path string) ([]byte, string, error) {
	f, err := Fs.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	header := make([]byte, 16)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, "", fmt.Errorf("read header of %s: %w", path, err)
	}
	header = header[:n]

	format := detectFormat(header, path)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, "", fmt.Errorf("seek %s: %w", path, err)
	}

	switch format {
	case formatRaw:
		data, err := limitedRead(f)
		if err != nil {
			return nil, "", fmt.Errorf("read %s: %w", path, err)
		}
		return data, filepath.Base(path), nil
	case formatZIP:
		return extractFromZIP(path)
	case format7z:
		return extractFrom7z(path)
	case formatGzip:
		return extractFromGzip(path)
	case formatRAR:
		return extractFromRAR(path)
	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func detectFormat(header []byte, path string) formatType {
	ext := strings.ToLower(filepath.Ext(path))

	if len(header) >= 4 {
		if bytes.HasPrefix(header, magicZIP) || bytes.HasPrefix(header, magicZIPEnd) {
			return formatZIP
		}
		if bytes.HasPrefix(header, magicRAR) {
			return formatRAR
		}
	}
	if len(header) >= 6 && bytes.HasPrefix(header, magic7z) {
		return format7z
	}
	if len(header) >= 2 && bytes.HasPrefix(header, magicGzip) {
		return formatGzip
	}

	switch ext {
	case ".zip":
		return formatZIP
	case ".7z":
		return format7z
	case ".gz", ".tgz":
		return formatGzip
	case ".rar":
		return formatRAR
	}
	if strings.HasSuffix(strings.ToLower(path), ".tar.gz") {
		return formatGzip
	}
	if isROMFile(path) {
		return formatRaw
	}
	return formatUnknown
}

func isROMFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range romExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func limitedRead(r io.Reader) ([]byte, error) {
	lr := io.LimitReader(r, maxImageSize+1)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
