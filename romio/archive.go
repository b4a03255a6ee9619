package romio

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
)

// extractFromZIP returns the first ROM/state member of a ZIP archive.
func extractFromZIP(path string) ([]byte, string, error) {
	f, err := Fs.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, "", fmt.Errorf("stat %s: %w", path, err)
	}

	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, "", fmt.Errorf("open zip %s: %w", path, err)
	}

	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() || !isROMFile(zf.Name) {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, "", fmt.Errorf("open %s in zip: %w", zf.Name, err)
		}
		data, err := limitedRead(rc)
		rc.Close()
		if err != nil {
			return nil, "", fmt.Errorf("read %s in zip: %w", zf.Name, err)
		}
		return data, filepath.Base(zf.Name), nil
	}
	return nil, "", ErrNoROMFile
}

// extractFrom7z returns the first ROM/state member of a 7z archive.
// sevenzip.OpenReader requires a real filesystem path, so this bypasses
// Fs the way rar.go's nwaples/rardecode call already does.
func extractFrom7z(path string) ([]byte, string, error) {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, "", fmt.Errorf("open 7z %s: %w", path, err)
	}
	defer r.Close()

	for _, zf := range r.File {
		if zf.FileInfo().IsDir() || !isROMFile(zf.Name) {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, "", fmt.Errorf("open %s in 7z: %w", zf.Name, err)
		}
		data, err := limitedRead(rc)
		rc.Close()
		if err != nil {
			return nil, "", fmt.Errorf("read %s in 7z: %w", zf.Name, err)
		}
		return data, filepath.Base(zf.Name), nil
	}
	return nil, "", ErrNoROMFile
}

// extractFromGzip handles both a bare .gz-compressed ROM and a .tar.gz
// archive containing one, detected by whether the decompressed stream
// itself starts with a valid tar header.
func extractFromGzip(path string) ([]byte, string, error) {
	f, err := Fs.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, "", fmt.Errorf("open gzip %s: %w", path, err)
	}
	defer gz.Close()

	if strings.HasSuffix(strings.ToLower(path), ".tar.gz") || strings.HasSuffix(strings.ToLower(path), ".tgz") {
		tr := tar.NewReader(gz)
		for {
			hdr, err := tr.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, "", fmt.Errorf("read tar entry in %s: %w", path, err)
			}
			if hdr.Typeflag != tar.TypeReg || !isROMFile(hdr.Name) {
				continue
			}
			data, err := limitedRead(tr)
			if err != nil {
				return nil, "", fmt.Errorf("read %s in tar.gz: %w", hdr.Name, err)
			}
			return data, filepath.Base(hdr.Name), nil
		}
		return nil, "", ErrNoROMFile
	}

	data, err := limitedRead(gz)
	if err != nil {
		return nil, "", fmt.Errorf("read gzip %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), ".gz")
	return data, name, nil
}
