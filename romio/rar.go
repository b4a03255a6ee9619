package romio

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/nwaples/rardecode/v2"
)

// extractFromRAR returns the first ROM/state member of a RAR archive.
// rardecode.OpenReader requires a real filesystem path, so this (like
// extractFrom7z) bypasses Fs.
func extractFromRAR(path string) ([]byte, string, error) {
	r, err := rardecode.OpenReader(path)
	if err != nil {
		return nil, "", fmt.Errorf("open rar %s: %w", path, err)
	}
	defer r.Close()

	for {
		header, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", fmt.Errorf("read rar entry in %s: %w", path, err)
		}
		if header.IsDir || !isROMFile(header.Name) {
			continue
		}
		data, err := limitedRead(r)
		if err != nil {
			return nil, "", fmt.Errorf("read %s in rar: %w", header.Name, err)
		}
		return data, filepath.Base(header.Name), nil
	}
	return nil, "", ErrNoROMFile
}
