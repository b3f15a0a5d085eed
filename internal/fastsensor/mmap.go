package fastsensor

import (
	"fmt"
	"io"

	"golang.org/x/exp/mmap"
)

// OpenMmap maps path into memory and returns a sequential reader over it.
// The returned closer unmaps the file; the reader must not be used after
// closing.
func OpenMmap(path string) (io.Reader, io.Closer, error) {
	mm, err := mmap.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("mmap.Open: %w", err)
	}

	return io.NewSectionReader(mm, 0, int64(mm.Len())), mm, nil
}
