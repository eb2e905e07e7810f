//go:build !unix

package font

import (
	"os"

	"github.com/npillmayer/satz/core"
)

// OpenMmapStream reads the whole file into memory on platforms without
// memory mapping support. Fragment reads behave like MmapStream fragments.
func OpenMmapStream(path string) (Stream, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, core.WrapError(err, core.EIO, "cannot stat font file %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.WrapError(err, core.EIO, "cannot read font file %q", path)
	}
	ms := NewMemoryStream(data)
	ms.wtime = Filetime(fi.ModTime())
	return ms, nil
}
