package font

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/npillmayer/satz/core"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestFiletime(t *testing.T) {
	if ft := Filetime(time.Time{}); ft != 0 {
		t.Errorf("expected zero time to map to 0, got %d", ft)
	}
	epoch := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	if ft := Filetime(epoch); ft != 11644473600*10_000_000 {
		t.Errorf("expected Unix epoch at 116444736000000000, got %d", ft)
	}
	later := Filetime(epoch.Add(time.Second))
	if later-Filetime(epoch) != 10_000_000 {
		t.Errorf("expected one second to be 10^7 ticks, got %d", later-Filetime(epoch))
	}
}

func TestMemoryStreamBounds(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.font")
	defer teardown()
	s := NewMemoryStream([]byte("hello font data"))
	size, err := s.Size()
	if err != nil || size != 15 {
		t.Fatalf("expected size 15, got %d (%v)", size, err)
	}
	frag, err := s.ReadFragment(6, 4)
	if err != nil {
		t.Fatalf("fragment read failed: %v", err)
	}
	defer frag.Release()
	if string(frag.Bytes()) != "font" {
		t.Errorf("expected fragment 'font', got %q", frag.Bytes())
	}
	if _, err = s.ReadFragment(10, 6); core.Code(err) != core.EINVALID {
		t.Errorf("expected EINVALID for fragment past end, got %v", err)
	}
	if _, err = s.ReadFragment(^uint64(0), 2); core.Code(err) != core.EINVALID {
		t.Errorf("expected EINVALID for overflowing fragment, got %v", err)
	}
}

func TestFileStream(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.font")
	defer teardown()
	path := filepath.Join(t.TempDir(), "stream.bin")
	if err := os.WriteFile(path, []byte("0123456789"), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := OpenFileStream(path)
	if err != nil {
		t.Fatalf("cannot open file stream: %v", err)
	}
	defer s.Close()
	wtime, err := s.LastWriteTime()
	if err != nil || wtime == 0 {
		t.Errorf("expected non-zero last write time, got %d (%v)", wtime, err)
	}
	frag, err := s.ReadFragment(3, 4)
	if err != nil {
		t.Fatalf("fragment read failed: %v", err)
	}
	if string(frag.Bytes()) != "3456" {
		t.Errorf("expected fragment '3456', got %q", frag.Bytes())
	}
	frag.Release()
}

func TestMmapStream(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.font")
	defer teardown()
	path := filepath.Join(t.TempDir(), "mapped.bin")
	if err := os.WriteFile(path, []byte("memory mapped bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := OpenMmapStream(path)
	if err != nil {
		t.Fatalf("cannot open mmap stream: %v", err)
	}
	frag, err := s.ReadFragment(7, 6)
	if err != nil {
		t.Fatalf("fragment read failed: %v", err)
	}
	if string(frag.Bytes()) != "mapped" {
		t.Errorf("expected fragment 'mapped', got %q", frag.Bytes())
	}
	frag.Release()
	if c, ok := s.(interface{ Close() error }); ok {
		c.Close()
	}
}
