package progress

import (
	"os"
	"path/filepath"
	"testing"
)

// TestFileReaderRead checks key=value parsing with last-value-wins semantics
// and out_time conversion.
func TestFileReaderRead(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "progress_dl_1.txt")
	r := NewFileReader(path)
	if err := r.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	content := "frame=100\nfps=30.5\nout_time=00:00:10.00\nspeed=1.2x\nprogress=continue\n" +
		"frame=200\nfps=31.0\nout_time=00:01:30.50\nspeed=1.5x\nprogress=continue\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	stats, ok := r.Read()
	if !ok {
		t.Fatalf("expected a snapshot")
	}
	if stats.Seconds != 90 {
		t.Fatalf("seconds mismatch: got %d want 90", stats.Seconds)
	}
	if stats.OutTime != "00:01:30.50" {
		t.Fatalf("out_time mismatch: got %q", stats.OutTime)
	}
	if stats.SpeedX != "1.5x" {
		t.Fatalf("speed mismatch: got %q", stats.SpeedX)
	}
	if stats.FPS != "31.0" {
		t.Fatalf("fps mismatch: got %q", stats.FPS)
	}
}

// TestFileReaderNoOutTime checks a snapshot is withheld until out_time
// appears.
func TestFileReaderNoOutTime(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "progress_dl_2.txt")
	r := NewFileReader(path)
	if err := r.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if err := os.WriteFile(path, []byte("frame=1\nfps=0\n"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if _, ok := r.Read(); ok {
		t.Fatalf("snapshot without out_time should not be reported")
	}
}

// TestFileReaderMissingFile checks a vanished file is non-fatal.
func TestFileReaderMissingFile(t *testing.T) {
	t.Parallel()

	r := NewFileReader(filepath.Join(t.TempDir(), "gone.txt"))
	if _, ok := r.Read(); ok {
		t.Fatalf("missing file should yield no snapshot")
	}
	r.Remove() // must not panic or error loudly
}
