package progress

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"grabarr/internal/domain/consts"
	"grabarr/internal/domain/regex"
	"grabarr/internal/logging"
)

// FileStats is one parsed snapshot of the muxer's side-channel progress file.
type FileStats struct {
	OutTime string
	Seconds int
	SpeedX  string
	FPS     string
}

// FileReader polls the auxiliary file ffmpeg writes key=value progress lines
// to. Some tool configurations suppress the muxer's captured stdout, making
// the file the more reliable channel.
type FileReader struct {
	path     string
	interval time.Duration
}

// NewFileReader returns a reader for the given side-channel file path.
func NewFileReader(path string) *FileReader {
	return &FileReader{path: path, interval: consts.ProgressPollInterval}
}

// Path returns the side-channel file path.
func (r *FileReader) Path() string {
	return r.path
}

// Init creates or truncates the side-channel file so the muxer can append to
// a known-empty file.
func (r *FileReader) Init() error {
	f, err := os.Create(r.path)
	if err != nil {
		return err
	}
	return f.Close()
}

// Run polls the file on a fixed interval until ctx is cancelled, invoking fn
// with each snapshot that carries an out_time key.
func (r *FileReader) Run(ctx context.Context, fn func(FileStats)) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if stats, ok := r.Read(); ok {
				fn(stats)
			}
		}
	}
}

// Read parses the file once. Later lines overwrite earlier ones for the same
// key within one read; a snapshot is only reported once out_time appears.
func (r *FileReader) Read() (FileStats, bool) {
	content, err := os.ReadFile(r.path)
	if err != nil {
		return FileStats{}, false
	}

	kv := make(map[string]string)
	for _, line := range strings.Split(string(content), "\n") {
		k, v, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k != "" && v != "" {
			kv[k] = v
		}
	}

	outTime, ok := kv["out_time"]
	if !ok {
		return FileStats{}, false
	}

	return FileStats{
		OutTime: outTime,
		Seconds: ParseClock(outTime),
		SpeedX:  orDefault(kv["speed"], "1x"),
		FPS:     orDefault(kv["fps"], "0"),
	}, true
}

// Remove deletes the side-channel file. Deletion failure is non-fatal.
func (r *FileReader) Remove() {
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		logging.L.Warn().Err(err).Str("path", r.path).Msg("failed to remove progress file")
	}
}

// SpeedMultiplier extracts the float multiplier from a muxer speed string
// like "2.0x" or "@ 1.5x". Returns 0 when absent.
func SpeedMultiplier(s string) float64 {
	m := regex.SpeedMultiplierCompile().FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return f
}
