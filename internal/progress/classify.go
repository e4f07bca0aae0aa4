package progress

import (
	"fmt"
	"strconv"
	"strings"

	"grabarr/internal/domain/regex"
)

// UpdateKind tags which matcher produced an Update.
type UpdateKind int

const (
	// KindNone means the line matched no known progress grammar.
	KindNone UpdateKind = iota
	// KindDownload is a standard "[download] x% of y at z ETA t" line.
	KindDownload
	// KindParallel is a connection-based downloader line ("[#id d/t(p%) CN:n DL:r]").
	KindParallel
	// KindMuxer is a complete muxer progress record (key=value set or single line).
	KindMuxer
	// KindMuxerStart signals post-processing has begun, before any stats arrive.
	KindMuxerStart
)

// Update is one typed partial progress extraction from a single line.
type Update struct {
	Kind UpdateKind

	// Download / parallel fields
	Percent    float64
	Downloaded string
	Total      string
	Speed      string
	Eta        string
	EtaSeconds int

	// Muxer fields
	Frame   string
	FPS     string
	OutTime string
	SpeedX  string
}

// Classifier classifies subprocess output lines, one at a time, in a fixed
// priority order. It keeps the per-session key=value buffer the muxer's
// -progress output accumulates into, plus the last error-looking line for
// failure reporting.
type Classifier struct {
	kv        map[string]string
	lastError string
}

// NewClassifier returns a classifier with an empty key/value buffer.
func NewClassifier() *Classifier {
	return &Classifier{kv: make(map[string]string)}
}

// LastError returns the most recent diagnostic line seen, or "".
func (c *Classifier) LastError() string {
	return c.lastError
}

// Classify runs the matchers against one complete line and returns the first
// match. Lines matching nothing return (Update{}, false) and are log output
// only; they must never terminate the session.
func (c *Classifier) Classify(line string) (Update, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Update{}, false
	}

	if strings.Contains(strings.ToLower(trimmed), "error") || strings.HasPrefix(trimmed, "ERROR:") {
		c.lastError = trimmed
	}

	// Post-processing start marker, so the UI flips to merging immediately.
	if strings.Contains(trimmed, "[Merger]") || strings.Contains(trimmed, "[Fixup") {
		return Update{Kind: KindMuxerStart}, true
	}

	// 1. Muxer key=value accumulation. A "progress" key closes one record.
	if m := regex.MuxerKeyValueCompile().FindStringSubmatch(trimmed); m != nil {
		key, value := m[1], m[2]
		c.kv[key] = value
		if key == "progress" {
			upd := Update{
				Kind:    KindMuxer,
				Frame:   orDefault(c.kv["frame"], "0"),
				FPS:     orDefault(c.kv["fps"], "0"),
				OutTime: orDefault(c.kv["out_time"], "00:00:00"),
				SpeedX:  orDefault(c.kv["speed"], "0"),
			}
			c.kv = make(map[string]string)
			return upd, true
		}
		return Update{}, false
	}

	// 2. Standard downloader progress.
	if m := regex.StdProgressCompile().FindStringSubmatch(trimmed); m != nil {
		return c.downloadUpdate(m), true
	}

	// 3. Parallel (connection-based) downloader progress.
	if m := regex.ParallelDLCompile().FindStringSubmatch(trimmed); m != nil {
		return c.parallelUpdate(m), true
	}

	// 4. Single-line muxer fallback.
	if m := regex.MuxerSingleLineCompile().FindStringSubmatch(trimmed); m != nil {
		return Update{
			Kind:    KindMuxer,
			Frame:   m[1],
			FPS:     m[2],
			OutTime: m[3],
			SpeedX:  m[4] + "x",
		}, true
	}

	return Update{}, false
}

// downloadUpdate extracts a standard progress line. The tool does not always
// report downloaded bytes, so they are derived as percent/100 * total.
func (c *Classifier) downloadUpdate(m []string) Update {
	percent, _ := strconv.ParseFloat(m[1], 64)
	total := strings.ReplaceAll(m[2], "~", "")
	speed := m[3]
	eta := m[4]
	if eta == "" {
		eta = "00:00"
	}

	downloaded := "0"
	if sm := regex.ByteSizeCompile().FindStringSubmatch(total); sm != nil {
		if totalNum, err := strconv.ParseFloat(sm[1], 64); err == nil {
			downloaded = fmt.Sprintf("%.2f%s", percent/100*totalNum, sm[2])
		}
	}

	return Update{
		Kind:       KindDownload,
		Percent:    percent,
		Downloaded: downloaded,
		Total:      total,
		Speed:      speed,
		Eta:        eta,
		EtaSeconds: ParseClock(eta),
	}
}

// parallelUpdate extracts a connection-based downloader line. The reported
// percent is rounded by the tool; when both byte counts parse to nonzero the
// percent is recomputed from them instead.
func (c *Classifier) parallelUpdate(m []string) Update {
	downloaded, total := m[1], m[2]
	percent, _ := strconv.ParseFloat(m[3], 64)
	eta := m[5]
	if eta == "" {
		eta = "unknown"
	}

	downBytes := ParseByteSize(downloaded)
	totalBytes := ParseByteSize(total)
	if totalBytes > 0 {
		percent = downBytes / totalBytes * 100
	}

	return Update{
		Kind:       KindParallel,
		Percent:    percent,
		Downloaded: downloaded,
		Total:      total,
		Speed:      m[4] + "/s",
		Eta:        eta,
		EtaSeconds: ParseClock(eta),
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
