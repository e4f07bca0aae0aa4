// Package regex compiles and caches various regex expressions. The accessors
// are called from concurrent session goroutines, so each compiles exactly
// once.
package regex

import (
	"regexp"
	"sync"
)

var (
	stdProgress     *regexp.Regexp
	stdProgressOnce sync.Once

	parallelDL     *regexp.Regexp
	parallelDLOnce sync.Once

	muxerKeyValue     *regexp.Regexp
	muxerKeyValueOnce sync.Once

	muxerSingleLine     *regexp.Regexp
	muxerSingleLineOnce sync.Once

	byteSize     *regexp.Regexp
	byteSizeOnce sync.Once

	speedMultiplier     *regexp.Regexp
	speedMultiplierOnce sync.Once

	specialChars     *regexp.Regexp
	specialCharsOnce sync.Once

	youTubeURL     *regexp.Regexp
	youTubeURLOnce sync.Once
)

// StdProgressCompile compiles regex for standard yt-dlp progress lines,
// e.g. "[download]  45.2% of  320.10MiB at   25.04MiB/s ETA 00:12".
func StdProgressCompile() *regexp.Regexp {
	stdProgressOnce.Do(func() {
		stdProgress = regexp.MustCompile(`\[download\]\s+(\d+\.?\d*)%\s+of\s+~?([\d.]+\s?\w+)\s+at\s+([\d.]+\s?\w+/s)(?:\s+ETA\s+([\d:]+))?`)
	})
	return stdProgress
}

// ParallelDLCompile compiles regex for connection-based downloader progress lines,
// e.g. "[#20aa3b 26MiB/320MiB(8%) CN:16 DL:23MiB ETA:12s]".
func ParallelDLCompile() *regexp.Regexp {
	parallelDLOnce.Do(func() {
		parallelDL = regexp.MustCompile(`\[#\w+\s+([\d.]+\w+)/([\d.]+\w+)\(([\d.]+)%\)\s+CN:\d+\s+DL:([\d.]+\w+)(?:\s+ETA:([\w:]+))?`)
	})
	return parallelDL
}

// MuxerKeyValueCompile compiles regex for ffmpeg -progress key=value lines.
// Matches "key=value", "key= value" and "key = value".
func MuxerKeyValueCompile() *regexp.Regexp {
	muxerKeyValueOnce.Do(func() {
		muxerKeyValue = regexp.MustCompile(`^(\w+)\s*=\s*(.+)$`)
	})
	return muxerKeyValue
}

// MuxerSingleLineCompile compiles regex for single-line ffmpeg progress output,
// e.g. "frame= 1234 fps=60 q=28.0 size=45056kB time=00:00:41.23 speed=2.0x".
func MuxerSingleLineCompile() *regexp.Regexp {
	muxerSingleLineOnce.Do(func() {
		muxerSingleLine = regexp.MustCompile(`frame=\s*(\d+)\s+fps=\s*([\d.]+)\s+.*?time=\s*([\d:.]+)\s+.*?speed=\s*([\d.]+)x`)
	})
	return muxerSingleLine
}

// ByteSizeCompile compiles regex for human byte sizes such as "23.5MiB".
func ByteSizeCompile() *regexp.Regexp {
	byteSizeOnce.Do(func() {
		byteSize = regexp.MustCompile(`(?i)([\d.]+)\s*([KMG]i?B)`)
	})
	return byteSize
}

// SpeedMultiplierCompile compiles regex for muxer speed strings like "@ 2.0x".
func SpeedMultiplierCompile() *regexp.Regexp {
	speedMultiplierOnce.Do(func() {
		speedMultiplier = regexp.MustCompile(`@?\s*([\d.]+)x`)
	})
	return speedMultiplier
}

// SpecialCharsCompile compiles regex for characters stripped from filenames.
func SpecialCharsCompile() *regexp.Regexp {
	specialCharsOnce.Do(func() {
		specialChars = regexp.MustCompile(`[^\w\s\-.]`)
	})
	return specialChars
}

// YouTubeURLCompile compiles regex for YouTube watch/playlist URLs.
func YouTubeURLCompile() *regexp.Regexp {
	youTubeURLOnce.Do(func() {
		youTubeURL = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com|youtu\.be)/.+$`)
	})
	return youTubeURL
}
