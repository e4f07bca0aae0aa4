package downloads

import (
	"fmt"
	"strings"

	"grabarr/internal/domain/command"
	"grabarr/internal/domain/consts"
	"grabarr/internal/models"
)

// outputExt returns the container extension for a request format. Video is
// always delivered as mp4 for compatibility, audio as mp3.
func outputExt(format string) string {
	if format == models.FormatAudio {
		return consts.ExtAudio
	}
	return consts.ExtVideo
}

// needsReencode reports whether the request hits the 4K path, whose source
// streams are commonly VP9 and need converting rather than remuxing.
func needsReencode(quality, format string) bool {
	return format != models.FormatAudio && (quality == "best" || quality == "2160p")
}

// formatSelector maps (quality, format) to the selector expression passed
// through to the downloader verbatim.
func formatSelector(quality, format string) string {
	switch {
	case format == models.FormatAudio:
		return command.SelectorAudio
	case needsReencode(quality, format):
		return command.Selector4K
	default:
		height := strings.TrimSuffix(quality, "p")
		return fmt.Sprintf(command.SelectorByHeightTmpl, height, height, height)
	}
}

// buildArgs constructs the full yt-dlp argument vector for one session.
// The URL must go last.
func buildArgs(s *Session, cookieSource string) []string {
	args := make([]string, 0, 24)

	args = append(args, command.Format, formatSelector(s.Quality, s.Format))

	// Post-processing: stream copy for native H.264, re-encode for 4K,
	// bare extraction for audio. Every path points the muxer at the
	// side-channel progress file.
	if s.Format == models.FormatAudio {
		args = append(args,
			command.ExtractAudio,
			command.AudioFormat, consts.ExtAudio,
			command.AudioQuality, "192K",
			command.PostprocessorArgs, fmt.Sprintf(command.MuxerProgressOnlyTmpl, s.ProgressPath),
		)
	} else {
		args = append(args, command.MergeOutputFormat, consts.ExtVideo)

		tmpl := command.MuxerStreamCopyTmpl
		if needsReencode(s.Quality, s.Format) {
			tmpl = command.MuxerReencodeTmpl
		}
		args = append(args, command.PostprocessorArgs, fmt.Sprintf(tmpl, s.ProgressPath))
	}

	// Parallel connections for network throughput.
	args = append(args, command.ConcurrentConns, "32")

	if cookieSource != "" {
		args = append(args, command.CookiesFromBrowser, cookieSource)
	}

	args = append(args,
		command.Output, s.OutputPath,
		command.Newline, // required for line-based parsing
		command.NoWarnings,
		command.Progress,
	)

	return append(args, s.URL)
}
