// Package command holds yt-dlp and ffmpeg argument constants.
package command

// General
const (
	YTDLP              = "yt-dlp"
	CookiesFromBrowser = "--cookies-from-browser"
	Format             = "-f"
	MergeOutputFormat  = "--merge-output-format"
	Newline            = "--newline"
	NoWarnings         = "--no-warnings"
	Output             = "-o"
	PostprocessorArgs  = "--postprocessor-args"
	Progress           = "--progress"
	ConcurrentConns    = "-N"
)

// Audio extraction
const (
	ExtractAudio = "-x"
	AudioFormat  = "--audio-format"
	AudioQuality = "--audio-quality"
)

// Metadata
const (
	DumpJSON       = "-j"
	FlatPlaylist   = "--flat-playlist"
	GetFilename    = "--get-filename"
	TitleSyntax    = "%(title)s.%(ext)s"
	PythonNoBufEnv = "PYTHONUNBUFFERED=1"
)

// Format selectors, keyed by request quality. The selector strings are
// passed through to yt-dlp verbatim.
const (
	SelectorAudio = "bestaudio"

	// Strict 2160p: prefers remux-friendly codecs, never falls back below 4K.
	Selector4K = "bestvideo[height=2160][vcodec^=avc1]+bestaudio[ext=m4a]/" +
		"bestvideo[height=2160][vcodec^=hev1]+bestaudio[ext=m4a]/" +
		"bestvideo[height=2160]+bestaudio/bestvideo[height>=2160]+bestaudio"

	// Height-limited H.264 path, %s is the pixel height.
	SelectorByHeightTmpl = "bestvideo[height<=%s][ext=mp4]+bestaudio[ext=m4a]/" +
		"best[height<=%s][ext=mp4]/best[height<=%s]"
)

// ffmpeg postprocessor argument templates. %s is the side-channel progress
// file path handed to ffmpeg's -progress flag.
const (
	MuxerStreamCopyTmpl   = `ffmpeg:-progress "%s" -c copy -bsf:a aac_adtstoasc`
	MuxerReencodeTmpl     = `ffmpeg:-progress "%s" -c:v libx264 -b:v 20M -pix_fmt yuv420p -c:a aac -b:a 192k`
	MuxerProgressOnlyTmpl = `ffmpeg:-progress "%s"`
)
