package consts

// Output container extensions by request format.
const (
	ExtVideo = "mp4"
	ExtAudio = "mp3"
)

// ContentTypes maps output file extensions to MIME types for delivery.
var ContentTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
}

// ContentTypeFallback is used for extensions not in ContentTypes.
const ContentTypeFallback = "application/octet-stream"

// Smoothing blend constants. Download-phase samples arrive on every output
// line and are noisier than the once-per-second merge-phase file polls.
const (
	DownloadBlend = 0.1
	MergeBlend    = 0.2
)

// Progress file naming
const (
	ProgressFilePrefix = "progress_"
	ProgressFileSuffix = ".txt"
)
