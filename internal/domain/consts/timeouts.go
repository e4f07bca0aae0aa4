package consts

import "time"

// Progress publishing
const (
	SSETickInterval  = 500 * time.Millisecond
	SSENotFoundGrace = 10 * time.Second
)

// Side-channel progress file
const (
	ProgressPollInterval = 1 * time.Second
)

// Download lifecycle
const (
	MaxDownloadDuration = 5 * time.Minute
	FileDeleteGrace     = 2 * time.Second
	ProcessWaitDelay    = 5 * time.Second
)

// Network timeouts
const (
	MetadataTimeout   = 60 * time.Second
	DatabaseTimeout   = 5 * time.Second
	ServerIdleTimeout = 120 * time.Second
)
