package consts

// Database table and column names.
const (
	DBHistory = "download_history"

	QHistID       = "id"
	QHistDLID     = "download_id"
	QHistURL      = "url"
	QHistTitle    = "title"
	QHistFormat   = "format"
	QHistQuality  = "quality"
	QHistStatus   = "status"
	QHistFileSize = "file_size"
	QHistCreated  = "created_at"
)

// HistoryDefaultLimit caps history listings.
const HistoryDefaultLimit = 50
