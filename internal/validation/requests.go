// Package validation checks inbound request fields before any subprocess is
// spawned with them.
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"grabarr/internal/domain/regex"
	"grabarr/internal/models"
)

var (
	ErrURLRequired = errors.New("url is required")
	ErrIDRequired  = errors.New("download id is required")
)

var validQualities = map[string]bool{
	"best":  true,
	"2160p": true,
	"1440p": true,
	"1080p": true,
	"720p":  true,
	"480p":  true,
	"360p":  true,
}

// ValidateURL checks the URL parses and targets a supported site.
func ValidateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return ErrURLRequired
	}
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if !regex.YouTubeURLCompile().MatchString(rawURL) {
		return fmt.Errorf("unsupported url %q", rawURL)
	}
	return nil
}

// ValidateDownloadRequest normalizes and checks a start-download payload.
// Missing quality and format default rather than fail.
func ValidateDownloadRequest(req *models.DownloadRequest) error {
	if err := ValidateURL(req.URL); err != nil {
		return err
	}
	if req.Quality == "" {
		req.Quality = "best"
	}
	if req.Format == "" {
		req.Format = models.FormatVideo
	}
	if req.Format != models.FormatVideo && req.Format != models.FormatAudio {
		return fmt.Errorf("invalid format %q", req.Format)
	}
	if req.Format == models.FormatVideo && !validQualities[req.Quality] {
		return fmt.Errorf("invalid quality %q", req.Quality)
	}
	if req.Duration < 0 {
		req.Duration = 0
	}
	return nil
}

// SanitizeFilename strips characters unsafe in a Content-Disposition
// filename or on common filesystems.
func SanitizeFilename(name string) string {
	return strings.TrimSpace(regex.SpecialCharsCompile().ReplaceAllString(name, ""))
}
