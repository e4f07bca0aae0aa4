package metadata

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"grabarr/internal/domain/command"
	"grabarr/internal/domain/consts"
	"grabarr/internal/logging"
	"grabarr/internal/models"
)

// Fetcher resolves media metadata by running the downloader's JSON probe,
// falling back to a page scrape when the probe fails.
type Fetcher struct {
	YtdlpPath    string
	CookieSource string
	Scraper      *Scraper // nil disables the fallback
}

func NewFetcher(ytdlpPath, cookieSource string) *Fetcher {
	if ytdlpPath == "" {
		ytdlpPath = command.YTDLP
	}
	return &Fetcher{
		YtdlpPath:    ytdlpPath,
		CookieSource: cookieSource,
		Scraper:      NewScraper(),
	}
}

// Fetch returns the metadata record for rawURL. For playlist URLs the probe
// runs flat, resolving entry stubs without fetching each item.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*models.VideoMetadata, error) {
	fctx, cancel := context.WithTimeout(ctx, consts.MetadataTimeout)
	defer cancel()

	args := []string{command.DumpJSON, command.FlatPlaylist, command.NoWarnings}
	if f.CookieSource != "" {
		args = append(args, command.CookiesFromBrowser, f.CookieSource)
	}
	args = append(args, rawURL)

	cmd := exec.CommandContext(fctx, f.YtdlpPath, args...)
	logging.L.Debug().Str("url", rawURL).Str("cmd", cmd.String()).Msg("fetching metadata")

	out, err := cmd.Output()
	if err == nil {
		meta, perr := ParseNDJSON(out, rawURL)
		if perr == nil {
			return meta, nil
		}
		err = perr
	}

	logging.L.Warn().Err(err).Str("url", rawURL).Msg("metadata probe failed, trying page scrape")
	if f.Scraper != nil {
		if meta, serr := f.Scraper.Scrape(rawURL); serr == nil {
			return meta, nil
		}
	}
	return nil, fmt.Errorf("failed to fetch metadata for %q: %w", rawURL, err)
}

// Filename probes the media title for a URL. Probe failures fall back to a
// generic name rather than erroring, a missing title never blocks a download.
func (f *Fetcher) Filename(ctx context.Context, rawURL string) string {
	fctx, cancel := context.WithTimeout(ctx, consts.MetadataTimeout)
	defer cancel()

	cmd := exec.CommandContext(fctx, f.YtdlpPath,
		command.GetFilename, command.Output, command.TitleSyntax, command.NoWarnings, rawURL)

	out, err := cmd.Output()
	if err != nil {
		logging.L.Debug().Err(err).Str("url", rawURL).Msg("filename probe failed")
		return "video.mp4"
	}
	name := strings.TrimSpace(string(out))
	if name == "" {
		return "video.mp4"
	}
	return name
}
