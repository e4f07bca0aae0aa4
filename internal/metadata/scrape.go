package metadata

import (
	"fmt"
	"strings"

	"github.com/gocolly/colly"

	"grabarr/internal/domain/consts"
	"grabarr/internal/logging"
	"grabarr/internal/models"
)

// Scraper extracts a minimal single-video record from a media page's Open
// Graph tags when the JSON probe cannot run.
type Scraper struct{}

func NewScraper() *Scraper {
	return &Scraper{}
}

// Scrape visits rawURL and builds a record from og:title and og:image.
func (s *Scraper) Scrape(rawURL string) (*models.VideoMetadata, error) {
	collector := colly.NewCollector()
	collector.SetRequestTimeout(consts.MetadataTimeout)

	meta := &models.VideoMetadata{
		Type:        models.MetadataVideo,
		OriginalURL: rawURL,
	}

	collector.OnHTML(`meta[property="og:title"]`, func(e *colly.HTMLElement) {
		meta.Title = strings.TrimSpace(e.Attr("content"))
	})
	collector.OnHTML(`meta[property="og:image"]`, func(e *colly.HTMLElement) {
		meta.Thumbnail = e.Attr("content")
	})
	collector.OnHTML("title", func(e *colly.HTMLElement) {
		if meta.Title == "" {
			meta.Title = strings.TrimSpace(e.Text)
		}
	})

	if err := collector.Visit(rawURL); err != nil {
		return nil, fmt.Errorf("failed to visit %q: %w", rawURL, err)
	}
	collector.Wait()

	if meta.Title == "" {
		return nil, fmt.Errorf("page at %q exposed no usable metadata", rawURL)
	}

	logging.L.Debug().Str("url", rawURL).Str("title", meta.Title).Msg("scraped fallback metadata")
	return meta, nil
}
