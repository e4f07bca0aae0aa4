// Package browser probes local browser cookie stores so the downloader only
// receives a cookie source when cookies actually exist for the target domain.
package browser

import (
	"context"
	"net/url"
	"sync"

	"github.com/browserutils/kooky"
	_ "github.com/browserutils/kooky/browser/all"
	"golang.org/x/net/publicsuffix"

	"grabarr/internal/logging"
)

// BaseDomain returns the effective TLD plus one for an inputted URL.
func BaseDomain(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return publicsuffix.EffectiveTLDPlusOne(u.Hostname())
}

// CookieProbe checks browser cookie stores for a domain. Store discovery is
// expensive, so the store list is found once and per-domain results cached.
type CookieProbe struct {
	mu     sync.Mutex
	stores []kooky.CookieStore
	found  map[string]bool
	init   bool
}

func NewCookieProbe() *CookieProbe {
	return &CookieProbe{found: make(map[string]bool)}
}

// HasCookies reports whether any local browser store holds valid cookies for
// the URL's base domain. Errors degrade to false: the download then simply
// runs without a cookie source.
func (p *CookieProbe) HasCookies(ctx context.Context, rawURL string) bool {
	domain, err := BaseDomain(rawURL)
	if err != nil {
		logging.L.Debug().Err(err).Str("url", rawURL).Msg("cannot derive base domain")
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if got, ok := p.found[domain]; ok {
		return got
	}
	if !p.init {
		p.stores = kooky.FindAllCookieStores()
		p.init = true
	}

	found := false
	for _, store := range p.stores {
		if ctx.Err() != nil {
			return false
		}
		cookies, err := store.ReadCookies(kooky.Valid, kooky.Domain(domain))
		if err != nil {
			logging.L.Trace().Err(err).Str("browser", store.Browser()).Msg("cookie store read failed")
			continue
		}
		if len(cookies) > 0 {
			logging.L.Debug().
				Str("browser", store.Browser()).
				Str("domain", domain).
				Int("count", len(cookies)).
				Msg("found browser cookies")
			found = true
			break
		}
	}

	p.found[domain] = found
	return found
}
