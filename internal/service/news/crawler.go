package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	applogger "MarketPulse/pkg/logger"

	"github.com/gocolly/colly/v2"
)

const minHeadlineLen = 20

// Crawler collects article links from seed pages.
type Crawler struct {
	userAgent  string
	timeout    time.Duration
	maxPerSeed int
	logger     *applogger.Logger
}

func NewCrawler(userAgent string, timeout time.Duration, maxPerSeed int, logger *applogger.Logger) *Crawler {
	if maxPerSeed <= 0 {
		maxPerSeed = 5
	}
	return &Crawler{userAgent: userAgent, timeout: timeout, maxPerSeed: maxPerSeed, logger: logger}
}

// Links visits seed and returns up to maxPerSeed same-host links whose anchor text
// reads like a headline. The seed itself is returned when it links to nothing usable.
func (c *Crawler) Links(ctx context.Context, seed string) ([]string, error) {
	base, err := url.Parse(seed)
	if err != nil || base.Hostname() == "" {
		return nil, fmt.Errorf("invalid seed url %q", seed)
	}

	col := colly.NewCollector(
		colly.AllowedDomains(base.Hostname()),
		colly.MaxDepth(1),
		colly.Async(false),
	)
	if c.timeout > 0 {
		col.SetRequestTimeout(c.timeout)
	}

	col.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		if c.userAgent != "" {
			r.Headers.Set("User-Agent", c.userAgent)
		}
	})

	var links []string
	seen := map[string]struct{}{}
	col.OnHTML("a[href]", func(e *colly.HTMLElement) {
		if len(links) >= c.maxPerSeed {
			return
		}
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if !isArticleLink(base, link, strings.TrimSpace(e.Text)) {
			return
		}
		if _, ok := seen[link]; ok {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})

	var visitErr error
	col.OnError(func(r *colly.Response, err error) {
		visitErr = err
		c.logger.Warn("crawl error", applogger.String("url", r.Request.URL.String()),
			applogger.Int("status_code", r.StatusCode), applogger.Error(err))
	})

	if err := col.Visit(seed); err != nil {
		return nil, fmt.Errorf("visit %s: %w", seed, err)
	}
	col.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if visitErr != nil {
		return nil, fmt.Errorf("visit %s: %w", seed, visitErr)
	}
	if len(links) == 0 {
		return []string{seed}, nil
	}
	return links, nil
}

func isArticleLink(base *url.URL, link, text string) bool {
	if len(text) < minHeadlineLen {
		return false
	}
	u, err := url.Parse(link)
	if err != nil || u.Hostname() != base.Hostname() {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	path := strings.Trim(u.Path, "/")
	if path == "" || path == strings.Trim(base.Path, "/") {
		return false
	}
	return strings.Count(path, "/") >= 1 || strings.ContainsAny(path, "0123456789-")
}
