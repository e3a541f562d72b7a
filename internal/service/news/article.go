package news

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	xhttp "MarketPulse/pkg/http"
	"MarketPulse/pkg/util"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

var bodySelectors = []string{"article", "[itemprop=articleBody]", "main", "body"}

var publishedSelectors = []struct{ sel, attr string }{
	{"meta[property='article:published_time']", "content"},
	{"meta[name='article:published_time']", "content"},
	{"meta[name='pubdate']", "content"},
	{"meta[itemprop='datePublished']", "content"},
	{"time[datetime]", "datetime"},
}

// Page is an extracted article.
type Page struct {
	URL         string
	Title       string
	Text        string
	PublishDate string
}

// Extractor downloads a page and pulls title, publish date and body text out of it.
type Extractor struct {
	client *xhttp.Client
}

func NewExtractor(client *xhttp.Client) *Extractor {
	return &Extractor{client: client}
}

func (x *Extractor) Extract(ctx context.Context, pageURL string) (Page, error) {
	var body []byte
	if err := x.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     pageURL,
		Headers: map[string]string{"Accept": "text/html"},
	}, &body); err != nil {
		return Page{}, fmt.Errorf("download %s: %w", pageURL, err)
	}
	return ParsePage(pageURL, body)
}

// ParsePage extracts an article from raw HTML. The body is rendered as markdown
// from the page's paragraphs.
func ParsePage(pageURL string, raw []byte) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return Page{}, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	p := Page{URL: pageURL, Title: title(doc)}
	for _, s := range publishedSelectors {
		if v, ok := doc.Find(s.sel).First().Attr(s.attr); ok && strings.TrimSpace(v) != "" {
			p.PublishDate = util.NormalizeDate(strings.TrimSpace(v))
			break
		}
	}

	var container *goquery.Selection
	for _, sel := range bodySelectors {
		if c := doc.Find(sel).First(); c.Length() > 0 && c.Find("p").Length() > 0 {
			container = c
			break
		}
	}
	if container == nil {
		return p, nil
	}
	container.Find("script, style, nav, header, footer, aside, figure, form").Remove()

	var buf strings.Builder
	container.Find("p").Each(func(_ int, s *goquery.Selection) {
		if strings.TrimSpace(s.Text()) == "" {
			return
		}
		h, err := goquery.OuterHtml(s)
		if err == nil {
			buf.WriteString(h)
		}
	})

	text, err := md.NewConverter(pageURL, true, nil).ConvertString(buf.String())
	if err != nil {
		return p, fmt.Errorf("markdown %s: %w", pageURL, err)
	}
	p.Text = strings.TrimSpace(text)
	return p, nil
}

func title(doc *goquery.Document) string {
	if v, ok := doc.Find("meta[property='og:title']").Attr("content"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if v := strings.TrimSpace(doc.Find("title").First().Text()); v != "" {
		return v
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

// plainText strips markup from an HTML fragment.
func plainText(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return strings.TrimSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
