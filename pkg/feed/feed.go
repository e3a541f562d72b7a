package feed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUnknownFormat is returned for documents that are neither RSS nor Atom.
var ErrUnknownFormat = errors.New("feed: unknown format")

// Item is one feed entry, normalized across RSS 2.0 and Atom.
type Item struct {
	Title     string
	Link      string
	Summary   string
	Published string
	Category  string
}

type rssDoc struct {
	Channel struct {
		Items []struct {
			Title       string   `xml:"title"`
			Link        string   `xml:"link"`
			Description string   `xml:"description"`
			Encoded     string   `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
			PubDate     string   `xml:"pubDate"`
			Date        string   `xml:"http://purl.org/dc/elements/1.1/ date"`
			Categories  []string `xml:"category"`
		} `xml:"item"`
	} `xml:"channel"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

type atomDoc struct {
	Entries []struct {
		Title     string     `xml:"title"`
		Links     []atomLink `xml:"link"`
		Summary   string     `xml:"summary"`
		Content   string     `xml:"content"`
		Published string     `xml:"published"`
		Updated   string     `xml:"updated"`
		Category  []struct {
			Term  string `xml:"term,attr"`
			Label string `xml:"label,attr"`
		} `xml:"category"`
	} `xml:"entry"`
}

// Parse decodes an RSS 2.0 or Atom document.
func Parse(raw []byte) ([]Item, error) {
	root, err := rootName(raw)
	if err != nil {
		return nil, err
	}

	switch root {
	case "rss":
		var doc rssDoc
		if err := newDecoder(raw).Decode(&doc); err != nil {
			return nil, fmt.Errorf("feed: decode rss: %w", err)
		}
		items := make([]Item, 0, len(doc.Channel.Items))
		for _, it := range doc.Channel.Items {
			item := Item{
				Title:     strings.TrimSpace(it.Title),
				Link:      strings.TrimSpace(it.Link),
				Summary:   firstNonEmpty(it.Description, it.Encoded),
				Published: firstNonEmpty(it.PubDate, it.Date),
			}
			if len(it.Categories) > 0 {
				item.Category = strings.TrimSpace(it.Categories[0])
			}
			items = append(items, item)
		}
		return items, nil
	case "feed":
		var doc atomDoc
		if err := newDecoder(raw).Decode(&doc); err != nil {
			return nil, fmt.Errorf("feed: decode atom: %w", err)
		}
		items := make([]Item, 0, len(doc.Entries))
		for _, e := range doc.Entries {
			item := Item{
				Title:     strings.TrimSpace(e.Title),
				Link:      atomHref(e.Links),
				Summary:   firstNonEmpty(e.Summary, e.Content),
				Published: firstNonEmpty(e.Published, e.Updated),
			}
			if len(e.Category) > 0 {
				item.Category = firstNonEmpty(e.Category[0].Term, e.Category[0].Label)
			}
			items = append(items, item)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("%w: <%s>", ErrUnknownFormat, root)
	}
}

func rootName(raw []byte) (string, error) {
	dec := newDecoder(raw)
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("feed: read root: %w", err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se.Name.Local, nil
		}
	}
}

func newDecoder(raw []byte) *xml.Decoder {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.CharsetReader = charsetReader
	return dec
}

// charsetReader accepts UTF-8 and ASCII as-is and widens Latin-1 bytes to UTF-8.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "", "utf-8", "utf8", "us-ascii", "ascii":
		return input, nil
	case "iso-8859-1", "latin1", "latin-1", "windows-1252":
		raw, err := io.ReadAll(input)
		if err != nil {
			return nil, err
		}
		var buf strings.Builder
		buf.Grow(len(raw))
		for _, b := range raw {
			buf.WriteRune(rune(b))
		}
		return strings.NewReader(buf.String()), nil
	default:
		return nil, fmt.Errorf("feed: unsupported charset %q", label)
	}
}

func atomHref(links []atomLink) string {
	for _, l := range links {
		if l.Rel == "" || l.Rel == "alternate" {
			return strings.TrimSpace(l.Href)
		}
	}
	if len(links) > 0 {
		return strings.TrimSpace(links[0].Href)
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
