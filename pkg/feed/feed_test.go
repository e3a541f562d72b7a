package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Business</title>
<item>
  <title> Apple beats estimates </title>
  <link>https://example.com/a</link>
  <description>&lt;p&gt;Strong iPhone sales.&lt;/p&gt;</description>
  <pubDate>Fri, 05 Sep 2025 13:00:00 GMT</pubDate>
  <category>Tech</category>
</item>
<item><title>No body</title><link>https://example.com/b</link></item>
</channel></rss>`

const atomFixture = `<?xml version="1.0" encoding="ISO-8859-1" ?>
<feed xmlns="http://www.w3.org/2005/Atom">
<entry>
  <title>10-K - Annual report</title>
  <link rel="alternate" type="text/html" href="https://www.sec.gov/Archives/x.htm"/>
  <summary type="html">Filed: 2025-08-01</summary>
  <updated>2025-08-01T16:30:00-04:00</updated>
  <category scheme="https://www.sec.gov/" label="form type" term="10-K"/>
</entry>
</feed>`

func TestParseRSS(t *testing.T) {
	items, err := Parse([]byte(rssFixture))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, Item{
		Title:     "Apple beats estimates",
		Link:      "https://example.com/a",
		Summary:   "<p>Strong iPhone sales.</p>",
		Published: "Fri, 05 Sep 2025 13:00:00 GMT",
		Category:  "Tech",
	}, items[0])
	assert.Empty(t, items[1].Summary)
	assert.Empty(t, items[1].Published)
}

func TestParseAtom(t *testing.T) {
	items, err := Parse([]byte(atomFixture))
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "10-K - Annual report", items[0].Title)
	assert.Equal(t, "https://www.sec.gov/Archives/x.htm", items[0].Link)
	assert.Equal(t, "Filed: 2025-08-01", items[0].Summary)
	assert.Equal(t, "2025-08-01T16:30:00-04:00", items[0].Published)
	assert.Equal(t, "10-K", items[0].Category)
}

func TestParseUnknown(t *testing.T) {
	_, err := Parse([]byte(`<html><body/></html>`))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Parse([]byte(`not xml`))
	assert.Error(t, err)
}

func TestParseLatin1(t *testing.T) {
	raw := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><rss><channel><item><title>Caf\xe9</title></item></channel></rss>")
	items, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Café", items[0].Title)
}
