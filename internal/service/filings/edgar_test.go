package filings

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"MarketPulse/internal/domain/models"
	xhttp "MarketPulse/pkg/http"
	applogger "MarketPulse/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func atom(form string, n int) string {
	body := `<?xml version="1.0" encoding="ISO-8859-1" ?><feed xmlns="http://www.w3.org/2005/Atom">`
	for i := 0; i < n; i++ {
		body += fmt.Sprintf(`<entry><title>%s filing %d</title>
<link rel="alternate" href="https://www.sec.gov/%s/%d.htm"/>
<summary type="html">Filed 2025-08-0%d. Accession 000%d. Size 1 MB.</summary>
<updated>2025-08-0%dT16:30:00-04:00</updated></entry>`, form, i, form, i, i+1, i, i+1)
	}
	return body + `</feed>`
}

func TestEDGARFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "MarketPulse admin@example.com", r.Header.Get("User-Agent"))
		assert.Equal(t, "0000320193", q.Get("CIK"))
		assert.Equal(t, "getcompany", q.Get("action"))
		assert.Equal(t, "atom", q.Get("output"))
		assert.Equal(t, "5", q.Get("count"))

		switch q.Get("type") {
		case "10-K":
			_, _ = w.Write([]byte(atom("10-K", 7)))
		case "8-K":
			http.Error(w, "blocked", http.StatusForbidden)
		default:
			_, _ = w.Write([]byte(atom(q.Get("type"), 1)))
		}
	}))
	defer srv.Close()

	e := NewEDGAR(xhttp.NewClient(), srv.URL, "MarketPulse admin@example.com", nil, applogger.Nop())
	got, err := e.Fetch(context.Background(), models.SECFilingsRequest{CIK: "0000320193"})
	require.NoError(t, err)

	// 5 capped 10-K + 1 10-Q + 0 8-K + 1 form 4
	require.Len(t, got, 7)
	assert.Equal(t, "10-K", got[0].Type)
	assert.Equal(t, "10-K filing 0", got[0].Title)
	assert.Equal(t, "https://www.sec.gov/10-K/0.htm", got[0].Link)
	assert.Equal(t, "2025-08-01T16:30:00-04:00", got[0].Date)
	assert.Equal(t, "Filed 2025-08-01. Accession 0000.", got[0].Summary)
	assert.Equal(t, "10-Q", got[5].Type)
	assert.Equal(t, "4", got[6].Type)
}

func TestEDGARAllFailing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e := NewEDGAR(xhttp.NewClient(), srv.URL, "ua", nil, applogger.Nop())
	_, err := e.Fetch(context.Background(), models.SECFilingsRequest{CIK: "1"})
	assert.Error(t, err)
}
