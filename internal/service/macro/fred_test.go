package macro

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"MarketPulse/internal/domain/models"
	xhttp "MarketPulse/pkg/http"
	applogger "MarketPulse/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []models.MacroObservation
		wantErr bool
	}{
		{
			name: "observation_date header with missing value",
			raw:  "observation_date,GDP\n2025-01-01,29723.864\n2025-04-01,.\n",
			want: []models.MacroObservation{
				{Date: "2025-01-01", Value: models.Num(29723.864)},
				{Date: "2025-04-01", Value: models.NullMetric()},
			},
		},
		{
			name: "legacy DATE header",
			raw:  "DATE,UNRATE\n2025-08-01,4.3\n\n",
			want: []models.MacroObservation{{Date: "2025-08-01", Value: models.Num(4.3)}},
		},
		{name: "empty body", raw: "", wantErr: true},
		{name: "html error page", raw: "<html>oops</html>\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCSV([]byte(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFREDFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("id") {
		case "GDP":
			_, _ = w.Write([]byte("observation_date,GDP\n2025-01-01,1.5\n"))
		default:
			http.Error(w, "bad series", http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	f := NewFRED(xhttp.NewClient(), srv.URL, applogger.Nop())

	snap, err := f.Fetch(context.Background(), models.MacroRequest{MacroIndicators: []string{"GDP", "NOPE"}})
	require.NoError(t, err)
	assert.Len(t, snap, 1)
	assert.Equal(t, 1.5, snap["GDP"][0].Value.Value)

	_, err = f.Fetch(context.Background(), models.MacroRequest{MacroIndicators: []string{"NOPE"}})
	assert.Error(t, err)
}
