package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nowwaveradio/jdatetime/internal/config"
)

var fixedNow = time.Date(2025, 6, 28, 8, 30, 0, 0, time.UTC)

func newTestServer(t *testing.T, modify func(*config.Config)) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Calendar.DefaultLocale = "en_US"
	cfg.Calendar.Timezone = "Asia/Tehran"
	if modify != nil {
		modify(cfg)
	}
	s, err := New(cfg,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return s
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, h http.Handler, path string, query url.Values) *httptest.ResponseRecorder {
	t.Helper()
	if query != nil {
		path += "?" + query.Encode()
	}
	return do(t, h, httptest.NewRequest(http.MethodGet, path, nil))
}

func post(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return do(t, h, req)
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func TestNewNilConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestHealthAndRequestID(t *testing.T) {
	s := newTestServer(t, nil)
	h := s.Router()

	rec := get(t, h, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err, "assigned request ID should be a UUID")

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, incoming)
	rec = do(t, h, req)
	assert.Equal(t, incoming, rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	rec = do(t, h, req)
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get(RequestIDHeader))

	assert.Equal(t, 0, s.store.Len(), "request locales should be released")
}

func TestToday(t *testing.T) {
	h := newTestServer(t, nil).Router()

	rec := get(t, h, "/v1/today", url.Values{"format": {"%Y/%m/%d %H:%M"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody[ValueResponse](t, rec)
	assert.Equal(t, "1404/04/07 12:00", body.Formatted)
	assert.Equal(t, "1404-04-07T12:00:00+03:30", body.ISO)
	assert.Equal(t, "2025-06-28T12:00:00+03:30", body.Gregorian)
	assert.True(t, body.Aware)
}

func TestTodayLocale(t *testing.T) {
	h := newTestServer(t, nil).Router()

	rec := get(t, h, "/v1/today", url.Values{"format": {"long"}, "locale": {"fa_IR"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "شنبه 07 تیر 1404", decodeBody[ValueResponse](t, rec).Formatted)

	req := httptest.NewRequest(http.MethodGet, "/v1/today?format=%25B", nil)
	req.Header.Set("Accept-Language", "fa-IR,fa;q=0.9,en;q=0.5")
	rec = do(t, h, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "تیر", decodeBody[ValueResponse](t, rec).Formatted)

	rec = get(t, h, "/v1/today", url.Values{"format": {"%B"}})
	assert.Equal(t, "Tir", decodeBody[ValueResponse](t, rec).Formatted)

	rec = get(t, h, "/v1/today", url.Values{"locale": {"not a locale!"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", decodeBody[ErrorResponse](t, rec).Error)

	rec = get(t, h, "/v1/today", url.Values{"format": {"no-such-preset"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConvert(t *testing.T) {
	h := newTestServer(t, nil).Router()

	tests := []struct {
		name   string
		path   string
		query  url.Values
		status int
		output string
		code   string
	}{
		{"to jalali", "/v1/convert/to-jalali", url.Values{"date": {"2025-06-28"}}, http.StatusOK, "1404-04-07", ""},
		{"to jalali with names", "/v1/convert/to-jalali", url.Values{"date": {"2025-06-28"}, "format": {"%d %B %Y"}}, http.StatusOK, "07 Tir 1404", ""},
		{"to jalali with layout", "/v1/convert/to-jalali", url.Values{"date": {"28/06/2025"}, "layout": {"DD/MM/YYYY"}}, http.StatusOK, "1404-04-07", ""},
		{"to jalali missing date", "/v1/convert/to-jalali", nil, http.StatusBadRequest, "", "invalid_request"},
		{"to jalali bad input", "/v1/convert/to-jalali", url.Values{"date": {"bogus"}}, http.StatusBadRequest, "", "parse_error"},
		{"to gregorian", "/v1/convert/to-gregorian", url.Values{"date": {"1404-01-01"}}, http.StatusOK, "2025-03-21", ""},
		{"to gregorian persian digits", "/v1/convert/to-gregorian", url.Values{"date": {"۱۴۰۴/۰۱/۰۱"}}, http.StatusOK, "2025-03-21", ""},
		{"to gregorian with pattern", "/v1/convert/to-gregorian", url.Values{"date": {"07 Tir 1404"}, "pattern": {"%d %B %Y"}, "layout": {"Jan 2, 2006"}}, http.StatusOK, "Jun 28, 2025", ""},
		{"to gregorian invalid day", "/v1/convert/to-gregorian", url.Values{"date": {"1392-12-30"}, "pattern": {"%Y-%m-%d"}}, http.StatusBadRequest, "", "parse_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, tt.path, tt.query)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.output, decodeBody[ConvertResponse](t, rec).Output)
				return
			}
			body := decodeBody[ErrorResponse](t, rec)
			assert.Equal(t, tt.code, body.Error)
			assert.NotEmpty(t, body.RequestID)
		})
	}
}

func TestParse(t *testing.T) {
	h := newTestServer(t, nil).Router()

	rec := post(t, h, "/v1/parse", ParseRequest{Text: "1402-01-03T15:35:59+03:30"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody[ValueResponse](t, rec)
	assert.Equal(t, "1402-01-03T15:35:59+03:30", body.ISO)
	assert.True(t, body.Aware)

	rec = post(t, h, "/v1/parse", ParseRequest{Text: "07 Tir 1404", Pattern: "%d %B %Y"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body = decodeBody[ValueResponse](t, rec)
	assert.Equal(t, "1404-04-07T00:00:00", body.ISO)
	assert.Equal(t, "2025-06-28T00:00:00", body.Gregorian)
	assert.False(t, body.Aware)

	tests := []struct {
		name   string
		body   interface{}
		status int
		code   string
	}{
		{"unknown directive", ParseRequest{Text: "1404", Pattern: "%Q"}, http.StatusBadRequest, "invalid_request"},
		{"missing text", ParseRequest{}, http.StatusBadRequest, "invalid_request"},
		{"unknown field", `{"text": "1404-01-01", "zone": "UTC"}`, http.StatusBadRequest, "invalid_request"},
		{"malformed json", `{"text": `, http.StatusBadRequest, "invalid_request"},
		{"no match", ParseRequest{Text: "1404-1-1"}, http.StatusBadRequest, "parse_error"},
		{"bad offset", ParseRequest{Text: "10 +2500", Pattern: "%H %z"}, http.StatusBadRequest, "parse_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, "/v1/parse", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decodeBody[ErrorResponse](t, rec).Error)
		})
	}
}

func TestParseValidationDescription(t *testing.T) {
	h := newTestServer(t, nil).Router()

	rec := post(t, h, "/v1/parse", ParseRequest{Text: "1404", Pattern: "%Y-%Q"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	desc := decodeBody[ErrorResponse](t, rec).ErrorDescription
	assert.Contains(t, desc, "pattern: contains unknown directives %Q")
}

func TestFormat(t *testing.T) {
	h := newTestServer(t, nil).Router()

	rec := post(t, h, "/v1/format", FormatRequest{Date: "1404-04-07", Pattern: "full"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Saturday 07 Tir 1404", decodeBody[ValueResponse](t, rec).Formatted)

	rec = post(t, h, "/v1/format?locale=fa_IR", FormatRequest{Date: "1404-04-07T12:00:00", Pattern: "%B %H:%M"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "تیر 12:00", decodeBody[ValueResponse](t, rec).Formatted)

	rec = post(t, h, "/v1/format", FormatRequest{Date: "1403/01/01", Pattern: "%Y"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, h, "/v1/format", FormatRequest{Date: "1404-04-07"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatch(t *testing.T) {
	h := newTestServer(t, nil).Router()

	rec := post(t, h, "/v1/batch", BatchRequest{
		Mode:   "to-jalali",
		Inputs: []string{"2025-03-21", "bogus", ""},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody[BatchResponse](t, rec)
	assert.Equal(t, 3, body.Total)
	assert.Equal(t, 1, body.Successful)
	assert.Equal(t, 1, body.Failed)
	assert.Equal(t, 1, body.Skipped)
	require.Len(t, body.Results, 3)
	assert.Equal(t, "1404-01-01", body.Results[0].Output)
	assert.Equal(t, "parse_error", body.Results[1].Code)
	assert.True(t, body.Results[2].Skipped)

	rec = post(t, h, "/v1/batch", BatchRequest{
		Mode:          "reformat",
		Inputs:        []string{"1404/04/07"},
		OutputPattern: "%d.%m.%y",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "07.04.04", decodeBody[BatchResponse](t, rec).Results[0].Output)

	rec = post(t, h, "/v1/batch", BatchRequest{Mode: "sideways", Inputs: []string{"x"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, h, "/v1/batch", BatchRequest{Mode: "to-jalali"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, h, "/v1/batch", BatchRequest{Mode: "to-jalali", Inputs: make([]string, 1001)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, nil).Router()

	get(t, h, "/v1/convert/to-jalali", url.Values{"date": {"2025-06-28"}})
	rec := get(t, h, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	text := rec.Body.String()
	assert.True(t, strings.Contains(text, `jdate_http_requests_total{route="/v1/convert/to-jalali",status="200"} 1`), text)
	assert.Contains(t, text, `jdate_conversions_total{mode="to-jalali",outcome="success"} 1`)

	disabled := newTestServer(t, func(c *config.Config) { c.Server.MetricsEnabled = false }).Router()
	assert.Equal(t, http.StatusNotFound, get(t, disabled, "/metrics", nil).Code)
}
