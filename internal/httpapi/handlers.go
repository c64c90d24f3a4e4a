package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/nowwaveradio/jdatetime/internal/errorutil"
	"github.com/nowwaveradio/jdatetime/internal/jdate"
	"github.com/nowwaveradio/jdatetime/internal/locale"
	"github.com/nowwaveradio/jdatetime/internal/processor"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError classifies err; internal errors are logged and never described
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	reqErr := errorutil.ClassifyError(err, operation)
	resp := ErrorResponse{Error: reqErr.Code, RequestID: RequestID(r.Context())}

	if errorutil.IsClientError(err) {
		resp.ErrorDescription = err.Error()
	} else {
		errorutil.LogAndReturn(s.logger, operation, err, errorutil.InputContext(0, r.URL.RequestURI())...)
	}
	writeJSON(w, reqErr.StatusCode, resp)
}

func badRequest(field string, value interface{}, err error) error {
	return errorutil.NewValidationBuilder("request").Check(field, value, err).Build()
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return badRequest("body", "", err)
	}
	return s.validateRequest(dst)
}

// pattern resolves the format query or body value against the presets
func (s *Server) pattern(nameOrPattern string) (string, locale.Tag, error) {
	if nameOrPattern == "" {
		return s.config.Calendar.DefaultFormat, locale.None, nil
	}
	p, tag, err := s.presets.Pattern(nameOrPattern)
	if err != nil {
		return "", locale.None, badRequest("format", nameOrPattern, err)
	}
	return p, tag, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleToday handles GET /v1/today?format=
func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pattern, tag, err := s.pattern(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, r, "today", err)
		return
	}

	now, err := s.current()
	if err != nil {
		s.writeError(w, r, "today", err)
		return
	}
	if tag != locale.None {
		now = now.AsLocale(tag)
	}

	formatted := s.processor.Formatter().FormatContext(ctx, now, pattern)
	writeJSON(w, http.StatusOK, valueResponse(now, formatted))
}

// current is the server clock in the configured zone, naive local without one
func (s *Server) current() (jdate.DateTime, error) {
	t := s.now()
	if s.zone == nil {
		return jdate.DateTimeFromGregorian(jdate.FromGregorianDateTime{Time: t.Local(), Naive: true})
	}
	utc, err := jdate.FromTime(t.UTC())
	if err != nil {
		return jdate.DateTime{}, err
	}
	return utc.AsTimezone(s.zone)
}

// handleToJalali handles GET /v1/convert/to-jalali?date=&layout=&format=
func (s *Server) handleToJalali(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pattern, tag, err := s.pattern(q.Get("format"))
	if err != nil {
		s.writeError(w, r, "to-jalali", err)
		return
	}
	s.convert(w, r, processor.Options{
		Mode:          processor.ModeToJalali,
		InputLayout:   q.Get("layout"),
		OutputPattern: pattern,
		Locale:        tag,
	})
}

// handleToGregorian handles GET /v1/convert/to-gregorian?date=&pattern=&layout=
func (s *Server) handleToGregorian(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.convert(w, r, processor.Options{
		Mode:         processor.ModeToGregorian,
		InputPattern: q.Get("pattern"),
		OutputLayout: q.Get("layout"),
	})
}

func (s *Server) convert(w http.ResponseWriter, r *http.Request, opts processor.Options) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		s.writeError(w, r, string(opts.Mode), badRequest("date", date, errors.New("is required")))
		return
	}

	result := s.processor.Process(r.Context(), date, opts)
	if result.Error != nil {
		s.writeError(w, r, string(opts.Mode), result.Error)
		return
	}
	writeJSON(w, http.StatusOK, ConvertResponse{Input: date, Output: result.Output})
}

// handleParse handles POST /v1/parse
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, "parse", err)
		return
	}

	p := s.processor.Parser()
	var (
		dt  jdate.DateTime
		err error
	)
	if req.Pattern == "" {
		dt, err = p.ParseISO(req.Text)
	} else {
		dt, err = p.ParseContext(r.Context(), req.Text, req.Pattern)
	}
	if err != nil {
		s.writeError(w, r, "parse", err)
		return
	}

	writeJSON(w, http.StatusOK, valueResponse(dt, ""))
}

// handleFormat handles POST /v1/format
func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	var req FormatRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, "format", err)
		return
	}

	pattern, tag, err := s.pattern(req.Pattern)
	if err != nil {
		s.writeError(w, r, "format", err)
		return
	}
	dt, err := s.processor.Parser().ParseISO(req.Date)
	if err != nil {
		s.writeError(w, r, "format", err)
		return
	}
	if tag != locale.None {
		dt = dt.AsLocale(tag)
	}

	formatted := s.processor.Formatter().FormatContext(r.Context(), dt, pattern)
	writeJSON(w, http.StatusOK, valueResponse(dt, formatted))
}

// handleBatch handles POST /v1/batch. Item failures are reported per item
// with status 200.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, "batch", err)
		return
	}

	batch, err := s.processor.ProcessBatch(r.Context(), req.Inputs, req.options())
	if err != nil {
		s.logger.Debug("Batch finished with failures",
			"request_id", RequestID(r.Context()),
			"error", err.Error())
	}

	resp := BatchResponse{
		Total:      batch.Total,
		Successful: batch.Successful,
		Failed:     batch.Failed,
		Skipped:    batch.Skipped,
		Results:    make([]BatchItem, len(batch.Results)),
	}
	for i, res := range batch.Results {
		item := BatchItem{
			Index:   res.Index,
			Input:   res.Input,
			Output:  res.Output,
			Success: res.Success,
			Skipped: res.Skipped,
		}
		if res.Error != nil {
			item.Error = res.Error.Error()
			item.Code = errorutil.ClassifyError(res.Error, "batch").Code
		}
		resp.Results[i] = item
	}
	writeJSON(w, http.StatusOK, resp)
}
