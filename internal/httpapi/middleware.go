package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/nowwaveradio/jdatetime/internal/locale"
)

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestID returns the ID assigned to the request, or ""
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// requestID keeps a well-formed incoming UUID or assigns a new one
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLocale records the request's default locale in the store under
// its request ID for the lifetime of the request
func (s *Server) requestLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tag := locale.None
		if q := r.URL.Query().Get("locale"); q != "" {
			parsed, err := locale.Parse(q)
			if err != nil {
				s.writeError(w, r, "locale", badRequest("locale", q, err))
				return
			}
			tag = parsed
		} else {
			tag = locale.MatchAcceptLanguage(r.Header.Get("Accept-Language"))
		}

		id := RequestID(r.Context())
		s.store.Set(id, tag)
		defer s.store.Delete(id)

		ctx := r.Context()
		if stored := s.store.Get(id); stored != locale.None {
			ctx = locale.WithLocale(ctx, stored)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// observe logs and counts every request by route pattern
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		s.metrics.ObserveRequest(route, status, start)
		s.logger.Debug("Request served",
			"request_id", RequestID(r.Context()),
			"method", r.Method,
			"route", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds())
	})
}
