package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/NVIDIA/kubeconsole/pkg/errors"
)

type middleware func(http.HandlerFunc) http.HandlerFunc

// withMiddleware wraps an API handler. The first entry is outermost.
// Recovery sits outside rate limiting so a panicking handler still answers.
func (s *Server) withMiddleware(handler http.HandlerFunc) http.HandlerFunc {
	chain := []middleware{
		s.metricsMiddleware,
		s.versionMiddleware,
		s.requestIDMiddleware,
		s.panicRecoveryMiddleware,
		s.rateLimitMiddleware,
		s.loggingMiddleware,
	}
	for i := len(chain) - 1; i >= 0; i-- {
		handler = chain[i](handler)
	}
	return handler
}

// requestAttrs describes r for log records. Session and cluster routes add
// the IDs taken from the path.
func requestAttrs(r *http.Request) []any {
	attrs := []any{
		"requestID", RequestID(r.Context()),
		"method", r.Method,
		"route", routeOf(r),
	}
	if id := r.PathValue("id"); id != "" {
		attrs = append(attrs, "session", id)
	}
	if cluster := r.PathValue("cluster"); cluster != "" {
		attrs = append(attrs, "cluster", cluster)
	}
	return attrs
}

func (s *Server) versionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version := negotiateAPIVersion(r)
		SetAPIVersionHeader(w, version)
		next(w, r.WithContext(context.WithValue(r.Context(), contextKeyAPIVersion, version)))
	}
}

// requestIDMiddleware keeps a client supplied X-Request-Id when it is a UUID
// and mints one otherwise.
func (s *Server) requestIDMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next(w, r.WithContext(context.WithValue(r.Context(), contextKeyRequestID, id)))
	}
}

func (s *Server) rateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.rateLimiter.Allow() {
			apiRejected.WithLabelValues(rejectRateLimit).Inc()
			slog.Warn("request rate limited", requestAttrs(r)...)
			w.Header().Set("Retry-After", "1")
			WriteError(w, r, http.StatusTooManyRequests, apperrors.ErrCodeRateLimitExceeded,
				"Rate limit exceeded", true, map[string]any{
					"limit": s.config.RateLimit,
					"burst": s.config.RateLimitBurst,
				})
			return
		}

		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(int(s.config.RateLimit)))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(max(0, int(s.rateLimiter.Tokens()))))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Second).Unix(), 10))
		next(w, r)
	}
}

func (s *Server) panicRecoveryMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			apiRejected.WithLabelValues(rejectPanic).Inc()
			slog.Error("panic recovered",
				append(requestAttrs(r), "error", fmt.Sprint(v), "stack", string(debug.Stack()))...)
			WriteError(w, r, http.StatusInternalServerError, apperrors.ErrCodeInternal,
				"Internal server error", true, nil)
		}()
		next(w, r)
	}
}

// loggingMiddleware logs one record per request. Server errors log at error
// level and client errors at warn.
func (s *Server) loggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := recordStatus(w)
		slog.Debug("request started", requestAttrs(r)...)

		next(rec, r)

		level := slog.LevelInfo
		switch status := rec.Status(); {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}
		slog.Log(r.Context(), level, "request completed", append(requestAttrs(r),
			"status", rec.Status(),
			"bytes", rec.bytes,
			"duration", time.Since(start).String(),
		)...)
	}
}
