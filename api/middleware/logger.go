package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/irsalhamdi/e-learning/api/web"
	"github.com/sirupsen/logrus"
	"github.com/zenazn/goji/web/mutil"
)

// Logger writes one line per completed request. Requests to a quiet path
// are only logged when they fail.
func Logger(log logrus.FieldLogger, quiet ...string) web.Middleware {
	skip := make(map[string]bool, len(quiet))
	for _, p := range quiet {
		skip[p] = true
	}

	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			start := time.Now()

			lw := mutil.WrapWriter(w)
			err := handler(ctx, lw, r)

			status := lw.Status()
			if skip[r.URL.Path] && status < http.StatusInternalServerError {
				return err
			}

			entry := log.WithFields(logrus.Fields{
				"req_id":   ContextRequestID(ctx),
				"method":   r.Method,
				"path":     r.URL.Path,
				"remote":   r.RemoteAddr,
				"status":   status,
				"bytes":    lw.BytesWritten(),
				"duration": time.Since(start).String(),
			})

			if status >= http.StatusInternalServerError {
				entry.Warn("request completed")
			} else {
				entry.Info("request completed")
			}

			return err
		}
		return h
	}
	return m
}
