package middleware

import (
	"context"
	"net/http"

	"github.com/irsalhamdi/e-learning/api/web"
	"github.com/irsalhamdi/e-learning/api/weberr"
	"github.com/sirupsen/logrus"
)

// Errors answers with the response attached to a failed handler's error, or
// a bare 500 when none is, and logs the error with its fields. Only failures
// on our side are logged as errors.
func Errors(log logrus.FieldLogger) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			err := handler(ctx, w, r)
			if err == nil {
				return nil
			}

			body, status, ok := weberr.Response(err)
			if !ok {
				status = http.StatusInternalServerError
				body = weberr.ErrorResponse{Success: false, Message: http.StatusText(status)}
			}

			fields, _ := weberr.Fields(err)
			entry := log.WithFields(fields).WithFields(logrus.Fields{
				"req_id": ContextRequestID(ctx),
				"status": status,
				"error":  err.Error(),
			})

			if status >= http.StatusInternalServerError {
				entry.Error("request failed")
			} else {
				entry.Info("request rejected")
			}

			return web.Respond(ctx, w, body, status)
		}
		return h
	}
	return m
}
