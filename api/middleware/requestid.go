package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/irsalhamdi/e-learning/api/web"
	"github.com/irsalhamdi/e-learning/random"
)

const RequestIDHeader = "X-Request-Id"

const maxRequestIDLen = 64

type reqIDKey struct{}

var (
	reqPrefix = newPrefix()
	reqSeq    atomic.Uint64
)

func newPrefix() string {
	p, err := random.Token(8)
	if err != nil {
		return random.String(8)
	}
	return p
}

// RequestID keeps the id sent by the client when it is safe to log, and
// otherwise assigns one unique to this process. The id is echoed back in the
// response headers.
func RequestID() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			id := r.Header.Get(RequestIDHeader)
			if !validRequestID(id) {
				id = fmt.Sprintf("%s-%06d", reqPrefix, reqSeq.Add(1))
			}

			w.Header().Set(RequestIDHeader, id)
			return handler(context.WithValue(ctx, reqIDKey{}, id), w, r)
		}
		return h
	}
	return m
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}

func ContextRequestID(ctx context.Context) string {
	id, _ := ctx.Value(reqIDKey{}).(string)
	return id
}
