package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/irsalhamdi/e-learning/api/web"
	"github.com/irsalhamdi/e-learning/api/weberr"
	"github.com/irsalhamdi/e-learning/rate"
)

// RateLimit rejects requests from clients that exhausted their budget in lim.
// Clients are identified by their remote host.
func RateLimit(lim *rate.Limiter) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			client, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				client = r.RemoteAddr
			}

			if !lim.Check(client) {
				return weberr.TooManyRequests(fmt.Errorf("client[%s] exceeded its request rate", client))
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
