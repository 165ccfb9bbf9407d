package test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/irsalhamdi/e-learning/api/web"
)

// mockPaypal answers the REST calls the PayPal gateway makes.
type mockPaypal struct {
	mu      sync.Mutex
	fail    bool
	n       int
	amounts []string
}

func (m *mockPaypal) setFail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

func (m *mockPaypal) sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.amounts...)
}

func (m *mockPaypal) handle() http.Handler {
	token := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := map[string]any{"access_token": "A21AA", "token_type": "Bearer", "expires_in": 32400}
		web.Respond(context.Background(), w, tok, 200)
	})

	create := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()

		if m.fail {
			e := map[string]any{"name": "INTERNAL_SERVICE_ERROR", "message": "An internal service error occurred.", "debug_id": "dbg"}
			web.Respond(context.Background(), w, e, 503)
			return
		}

		var p struct {
			Intent       string `json:"intent"`
			Transactions []struct {
				Amount struct {
					Total string `json:"total"`
				} `json:"amount"`
			} `json:"transactions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.Intent != "sale" || len(p.Transactions) != 1 {
			web.Respond(context.Background(), w, nil, 400)
			return
		}

		m.n++
		m.amounts = append(m.amounts, p.Transactions[0].Amount.Total)

		id := fmt.Sprintf("PAYID-%d", m.n)
		res := map[string]any{
			"id":    id,
			"state": "created",
			"links": []map[string]string{
				{"href": "http://paypal.test/v1/payments/payment/" + id, "rel": "self", "method": "GET"},
				{"href": "http://paypal.test/checkoutnow?token=" + id, "rel": "approval_url", "method": "REDIRECT"},
			},
		}
		web.Respond(context.Background(), w, res, 201)
	})

	r := mux.NewRouter()
	r.Handle("/v1/oauth2/token", token).Methods("POST")
	r.Handle("/v1/payments/payment", create).Methods("POST")
	return r
}
