package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/irsalhamdi/e-learning/api/web"
	"github.com/irsalhamdi/e-learning/api/weberr"
	"github.com/irsalhamdi/e-learning/database"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
)

const maxWebhookBytes = 65536

func HandleCreate(orc *Orchestrator) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var nw OrderNew
		if err := web.Decode(w, r, &nw); err != nil {
			return decodeError(err)
		}

		p, err := orc.InitiatePurchase(ctx, nw)
		if err != nil {
			return requestError(err)
		}

		env := web.Envelope{Success: true, Data: p}
		if p.ApproveURL == nil {
			env.Message = "Free course enrolled successfully."
		}

		return web.Respond(ctx, w, env, http.StatusCreated)
	}
}

func HandleCapture(orc *Orchestrator) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var c Capture
		if err := web.Decode(w, r, &c); err != nil {
			return decodeError(err)
		}

		ord, err := orc.ConfirmPayment(ctx, c)
		if err != nil {
			return requestError(err)
		}

		env := web.Envelope{Success: true, Message: "Order confirmed", Data: ord}
		return web.Respond(ctx, w, env, http.StatusOK)
	}
}

func HandleShow(orc *Orchestrator) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ord, err := orc.Fetch(ctx, web.Param(r, "id"))
		if err != nil {
			return requestError(err)
		}

		return web.Respond(ctx, w, web.Envelope{Success: true, Data: ord}, http.StatusOK)
	}
}

// HandleStripeWebhook confirms the order referenced by a completed checkout
// session. Stripe has no client-side capture step, so the signed event is the
// payment confirmation.
func HandleStripeWebhook(orc *Orchestrator, secret string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("cannot read the request body: %w", err))
		}

		sig := r.Header.Get("Stripe-Signature")
		if sig == "" {
			return weberr.BadRequest(errors.New("received stripe event is not signed"))
		}

		event, err := webhook.ConstructEvent(b, sig, secret)
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("cannot construct stripe event: %w", err))
		}

		if event.Type != "checkout.session.completed" {
			return web.Respond(ctx, w, nil, http.StatusNoContent)
		}

		var session stripe.CheckoutSession
		if err = json.Unmarshal(event.Data.Raw, &session); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode stripe event: %w", err))
		}

		if session.Mode != stripe.CheckoutSessionModePayment {
			return web.Respond(ctx, w, nil, http.StatusNoContent)
		}

		if session.ClientReferenceID == "" {
			return weberr.BadRequest(fmt.Errorf("session[%s] does not reference an order", session.ID))
		}

		c := Capture{
			OrderID:   session.ClientReferenceID,
			PaymentID: session.ID,
			PayerID:   payerOf(session),
		}

		if _, err := orc.ConfirmPayment(ctx, c); err != nil {
			return requestError(err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func payerOf(s stripe.CheckoutSession) string {
	switch {
	case s.Customer != nil && s.Customer.ID != "":
		return s.Customer.ID
	case s.CustomerDetails != nil && s.CustomerDetails.Email != "":
		return s.CustomerDetails.Email
	}
	return s.ID
}

func decodeError(err error) error {
	return weberr.NewError(fmt.Errorf("unable to decode payload: %w", err), err.Error(), http.StatusBadRequest)
}

// requestError maps orchestrator failures to what the client is told.
func requestError(err error) error {
	var ie *InvalidError

	switch {
	case errors.As(err, &ie):
		return weberr.NewError(err, ie.Error(), http.StatusBadRequest)
	case errors.Is(err, database.ErrDBNotFound):
		return weberr.NewError(err, "Order can not be found", http.StatusNotFound)
	case errors.Is(err, ErrConflict):
		return weberr.Conflict(err)
	case errors.Is(err, ErrPaymentCreation):
		return weberr.NewError(err, "Error while creating the payment", http.StatusInternalServerError)
	}

	return err
}
