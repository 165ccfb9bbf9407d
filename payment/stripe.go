package payment

import (
	"context"
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v74"
	stripecl "github.com/stripe/stripe-go/v74/client"
)

// Stripe creates Checkout Sessions. The session URL plays the role of the
// approval link.
type Stripe struct {
	api *stripecl.API
}

func NewStripe(api *stripecl.API) *Stripe {
	return &Stripe{api: api}
}

func (s *Stripe) Name() string { return "stripe" }

func (s *Stripe) CreatePayment(ctx context.Context, req Request) (*Info, error) {
	currency := strings.ToLower(req.Currency)

	li := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Items))
	for _, it := range req.Items {
		li = append(li, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(it.Quantity)),

			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(currency),
				TaxBehavior: stripe.String("inclusive"),
				UnitAmount:  stripe.Int64(it.Price.Shift(2).IntPart()),

				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(it.Name),
					Description: stripe.String(req.Description),
				},
			},
		})
	}

	params := &stripe.CheckoutSessionParams{
		SuccessURL:        stripe.String(req.ReturnURL),
		CancelURL:         stripe.String(req.CancelURL),
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(req.Reference),
		LineItems:         li,
	}
	params.Context = ctx
	params.AddMetadata("order_id", req.Reference)

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, s.error(err)
	}

	info := Info{ID: sess.ID, State: string(sess.Status)}
	if sess.URL != "" {
		info.Links = append(info.Links, Link{Href: sess.URL, Rel: RelApproval, Method: "REDIRECT"})
	}

	return &info, nil
}

func (s *Stripe) error(err error) error {
	pe := Error{Provider: s.Name(), Kind: KindUnavailable, Detail: err.Error(), Err: err}

	var se *stripe.Error
	if errors.As(err, &se) {
		pe.Status = se.HTTPStatusCode
		pe.Kind = kindFromStatus(se.HTTPStatusCode)
		if se.Type == stripe.ErrorTypeCard {
			pe.Kind = KindRejected
		}
		pe.Detail = string(se.Type) + ": " + se.Msg
	}

	return &pe
}
