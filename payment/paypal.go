package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/plutov/paypal/v4"
)

// PayPal creates sales through the PayPal v1 payments API. Authentication
// and token refresh are left to the paypal client.
type PayPal struct {
	client *paypal.Client
}

func NewPayPal(client *paypal.Client) *PayPal {
	return &PayPal{client: client}
}

func (p *PayPal) Name() string { return "paypal" }

type paypalItem struct {
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	Price    string `json:"price"`
	Currency string `json:"currency"`
	Quantity int    `json:"quantity"`
}

type paypalTransaction struct {
	ItemList struct {
		Items []paypalItem `json:"items"`
	} `json:"item_list"`
	Amount struct {
		Currency string `json:"currency"`
		Total    string `json:"total"`
	} `json:"amount"`
	Description   string `json:"description"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
}

type paypalPayment struct {
	Intent string `json:"intent"`
	Payer  struct {
		PaymentMethod string `json:"payment_method"`
	} `json:"payer"`
	RedirectURLs struct {
		ReturnURL string `json:"return_url"`
		CancelURL string `json:"cancel_url"`
	} `json:"redirect_urls"`
	Transactions []paypalTransaction `json:"transactions"`
}

type paypalPaymentResponse struct {
	ID    string        `json:"id"`
	State string        `json:"state"`
	Links []paypal.Link `json:"links"`
}

func (p *PayPal) CreatePayment(ctx context.Context, req Request) (*Info, error) {
	currency := strings.ToUpper(req.Currency)

	var tr paypalTransaction
	for _, it := range req.Items {
		tr.ItemList.Items = append(tr.ItemList.Items, paypalItem{
			Name:     it.Name,
			SKU:      it.SKU,
			Price:    Amount(it.Price),
			Currency: currency,
			Quantity: it.Quantity,
		})
	}
	tr.Amount.Currency = currency
	tr.Amount.Total = Amount(req.Total)
	tr.Description = req.Description
	tr.InvoiceNumber = req.Reference

	var body paypalPayment
	body.Intent = "sale"
	body.Payer.PaymentMethod = "paypal"
	body.RedirectURLs.ReturnURL = req.ReturnURL
	body.RedirectURLs.CancelURL = req.CancelURL
	body.Transactions = []paypalTransaction{tr}

	r, err := p.client.NewRequest(ctx, http.MethodPost, fmt.Sprintf("%s%s", p.client.APIBase, "/v1/payments/payment"), body)
	if err != nil {
		return nil, &Error{Provider: p.Name(), Kind: KindMalformed, Detail: "building payment request", Err: err}
	}

	var resp paypalPaymentResponse
	if err := p.client.SendWithAuth(r, &resp); err != nil {
		return nil, p.error(err)
	}

	info := Info{ID: resp.ID, State: resp.State}
	for _, l := range resp.Links {
		info.Links = append(info.Links, Link{Href: l.Href, Rel: l.Rel, Method: l.Method})
	}

	return &info, nil
}

func (p *PayPal) error(err error) error {
	pe := Error{Provider: p.Name(), Kind: KindUnavailable, Detail: err.Error(), Err: err}

	var er *paypal.ErrorResponse
	if errors.As(err, &er) {
		if er.Response != nil {
			pe.Status = er.Response.StatusCode
		}
		pe.Kind = kindFromStatus(pe.Status)
		pe.Detail = fmt.Sprintf("%s: %s (debug id %s)", er.Name, er.Message, er.DebugID)
	}

	return &pe
}
