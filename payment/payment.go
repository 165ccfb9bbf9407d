// Package payment defines the contract the order flow relies on to charge a
// purchaser through an external provider, and the adapters implementing it.
package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// RelApproval is the relation of the link the purchaser must visit to
// authorize a charge.
const RelApproval = "approval_url"

var ErrNoApprovalURL = errors.New("provider response has no approval link")

type Gateway interface {
	// Name is stored as the payment method of the orders paid through it.
	Name() string
	CreatePayment(ctx context.Context, req Request) (*Info, error)
}

type Item struct {
	Name     string
	SKU      string
	Price    decimal.Decimal
	Quantity int
}

// Request describes a sale. Reference is the order id the payment belongs
// to, which providers echo back on confirmation when they support it.
type Request struct {
	Reference   string
	Description string
	Currency    string
	Items       []Item
	Total       decimal.Decimal
	ReturnURL   string
	CancelURL   string
}

type Link struct {
	Href   string
	Rel    string
	Method string
}

type Info struct {
	ID    string
	State string
	Links []Link
}

// ApprovalURL returns the href of the approval link.
func (i *Info) ApprovalURL() (string, error) {
	for _, l := range i.Links {
		if l.Rel == RelApproval && l.Href != "" {
			return l.Href, nil
		}
	}
	return "", ErrNoApprovalURL
}

// Amount formats d the way providers expect money: two decimals.
func Amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// =============================================================================

type Kind int

const (
	KindUnknown Kind = iota
	KindAuth
	KindRejected
	KindUnavailable
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindRejected:
		return "rejected"
	case KindUnavailable:
		return "unavailable"
	case KindMalformed:
		return "malformed"
	}
	return "unknown"
}

// Error is returned by adapters for every failed provider call. Detail holds
// what the provider said and is meant for logs only.
type Error struct {
	Provider string
	Kind     Kind
	Status   int
	Detail   string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s failure (status %d): %s", e.Provider, e.Kind, e.Status, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

// Fields exposes the error for structured logging.
func (e *Error) Fields() map[string]interface{} {
	return map[string]interface{}{
		"provider":        e.Provider,
		"provider_kind":   e.Kind.String(),
		"provider_status": e.Status,
		"provider_detail": e.Detail,
	}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

func kindFromStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
		return KindUnavailable
	case status >= http.StatusBadRequest:
		return KindRejected
	case status == 0:
		return KindUnavailable
	}
	return KindUnknown
}
