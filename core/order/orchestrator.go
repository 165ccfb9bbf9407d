package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/irsalhamdi/e-learning/api/background"
	"github.com/irsalhamdi/e-learning/database"
	"github.com/irsalhamdi/e-learning/payment"
	"github.com/irsalhamdi/e-learning/validate"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Storer persists orders. CreateAndEnroll and ConfirmAndEnroll must either
// apply every write or none.
type Storer interface {
	Create(ctx context.Context, ord Order) error
	CreateAndEnroll(ctx context.Context, ord Order) error
	ConfirmAndEnroll(ctx context.Context, id string, confirm func(*Order) error) (Order, error)
	Fetch(ctx context.Context, id string) (Order, error)
}

// Locker serializes work on a key across instances. ok is false when the key
// is held by someone else.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), ok bool, err error)
}

type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Config struct {
	Store   Storer
	Gateway payment.Gateway

	// Optional.
	Locker     Locker
	Events     Publisher
	Background *background.Background

	Log       logrus.FieldLogger
	Currency  string
	ReturnURL string
	CancelURL string
}

// Orchestrator turns purchase intents into orders and enrollments.
type Orchestrator struct {
	store     Storer
	gateway   payment.Gateway
	locker    Locker
	events    Publisher
	bg        *background.Background
	log       logrus.FieldLogger
	currency  string
	returnURL string
	cancelURL string
	metrics   metrics
	now       func() time.Time
}

func NewOrchestrator(cfg Config) *Orchestrator {
	bg := cfg.Background
	if bg == nil {
		bg = background.New(cfg.Log)
	}

	return &Orchestrator{
		store:     cfg.Store,
		gateway:   cfg.Gateway,
		locker:    cfg.Locker,
		events:    cfg.Events,
		bg:        bg,
		log:       cfg.Log,
		currency:  cfg.Currency,
		returnURL: cfg.ReturnURL,
		cancelURL: cfg.CancelURL,
		metrics:   newMetrics(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// InitiatePurchase enrolls the purchaser right away when the course is free.
// Otherwise it creates a provider payment and a pending order bound to it,
// and returns the URL where the purchaser approves the payment.
func (o *Orchestrator) InitiatePurchase(ctx context.Context, nw OrderNew) (Purchase, error) {
	if err := validate.Check(nw); err != nil {
		return Purchase{}, &InvalidError{Err: err}
	}

	price := *nw.CoursePricing
	switch {
	case price.IsNegative():
		return Purchase{}, &InvalidError{Err: errors.New("coursePricing must be 0 or greater")}
	case !price.Equal(price.Round(2)):
		return Purchase{}, &InvalidError{Err: errors.New("coursePricing must have at most 2 decimal places")}
	}

	if price.IsZero() {
		return o.enrollFree(ctx, nw)
	}
	return o.checkout(ctx, nw)
}

func (o *Orchestrator) enrollFree(ctx context.Context, nw OrderNew) (Purchase, error) {
	ord := newOrder(nw, o.now())
	ord.OrderStatus = Confirmed
	ord.PaymentMethod = MethodFree
	ord.PaymentStatus = PaymentPaid

	if err := o.store.CreateAndEnroll(ctx, ord); err != nil {
		return Purchase{}, fmt.Errorf("enrolling user[%s] in free course[%s]: %w", ord.UserID, ord.CourseID, err)
	}

	o.metrics.created.Add(ctx, 1, metric.WithAttributes(attribute.String("payment_method", MethodFree)))
	o.publishEnrolled(ord)

	return Purchase{OrderID: ord.ID}, nil
}

func (o *Orchestrator) checkout(ctx context.Context, nw OrderNew) (Purchase, error) {
	if o.gateway == nil {
		return Purchase{}, fmt.Errorf("%w: no payment gateway configured", ErrPaymentCreation)
	}

	if nw.PaymentMethod != "" && !strings.EqualFold(nw.PaymentMethod, o.gateway.Name()) {
		err := fmt.Errorf("paymentMethod must be %s", o.gateway.Name())
		return Purchase{}, &InvalidError{Err: err}
	}

	ord := newOrder(nw, o.now())
	ord.OrderStatus = Pending
	ord.PaymentMethod = o.gateway.Name()
	ord.PaymentStatus = PaymentPending

	req := payment.Request{
		Reference:   ord.ID,
		Description: ord.CourseTitle,
		Currency:    o.currency,
		Items: []payment.Item{{
			Name:     ord.CourseTitle,
			SKU:      ord.CourseID,
			Price:    ord.CoursePricing,
			Quantity: 1,
		}},
		Total:     ord.CoursePricing,
		ReturnURL: o.returnURL,
		CancelURL: o.cancelURL,
	}

	info, err := o.gateway.CreatePayment(ctx, req)
	if err != nil {
		var pe *payment.Error
		if errors.As(err, &pe) {
			o.log.WithFields(pe.Fields()).WithField("order_id", ord.ID).Error("provider refused to create the payment")
		}
		o.metrics.failed.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", payment.KindOf(err).String())))
		return Purchase{}, fmt.Errorf("%w: order[%s]: %w", ErrPaymentCreation, ord.ID, err)
	}

	approveURL, err := info.ApprovalURL()
	if err != nil {
		return Purchase{}, fmt.Errorf("payment[%s] of order[%s]: %w", info.ID, ord.ID, err)
	}

	if err := o.store.Create(ctx, ord); err != nil {
		o.log.WithFields(logrus.Fields{
			"order_id":   ord.ID,
			"payment_id": info.ID,
			"provider":   o.gateway.Name(),
		}).Error("provider payment created for an order that was not persisted")
		return Purchase{}, fmt.Errorf("creating order[%s]: %w", ord.ID, err)
	}

	o.metrics.created.Add(ctx, 1, metric.WithAttributes(attribute.String("payment_method", ord.PaymentMethod)))

	return Purchase{ApproveURL: &approveURL, OrderID: ord.ID}, nil
}

// ConfirmPayment marks a pending order paid and enrolls its purchaser.
// Confirming an order again with the same payment returns it unchanged.
func (o *Orchestrator) ConfirmPayment(ctx context.Context, c Capture) (Order, error) {
	if err := validate.Check(c); err != nil {
		return Order{}, &InvalidError{Err: err}
	}

	if err := validate.CheckID(c.OrderID); err != nil {
		return Order{}, fmt.Errorf("order[%s]: %w", c.OrderID, database.ErrDBNotFound)
	}

	if o.locker != nil {
		unlock, ok, err := o.locker.Lock(ctx, "order:confirm:"+c.OrderID)
		if err != nil {
			return Order{}, fmt.Errorf("locking order[%s]: %w", c.OrderID, err)
		}
		if !ok {
			return Order{}, fmt.Errorf("%w: order[%s] is being confirmed", ErrConflict, c.OrderID)
		}
		defer unlock()
	}

	var changed bool
	ord, err := o.store.ConfirmAndEnroll(ctx, c.OrderID, func(ord *Order) error {
		var err error
		changed, err = ord.Confirm(c.PaymentID, c.PayerID, o.now())
		return err
	})
	if err != nil {
		return Order{}, fmt.Errorf("confirming order[%s]: %w", c.OrderID, err)
	}

	if changed {
		o.metrics.confirmed.Add(ctx, 1, metric.WithAttributes(attribute.String("payment_method", ord.PaymentMethod)))
		o.publishEnrolled(ord)
	}

	return ord, nil
}

func (o *Orchestrator) Fetch(ctx context.Context, id string) (Order, error) {
	if err := validate.CheckID(id); err != nil {
		return Order{}, fmt.Errorf("order[%s]: %w", id, database.ErrDBNotFound)
	}

	ord, err := o.store.Fetch(ctx, id)
	if err != nil {
		return Order{}, fmt.Errorf("fetching order[%s]: %w", id, err)
	}

	return ord, nil
}

func (o *Orchestrator) publishEnrolled(ord Order) {
	if o.events == nil {
		return
	}

	ev := enrolledEvent(ord)
	log := o.log.WithFields(logrus.Fields{"order_id": ord.ID, "course_id": ord.CourseID})

	err := o.bg.Run(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := o.events.Publish(ctx, ord.ID, ev); err != nil {
			log.WithError(err).Error("publishing enrollment event")
		}
	})
	if err != nil {
		log.WithError(err).Warn("enrollment event dropped")
	}
}

func newOrder(nw OrderNew, now time.Time) Order {
	return Order{
		ID:             validate.GenerateID(),
		UserID:         nw.UserID,
		UserName:       nw.UserName,
		UserEmail:      nw.UserEmail,
		OrderDate:      nw.OrderDate.UTC(),
		InstructorID:   nw.InstructorID,
		InstructorName: nw.InstructorName,
		CourseImage:    nw.CourseImage,
		CourseTitle:    nw.CourseTitle,
		CourseID:       nw.CourseID,
		CoursePricing:  *nw.CoursePricing,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// =============================================================================

type metrics struct {
	created   metric.Int64Counter
	confirmed metric.Int64Counter
	failed    metric.Int64Counter
}

func newMetrics() metrics {
	meter := otel.Meter("github.com/irsalhamdi/e-learning/core/order")

	return metrics{
		created:   counter(meter, "orders.created", "Orders persisted, by payment method."),
		confirmed: counter(meter, "orders.confirmed", "Pending orders confirmed after payment."),
		failed:    counter(meter, "payments.failed", "Provider payments that could not be created, by failure kind."),
	}
}

func counter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		return noop.Int64Counter{}
	}
	return c
}
