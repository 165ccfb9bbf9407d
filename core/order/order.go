package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order: pending until its payment is
// confirmed. Free orders are confirmed from the start.
type Status string

const (
	Pending   Status = "pending"
	Confirmed Status = "confirmed"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// MethodFree is the payment method of orders for courses priced at zero.
// Paid orders carry the name of the gateway that charged them.
const MethodFree = "free"

var (
	ErrConflict        = errors.New("order conflict")
	ErrPaymentCreation = errors.New("payment creation failed")
)

type Order struct {
	ID             string          `json:"id" db:"order_id"`
	UserID         string          `json:"userId" db:"user_id"`
	UserName       string          `json:"userName" db:"user_name"`
	UserEmail      string          `json:"userEmail" db:"user_email"`
	OrderStatus    Status          `json:"orderStatus" db:"order_status"`
	PaymentMethod  string          `json:"paymentMethod" db:"payment_method"`
	PaymentStatus  PaymentStatus   `json:"paymentStatus" db:"payment_status"`
	OrderDate      time.Time       `json:"orderDate" db:"order_date"`
	PaymentID      *string         `json:"paymentId" db:"payment_id"`
	PayerID        *string         `json:"payerId" db:"payer_id"`
	InstructorID   string          `json:"instructorId" db:"instructor_id"`
	InstructorName string          `json:"instructorName" db:"instructor_name"`
	CourseImage    string          `json:"courseImage" db:"course_image"`
	CourseTitle    string          `json:"courseTitle" db:"course_title"`
	CourseID       string          `json:"courseId" db:"course_id"`
	CoursePricing  decimal.Decimal `json:"coursePricing" db:"course_pricing"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time       `json:"updatedAt" db:"updated_at"`
}

func (o Order) Free() bool {
	return o.PaymentMethod == MethodFree
}

// PaidAmount is what the purchaser was charged for the course.
func (o Order) PaidAmount() decimal.Decimal {
	if o.Free() {
		return decimal.Zero
	}
	return o.CoursePricing
}

// Confirm records the provider payment that settles the order. Confirming
// again with the same payment is a no-op and reports changed as false.
func (o *Order) Confirm(paymentID, payerID string, now time.Time) (changed bool, err error) {
	if o.Free() {
		return false, fmt.Errorf("%w: order[%s] is free and takes no payment", ErrConflict, o.ID)
	}

	if o.OrderStatus == Confirmed {
		if deref(o.PaymentID) == paymentID && deref(o.PayerID) == payerID {
			return false, nil
		}
		return false, fmt.Errorf("%w: order[%s] was already paid by payment[%s]", ErrConflict, o.ID, deref(o.PaymentID))
	}

	o.PaymentStatus = PaymentPaid
	o.OrderStatus = Confirmed
	o.PaymentID = &paymentID
	o.PayerID = &payerID
	o.UpdatedAt = now

	return true, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// OrderNew is a purchase intent. The status fields only matter for paid
// courses; paymentId and payerId are accepted for client compatibility and
// ignored. Statuses may only be pending and paymentMethod only the configured
// gateway: an order becomes paid or confirmed through ConfirmPayment alone.
type OrderNew struct {
	UserID         string           `json:"userId" validate:"required,notblank"`
	UserName       string           `json:"userName" validate:"required,notblank"`
	UserEmail      string           `json:"userEmail" validate:"required,email"`
	OrderStatus    Status           `json:"orderStatus" validate:"omitempty,oneof=pending"`
	PaymentMethod  string           `json:"paymentMethod"`
	PaymentStatus  PaymentStatus    `json:"paymentStatus" validate:"omitempty,oneof=pending"`
	OrderDate      time.Time        `json:"orderDate" validate:"required"`
	PaymentID      *string          `json:"paymentId"`
	PayerID        *string          `json:"payerId"`
	InstructorID   string           `json:"instructorId" validate:"required,notblank"`
	InstructorName string           `json:"instructorName" validate:"required,notblank"`
	CourseImage    string           `json:"courseImage" validate:"required,notblank"`
	CourseTitle    string           `json:"courseTitle" validate:"required,notblank"`
	CourseID       string           `json:"courseId" validate:"required,notblank"`
	CoursePricing  *decimal.Decimal `json:"coursePricing" validate:"required"`
}

// Capture is the provider confirmation sent back by the client once the
// purchaser approved the payment.
type Capture struct {
	PaymentID string `json:"paymentId" validate:"required,notblank"`
	PayerID   string `json:"payerId" validate:"required,notblank"`
	OrderID   string `json:"orderId" validate:"required,notblank"`
}

// Purchase is the outcome of a purchase intent. ApproveURL is nil for free
// courses.
type Purchase struct {
	ApproveURL *string `json:"approveUrl"`
	OrderID    string  `json:"orderId"`
}

// InvalidError reports input rejected before anything was persisted or sent
// to a provider.
type InvalidError struct {
	Err error
}

func (e *InvalidError) Error() string { return e.Err.Error() }

func (e *InvalidError) Unwrap() error { return e.Err }
