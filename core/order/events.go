package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// EnrolledEvent is published once an order grants its purchaser access to a
// course.
type EnrolledEvent struct {
	OrderID       string          `json:"order_id"`
	UserID        string          `json:"user_id"`
	CourseID      string          `json:"course_id"`
	InstructorID  string          `json:"instructor_id"`
	PaymentMethod string          `json:"payment_method"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	Timestamp     time.Time       `json:"timestamp"`
}

func enrolledEvent(ord Order) EnrolledEvent {
	return EnrolledEvent{
		OrderID:       ord.ID,
		UserID:        ord.UserID,
		CourseID:      ord.CourseID,
		InstructorID:  ord.InstructorID,
		PaymentMethod: ord.PaymentMethod,
		PaidAmount:    ord.PaidAmount(),
		Timestamp:     ord.UpdatedAt,
	}
}
