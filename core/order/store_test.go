package order

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestPurchaseEntry(t *testing.T) {
	ordered := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	confirmed := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

	ord := Order{
		ID:             "o1",
		UserID:         "u1",
		UserName:       "Ada Lovelace",
		UserEmail:      "ada@example.com",
		PaymentMethod:  "paypal",
		OrderDate:      ordered,
		InstructorID:   "i1",
		InstructorName: "Grace Hopper",
		CourseImage:    "https://cdn.test/c1.png",
		CourseTitle:    "Intro",
		CourseID:       "c1",
		CoursePricing:  decimal.RequireFromString("12.50"),
		CreatedAt:      ordered,
		UpdatedAt:      confirmed,
	}

	e := purchaseEntry(ord)
	if !e.DateOfPurchase.Equal(ordered) {
		t.Fatalf("purchase dated %s, expected the order date %s", e.DateOfPurchase, ordered)
	}
	if e.UserID != "u1" || e.CourseID != "c1" || e.Title != "Intro" || e.InstructorID != "i1" ||
		e.InstructorName != "Grace Hopper" || e.CourseImage != "https://cdn.test/c1.png" {
		t.Fatalf("unexpected entry %+v", e)
	}

	st := rosterEntry(ord)
	if st.CourseID != "c1" || st.StudentID != "u1" || st.StudentName != "Ada Lovelace" || st.StudentEmail != "ada@example.com" {
		t.Fatalf("unexpected roster entry %+v", st)
	}
	if !st.PaidAmount.Equal(decimal.RequireFromString("12.50")) {
		t.Fatalf("expected 12.50 paid, got %s", st.PaidAmount)
	}
}
