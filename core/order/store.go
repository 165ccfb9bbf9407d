package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/irsalhamdi/e-learning/core/course"
	"github.com/irsalhamdi/e-learning/core/enrollment"
	"github.com/irsalhamdi/e-learning/database"
	"github.com/jmoiron/sqlx"
)

const orderColumns = `
		order_id, user_id, user_name, user_email, order_status, payment_method, payment_status,
		order_date, payment_id, payer_id, instructor_id, instructor_name, course_image,
		course_title, course_id, course_pricing, created_at, updated_at`

func Create(ctx context.Context, db sqlx.ExtContext, ord Order) error {
	const q = `
	INSERT INTO orders
		(order_id, user_id, user_name, user_email, order_status, payment_method, payment_status,
		order_date, payment_id, payer_id, instructor_id, instructor_name, course_image,
		course_title, course_id, course_pricing, created_at, updated_at)
	VALUES
		(:order_id, :user_id, :user_name, :user_email, :order_status, :payment_method, :payment_status,
		:order_date, :payment_id, :payer_id, :instructor_id, :instructor_name, :course_image,
		:course_title, :course_id, :course_pricing, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, ord); err != nil {
		return fmt.Errorf("inserting order[%s]: %w", ord.ID, err)
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.QueryerContext, id string) (Order, error) {
	q := `
	SELECT` + orderColumns + `
	FROM
		orders
	WHERE
		order_id = $1`

	return fetch(ctx, db, q, id)
}

// FetchForUpdate is Fetch holding a row lock until the transaction of db
// ends.
func FetchForUpdate(ctx context.Context, db sqlx.QueryerContext, id string) (Order, error) {
	q := `
	SELECT` + orderColumns + `
	FROM
		orders
	WHERE
		order_id = $1
	FOR UPDATE`

	return fetch(ctx, db, q, id)
}

func fetch(ctx context.Context, db sqlx.QueryerContext, q, id string) (Order, error) {
	var ord Order
	if err := sqlx.GetContext(ctx, db, &ord, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, database.ErrDBNotFound
		}
		return Order{}, fmt.Errorf("selecting order[%s]: %w", id, err)
	}

	return ord, nil
}

func UpdatePayment(ctx context.Context, db sqlx.ExtContext, ord Order) error {
	const q = `
	UPDATE orders SET
		order_status = :order_status,
		payment_status = :payment_status,
		payment_id = :payment_id,
		payer_id = :payer_id,
		updated_at = :updated_at
	WHERE
		order_id = :order_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, ord); err != nil {
		return fmt.Errorf("updating payment of order[%s]: %w", ord.ID, err)
	}

	return nil
}

// enroll grants the purchaser of ord access to its course and puts them on
// the course roster.
func enroll(ctx context.Context, db sqlx.ExtContext, ord Order) error {
	if err := enrollment.Add(ctx, db, purchaseEntry(ord), ord.UpdatedAt); err != nil {
		return fmt.Errorf("recording the purchase: %w", err)
	}

	if err := course.AddStudent(ctx, db, rosterEntry(ord)); err != nil {
		return fmt.Errorf("updating the roster: %w", err)
	}

	return nil
}

// purchaseEntry is what the purchaser's enrollment record gains from ord. The
// purchase date is the order date the client sent, not the confirmation time.
func purchaseEntry(ord Order) enrollment.Entry {
	return enrollment.Entry{
		UserID:         ord.UserID,
		CourseID:       ord.CourseID,
		Title:          ord.CourseTitle,
		InstructorID:   ord.InstructorID,
		InstructorName: ord.InstructorName,
		DateOfPurchase: ord.OrderDate,
		CourseImage:    ord.CourseImage,
	}
}

func rosterEntry(ord Order) course.Student {
	return course.Student{
		CourseID:     ord.CourseID,
		StudentID:    ord.UserID,
		StudentName:  ord.UserName,
		StudentEmail: ord.UserEmail,
		PaidAmount:   ord.PaidAmount(),
	}
}

// =============================================================================

// Store keeps orders in Postgres. Every method that grants access does so in
// the same transaction that writes the order.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, ord Order) error {
	return Create(ctx, s.db, ord)
}

func (s *Store) CreateAndEnroll(ctx context.Context, ord Order) error {
	return database.Transaction(ctx, s.db, func(tx sqlx.ExtContext) error {
		if err := Create(ctx, tx, ord); err != nil {
			return err
		}
		return enroll(ctx, tx, ord)
	})
}

// ConfirmAndEnroll locks the order, lets confirm mutate it and persists the
// result together with the enrollment. Nothing is written when confirm fails.
func (s *Store) ConfirmAndEnroll(ctx context.Context, id string, confirm func(*Order) error) (Order, error) {
	var ord Order
	err := database.Transaction(ctx, s.db, func(tx sqlx.ExtContext) error {
		var err error
		if ord, err = FetchForUpdate(ctx, tx, id); err != nil {
			return err
		}

		if err := confirm(&ord); err != nil {
			return err
		}

		if err := UpdatePayment(ctx, tx, ord); err != nil {
			return err
		}

		return enroll(ctx, tx, ord)
	})
	if err != nil {
		return Order{}, err
	}

	return ord, nil
}

func (s *Store) Fetch(ctx context.Context, id string) (Order, error) {
	return Fetch(ctx, s.db, id)
}
