package enrollment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/irsalhamdi/e-learning/database"
	"github.com/jmoiron/sqlx"
)

// Add gives the entry's user access to its course. Adding a course the user
// already owns leaves the record untouched, so Add is safe to repeat.
func Add(ctx context.Context, db sqlx.ExtContext, e Entry, now time.Time) error {
	const qRecord = `
	INSERT INTO student_courses
		(user_id, created_at, updated_at)
	VALUES
		($1, $2, $2)
	ON CONFLICT (user_id) DO NOTHING`

	if _, err := db.ExecContext(ctx, qRecord, e.UserID, now); err != nil {
		return fmt.Errorf("upserting record of user[%s]: %w", e.UserID, err)
	}

	const qEntry = `
	INSERT INTO student_course_entries
		(user_id, course_id, title, instructor_id, instructor_name, date_of_purchase, course_image)
	VALUES
		(:user_id, :course_id, :title, :instructor_id, :instructor_name, :date_of_purchase, :course_image)
	ON CONFLICT (user_id, course_id) DO NOTHING`

	res, err := sqlx.NamedExecContext(ctx, db, qEntry, e)
	if err != nil {
		return fmt.Errorf("inserting course[%s] for user[%s]: %w", e.CourseID, e.UserID, err)
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		const qTouch = `
		UPDATE student_courses SET updated_at = $2 WHERE user_id = $1`

		if _, err := db.ExecContext(ctx, qTouch, e.UserID, now); err != nil {
			return fmt.Errorf("touching record of user[%s]: %w", e.UserID, err)
		}
	}

	return nil
}

// Fetch returns the record of userID with its entries in enrollment order.
func Fetch(ctx context.Context, db sqlx.QueryerContext, userID string) (Record, error) {
	const qRecord = `
	SELECT
		user_id, created_at, updated_at
	FROM
		student_courses
	WHERE
		user_id = $1`

	var rec Record
	if err := sqlx.GetContext(ctx, db, &rec, qRecord, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, database.ErrDBNotFound
		}
		return Record{}, fmt.Errorf("selecting record of user[%s]: %w", userID, err)
	}

	const qEntries = `
	SELECT
		user_id, course_id, title, instructor_id, instructor_name, date_of_purchase, course_image
	FROM
		student_course_entries
	WHERE
		user_id = $1
	ORDER BY
		seq`

	rec.Courses = []Entry{}
	if err := sqlx.SelectContext(ctx, db, &rec.Courses, qEntries, userID); err != nil {
		return Record{}, fmt.Errorf("selecting courses of user[%s]: %w", userID, err)
	}

	return rec, nil
}
