package course

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// AddStudent puts st on the roster of st.CourseID unless the student is
// already there.
func AddStudent(ctx context.Context, db sqlx.ExtContext, st Student) error {
	const q = `
	INSERT INTO course_students
		(course_id, student_id, student_name, student_email, paid_amount)
	VALUES
		(:course_id, :student_id, :student_name, :student_email, :paid_amount)
	ON CONFLICT (course_id, student_id) DO NOTHING`

	if _, err := sqlx.NamedExecContext(ctx, db, q, st); err != nil {
		return fmt.Errorf("adding student[%s] to course[%s]: %w", st.StudentID, st.CourseID, err)
	}

	return nil
}

func FetchStudents(ctx context.Context, db sqlx.QueryerContext, courseID string) ([]Student, error) {
	const q = `
	SELECT
		course_id, student_id, student_name, student_email, paid_amount
	FROM
		course_students
	WHERE
		course_id = $1
	ORDER BY
		seq`

	students := []Student{}
	if err := sqlx.SelectContext(ctx, db, &students, q, courseID); err != nil {
		return nil, fmt.Errorf("selecting students of course[%s]: %w", courseID, err)
	}

	return students, nil
}
