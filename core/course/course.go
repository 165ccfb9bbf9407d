package course

import "github.com/shopspring/decimal"

// Student is an entry of a course roster. A student appears at most once per
// course.
type Student struct {
	CourseID     string          `json:"-" db:"course_id"`
	StudentID    string          `json:"studentId" db:"student_id"`
	StudentName  string          `json:"studentName" db:"student_name"`
	StudentEmail string          `json:"studentEmail" db:"student_email"`
	PaidAmount   decimal.Decimal `json:"paidAmount" db:"paid_amount"`
}
