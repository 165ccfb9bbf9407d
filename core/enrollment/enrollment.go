package enrollment

import "time"

// Record is the set of courses a purchaser has access to.
type Record struct {
	UserID    string    `json:"userId" db:"user_id"`
	Courses   []Entry   `json:"courses" db:"-"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type Entry struct {
	UserID         string    `json:"-" db:"user_id"`
	CourseID       string    `json:"courseId" db:"course_id"`
	Title          string    `json:"title" db:"title"`
	InstructorID   string    `json:"instructorId" db:"instructor_id"`
	InstructorName string    `json:"instructorName" db:"instructor_name"`
	DateOfPurchase time.Time `json:"dateOfPurchase" db:"date_of_purchase"`
	CourseImage    string    `json:"courseImage" db:"course_image"`
}
