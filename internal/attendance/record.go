package attendance

import (
	"errors"
	"time"
)

// Statuses a record can carry.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
)

// DefaultLocation is recorded when the student supplies none.
const DefaultLocation = "Not provided"

var (
	// ErrDuplicateAttendance means a record for the same student, course and
	// day already exists. Raised from the unique index, so resubmission is
	// safe: the second attempt fails, no second row appears.
	ErrDuplicateAttendance = errors.New("attendance already marked for today")
	// ErrValidation means a required field was missing.
	ErrValidation = errors.New("missing required field")
)

// Record is one attendance row. Student name and number are captured at
// check-in time and never re-read from the student row.
type Record struct {
	ID            string    `json:"id"`
	CourseID      string    `json:"course_id"`
	StudentID     string    `json:"student_id"`
	StudentName   string    `json:"student_name"`
	StudentNumber string    `json:"student_number"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	Location      string    `json:"location"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// Layouts for the date and time-of-day columns.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)
