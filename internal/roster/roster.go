package roster

import (
	"errors"
	"time"
)

// ErrCourseNotFound is returned when a course id does not resolve.
var ErrCourseNotFound = errors.New("course not found")

// Course is a taught class that students check in to.
type Course struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Instructor  string    `json:"instructor"`
	Schedule    string    `json:"schedule,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Student is a registered student. StudentNumber is the human-assigned id
// students type in at check-in; it is unique and distinct from the row id.
type Student struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	StudentNumber string    `json:"student_id"`
	Email         string    `json:"email"`
	CreatedAt     time.Time `json:"created_at"`
}
