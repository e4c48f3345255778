package attendance

import (
	"context"
	"fmt"
	"time"

	"rollcall/internal/roster"
	"rollcall/internal/session"
)

// TokenVerifier decodes and validates a submitted session token payload.
type TokenVerifier interface {
	Verify(payload string) (session.Token, error)
}

// StudentResolver resolves a student by external number, creating one when
// unseen. Satisfied by roster.Repository.
type StudentResolver interface {
	FindOrCreateStudent(ctx context.Context, name, number, email string) (roster.Student, error)
}

// RecordStore persists attendance records. Satisfied by Repository.
type RecordStore interface {
	InsertRecord(ctx context.Context, rec Record) (Record, error)
}

// Service runs the check-in flow: decode the token, check its window,
// resolve the student, write exactly one row.
type Service struct {
	tokens   TokenVerifier
	students StudentResolver
	records  RecordStore
	now      func() time.Time
}

// NewService creates a service.
func NewService(tokens TokenVerifier, students StudentResolver, records RecordStore) *Service {
	return &Service{
		tokens:   tokens,
		students: students,
		records:  records,
		now:      time.Now,
	}
}

// CheckIn validates the token and records attendance for the student. Each
// step short-circuits: a malformed or expired token never touches the store,
// and a duplicate insert leaves the existing row untouched. May create a
// student row as a side effect; creates exactly one attendance row on
// success, zero on any failure.
func (s *Service) CheckIn(ctx context.Context, payload, studentName, studentNumber, location string) (Record, error) {
	if studentName == "" {
		return Record{}, fmt.Errorf("%w: student name", ErrValidation)
	}
	if studentNumber == "" {
		return Record{}, fmt.Errorf("%w: student id", ErrValidation)
	}

	tok, err := s.tokens.Verify(payload)
	if err != nil {
		return Record{}, err
	}

	// Unseen student numbers get a row with a placeholder address; no
	// format validation on either field.
	email := studentNumber + "@student.local"
	student, err := s.students.FindOrCreateStudent(ctx, studentName, studentNumber, email)
	if err != nil {
		return Record{}, err
	}

	now := s.now().UTC()
	if location == "" {
		location = DefaultLocation
	}
	rec := Record{
		CourseID:      tok.CourseID,
		StudentID:     student.ID,
		StudentName:   studentName,
		StudentNumber: studentNumber,
		Date:          now.Format(DateLayout),
		Time:          now.Format(TimeLayout),
		Location:      location,
		Status:        StatusPresent,
	}
	return s.records.InsertRecord(ctx, rec)
}
