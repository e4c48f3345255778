package attendance

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"rollcall/internal/roster"
	"rollcall/internal/session"
)

type fakeVerifier struct {
	tok session.Token
	err error
}

func (f fakeVerifier) Verify(string) (session.Token, error) {
	return f.tok, f.err
}

// fakeStudents mimics the atomic find-or-create keyed on student number.
type fakeStudents struct {
	byNumber map[string]roster.Student
	created  int
}

func (f *fakeStudents) FindOrCreateStudent(_ context.Context, name, number, email string) (roster.Student, error) {
	if st, ok := f.byNumber[number]; ok {
		return st, nil
	}
	st := roster.Student{ID: "id-" + number, Name: name, StudentNumber: number, Email: email}
	if f.byNumber == nil {
		f.byNumber = make(map[string]roster.Student)
	}
	f.byNumber[number] = st
	f.created++
	return st, nil
}

// fakeRecords mimics the unique index on (course, student, date).
type fakeRecords struct {
	rows []Record
}

func (f *fakeRecords) InsertRecord(_ context.Context, rec Record) (Record, error) {
	for _, existing := range f.rows {
		if existing.CourseID == rec.CourseID && existing.StudentID == rec.StudentID && existing.Date == rec.Date {
			return Record{}, ErrDuplicateAttendance
		}
	}
	rec.ID = "rec-1"
	rec.CreatedAt = time.Now().UTC()
	f.rows = append(f.rows, rec)
	return rec, nil
}

func validToken() session.Token {
	now := time.Now().UTC()
	return session.Token{
		CourseID:   "c1",
		CourseName: "Algorithms",
		Instructor: "Dr. Shaw",
		IssuedAt:   now,
		ExpiresAt:  now.Add(5 * time.Minute),
	}
}

func TestCheckInSuccess(t *testing.T) {
	students := &fakeStudents{}
	records := &fakeRecords{}
	svc := NewService(fakeVerifier{tok: validToken()}, students, records)
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 9, 30, 15, 0, time.UTC) }

	rec, err := svc.CheckIn(context.Background(), "payload", "Ada Lovelace", "S1", "")
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if rec.Status != StatusPresent {
		t.Fatalf("expected present, got %q", rec.Status)
	}
	if rec.Date != "2026-03-02" || rec.Time != "09:30:15" {
		t.Fatalf("unexpected date/time: %s %s", rec.Date, rec.Time)
	}
	if rec.Location != DefaultLocation {
		t.Fatalf("expected default location, got %q", rec.Location)
	}
	if rec.StudentName != "Ada Lovelace" || rec.StudentNumber != "S1" {
		t.Fatalf("denormalized identity wrong: %+v", rec)
	}
	if students.created != 1 {
		t.Fatalf("expected 1 student created, got %d", students.created)
	}
	if len(records.rows) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records.rows))
	}
}

func TestCheckInCreatesPlaceholderEmail(t *testing.T) {
	students := &fakeStudents{}
	svc := NewService(fakeVerifier{tok: validToken()}, students, &fakeRecords{})

	if _, err := svc.CheckIn(context.Background(), "payload", "Ada", "S42", "Room 2"); err != nil {
		t.Fatalf("check in: %v", err)
	}
	st := students.byNumber["S42"]
	if !strings.HasSuffix(st.Email, "@student.local") || !strings.HasPrefix(st.Email, "S42") {
		t.Fatalf("unexpected placeholder email %q", st.Email)
	}
}

func TestCheckInExpiredTokenShortCircuits(t *testing.T) {
	students := &fakeStudents{}
	records := &fakeRecords{}
	svc := NewService(fakeVerifier{err: session.ErrExpiredToken}, students, records)

	_, err := svc.CheckIn(context.Background(), "payload", "Ada", "S1", "")
	if !errors.Is(err, session.ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
	if students.created != 0 || len(records.rows) != 0 {
		t.Fatal("expired token must not touch the store")
	}
}

func TestCheckInMalformedToken(t *testing.T) {
	svc := NewService(fakeVerifier{err: session.ErrMalformedToken}, &fakeStudents{}, &fakeRecords{})
	if _, err := svc.CheckIn(context.Background(), "junk", "Ada", "S1", ""); !errors.Is(err, session.ErrMalformedToken) {
		t.Fatalf("expected ErrMalformedToken, got %v", err)
	}
}

func TestCheckInMissingFields(t *testing.T) {
	svc := NewService(fakeVerifier{tok: validToken()}, &fakeStudents{}, &fakeRecords{})
	if _, err := svc.CheckIn(context.Background(), "payload", "", "S1", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing name, got %v", err)
	}
	if _, err := svc.CheckIn(context.Background(), "payload", "Ada", "", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing id, got %v", err)
	}
}

func TestCheckInDuplicateSameDay(t *testing.T) {
	students := &fakeStudents{}
	records := &fakeRecords{}
	svc := NewService(fakeVerifier{tok: validToken()}, students, records)

	if _, err := svc.CheckIn(context.Background(), "payload", "Ada", "S1", ""); err != nil {
		t.Fatalf("first check in: %v", err)
	}
	_, err := svc.CheckIn(context.Background(), "payload", "Ada", "S1", "")
	if !errors.Is(err, ErrDuplicateAttendance) {
		t.Fatalf("expected ErrDuplicateAttendance, got %v", err)
	}
	if len(records.rows) != 1 {
		t.Fatalf("duplicate must not add a row, got %d", len(records.rows))
	}
	if students.created != 1 {
		t.Fatalf("repeat check-in must not create a second student, got %d", students.created)
	}
}

func TestCheckInKeepsSuppliedLocation(t *testing.T) {
	svc := NewService(fakeVerifier{tok: validToken()}, &fakeStudents{}, &fakeRecords{})
	rec, err := svc.CheckIn(context.Background(), "payload", "Ada", "S1", "Lecture Hall B")
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if rec.Location != "Lecture Hall B" {
		t.Fatalf("expected supplied location, got %q", rec.Location)
	}
}
