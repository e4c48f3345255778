package attendance

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// Repository persists attendance records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// InsertRecord writes a new record. The insert itself is the duplicate check:
// a violation of the (course_id, student_id, date) unique index comes back as
// ErrDuplicateAttendance. There is no separate pre-read, so two racing
// check-ins for the same key resolve to exactly one row.
func (r *Repository) InsertRecord(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Status == "" {
		rec.Status = StatusPresent
	}
	if rec.Location == "" {
		rec.Location = DefaultLocation
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance (id, course_id, student_id, student_name, student_number, date, time, location, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at
	`, rec.ID, rec.CourseID, rec.StudentID, rec.StudentName, rec.StudentNumber, rec.Date, rec.Time, rec.Location, rec.Status)
	if err := row.Scan(&rec.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Record{}, ErrDuplicateAttendance
		}
		return Record{}, err
	}
	return rec, nil
}

// ListRecords returns records filtered by course and/or date, newest first.
func (r *Repository) ListRecords(ctx context.Context, courseID, date string) ([]Record, error) {
	query := `SELECT id, course_id, student_id, student_name, student_number, date, time, location, status, created_at FROM attendance`
	args := []any{}
	clauses := []string{}
	if courseID != "" {
		args = append(args, courseID)
		clauses = append(clauses, "course_id = $"+strconv.Itoa(len(args)))
	}
	if date != "" {
		args = append(args, date)
		clauses = append(clauses, "date = $"+strconv.Itoa(len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY date DESC, time DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.CourseID, &rec.StudentID, &rec.StudentName, &rec.StudentNumber, &rec.Date, &rec.Time, &rec.Location, &rec.Status, &rec.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// CountByDate returns the number of records on a calendar day.
func (r *Repository) CountByDate(ctx context.Context, date string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendance WHERE date = $1`, date).Scan(&n)
	return n, err
}

// CountAll returns the total number of records.
func (r *Repository) CountAll(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendance`).Scan(&n)
	return n, err
}

// RecentRecords returns the most recently created records.
func (r *Repository) RecentRecords(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, course_id, student_id, student_name, student_number, date, time, location, status, created_at
		FROM attendance ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.CourseID, &rec.StudentID, &rec.StudentName, &rec.StudentNumber, &rec.Date, &rec.Time, &rec.Location, &rec.Status, &rec.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

