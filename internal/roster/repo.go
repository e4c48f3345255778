package roster

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// Repository persists courses and students in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// InsertCourse writes a new course.
func (r *Repository) InsertCourse(ctx context.Context, course Course) (Course, error) {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO courses (id, name, instructor, schedule, description)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at, updated_at
	`, course.ID, course.Name, course.Instructor, course.Schedule, course.Description)
	if err := row.Scan(&course.CreatedAt, &course.UpdatedAt); err != nil {
		return Course{}, err
	}
	return course, nil
}

// GetCourse returns a course by id, or ErrCourseNotFound.
func (r *Repository) GetCourse(ctx context.Context, id string) (Course, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, instructor, schedule, description, created_at, updated_at
		FROM courses WHERE id = $1
	`, id)
	var c Course
	if err := row.Scan(&c.ID, &c.Name, &c.Instructor, &c.Schedule, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Course{}, ErrCourseNotFound
		}
		return Course{}, err
	}
	return c, nil
}

// ListCourses returns all courses, newest first.
func (r *Repository) ListCourses(ctx context.Context) ([]Course, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, instructor, schedule, description, created_at, updated_at
		FROM courses ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Name, &c.Instructor, &c.Schedule, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// InsertStudent writes a new student.
func (r *Repository) InsertStudent(ctx context.Context, st Student) (Student, error) {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO students (id, name, student_number, email)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at
	`, st.ID, st.Name, st.StudentNumber, st.Email)
	if err := row.Scan(&st.CreatedAt); err != nil {
		return Student{}, err
	}
	return st, nil
}

// FindOrCreateStudent resolves a student by external number, creating the row
// when unseen. The ON CONFLICT clause makes this a single atomic statement, so
// two racing first-time check-ins with the same number converge on one row.
// The no-op DO UPDATE is what lets RETURNING yield the existing row.
func (r *Repository) FindOrCreateStudent(ctx context.Context, name, number, email string) (Student, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO students (id, name, student_number, email)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (student_number) DO UPDATE SET student_number = EXCLUDED.student_number
		RETURNING id, name, student_number, email, created_at
	`, uuid.NewString(), name, number, email)
	var st Student
	if err := row.Scan(&st.ID, &st.Name, &st.StudentNumber, &st.Email, &st.CreatedAt); err != nil {
		return Student{}, err
	}
	return st, nil
}

// ListStudents returns all students, newest first.
func (r *Repository) ListStudents(ctx context.Context) ([]Student, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, student_number, email, created_at
		FROM students ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Student
	for rows.Next() {
		var st Student
		if err := rows.Scan(&st.ID, &st.Name, &st.StudentNumber, &st.Email, &st.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, st)
	}
	return res, rows.Err()
}

// CountCourses returns the number of courses.
func (r *Repository) CountCourses(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM courses`)
}

// CountStudents returns the number of students.
func (r *Repository) CountStudents(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM students`)
}

func (r *Repository) count(ctx context.Context, query string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// RecentCourses returns the most recently created courses.
func (r *Repository) RecentCourses(ctx context.Context, limit int) ([]Course, error) {
	if limit <= 0 {
		limit = 3
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, instructor, schedule, description, created_at, updated_at
		FROM courses ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Name, &c.Instructor, &c.Schedule, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// RecentStudents returns the most recently created students.
func (r *Repository) RecentStudents(ctx context.Context, limit int) ([]Student, error) {
	if limit <= 0 {
		limit = 3
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, student_number, email, created_at
		FROM students ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Student
	for rows.Next() {
		var st Student
		if err := rows.Scan(&st.ID, &st.Name, &st.StudentNumber, &st.Email, &st.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, st)
	}
	return res, rows.Err()
}
