package store

import "database/sql"

// schema creates the three collections and the indexes that carry the
// uniqueness rules: one student row per external student number, and at most
// one attendance row per (course, student, calendar day). Duplicate check-ins
// must fail at the database, not in application code.
const schema = `
CREATE TABLE IF NOT EXISTS courses (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	instructor  TEXT NOT NULL,
	schedule    TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS students (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	student_number TEXT NOT NULL,
	email          TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_students_number ON students(student_number);

CREATE TABLE IF NOT EXISTS attendance (
	id             TEXT PRIMARY KEY,
	course_id      TEXT NOT NULL REFERENCES courses(id),
	student_id     TEXT NOT NULL REFERENCES students(id),
	student_name   TEXT NOT NULL,
	student_number TEXT NOT NULL,
	date           TEXT NOT NULL,
	time           TEXT NOT NULL,
	location       TEXT NOT NULL DEFAULT 'Not provided',
	status         TEXT NOT NULL DEFAULT 'present',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_unique ON attendance(course_id, student_id, date);
CREATE INDEX IF NOT EXISTS idx_attendance_date ON attendance(date);
`

// Migrate applies the schema. Safe to run on every startup.
func Migrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
