package report

import (
	"encoding/csv"
	"io"
	"strings"

	"rollcall/internal/attendance"
	"rollcall/internal/roster"
)

var csvHeader = []string{"Student Name", "Student ID", "Course", "Instructor", "Date", "Time", "Status", "Location"}

// WriteCSV streams the course's records as CSV.
func WriteCSV(w io.Writer, course roster.Course, records []attendance.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{
			rec.StudentName,
			rec.StudentNumber,
			course.Name,
			course.Instructor,
			rec.Date,
			rec.Time,
			rec.Status,
			rec.Location,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVFilename names the export after the course and day.
func CSVFilename(courseName, date string) string {
	return strings.ReplaceAll(courseName, " ", "_") + "_attendance_" + date + ".csv"
}
