package report

import (
	"fmt"
	"sort"

	"rollcall/internal/attendance"
	"rollcall/internal/roster"
)

// SessionStats summarizes one course session.
type SessionStats struct {
	TotalStudents   int    `json:"total_students"`
	PresentStudents int    `json:"present_students"`
	AbsentStudents  int    `json:"absent_students"`
	AttendanceRate  string `json:"attendance_rate"`
	UniqueStudents  int    `json:"unique_students"`
	FirstAttendance string `json:"first_attendance"`
	LastAttendance  string `json:"last_attendance"`
}

// SessionEntry is one student's line in a session report.
type SessionEntry struct {
	StudentName string `json:"student_name"`
	StudentID   string `json:"student_id"`
	Time        string `json:"time"`
	Status      string `json:"status"`
	Location    string `json:"location"`
}

// SessionReport is the per-session view an instructor pulls up after class.
type SessionReport struct {
	Course     SessionCourse  `json:"course"`
	Statistics SessionStats   `json:"statistics"`
	Attendance []SessionEntry `json:"attendance"`
}

// SessionCourse identifies the reported course and day.
type SessionCourse struct {
	Name       string `json:"name"`
	Instructor string `json:"instructor"`
	Date       string `json:"date"`
}

// Session builds a session report for one course and day.
func Session(course roster.Course, date string, records []attendance.Record) SessionReport {
	total := len(records)
	present := 0
	unique := make(map[string]struct{})
	times := make([]string, 0, total)
	entries := make([]SessionEntry, 0, total)

	for _, rec := range records {
		if rec.Status == attendance.StatusPresent {
			present++
		}
		unique[rec.StudentNumber] = struct{}{}
		times = append(times, rec.Time)
		entries = append(entries, SessionEntry{
			StudentName: rec.StudentName,
			StudentID:   rec.StudentNumber,
			Time:        rec.Time,
			Status:      rec.Status,
			Location:    rec.Location,
		})
	}
	sort.Strings(times)

	first, last := "N/A", "N/A"
	if len(times) > 0 {
		first, last = times[0], times[len(times)-1]
	}
	rate := "0%"
	if total > 0 {
		rate = fmt.Sprintf("%.1f%%", float64(present)/float64(total)*100)
	}

	return SessionReport{
		Course: SessionCourse{
			Name:       course.Name,
			Instructor: course.Instructor,
			Date:       date,
		},
		Statistics: SessionStats{
			TotalStudents:   total,
			PresentStudents: present,
			AbsentStudents:  total - present,
			AttendanceRate:  rate,
			UniqueStudents:  len(unique),
			FirstAttendance: first,
			LastAttendance:  last,
		},
		Attendance: entries,
	}
}
