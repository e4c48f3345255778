// Package report computes read-side aggregations over fetched attendance
// records. Everything here is a pure function; storage and HTTP stay out.
package report

import (
	"math"
	"sort"

	"rollcall/internal/attendance"
)

// CourseSummary is the aggregate for one course on the report's date.
type CourseSummary struct {
	CourseName           string              `json:"course_name"`
	Date                 string              `json:"date"`
	Records              []attendance.Record `json:"records"`
	TotalStudents        int                 `json:"total_students"`
	PresentCount         int                 `json:"present_count"`
	AbsentCount          int                 `json:"absent_count"`
	AttendancePercentage int                 `json:"attendance_percentage"`
}

// StudentSummary is one student's attendance rate across a record set.
type StudentSummary struct {
	StudentName  string `json:"student_name"`
	PresentCount int    `json:"present_count"`
	TotalCount   int    `json:"total_count"`
	Percentage   int    `json:"percentage"`
}

// AggregateByCourse groups records by course and computes present/absent
// counts. courseNames maps course ids to display names for records that do
// not carry one; unknown ids keep an empty name.
func AggregateByCourse(records []attendance.Record, courseNames map[string]string) map[string]CourseSummary {
	out := make(map[string]CourseSummary)
	for _, rec := range records {
		summary, ok := out[rec.CourseID]
		if !ok {
			summary = CourseSummary{
				CourseName: courseNames[rec.CourseID],
				Date:       rec.Date,
			}
		}
		summary.Records = append(summary.Records, rec)
		summary.TotalStudents++
		if rec.Status == attendance.StatusPresent {
			summary.PresentCount++
		} else {
			summary.AbsentCount++
		}
		summary.AttendancePercentage = percentage(summary.PresentCount, summary.TotalStudents)
		out[rec.CourseID] = summary
	}
	return out
}

// AggregateByStudent computes per-student attendance rates, sorted by
// percentage descending. Ties keep first-appearance order.
func AggregateByStudent(records []attendance.Record) []StudentSummary {
	index := make(map[string]int)
	var out []StudentSummary
	for _, rec := range records {
		i, ok := index[rec.StudentNumber]
		if !ok {
			i = len(out)
			index[rec.StudentNumber] = i
			out = append(out, StudentSummary{StudentName: rec.StudentName})
		}
		out[i].TotalCount++
		if rec.Status == attendance.StatusPresent {
			out[i].PresentCount++
		}
	}
	for i := range out {
		out[i].Percentage = percentage(out[i].PresentCount, out[i].TotalCount)
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Percentage > out[b].Percentage
	})
	return out
}

// percentage rounds present/total to a whole percent, 0 when total is 0.
func percentage(present, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(present) / float64(total) * 100))
}
