package report

import (
	"testing"

	"rollcall/internal/attendance"
)

func rec(course, number, name, status string) attendance.Record {
	return attendance.Record{
		CourseID:      course,
		StudentID:     "id-" + number,
		StudentName:   name,
		StudentNumber: number,
		Date:          "2026-03-02",
		Status:        status,
	}
}

func TestAggregateByCourseEmpty(t *testing.T) {
	out := AggregateByCourse(nil, nil)
	if len(out) != 0 {
		t.Fatalf("expected empty mapping, got %d entries", len(out))
	}
}

func TestAggregateByCourseCounts(t *testing.T) {
	records := []attendance.Record{
		rec("c1", "S1", "Ada", attendance.StatusPresent),
		rec("c1", "S2", "Grace", attendance.StatusPresent),
		rec("c1", "S3", "Alan", attendance.StatusAbsent),
	}
	out := AggregateByCourse(records, map[string]string{"c1": "Algorithms"})

	summary, ok := out["c1"]
	if !ok {
		t.Fatal("missing course c1")
	}
	if summary.CourseName != "Algorithms" {
		t.Fatalf("expected course name, got %q", summary.CourseName)
	}
	if summary.TotalStudents != 3 || summary.PresentCount != 2 || summary.AbsentCount != 1 {
		t.Fatalf("unexpected counts: %+v", summary)
	}
	if summary.AttendancePercentage != 67 {
		t.Fatalf("expected 67%%, got %d", summary.AttendancePercentage)
	}
	if len(summary.Records) != 3 {
		t.Fatalf("expected 3 records grouped, got %d", len(summary.Records))
	}
}

func TestAggregateByCourseSplitsCourses(t *testing.T) {
	records := []attendance.Record{
		rec("c1", "S1", "Ada", attendance.StatusPresent),
		rec("c2", "S1", "Ada", attendance.StatusAbsent),
	}
	out := AggregateByCourse(records, nil)
	if len(out) != 2 {
		t.Fatalf("expected 2 courses, got %d", len(out))
	}
	if out["c2"].AttendancePercentage != 0 {
		t.Fatalf("expected 0%% for all-absent course, got %d", out["c2"].AttendancePercentage)
	}
}

func TestAggregateByStudentOrdering(t *testing.T) {
	records := []attendance.Record{
		rec("c1", "S1", "Ada", attendance.StatusAbsent),
		rec("c1", "S2", "Grace", attendance.StatusPresent),
		rec("c2", "S1", "Ada", attendance.StatusPresent),
		rec("c2", "S3", "Alan", attendance.StatusPresent),
	}
	out := AggregateByStudent(records)
	if len(out) != 3 {
		t.Fatalf("expected 3 students, got %d", len(out))
	}
	// Grace and Alan are both 100%; Grace appeared first and must stay first.
	if out[0].StudentName != "Grace" || out[1].StudentName != "Alan" {
		t.Fatalf("tie order broken: %s, %s", out[0].StudentName, out[1].StudentName)
	}
	if out[2].StudentName != "Ada" || out[2].Percentage != 50 {
		t.Fatalf("expected Ada at 50%%, got %+v", out[2])
	}
}

func TestAggregateByStudentBounds(t *testing.T) {
	records := []attendance.Record{
		rec("c1", "S1", "Ada", attendance.StatusPresent),
		rec("c1", "S2", "Grace", attendance.StatusAbsent),
	}
	for _, s := range AggregateByStudent(records) {
		if s.Percentage < 0 || s.Percentage > 100 {
			t.Fatalf("percentage out of bounds: %+v", s)
		}
	}
}

func TestAggregateByStudentEmpty(t *testing.T) {
	if out := AggregateByStudent(nil); len(out) != 0 {
		t.Fatalf("expected no summaries, got %d", len(out))
	}
}

func TestPercentageZeroGuard(t *testing.T) {
	if got := percentage(0, 0); got != 0 {
		t.Fatalf("expected 0 for empty set, got %d", got)
	}
	if got := percentage(2, 3); got != 67 {
		t.Fatalf("expected 67, got %d", got)
	}
}
