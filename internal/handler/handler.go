package handler

import (
	"context"
	"errors"
	"log"
	"math"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"rollcall/internal/attendance"
	"rollcall/internal/cache"
	"rollcall/internal/metrics"
	"rollcall/internal/report"
	"rollcall/internal/roster"
	"rollcall/internal/session"
)

// RosterStore is the slice of roster.Repository the handlers need.
type RosterStore interface {
	InsertCourse(ctx context.Context, course roster.Course) (roster.Course, error)
	GetCourse(ctx context.Context, id string) (roster.Course, error)
	ListCourses(ctx context.Context) ([]roster.Course, error)
	InsertStudent(ctx context.Context, st roster.Student) (roster.Student, error)
	ListStudents(ctx context.Context) ([]roster.Student, error)
	CountCourses(ctx context.Context) (int, error)
	CountStudents(ctx context.Context) (int, error)
	RecentCourses(ctx context.Context, limit int) ([]roster.Course, error)
	RecentStudents(ctx context.Context, limit int) ([]roster.Student, error)
}

// AttendanceStore is the read side of attendance.Repository.
type AttendanceStore interface {
	ListRecords(ctx context.Context, courseID, date string) ([]attendance.Record, error)
	CountByDate(ctx context.Context, date string) (int, error)
	CountAll(ctx context.Context) (int, error)
	RecentRecords(ctx context.Context, limit int) ([]attendance.Record, error)
}

// SessionIssuer mints session tokens. Satisfied by session.Issuer.
type SessionIssuer interface {
	Issue(ctx context.Context, courseID string, duration time.Duration) (session.Issued, error)
}

// CheckInService runs the check-in flow. Satisfied by attendance.Service.
type CheckInService interface {
	CheckIn(ctx context.Context, payload, studentName, studentNumber, location string) (attendance.Record, error)
}

// Handler holds the HTTP handlers and their collaborators.
type Handler struct {
	roster     RosterStore
	attendance AttendanceStore
	sessions   SessionIssuer
	checkins   CheckInService
	cache      *cache.Cache
	cacheTTL   time.Duration
	now        func() time.Time
}

// New creates a handler. cache may be nil; dashboard stats are then always
// recomputed.
func New(rs RosterStore, as AttendanceStore, issuer SessionIssuer, checkins CheckInService, c *cache.Cache, cacheTTL time.Duration) *Handler {
	return &Handler{
		roster:     rs,
		attendance: as,
		sessions:   issuer,
		checkins:   checkins,
		cache:      c,
		cacheTTL:   cacheTTL,
		now:        time.Now,
	}
}

// Register mounts all routes on the group.
func (h *Handler) Register(r *gin.RouterGroup) {
	r.GET("/courses", h.ListCourses)
	r.POST("/courses", h.CreateCourse)
	r.GET("/students", h.ListStudents)
	r.POST("/students", h.CreateStudent)
	r.POST("/sessions", h.CreateSession)
	r.POST("/checkins", h.CheckIn)
	r.GET("/attendance", h.ListAttendance)
	r.GET("/reports/by-course", h.ReportByCourse)
	r.GET("/reports/by-student", h.ReportByStudent)
	r.GET("/attendance/:courseId/report", h.SessionReport)
	r.GET("/attendance/:courseId/export", h.ExportCSV)
	r.GET("/dashboard", h.Dashboard)
	r.GET("/recent-activity", h.RecentActivity)
}

// ---------- Courses ----------

type createCourseRequest struct {
	Name        string `json:"name" binding:"required"`
	Instructor  string `json:"instructor" binding:"required"`
	Schedule    string `json:"schedule"`
	Description string `json:"description"`
}

func (h *Handler) CreateCourse(c *gin.Context) {
	var req createCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	course, err := h.roster.InsertCourse(c.Request.Context(), roster.Course{
		Name:        req.Name,
		Instructor:  req.Instructor,
		Schedule:    req.Schedule,
		Description: req.Description,
	})
	if err != nil {
		h.storageError(c, "create course", err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

func (h *Handler) ListCourses(c *gin.Context) {
	courses, err := h.roster.ListCourses(c.Request.Context())
	if err != nil {
		h.storageError(c, "list courses", err)
		return
	}
	if courses == nil {
		courses = []roster.Course{}
	}
	c.JSON(http.StatusOK, courses)
}

// ---------- Students ----------

type createStudentRequest struct {
	Name      string `json:"name" binding:"required"`
	StudentID string `json:"studentId" binding:"required"`
	Email     string `json:"email"`
}

func (h *Handler) CreateStudent(c *gin.Context) {
	var req createStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := h.roster.InsertStudent(c.Request.Context(), roster.Student{
		Name:          req.Name,
		StudentNumber: req.StudentID,
		Email:         req.Email,
	})
	if err != nil {
		h.storageError(c, "create student", err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

func (h *Handler) ListStudents(c *gin.Context) {
	students, err := h.roster.ListStudents(c.Request.Context())
	if err != nil {
		h.storageError(c, "list students", err)
		return
	}
	if students == nil {
		students = []roster.Student{}
	}
	c.JSON(http.StatusOK, students)
}

// ---------- Sessions ----------

type createSessionRequest struct {
	CourseID        string `json:"courseId" binding:"required"`
	DurationMinutes int    `json:"durationMinutes"`
}

func (h *Handler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issued, err := h.sessions.Issue(c.Request.Context(), req.CourseID, time.Duration(req.DurationMinutes)*time.Minute)
	if err != nil {
		if errors.Is(err, roster.ErrCourseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
			return
		}
		h.storageError(c, "issue session", err)
		return
	}
	metrics.SessionsIssued.Inc()

	qr, err := session.QRDataURL(issued.Payload)
	if err != nil {
		log.Printf("qr render failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "qr render failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"tokenPayload": issued.Payload,
		"qrCode":       qr,
		"course":       issued.Course,
		"expiresAt":    issued.Token.ExpiresAt,
	})
}

// ---------- Check-ins ----------

type checkInRequest struct {
	TokenPayload string `json:"tokenPayload" binding:"required"`
	StudentName  string `json:"studentName" binding:"required"`
	StudentID    string `json:"studentId" binding:"required"`
	Location     string `json:"location"`
}

func (h *Handler) CheckIn(c *gin.Context) {
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.CheckIns.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.checkins.CheckIn(c.Request.Context(), req.TokenPayload, req.StudentName, req.StudentID, req.Location)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrMalformedToken):
			metrics.CheckIns.WithLabelValues("malformed").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session token"})
		case errors.Is(err, session.ErrExpiredToken):
			metrics.CheckIns.WithLabelValues("expired").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "session token has expired"})
		case errors.Is(err, attendance.ErrDuplicateAttendance):
			metrics.CheckIns.WithLabelValues("duplicate").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "attendance already marked for today"})
		case errors.Is(err, attendance.ErrValidation):
			metrics.CheckIns.WithLabelValues("invalid").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, roster.ErrCourseNotFound):
			metrics.CheckIns.WithLabelValues("error").Inc()
			c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		default:
			metrics.CheckIns.WithLabelValues("error").Inc()
			h.storageError(c, "check in", err)
		}
		return
	}

	metrics.CheckIns.WithLabelValues("ok").Inc()
	c.JSON(http.StatusCreated, rec)
}

// ---------- Attendance ----------

func (h *Handler) ListAttendance(c *gin.Context) {
	records, err := h.attendance.ListRecords(c.Request.Context(), c.Query("courseId"), c.Query("date"))
	if err != nil {
		h.storageError(c, "list attendance", err)
		return
	}
	if records == nil {
		records = []attendance.Record{}
	}
	c.JSON(http.StatusOK, records)
}

// ReportByCourse groups records by course for one day (today by default).
func (h *Handler) ReportByCourse(c *gin.Context) {
	ctx := c.Request.Context()
	date := c.Query("date")
	if date == "" {
		date = h.today()
	}
	records, err := h.attendance.ListRecords(ctx, c.Query("courseId"), date)
	if err != nil {
		h.storageError(c, "list attendance", err)
		return
	}
	courses, err := h.roster.ListCourses(ctx)
	if err != nil {
		h.storageError(c, "list courses", err)
		return
	}
	names := make(map[string]string, len(courses))
	for _, course := range courses {
		names[course.ID] = course.Name
	}
	c.JSON(http.StatusOK, report.AggregateByCourse(records, names))
}

// ReportByStudent ranks students by attendance rate over the filtered set.
func (h *Handler) ReportByStudent(c *gin.Context) {
	records, err := h.attendance.ListRecords(c.Request.Context(), c.Query("courseId"), c.Query("date"))
	if err != nil {
		h.storageError(c, "list attendance", err)
		return
	}
	out := report.AggregateByStudent(records)
	if out == nil {
		out = []report.StudentSummary{}
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) SessionReport(c *gin.Context) {
	courseID := c.Param("courseId")
	course, err := h.roster.GetCourse(c.Request.Context(), courseID)
	if err != nil {
		if errors.Is(err, roster.ErrCourseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
			return
		}
		h.storageError(c, "load course", err)
		return
	}

	date := c.Query("date")
	records, err := h.attendance.ListRecords(c.Request.Context(), courseID, date)
	if err != nil {
		h.storageError(c, "list attendance", err)
		return
	}
	if date == "" {
		date = h.today()
	}
	c.JSON(http.StatusOK, report.Session(course, date, records))
}

// ExportCSV writes the course's records to a temp file and streams it as an
// attachment. The file is removed when the handler returns, whether or not
// the stream completed.
func (h *Handler) ExportCSV(c *gin.Context) {
	courseID := c.Param("courseId")
	course, err := h.roster.GetCourse(c.Request.Context(), courseID)
	if err != nil {
		if errors.Is(err, roster.ErrCourseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
			return
		}
		h.storageError(c, "load course", err)
		return
	}

	date := c.Query("date")
	records, err := h.attendance.ListRecords(c.Request.Context(), courseID, date)
	if err != nil {
		h.storageError(c, "list attendance", err)
		return
	}

	tmp, err := os.CreateTemp("", "rollcall-export-*.csv")
	if err != nil {
		h.storageError(c, "create export", err)
		return
	}
	defer os.Remove(tmp.Name())

	werr := report.WriteCSV(tmp, course, records)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		log.Printf("csv export failed: write=%v close=%v", werr, cerr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	if date == "" {
		date = h.today()
	}
	c.FileAttachment(tmp.Name(), report.CSVFilename(course.Name, date))
}

// ---------- Dashboard ----------

type dashboardStats struct {
	TotalCourses    int `json:"totalCourses"`
	TotalStudents   int `json:"totalStudents"`
	TodayAttendance int `json:"todayAttendance"`
	AvgAttendance   int `json:"avgAttendance"`
}

const dashboardCacheKey = "rollcall:dashboard"

func (h *Handler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	var stats dashboardStats
	if h.cache.GetJSON(ctx, dashboardCacheKey, &stats) {
		c.JSON(http.StatusOK, stats)
		return
	}

	courses, err := h.roster.CountCourses(ctx)
	if err != nil {
		h.storageError(c, "count courses", err)
		return
	}
	students, err := h.roster.CountStudents(ctx)
	if err != nil {
		h.storageError(c, "count students", err)
		return
	}
	today, err := h.attendance.CountByDate(ctx, h.today())
	if err != nil {
		h.storageError(c, "count today", err)
		return
	}
	total, err := h.attendance.CountAll(ctx)
	if err != nil {
		h.storageError(c, "count attendance", err)
		return
	}

	avg := 0
	if students > 0 {
		avg = int(math.Round(float64(total) / float64(students) * 100))
	}
	stats = dashboardStats{
		TotalCourses:    courses,
		TotalStudents:   students,
		TodayAttendance: today,
		AvgAttendance:   avg,
	}
	h.cache.SetJSON(ctx, dashboardCacheKey, stats, h.cacheTTL)
	c.JSON(http.StatusOK, stats)
}

// ---------- Recent activity ----------

type activityItem struct {
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

func (h *Handler) RecentActivity(c *gin.Context) {
	ctx := c.Request.Context()
	var items []activityItem

	courses, err := h.roster.RecentCourses(ctx, 3)
	if err != nil {
		h.storageError(c, "recent courses", err)
		return
	}
	for _, course := range courses {
		items = append(items, activityItem{
			Type:        "course_created",
			Title:       "New course added",
			Description: course.Name + " by " + course.Instructor,
			Timestamp:   course.CreatedAt,
		})
	}

	students, err := h.roster.RecentStudents(ctx, 3)
	if err != nil {
		h.storageError(c, "recent students", err)
		return
	}
	for _, st := range students {
		items = append(items, activityItem{
			Type:        "student_added",
			Title:       "New student added",
			Description: st.Name + " (ID: " + st.StudentNumber + ")",
			Timestamp:   st.CreatedAt,
		})
	}

	records, err := h.attendance.RecentRecords(ctx, 5)
	if err != nil {
		h.storageError(c, "recent attendance", err)
		return
	}
	for _, rec := range records {
		items = append(items, activityItem{
			Type:        "attendance_marked",
			Title:       "Attendance marked",
			Description: rec.StudentName + " marked " + rec.Status,
			Timestamp:   rec.CreatedAt,
		})
	}

	sortActivity(items)
	if len(items) > 10 {
		items = items[:10]
	}
	if items == nil {
		items = []activityItem{}
	}
	c.JSON(http.StatusOK, items)
}

// ---------- helpers ----------

func (h *Handler) today() string {
	return h.now().UTC().Format(attendance.DateLayout)
}

// storageError logs the real failure and answers with a generic body so
// collaborator internals never reach the client.
func (h *Handler) storageError(c *gin.Context, op string, err error) {
	log.Printf("%s failed: %v", op, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func sortActivity(items []activityItem) {
	sort.Slice(items, func(a, b int) bool {
		return items[a].Timestamp.After(items[b].Timestamp)
	})
}
