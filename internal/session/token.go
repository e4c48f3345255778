package session

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"rollcall/internal/roster"
)

// Session tokens authorize check-ins: the instructor displays one as a QR
// code, students submit it back. The token is self-contained and signed with
// HS256; the server keeps no record of what it issued, so expiry is the only
// liveness control.

var (
	// ErrMalformedToken means the payload could not be decoded or verified.
	ErrMalformedToken = errors.New("malformed session token")
	// ErrExpiredToken means the token was valid but its window has passed.
	ErrExpiredToken = errors.New("session token expired")
)

// DefaultTTL is the session window used when the caller supplies none.
const DefaultTTL = 5 * time.Minute

// Token is the decoded session descriptor.
type Token struct {
	CourseID   string    `json:"course_id"`
	CourseName string    `json:"course_name"`
	Instructor string    `json:"instructor"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type claims struct {
	CourseID   string `json:"course_id"`
	CourseName string `json:"course_name"`
	Instructor string `json:"instructor"`
	jwt.RegisteredClaims
}

// CourseFinder resolves a course identity; satisfied by roster.Repository.
type CourseFinder interface {
	GetCourse(ctx context.Context, id string) (roster.Course, error)
}

// Issuer mints and verifies signed session tokens.
type Issuer struct {
	courses CourseFinder
	issuer  string
	key     []byte
	now     func() time.Time
}

// NewIssuer creates an issuer signing with the given HS256 key.
func NewIssuer(courses CourseFinder, issuer, key string) *Issuer {
	return &Issuer{
		courses: courses,
		issuer:  issuer,
		key:     []byte(key),
		now:     time.Now,
	}
}

// Issued bundles a minted token with its signed wire encoding and the course
// it was minted for.
type Issued struct {
	Token   Token
	Payload string
	Course  roster.Course
}

// Issue mints a token for the course, valid for the given duration
// (DefaultTTL when non-positive). Fails with roster.ErrCourseNotFound when
// the course does not exist.
func (i *Issuer) Issue(ctx context.Context, courseID string, duration time.Duration) (Issued, error) {
	course, err := i.courses.GetCourse(ctx, courseID)
	if err != nil {
		return Issued{}, err
	}
	if duration <= 0 {
		duration = DefaultTTL
	}

	issuedAt := i.now().UTC()
	expiresAt := issuedAt.Add(duration)

	c := claims{
		CourseID:   course.ID,
		CourseName: course.Name,
		Instructor: course.Instructor,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   course.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	payload, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.key)
	if err != nil {
		return Issued{}, err
	}

	return Issued{
		Token: Token{
			CourseID:   course.ID,
			CourseName: course.Name,
			Instructor: course.Instructor,
			IssuedAt:   issuedAt,
			ExpiresAt:  expiresAt,
		},
		Payload: payload,
		Course:  course,
	}, nil
}

// Verify decodes and validates a submitted payload. Expiry is a strict
// server-clock comparison with no skew grace (no leeway is configured). The
// JWT layer treats the exact expiry instant as already expired and truncates
// timestamps to whole seconds, so the token's last valid moment is the second
// before expiresAt.
func (i *Issuer) Verify(payload string) (Token, error) {
	parsed, err := jwt.ParseWithClaims(payload, &claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return i.key, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Token{}, ErrExpiredToken
		}
		return Token{}, ErrMalformedToken
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid || c.CourseID == "" || c.ExpiresAt == nil {
		return Token{}, ErrMalformedToken
	}
	tok := Token{
		CourseID:   c.CourseID,
		CourseName: c.CourseName,
		Instructor: c.Instructor,
		ExpiresAt:  c.ExpiresAt.Time,
	}
	if c.IssuedAt != nil {
		tok.IssuedAt = c.IssuedAt.Time
	}
	return tok, nil
}
