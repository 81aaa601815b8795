package lms

import (
	"context"
	"encoding/json"
	"fmt"
)

// Course mirrors the subset of the remote course record the gateway exposes.
type Course struct {
	ID                uint    `json:"id"`
	ShortName         string  `json:"shortname"`
	FullName          string  `json:"fullname"`
	DisplayName       string  `json:"displayname"`
	EnrolledUserCount int     `json:"enrolledusercount,omitempty"`
	IDNumber          string  `json:"idnumber,omitempty"`
	Visible           int     `json:"visible"`
	Summary           string  `json:"summary,omitempty"`
	Format            string  `json:"format,omitempty"`
	Category          uint    `json:"category,omitempty"`
	Progress          float64 `json:"progress,omitempty"`
	StartDate         int64   `json:"startdate,omitempty"`
	EndDate           int64   `json:"enddate,omitempty"`
}

// CourseSection is one section of course content with its activity modules.
type CourseSection struct {
	ID      uint            `json:"id"`
	Name    string          `json:"name"`
	Visible int             `json:"visible"`
	Summary string          `json:"summary"`
	Section int             `json:"section"`
	Modules json.RawMessage `json:"modules"`
}

// CourseCategory is a remote course category.
type CourseCategory struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Parent      uint   `json:"parent"`
	CourseCount int    `json:"coursecount"`
	Visible     int    `json:"visible"`
}

// Courses proxies course-scoped remote calls.
type Courses struct {
	client *Client
}

// NewCourses constructs the course proxy.
func NewCourses(client *Client) Courses {
	return Courses{client: client}
}

// UserCourses lists the courses the remote user is enrolled in.
func (p Courses) UserCourses(ctx context.Context, moodleUserID uint) ([]Course, error) {
	result, err := p.client.Call(ctx, "core_enrol_get_users_courses", Params{"userid": moodleUserID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user courses: %w", err)
	}

	courses := []Course{}
	if err := decodeAt(result, "", &courses); err != nil {
		return nil, fmt.Errorf("failed to fetch user courses: %w", err)
	}

	return courses, nil
}

// AllCourses lists every course on the remote site.
func (p Courses) AllCourses(ctx context.Context) ([]Course, error) {
	result, err := p.client.Call(ctx, "core_course_get_courses", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch all courses: %w", err)
	}

	courses := []Course{}
	if err := decodeAt(result, "", &courses); err != nil {
		return nil, fmt.Errorf("failed to fetch all courses: %w", err)
	}

	return courses, nil
}

// CourseByID fetches one course, or nil when the remote omits it.
func (p Courses) CourseByID(ctx context.Context, courseID uint) (*Course, error) {
	result, err := p.client.Call(ctx, "core_course_get_courses", Params{
		"options": Params{"ids": []uint{courseID}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch course: %w", err)
	}

	courses := []Course{}
	if err := decodeAt(result, "", &courses); err != nil {
		return nil, fmt.Errorf("failed to fetch course: %w", err)
	}

	if len(courses) == 0 {
		return nil, nil
	}

	return &courses[0], nil
}

// CourseContent lists the sections and activities of a course.
func (p Courses) CourseContent(ctx context.Context, courseID uint) ([]CourseSection, error) {
	result, err := p.client.Call(ctx, "core_course_get_contents", Params{"courseid": courseID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch course content: %w", err)
	}

	sections := []CourseSection{}
	if err := decodeAt(result, "", &sections); err != nil {
		return nil, fmt.Errorf("failed to fetch course content: %w", err)
	}

	return sections, nil
}

// EnrolledUsers lists users enrolled in a course.
func (p Courses) EnrolledUsers(ctx context.Context, courseID uint) (json.RawMessage, error) {
	result, err := p.client.Call(ctx, "core_enrol_get_enrolled_users", Params{"courseid": courseID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch enrolled users: %w", err)
	}

	return rawOrEmptyArray(result, ""), nil
}

// Categories lists the remote course categories.
func (p Courses) Categories(ctx context.Context) ([]CourseCategory, error) {
	result, err := p.client.Call(ctx, "core_course_get_categories", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch course categories: %w", err)
	}

	categories := []CourseCategory{}
	if err := decodeAt(result, "", &categories); err != nil {
		return nil, fmt.Errorf("failed to fetch course categories: %w", err)
	}

	return categories, nil
}
