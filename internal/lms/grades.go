package lms

import (
	"context"
	"encoding/json"
	"fmt"
)

// Grades proxies gradebook-scoped remote calls. The remote grade report
// payloads are deeply nested and passed through unshaped.
type Grades struct {
	client *Client
}

// NewGrades constructs the grade proxy.
func NewGrades(client *Client) Grades {
	return Grades{client: client}
}

// UserGrades fetches the grade items of one user in a course.
func (p Grades) UserGrades(ctx context.Context, courseID, moodleUserID uint) (json.RawMessage, error) {
	result, err := p.client.Call(ctx, "gradereport_user_get_grade_items", Params{
		"courseid": courseID,
		"userid":   moodleUserID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user grades: %w", err)
	}

	return rawOrNull(result, ""), nil
}

// CourseGrades fetches the full grades table of a course.
func (p Grades) CourseGrades(ctx context.Context, courseID uint) (json.RawMessage, error) {
	result, err := p.client.Call(ctx, "gradereport_user_get_grades_table", Params{
		"courseid": courseID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch course grades: %w", err)
	}

	return rawOrNull(result, ""), nil
}

// GradeItems lists the grade items configured for a course.
func (p Grades) GradeItems(ctx context.Context, courseID uint) (json.RawMessage, error) {
	result, err := p.client.Call(ctx, "core_grades_get_grade_items", Params{
		"courseid": courseID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch grade items: %w", err)
	}

	return rawOrEmptyArray(result, "gradeitem"), nil
}
