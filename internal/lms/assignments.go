package lms

import (
	"context"
	"encoding/json"
	"fmt"
)

// Assignment mirrors the subset of the remote assignment record the
// gateway exposes.
type Assignment struct {
	ID                       uint   `json:"id"`
	Course                   uint   `json:"course"`
	Name                     string `json:"name"`
	DueDate                  int64  `json:"duedate"`
	AllowSubmissionsFromDate int64  `json:"allowsubmissionsfromdate"`
	CutoffDate               int64  `json:"cutoffdate"`
	Grade                    int    `json:"grade"`
	MaxAttempts              int    `json:"maxattempts"`
	TeamSubmission           int    `json:"teamsubmission"`
	Intro                    string `json:"intro,omitempty"`
	TimeModified             int64  `json:"timemodified"`
}

// Assignments proxies assignment-scoped remote calls.
type Assignments struct {
	client *Client
}

// NewAssignments constructs the assignment proxy.
func NewAssignments(client *Client) Assignments {
	return Assignments{client: client}
}

// CourseAssignments lists the assignments of a course.
func (p Assignments) CourseAssignments(ctx context.Context, courseID uint) ([]Assignment, error) {
	result, err := p.client.Call(ctx, "mod_assign_get_assignments", Params{
		"courseids": []uint{courseID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch course assignments: %w", err)
	}

	assignments := []Assignment{}
	if err := decodeAt(result, "courses.0.assignments", &assignments); err != nil {
		return nil, fmt.Errorf("failed to fetch course assignments: %w", err)
	}

	return assignments, nil
}

// AssignmentByID fetches one assignment, or nil when the remote omits it.
func (p Assignments) AssignmentByID(ctx context.Context, assignmentID uint) (*Assignment, error) {
	result, err := p.client.Call(ctx, "mod_assign_get_assignments", Params{
		"assignmentids": []uint{assignmentID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignment: %w", err)
	}

	assignments := []Assignment{}
	if err := decodeAt(result, "assignments", &assignments); err != nil {
		return nil, fmt.Errorf("failed to fetch assignment: %w", err)
	}

	if len(assignments) == 0 {
		return nil, nil
	}

	return &assignments[0], nil
}

// Submissions lists all submissions for an assignment.
func (p Assignments) Submissions(ctx context.Context, assignmentID uint) (json.RawMessage, error) {
	result, err := p.client.Call(ctx, "mod_assign_get_submissions", Params{
		"assignmentids": []uint{assignmentID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submissions: %w", err)
	}

	return rawOrEmptyArray(result, "assignments.0.submissions"), nil
}

// UserSubmission fetches the latest submission of one user.
func (p Assignments) UserSubmission(ctx context.Context, assignmentID, moodleUserID uint) (json.RawMessage, error) {
	result, err := p.client.Call(ctx, "mod_assign_get_submission_status", Params{
		"assignid": assignmentID,
		"userid":   moodleUserID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user submission: %w", err)
	}

	return rawOrNull(result, "lastattempt.submission"), nil
}

// SubmitOnlineText saves an online-text submission for the assignment.
func (p Assignments) SubmitOnlineText(ctx context.Context, assignmentID uint, text string) (json.RawMessage, error) {
	result, err := p.client.Call(ctx, "mod_assign_save_submission", Params{
		"assignmentid": assignmentID,
		"plugindata": Params{
			"onlinetext_editor": Params{
				"text":   text,
				"format": 1,
				"itemid": 0,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit assignment: %w", err)
	}

	return rawOrNull(result, ""), nil
}

// SaveGrade records a grade and feedback for one submission.
func (p Assignments) SaveGrade(ctx context.Context, assignmentID, moodleUserID uint, grade float64, feedback string) (json.RawMessage, error) {
	result, err := p.client.Call(ctx, "mod_assign_save_grade", Params{
		"assignmentid":  assignmentID,
		"userid":        moodleUserID,
		"grade":         grade,
		"attemptnumber": -1,
		"addattempt":    0,
		"workflowstate": "",
		"applytoall":    0,
		"plugindata": Params{
			"assignfeedbackcomments_editor": Params{
				"text":   feedback,
				"format": 1,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save grade: %w", err)
	}

	return rawOrNull(result, ""), nil
}

// Grades lists the recorded grades for an assignment.
func (p Assignments) Grades(ctx context.Context, assignmentID uint) (json.RawMessage, error) {
	result, err := p.client.Call(ctx, "mod_assign_get_grades", Params{
		"assignmentids": []uint{assignmentID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch grades: %w", err)
	}

	return rawOrEmptyArray(result, "assignments.0.grades"), nil
}
