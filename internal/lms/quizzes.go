package lms

import (
	"context"
	"encoding/json"
	"fmt"
)

// Quiz mirrors the subset of the remote quiz record the gateway exposes.
type Quiz struct {
	ID           uint    `json:"id"`
	Course       uint    `json:"course"`
	CourseModule uint    `json:"coursemodule"`
	Name         string  `json:"name"`
	Intro        string  `json:"intro,omitempty"`
	TimeOpen     int64   `json:"timeopen,omitempty"`
	TimeClose    int64   `json:"timeclose,omitempty"`
	TimeLimit    int64   `json:"timelimit,omitempty"`
	Attempts     int     `json:"attempts,omitempty"`
	GradeMethod  int     `json:"grademethod,omitempty"`
	SumGrades    float64 `json:"sumgrades,omitempty"`
	Grade        float64 `json:"grade,omitempty"`
}

// QuizAttempt is one attempt of a quiz by a user.
type QuizAttempt struct {
	ID          uint    `json:"id"`
	Quiz        uint    `json:"quiz"`
	UserID      uint    `json:"userid"`
	Attempt     int     `json:"attempt"`
	Layout      string  `json:"layout"`
	CurrentPage int     `json:"currentpage"`
	State       string  `json:"state"`
	TimeStart   int64   `json:"timestart"`
	TimeFinish  int64   `json:"timefinish"`
	SumGrades   float64 `json:"sumgrades"`
}

// AttemptAnswer is one submitted form field of a quiz attempt page.
type AttemptAnswer struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Quizzes proxies quiz-scoped remote calls.
type Quizzes struct {
	client *Client
}

// NewQuizzes constructs the quiz proxy.
func NewQuizzes(client *Client) Quizzes {
	return Quizzes{client: client}
}

// CourseQuizzes lists the quizzes of a course.
func (p Quizzes) CourseQuizzes(ctx context.Context, courseID uint) ([]Quiz, error) {
	result, err := p.client.Call(ctx, "mod_quiz_get_quizzes_by_courses", Params{
		"courseids": []uint{courseID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch course quizzes: %w", err)
	}

	quizzes := []Quiz{}
	if err := decodeAt(result, "quizzes", &quizzes); err != nil {
		return nil, fmt.Errorf("failed to fetch course quizzes: %w", err)
	}

	return quizzes, nil
}

// QuizByID fetches one quiz, or nil when the remote omits it.
func (p Quizzes) QuizByID(ctx context.Context, quizID uint) (*Quiz, error) {
	result, err := p.client.Call(ctx, "mod_quiz_get_quizzes_by_courses", Params{
		"quizids": []uint{quizID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quiz: %w", err)
	}

	quizzes := []Quiz{}
	if err := decodeAt(result, "quizzes", &quizzes); err != nil {
		return nil, fmt.Errorf("failed to fetch quiz: %w", err)
	}

	if len(quizzes) == 0 {
		return nil, nil
	}

	return &quizzes[0], nil
}

// UserAttempts lists the attempts of one user for a quiz.
func (p Quizzes) UserAttempts(ctx context.Context, quizID, moodleUserID uint) ([]QuizAttempt, error) {
	result, err := p.client.Call(ctx, "mod_quiz_get_user_attempts", Params{
		"quizid": quizID,
		"userid": moodleUserID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user attempts: %w", err)
	}

	attempts := []QuizAttempt{}
	if err := decodeAt(result, "attempts", &attempts); err != nil {
		return nil, fmt.Errorf("failed to fetch user attempts: %w", err)
	}

	return attempts, nil
}

// UserBestGrade fetches the best recorded grade of one user for a quiz.
func (p Quizzes) UserBestGrade(ctx context.Context, quizID, moodleUserID uint) (json.RawMessage, error) {
	result, err := p.client.Call(ctx, "mod_quiz_get_user_best_grade", Params{
		"quizid": quizID,
		"userid": moodleUserID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user best grade: %w", err)
	}

	return rawOrNull(result, ""), nil
}

// StartAttempt begins a new quiz attempt.
func (p Quizzes) StartAttempt(ctx context.Context, quizID uint, forceNew bool) (json.RawMessage, error) {
	params := Params{"quizid": quizID}
	if forceNew {
		params["forcenew"] = 1
	}

	result, err := p.client.Call(ctx, "mod_quiz_start_attempt", params)
	if err != nil {
		return nil, fmt.Errorf("failed to start quiz attempt: %w", err)
	}

	return rawOrNull(result, ""), nil
}

// AttemptData fetches the question data for one attempt page.
func (p Quizzes) AttemptData(ctx context.Context, attemptID uint, page int) (json.RawMessage, error) {
	result, err := p.client.Call(ctx, "mod_quiz_get_attempt_data", Params{
		"attemptid": attemptID,
		"page":      page,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attempt data: %w", err)
	}

	return rawOrNull(result, ""), nil
}

// ProcessAttempt submits page answers for an in-progress attempt.
func (p Quizzes) ProcessAttempt(ctx context.Context, attemptID uint, answers []AttemptAnswer, finish bool) (json.RawMessage, error) {
	data := make([]interface{}, 0, len(answers))
	for _, answer := range answers {
		data = append(data, Params{"name": answer.Name, "value": answer.Value})
	}

	result, err := p.client.Call(ctx, "mod_quiz_process_attempt", Params{
		"attemptid":     attemptID,
		"data":          data,
		"finishattempt": finish,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to process attempt: %w", err)
	}

	return rawOrNull(result, ""), nil
}

// AttemptReview fetches the post-submission review of an attempt.
func (p Quizzes) AttemptReview(ctx context.Context, attemptID uint) (json.RawMessage, error) {
	result, err := p.client.Call(ctx, "mod_quiz_get_attempt_review", Params{
		"attemptid": attemptID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attempt review: %w", err)
	}

	return rawOrNull(result, ""), nil
}

// FeedbackForGrade fetches the combined feedback configured for a grade.
func (p Quizzes) FeedbackForGrade(ctx context.Context, quizID uint, grade float64) (json.RawMessage, error) {
	result, err := p.client.Call(ctx, "mod_quiz_get_quiz_feedback_for_grade", Params{
		"quizid": quizID,
		"grade":  grade,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quiz feedback: %w", err)
	}

	return rawOrNull(result, ""), nil
}
