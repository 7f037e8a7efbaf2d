package exam

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pscapp/psc/internal/api"
)

// UserAnswer is one recorded answer inside an attempt.
type UserAnswer struct {
	ID                 int       `json:"id"`
	UserAttempt        int       `json:"user_attempt"`
	Question           int       `json:"question"`
	QuestionText       string    `json:"question_text,omitempty"`
	SelectedAnswer     *int      `json:"selected_answer"`
	SelectedAnswerText string    `json:"selected_answer_text,omitempty"`
	CorrectAnswerText  string    `json:"correct_answer_text,omitempty"`
	IsCorrect          bool      `json:"is_correct"`
	TimeTakenSeconds   int       `json:"time_taken_seconds"`
	IsSkipped          bool      `json:"is_skipped"`
	IsMarkedForReview  bool      `json:"is_marked_for_review"`
	CreatedAt          time.Time `json:"created_at"`
}

// AnswerSubmit records an answer. A nil SelectedAnswer with IsSkipped set
// skips the question.
type AnswerSubmit struct {
	UserAttempt       int  `json:"user_attempt"`
	Question          int  `json:"question"`
	SelectedAnswer    *int `json:"selected_answer"`
	TimeTakenSeconds  int  `json:"time_taken_seconds"`
	IsSkipped         bool `json:"is_skipped"`
	IsMarkedForReview bool `json:"is_marked_for_review"`
}

// MockTestSummary is the short form of a mock test embedded in results.
type MockTestSummary struct {
	ID              int     `json:"id"`
	TitleEN         string  `json:"title_en"`
	TitleNP         string  `json:"title_np,omitempty"`
	PassPercentage  float64 `json:"pass_percentage"`
	DurationMinutes int     `json:"duration_minutes"`
	TotalQuestions  int     `json:"total_questions"`
}

// MockTestRef is either a bare id or an embedded summary, depending on
// the endpoint.
type MockTestRef struct {
	ID      int
	Summary *MockTestSummary
}

// UnmarshalJSON accepts a number, an object or null.
func (r *MockTestRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*r = MockTestRef{}
		return nil
	case len(data) > 0 && data[0] == '{':
		var s MockTestSummary
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = MockTestRef{ID: s.ID, Summary: &s}
		return nil
	default:
		var id int
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("mock_test: expected id or object: %w", err)
		}
		*r = MockTestRef{ID: id}
		return nil
	}
}

// MarshalJSON writes the summary when known, the id otherwise.
func (r MockTestRef) MarshalJSON() ([]byte, error) {
	if r.Summary != nil {
		return json.Marshal(r.Summary)
	}
	return json.Marshal(r.ID)
}

// UserAttempt is one run through a mock test or practice session.
type UserAttempt struct {
	ID             int          `json:"id"`
	User           int          `json:"user"`
	MockTest       MockTestRef  `json:"mock_test"`
	MockTestTitle  string       `json:"mock_test_title"`
	StartTime      *time.Time   `json:"start_time"`
	EndTime        *time.Time   `json:"end_time"`
	TotalTimeTaken *int         `json:"total_time_taken"`
	ScoreObtained  *float64     `json:"score_obtained"`
	TotalScore     *float64     `json:"total_score"`
	Percentage     *float64     `json:"percentage"`
	Status         string       `json:"status"`
	Mode           string       `json:"mode"`
	UserAnswers    []UserAnswer `json:"user_answers"`
	CreatedAt      time.Time    `json:"created_at"`
}

// StartAttemptRequest opens an attempt. Mode is MOCK_TEST or PRACTICE.
type StartAttemptRequest struct {
	MockTestID int    `json:"mock_test_id,omitempty"`
	Mode       string `json:"mode,omitempty"`
}

// AttemptListParams filters ListAttempts.
type AttemptListParams struct {
	Page   int
	Status string
	Mode   string
}

func (c *Client) StartAttempt(ctx context.Context, in StartAttemptRequest) (*UserAttempt, error) {
	return one[UserAttempt](ctx, c, api.Post(api.PathAttemptStart, in))
}

func (c *Client) GetAttempt(ctx context.Context, id int) (*UserAttempt, error) {
	return one[UserAttempt](ctx, c, api.Get(api.AttemptPath(id)))
}

func (c *Client) SubmitAttempt(ctx context.Context, id int) (*UserAttempt, error) {
	return one[UserAttempt](ctx, c, api.Post(api.AttemptSubmitPath(id), nil))
}

func (c *Client) AttemptResults(ctx context.Context, id int) (*UserAttempt, error) {
	return one[UserAttempt](ctx, c, api.Get(api.AttemptResultsPath(id)))
}

func (c *Client) ListAttempts(ctx context.Context, p AttemptListParams) (*api.Page[UserAttempt], error) {
	return list[UserAttempt](ctx, c, api.PathAttempts, api.Query{
		"page":   p.Page,
		"status": p.Status,
		"mode":   p.Mode,
	})
}

func (c *Client) SubmitAnswer(ctx context.Context, in AnswerSubmit) (*UserAnswer, error) {
	return one[UserAnswer](ctx, c, api.Post(api.PathAnswers, in))
}

// UpdateAnswer changes a recorded answer, e.g. to toggle review marking.
func (c *Client) UpdateAnswer(ctx context.Context, id int, in AnswerSubmit) (*UserAnswer, error) {
	return one[UserAnswer](ctx, c, api.Patch(api.AnswerPath(id), in))
}
