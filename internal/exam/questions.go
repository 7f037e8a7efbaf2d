package exam

import (
	"context"
	"time"

	"github.com/pscapp/psc/internal/api"
)

// AnswerOption is one choice of a question.
type AnswerOption struct {
	ID           int    `json:"id"`
	AnswerTextEN string `json:"answer_text_en"`
	AnswerTextNP string `json:"answer_text_np"`
	IsCorrect    bool   `json:"is_correct"`
	DisplayOrder int    `json:"display_order"`
}

// Question is a bank question with its options.
type Question struct {
	ID                  int            `json:"id"`
	QuestionTextEN      string         `json:"question_text_en"`
	QuestionTextNP      string         `json:"question_text_np"`
	Category            int            `json:"category"`
	CategoryName        string         `json:"category_name"`
	DifficultyLevel     string         `json:"difficulty_level"`
	QuestionType        string         `json:"question_type"`
	ExplanationEN       *string        `json:"explanation_en"`
	ExplanationNP       *string        `json:"explanation_np"`
	Image               *string        `json:"image"`
	Status              string         `json:"status"`
	CreatedBy           *int           `json:"created_by"`
	CreatedByName       string         `json:"created_by_name"`
	IsPublic            bool           `json:"is_public"`
	ConsentGiven        bool           `json:"consent_given"`
	ScheduledPublicDate *time.Time     `json:"scheduled_public_date"`
	SourceReference     *string        `json:"source_reference"`
	TimesAttempted      int            `json:"times_attempted"`
	TimesCorrect        int            `json:"times_correct"`
	Answers             []AnswerOption `json:"answers"`
	CreatedAt           time.Time      `json:"created_at"`
}

// Text returns the localized question text.
func (q Question) Text(lang Language) string {
	return localized(lang, q.QuestionTextEN, q.QuestionTextNP)
}

// QuestionReport is a user report against a question.
type QuestionReport struct {
	ID          int       `json:"id"`
	Question    int       `json:"question"`
	ReportedBy  int       `json:"reported_by"`
	Reason      string    `json:"reason"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// AnswerCreate is an option inside QuestionCreate.
type AnswerCreate struct {
	AnswerTextEN string `json:"answer_text_en"`
	AnswerTextNP string `json:"answer_text_np,omitempty"`
	IsCorrect    bool   `json:"is_correct"`
	DisplayOrder int    `json:"display_order,omitempty"`
}

// QuestionCreate is the payload for contributing a question.
type QuestionCreate struct {
	QuestionTextEN  string         `json:"question_text_en"`
	QuestionTextNP  string         `json:"question_text_np,omitempty"`
	Category        int            `json:"category"`
	DifficultyLevel string         `json:"difficulty_level"`
	QuestionType    string         `json:"question_type"`
	ExplanationEN   *string        `json:"explanation_en,omitempty"`
	ExplanationNP   *string        `json:"explanation_np,omitempty"`
	Image           *string        `json:"image,omitempty"`
	ConsentGiven    bool           `json:"consent_given,omitempty"`
	SourceReference *string        `json:"source_reference,omitempty"`
	Answers         []AnswerCreate `json:"answers,omitempty"`
}

// QuestionUpdate is a partial QuestionCreate.
type QuestionUpdate struct {
	QuestionTextEN  *string        `json:"question_text_en,omitempty"`
	QuestionTextNP  *string        `json:"question_text_np,omitempty"`
	Category        *int           `json:"category,omitempty"`
	DifficultyLevel *string        `json:"difficulty_level,omitempty"`
	QuestionType    *string        `json:"question_type,omitempty"`
	ExplanationEN   *string        `json:"explanation_en,omitempty"`
	ExplanationNP   *string        `json:"explanation_np,omitempty"`
	SourceReference *string        `json:"source_reference,omitempty"`
	Answers         []AnswerCreate `json:"answers,omitempty"`
}

// ReportCreate flags a question.
type ReportCreate struct {
	Question    int    `json:"question"`
	Reason      string `json:"reason"`
	Description string `json:"description,omitempty"`
}

// QuestionListParams filters ListQuestions.
type QuestionListParams struct {
	Page            int
	Category        int
	DifficultyLevel string
	QuestionType    string
	Search          string
	Ordering        string
}

func (c *Client) ListQuestions(ctx context.Context, p QuestionListParams) (*api.Page[Question], error) {
	return list[Question](ctx, c, api.PathQuestions, api.Query{
		"page":             p.Page,
		"category":         p.Category,
		"difficulty_level": p.DifficultyLevel,
		"question_type":    p.QuestionType,
		"search":           p.Search,
		"ordering":         p.Ordering,
	})
}

func (c *Client) GetQuestion(ctx context.Context, id int) (*Question, error) {
	return one[Question](ctx, c, api.Get(api.QuestionPath(id)))
}

func (c *Client) CreateQuestion(ctx context.Context, in QuestionCreate) (*Question, error) {
	return one[Question](ctx, c, api.Post(api.PathQuestions, in))
}

func (c *Client) UpdateQuestion(ctx context.Context, id int, in QuestionUpdate) (*Question, error) {
	return one[Question](ctx, c, api.Patch(api.QuestionPath(id), in))
}

func (c *Client) DeleteQuestion(ctx context.Context, id int) error {
	return c.doer.Do(ctx, api.Delete(api.QuestionPath(id)), nil)
}

func (c *Client) ReportQuestion(ctx context.Context, in ReportCreate) (*QuestionReport, error) {
	return one[QuestionReport](ctx, c, api.Post(api.PathReports, in))
}
