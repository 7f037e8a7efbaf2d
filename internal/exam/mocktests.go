package exam

import (
	"context"
	"time"

	"github.com/pscapp/psc/internal/api"
)

// MockTestQuestion places a question inside a mock test.
type MockTestQuestion struct {
	ID             int      `json:"id"`
	Question       Question `json:"question"`
	QuestionOrder  int      `json:"question_order"`
	MarksAllocated float64  `json:"marks_allocated"`
}

// MockTest is a timed set of questions. TestType is OFFICIAL, COMMUNITY or CUSTOM.
type MockTest struct {
	ID                  int                `json:"id"`
	TitleEN             string             `json:"title_en"`
	TitleNP             string             `json:"title_np"`
	Slug                string             `json:"slug"`
	DescriptionEN       *string            `json:"description_en"`
	DescriptionNP       *string            `json:"description_np"`
	TestType            string             `json:"test_type"`
	Branch              *int               `json:"branch"`
	BranchName          string             `json:"branch_name"`
	SubBranch           *int               `json:"sub_branch"`
	TotalQuestions      int                `json:"total_questions"`
	TotalMarks          *float64           `json:"total_marks,omitempty"`
	DurationMinutes     int                `json:"duration_minutes"`
	UseStandardDuration bool               `json:"use_standard_duration"`
	PassPercentage      float64            `json:"pass_percentage"`
	CreatedBy           *int               `json:"created_by"`
	CreatedByName       string             `json:"created_by_name"`
	IsPublic            bool               `json:"is_public"`
	IsActive            bool               `json:"is_active"`
	AttemptCount        int                `json:"attempt_count"`
	TestQuestions       []MockTestQuestion `json:"test_questions"`
	CreatedAt           time.Time          `json:"created_at"`
}

// Title returns the localized title.
func (m MockTest) Title(lang Language) string {
	return localized(lang, m.TitleEN, m.TitleNP)
}

// MockTestListParams filters ListMockTests.
type MockTestListParams struct {
	Page      int
	Branch    int
	SubBranch int
	TestType  string
	Search    string
}

// GenerateMockTestRequest asks the backend to assemble a custom test.
type GenerateMockTestRequest struct {
	TitleEN         string `json:"title_en,omitempty"`
	Branch          *int   `json:"branch,omitempty"`
	SubBranch       *int   `json:"sub_branch,omitempty"`
	Categories      []int  `json:"categories,omitempty"`
	TotalQuestions  int    `json:"total_questions,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

func (c *Client) ListMockTests(ctx context.Context, p MockTestListParams) (*api.Page[MockTest], error) {
	return list[MockTest](ctx, c, api.PathMockTests, api.Query{
		"page":       p.Page,
		"branch":     p.Branch,
		"sub_branch": p.SubBranch,
		"test_type":  p.TestType,
		"search":     p.Search,
	})
}

func (c *Client) GetMockTest(ctx context.Context, id int) (*MockTest, error) {
	return one[MockTest](ctx, c, api.Get(api.MockTestPath(id)))
}

func (c *Client) GenerateMockTest(ctx context.Context, in GenerateMockTestRequest) (*MockTest, error) {
	return one[MockTest](ctx, c, api.Post(api.PathMockTestGenerate, in))
}

// TimeConfiguration is the standard duration for a scope.
type TimeConfiguration struct {
	ID                      int     `json:"id"`
	Branch                  *int    `json:"branch"`
	SubBranch               *int    `json:"sub_branch"`
	Category                *int    `json:"category"`
	StandardDurationMinutes int     `json:"standard_duration_minutes"`
	QuestionsCount          int     `json:"questions_count"`
	Description             *string `json:"description"`
}

func (c *Client) ListTimeConfigs(ctx context.Context, page int) (*api.Page[TimeConfiguration], error) {
	return list[TimeConfiguration](ctx, c, api.PathTimeConfigs, api.Query{"page": page})
}
