package exam

import (
	"context"
	"time"

	"github.com/pscapp/psc/internal/api"
)

// LeaderboardEntry is one ranked user. TimePeriod is WEEKLY, MONTHLY or ALL_TIME.
type LeaderboardEntry struct {
	Rank               int     `json:"rank"`
	PreviousRank       *int    `json:"previous_rank"`
	UserName           string  `json:"user_name"`
	ProfilePicture     *string `json:"profile_picture"`
	TotalScore         float64 `json:"total_score"`
	TestsCompleted     int     `json:"tests_completed"`
	AccuracyPercentage float64 `json:"accuracy_percentage"`
	TimePeriod         string  `json:"time_period"`
	Branch             *int    `json:"branch"`
	SubBranch          *int    `json:"sub_branch"`
}

// PlatformStats summarises platform-wide activity.
type PlatformStats struct {
	TotalQuestionsPublic        int       `json:"total_questions_public"`
	TotalQuestionsPending       int       `json:"total_questions_pending"`
	TotalContributionsThisMonth int       `json:"total_contributions_this_month"`
	TotalUsersActive            int       `json:"total_users_active"`
	TotalMockTestsTaken         int       `json:"total_mock_tests_taken"`
	TotalAnswersSubmitted       int       `json:"total_answers_submitted"`
	QuestionsAddedToday         int       `json:"questions_added_today"`
	TopContributorThisMonth     *int      `json:"top_contributor_this_month"`
	TopContributorName          *string   `json:"top_contributor_name"`
	MostAttemptedCategory       *int      `json:"most_attempted_category"`
	MostAttemptedCategoryName   *string   `json:"most_attempted_category_name"`
	LastUpdated                 time.Time `json:"last_updated"`
}

// UserStatistics are the signed-in user's aggregates.
type UserStatistics struct {
	QuestionsContributed  int            `json:"questions_contributed"`
	QuestionsMadePublic   int            `json:"questions_made_public"`
	QuestionsAnswered     int            `json:"questions_answered"`
	CorrectAnswers        int            `json:"correct_answers"`
	TotalCorrectAnswers   int            `json:"total_correct_answers"`
	AccuracyPercentage    float64        `json:"accuracy_percentage"`
	MockTestsCompleted    int            `json:"mock_tests_completed"`
	TestsAttempted        *int           `json:"tests_attempted,omitempty"`
	TestsPassed           *int           `json:"tests_passed,omitempty"`
	StudyStreakDays       int            `json:"study_streak_days"`
	LongestStreak         int            `json:"longest_streak"`
	TotalStudyTime        *int           `json:"total_study_time,omitempty"`
	FeaturedContributions *int           `json:"featured_contributions,omitempty"`
	LastActivityDate      *string        `json:"last_activity_date"`
	BadgesEarned          map[string]any `json:"badges_earned"`
	ContributionRank      *int           `json:"contribution_rank"`
	AccuracyRank          *int           `json:"accuracy_rank"`
	LastUpdated           time.Time      `json:"last_updated"`
}

// UserProgress is per-category performance.
type UserProgress struct {
	ID                 int      `json:"id"`
	Category           int      `json:"category"`
	CategoryName       string   `json:"category_name"`
	QuestionsAttempted int      `json:"questions_attempted"`
	CorrectAnswers     int      `json:"correct_answers"`
	AccuracyPercentage float64  `json:"accuracy_percentage"`
	AverageTimeSeconds float64  `json:"average_time_seconds"`
	LastAttemptedDate  *string  `json:"last_attempted_date"`
	WeakTopics         []string `json:"weak_topics"`
}

// StudyCollection is a user-curated question list.
type StudyCollection struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description"`
	IsPrivate     bool      `json:"is_private"`
	Icon          *string   `json:"icon"`
	ColorCode     *string   `json:"color_code"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// Contribution tracks a contributed question through review.
type Contribution struct {
	ID                int        `json:"id"`
	User              int        `json:"user"`
	UserName          string     `json:"user_name"`
	Question          int        `json:"question"`
	QuestionText      string     `json:"question_text"`
	ContributionMonth int        `json:"contribution_month"`
	ContributionYear  int        `json:"contribution_year"`
	Status            string     `json:"status"`
	IsFeatured        bool       `json:"is_featured"`
	ApprovalDate      *time.Time `json:"approval_date"`
	PublicDate        *time.Time `json:"public_date"`
	RejectionReason   *string    `json:"rejection_reason"`
	CreatedAt         time.Time  `json:"created_at"`
}

// DailyActivity is one day of platform counters. Date is YYYY-MM-DD.
type DailyActivity struct {
	Date                  string    `json:"date"`
	NewUsers              int       `json:"new_users"`
	QuestionsAdded        int       `json:"questions_added"`
	QuestionsApproved     int       `json:"questions_approved"`
	MockTestsTaken        int       `json:"mock_tests_taken"`
	TotalAnswersSubmitted int       `json:"total_answers_submitted"`
	ActiveUsers           int       `json:"active_users"`
	CreatedAt             time.Time `json:"created_at"`
}

// LeaderboardParams filters Leaderboard.
type LeaderboardParams struct {
	TimePeriod string
	Branch     int
	SubBranch  int
	Page       int
}

// ContributionListParams filters ListContributions.
type ContributionListParams struct {
	Page              int
	Status            string
	ContributionYear  int
	ContributionMonth int
}

func (c *Client) Leaderboard(ctx context.Context, p LeaderboardParams) (*api.Page[LeaderboardEntry], error) {
	return list[LeaderboardEntry](ctx, c, api.PathLeaderboard, api.Query{
		"time_period": p.TimePeriod,
		"branch":      p.Branch,
		"sub_branch":  p.SubBranch,
		"page":        p.Page,
	})
}

func (c *Client) PlatformStats(ctx context.Context) (*PlatformStats, error) {
	return one[PlatformStats](ctx, c, api.Get(api.PathPlatformStats))
}

func (c *Client) MyStatistics(ctx context.Context) (*UserStatistics, error) {
	return one[UserStatistics](ctx, c, api.Get(api.PathStatisticsMe))
}

func (c *Client) ListProgress(ctx context.Context, page int) (*api.Page[UserProgress], error) {
	return list[UserProgress](ctx, c, api.PathProgress, api.Query{"page": page})
}

func (c *Client) ListCollections(ctx context.Context, page int) (*api.Page[StudyCollection], error) {
	return list[StudyCollection](ctx, c, api.PathCollections, api.Query{"page": page})
}

func (c *Client) ListContributions(ctx context.Context, p ContributionListParams) (*api.Page[Contribution], error) {
	return list[Contribution](ctx, c, api.PathContributions, api.Query{
		"page":               p.Page,
		"status":             p.Status,
		"contribution_year":  p.ContributionYear,
		"contribution_month": p.ContributionMonth,
	})
}

func (c *Client) ListDailyActivity(ctx context.Context, page int) (*api.Page[DailyActivity], error) {
	return list[DailyActivity](ctx, c, api.PathDailyActivity, api.Query{"page": page})
}

func (c *Client) ListStatistics(ctx context.Context, page int) (*api.Page[UserStatistics], error) {
	return list[UserStatistics](ctx, c, api.PathStatistics, api.Query{"page": page})
}
