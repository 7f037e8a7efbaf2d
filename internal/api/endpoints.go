package api

import (
	"fmt"
	"net/url"
)

// Backend paths. Function forms fill in identifiers.
const (
	PathAuthUser         = "/api/auth/user/"
	PathAuthDevLogin     = "/api/auth/dev-login/"
	PathAuthLogin        = "/api/auth/login/"
	PathAuthLogout       = "/api/auth/logout/"
	PathAuthRegistration = "/api/auth/registration/"
	PathAuthGoogle       = "/api/auth/google/"
	PathTokenObtainPair  = "/token/"
	PathTokenRefresh     = "/token/refresh/"
	PathTokenBlacklist   = "/token/blacklist/"

	PathBranches    = "/api/branches/"
	PathSubBranches = "/api/sub-branches/"
	PathCategories  = "/api/categories/"

	PathQuestions = "/api/questions/"
	PathReports   = "/api/reports/"

	PathMockTests        = "/api/mock-tests/"
	PathMockTestGenerate = "/api/mock-tests/generate/"

	PathAttempts     = "/api/attempts/"
	PathAttemptStart = "/api/attempts/start/"

	PathAnswers = "/api/answers/"

	PathContributions = "/api/contributions/"
	PathDailyActivity = "/api/daily-activity/"

	PathPlatformStats = "/api/platform-stats/"
	PathStatistics    = "/api/statistics/"
	PathStatisticsMe  = "/api/statistics/me/"
	PathProgress      = "/api/progress/"
	PathCollections   = "/api/collections/"
	PathLeaderboard   = "/api/leaderboard/"

	PathNotifications        = "/api/notifications/"
	PathNotificationsReadAll = "/api/notifications/read-all/"
	PathNotificationsUnread  = "/api/notifications/unread/"

	PathSettings    = "/api/settings/"
	PathTimeConfigs = "/api/time-configs/"

	// PathSchema serves the backend's OpenAPI document.
	PathSchema = "/schema/?format=json"
)

func AttemptPath(id any) string        { return fmt.Sprintf("/api/attempts/%v/", id) }
func AttemptSubmitPath(id any) string  { return fmt.Sprintf("/api/attempts/%v/submit/", id) }
func AttemptResultsPath(id any) string { return fmt.Sprintf("/api/attempts/%v/results/", id) }
func AnswerPath(id any) string         { return fmt.Sprintf("/api/answers/%v/", id) }
func QuestionPath(id any) string       { return fmt.Sprintf("/api/questions/%v/", id) }
func MockTestPath(id any) string       { return fmt.Sprintf("/api/mock-tests/%v/", id) }
func NotificationReadPath(id any) string {
	return fmt.Sprintf("/api/notifications/%v/read/", id)
}

// SettingPath escapes key as a single path segment.
func SettingPath(key string) string {
	return PathSettings + url.PathEscape(key) + "/"
}

// Endpoint is one operation the client relies on, in OpenAPI path form.
type Endpoint struct {
	Name   string
	Method string
	Path   string
}

// Catalog lists every operation the client calls.
var Catalog = []Endpoint{
	{"auth.user", "GET", PathAuthUser},
	{"auth.user.update", "PATCH", PathAuthUser},
	{"auth.dev_login", "POST", PathAuthDevLogin},
	{"auth.login", "POST", PathAuthLogin},
	{"auth.logout", "POST", PathAuthLogout},
	{"auth.registration", "POST", PathAuthRegistration},
	{"auth.google", "POST", PathAuthGoogle},
	{"token.obtain", "POST", PathTokenObtainPair},
	{"token.refresh", "POST", PathTokenRefresh},
	{"token.blacklist", "POST", PathTokenBlacklist},

	{"branches.list", "GET", PathBranches},
	{"sub_branches.list", "GET", PathSubBranches},
	{"categories.list", "GET", PathCategories},

	{"questions.list", "GET", PathQuestions},
	{"questions.create", "POST", PathQuestions},
	{"questions.detail", "GET", "/api/questions/{id}/"},
	{"questions.update", "PATCH", "/api/questions/{id}/"},
	{"questions.delete", "DELETE", "/api/questions/{id}/"},
	{"reports.create", "POST", PathReports},

	{"mock_tests.list", "GET", PathMockTests},
	{"mock_tests.detail", "GET", "/api/mock-tests/{id}/"},
	{"mock_tests.generate", "POST", PathMockTestGenerate},

	{"attempts.list", "GET", PathAttempts},
	{"attempts.start", "POST", PathAttemptStart},
	{"attempts.detail", "GET", "/api/attempts/{id}/"},
	{"attempts.submit", "POST", "/api/attempts/{id}/submit/"},
	{"attempts.results", "GET", "/api/attempts/{id}/results/"},

	{"answers.create", "POST", PathAnswers},
	{"answers.update", "PATCH", "/api/answers/{id}/"},

	{"contributions.list", "GET", PathContributions},
	{"daily_activity.list", "GET", PathDailyActivity},

	{"stats.platform", "GET", PathPlatformStats},
	{"stats.statistics", "GET", PathStatistics},
	{"stats.me", "GET", PathStatisticsMe},
	{"stats.progress", "GET", PathProgress},
	{"stats.collections", "GET", PathCollections},
	{"stats.leaderboard", "GET", PathLeaderboard},

	{"notifications.list", "GET", PathNotifications},
	{"notifications.read", "POST", "/api/notifications/{id}/read/"},
	{"notifications.read_all", "POST", PathNotificationsReadAll},
	{"notifications.unread", "GET", PathNotificationsUnread},

	{"settings.list", "GET", PathSettings},
	{"settings.detail", "GET", "/api/settings/{key}/"},
	{"time_configs.list", "GET", PathTimeConfigs},
}
