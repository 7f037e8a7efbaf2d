package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pscapp/psc/internal/api"
	"github.com/pscapp/psc/internal/exam"
	"github.com/pscapp/psc/internal/ux"
)

const textWidth = 60

// tableFunc adapts a closure to ux.Tabular.
type tableFunc func() ux.Table

func (f tableFunc) Table() ux.Table { return f() }

// pageTable lays out one result page, one row per item.
func pageTable[T any](page *api.Page[T], headers []string, row func(T) []string) ux.Tabular {
	return tableFunc(func() ux.Table {
		t := ux.Table{Headers: headers, Footer: pageFooter(len(page.Results), page.Count, page.Next != nil)}
		for _, item := range page.Results {
			t.Rows = append(t.Rows, row(item))
		}
		return t
	})
}

func pageFooter(shown, total int, more bool) string {
	if total < shown {
		total = shown
	}
	footer := fmt.Sprintf("%d of %d", shown, total)
	if more {
		footer += " (use --page for more)"
	}
	return footer
}

// field is one line of a detail view.
type field struct {
	name  string
	value string
}

func detailTable(fields ...field) ux.Tabular {
	return tableFunc(func() ux.Table {
		t := ux.Table{Headers: []string{"Field", "Value"}}
		for _, f := range fields {
			t.Rows = append(t.Rows, []string{f.name, f.value})
		}
		return t
	})
}

func itoa(n int) string { return strconv.Itoa(n) }

func optInt(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}

func optString(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func percent(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64) + "%"
}

func optPercent(f *float64) string {
	if f == nil {
		return "-"
	}
	return percent(*f)
}

func optFloat(f *float64) string {
	if f == nil {
		return "-"
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func when(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func optWhen(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return when(*t)
}

func profileView(p *exam.Profile) ux.Tabular {
	return detailTable(
		field{"ID", itoa(p.ID)},
		field{"Name", orDash(p.FullName)},
		field{"Email", p.Email},
		field{"Phone", optString(p.PhoneNumber)},
		field{"Language", string(p.PreferredLanguage)},
		field{"Branch", orDash(p.BranchName)},
		field{"Sub-branch", orDash(p.SubBranchName)},
		field{"Level", itoa(p.Level)},
		field{"Experience", itoa(p.ExperiencePoints)},
		field{"Contributions", itoa(p.TotalContributions)},
		field{"Joined", when(p.DateJoined)},
	)
}

func branchesView(page *api.Page[exam.Branch], lang exam.Language) ux.Tabular {
	return pageTable(page, []string{"ID", "Name", "Slug", "Sub-branches"}, func(b exam.Branch) []string {
		return []string{itoa(b.ID), b.Name(lang), b.Slug, itoa(len(b.SubBranches))}
	})
}

func subBranchesView(page *api.Page[exam.SubBranch], lang exam.Language) ux.Tabular {
	return pageTable(page, []string{"ID", "Branch", "Name", "Slug"}, func(s exam.SubBranch) []string {
		return []string{itoa(s.ID), itoa(s.Branch), s.Name(lang), s.Slug}
	})
}

func categoriesView(page *api.Page[exam.Category], lang exam.Language) ux.Tabular {
	return pageTable(page, []string{"ID", "Name", "Scope", "Type", "Questions"}, func(c exam.Category) []string {
		return []string{itoa(c.ID), c.Name(lang), c.ScopeType, orDash(c.CategoryType), optInt(c.QuestionCount)}
	})
}

func questionsView(page *api.Page[exam.Question], lang exam.Language) ux.Tabular {
	return pageTable(page, []string{"ID", "Question", "Category", "Difficulty", "Status"}, func(q exam.Question) []string {
		return []string{
			itoa(q.ID),
			ux.Truncate(q.Text(lang), textWidth),
			orDash(q.CategoryName),
			orDash(q.DifficultyLevel),
			orDash(q.Status),
		}
	})
}

func questionView(q *exam.Question, lang exam.Language) ux.Tabular {
	fields := []field{
		{"ID", itoa(q.ID)},
		{"Question", q.Text(lang)},
		{"Category", orDash(q.CategoryName)},
		{"Difficulty", orDash(q.DifficultyLevel)},
		{"Type", orDash(q.QuestionType)},
		{"Status", orDash(q.Status)},
	}
	for i, a := range q.Answers {
		text := a.AnswerTextEN
		if lang == exam.LanguageNepali && a.AnswerTextNP != "" {
			text = a.AnswerTextNP
		}
		if a.IsCorrect {
			text += " (correct)"
		}
		fields = append(fields, field{fmt.Sprintf("Option %d [%d]", i+1, a.ID), text})
	}
	explanation := q.ExplanationEN
	if lang == exam.LanguageNepali && q.ExplanationNP != nil && *q.ExplanationNP != "" {
		explanation = q.ExplanationNP
	}
	fields = append(fields,
		field{"Explanation", optString(explanation)},
		field{"Attempted", itoa(q.TimesAttempted)},
		field{"Correct", itoa(q.TimesCorrect)},
	)
	return detailTable(fields...)
}

func mockTestsView(page *api.Page[exam.MockTest], lang exam.Language) ux.Tabular {
	return pageTable(page, []string{"ID", "Title", "Type", "Branch", "Questions", "Minutes", "Pass"}, func(m exam.MockTest) []string {
		return []string{
			itoa(m.ID),
			ux.Truncate(m.Title(lang), textWidth),
			m.TestType,
			orDash(m.BranchName),
			itoa(m.TotalQuestions),
			itoa(m.DurationMinutes),
			percent(m.PassPercentage),
		}
	})
}

func mockTestView(m *exam.MockTest, lang exam.Language) ux.Tabular {
	fields := []field{
		{"ID", itoa(m.ID)},
		{"Title", m.Title(lang)},
		{"Type", m.TestType},
		{"Branch", orDash(m.BranchName)},
		{"Questions", itoa(m.TotalQuestions)},
		{"Minutes", itoa(m.DurationMinutes)},
		{"Pass", percent(m.PassPercentage)},
		{"Attempts", itoa(m.AttemptCount)},
	}
	for _, tq := range m.TestQuestions {
		fields = append(fields, field{
			fmt.Sprintf("Q%d [%d]", tq.QuestionOrder, tq.Question.ID),
			ux.Truncate(tq.Question.Text(lang), textWidth),
		})
	}
	return detailTable(fields...)
}

func attemptTitle(a exam.UserAttempt) string {
	if a.MockTestTitle != "" {
		return a.MockTestTitle
	}
	if a.MockTest.Summary != nil {
		return a.MockTest.Summary.TitleEN
	}
	if a.MockTest.ID != 0 {
		return "#" + itoa(a.MockTest.ID)
	}
	return "-"
}

func attemptsView(page *api.Page[exam.UserAttempt]) ux.Tabular {
	return pageTable(page, []string{"ID", "Test", "Mode", "Status", "Score", "Percentage", "Started"}, func(a exam.UserAttempt) []string {
		return []string{
			itoa(a.ID),
			ux.Truncate(attemptTitle(a), textWidth),
			orDash(a.Mode),
			a.Status,
			optFloat(a.ScoreObtained),
			optPercent(a.Percentage),
			optWhen(a.StartTime),
		}
	})
}

func attemptView(a *exam.UserAttempt) ux.Tabular {
	answered, correct := 0, 0
	for _, ans := range a.UserAnswers {
		if !ans.IsSkipped {
			answered++
		}
		if ans.IsCorrect {
			correct++
		}
	}
	return detailTable(
		field{"ID", itoa(a.ID)},
		field{"Test", attemptTitle(*a)},
		field{"Mode", orDash(a.Mode)},
		field{"Status", a.Status},
		field{"Started", optWhen(a.StartTime)},
		field{"Finished", optWhen(a.EndTime)},
		field{"Score", optFloat(a.ScoreObtained) + " / " + optFloat(a.TotalScore)},
		field{"Percentage", optPercent(a.Percentage)},
		field{"Answered", itoa(answered)},
		field{"Correct", itoa(correct)},
	)
}

func answerView(a *exam.UserAnswer) ux.Tabular {
	return detailTable(
		field{"ID", itoa(a.ID)},
		field{"Attempt", itoa(a.UserAttempt)},
		field{"Question", itoa(a.Question)},
		field{"Selected", optInt(a.SelectedAnswer)},
		field{"Skipped", yesNo(a.IsSkipped)},
		field{"Review", yesNo(a.IsMarkedForReview)},
		field{"Seconds", itoa(a.TimeTakenSeconds)},
	)
}

func leaderboardView(page *api.Page[exam.LeaderboardEntry]) ux.Tabular {
	return pageTable(page, []string{"Rank", "User", "Score", "Tests", "Accuracy"}, func(e exam.LeaderboardEntry) []string {
		return []string{
			itoa(e.Rank),
			e.UserName,
			strconv.FormatFloat(e.TotalScore, 'f', -1, 64),
			itoa(e.TestsCompleted),
			percent(e.AccuracyPercentage),
		}
	})
}

func notificationsView(page *api.Page[exam.Notification], lang exam.Language) ux.Tabular {
	return pageTable(page, []string{"ID", "Type", "Title", "Read", "Received"}, func(n exam.Notification) []string {
		return []string{itoa(n.ID), n.NotificationType, ux.Truncate(n.Title(lang), textWidth), yesNo(n.IsRead), when(n.CreatedAt)}
	})
}

func contributionsView(page *api.Page[exam.Contribution]) ux.Tabular {
	return pageTable(page, []string{"ID", "Question", "Period", "Status", "Featured"}, func(c exam.Contribution) []string {
		return []string{
			itoa(c.ID),
			ux.Truncate(c.QuestionText, textWidth),
			fmt.Sprintf("%04d-%02d", c.ContributionYear, c.ContributionMonth),
			c.Status,
			yesNo(c.IsFeatured),
		}
	})
}

func progressView(page *api.Page[exam.UserProgress]) ux.Tabular {
	return pageTable(page, []string{"Category", "Attempted", "Correct", "Accuracy", "Avg seconds"}, func(p exam.UserProgress) []string {
		return []string{
			orDash(p.CategoryName),
			itoa(p.QuestionsAttempted),
			itoa(p.CorrectAnswers),
			percent(p.AccuracyPercentage),
			strconv.FormatFloat(p.AverageTimeSeconds, 'f', 1, 64),
		}
	})
}

func platformStatsView(s *exam.PlatformStats) ux.Tabular {
	return detailTable(
		field{"Public questions", itoa(s.TotalQuestionsPublic)},
		field{"Pending questions", itoa(s.TotalQuestionsPending)},
		field{"Added today", itoa(s.QuestionsAddedToday)},
		field{"Contributions this month", itoa(s.TotalContributionsThisMonth)},
		field{"Active users", itoa(s.TotalUsersActive)},
		field{"Mock tests taken", itoa(s.TotalMockTestsTaken)},
		field{"Answers submitted", itoa(s.TotalAnswersSubmitted)},
		field{"Top contributor", optString(s.TopContributorName)},
		field{"Most attempted category", optString(s.MostAttemptedCategoryName)},
		field{"Updated", when(s.LastUpdated)},
	)
}

func userStatsView(s *exam.UserStatistics) ux.Tabular {
	return detailTable(
		field{"Questions answered", itoa(s.QuestionsAnswered)},
		field{"Correct answers", itoa(s.CorrectAnswers)},
		field{"Accuracy", percent(s.AccuracyPercentage)},
		field{"Mock tests completed", itoa(s.MockTestsCompleted)},
		field{"Questions contributed", itoa(s.QuestionsContributed)},
		field{"Made public", itoa(s.QuestionsMadePublic)},
		field{"Study streak", itoa(s.StudyStreakDays) + " days"},
		field{"Longest streak", itoa(s.LongestStreak) + " days"},
		field{"Contribution rank", optInt(s.ContributionRank)},
		field{"Accuracy rank", optInt(s.AccuracyRank)},
	)
}

func settingsView(settings []exam.AppSetting) ux.Tabular {
	return tableFunc(func() ux.Table {
		t := ux.Table{Headers: []string{"Key", "Value", "Description"}}
		for _, s := range settings {
			t.Rows = append(t.Rows, []string{s.SettingKey, ux.Truncate(s.SettingValue, textWidth), optString(s.Description)})
		}
		return t
	})
}
