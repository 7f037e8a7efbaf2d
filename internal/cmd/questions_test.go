package cmd

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscapp/psc/internal/api"
	"github.com/pscapp/psc/internal/exam"
	"github.com/pscapp/psc/internal/exitcode"
)

var sampleQuestion = map[string]any{
	"id":               12,
	"question_text_en": "Capital of Nepal?",
	"question_text_np": "नेपालको राजधानी?",
	"category":         5,
	"category_name":    "Geography",
	"difficulty_level": "EASY",
	"question_type":    "MCQ",
	"status":           "PUBLIC",
	"answers": []map[string]any{
		{"id": 1, "answer_text_en": "Kathmandu", "is_correct": true, "display_order": 1},
		{"id": 2, "answer_text_en": "Pokhara", "is_correct": false, "display_order": 2},
	},
}

func TestQuestionsList(t *testing.T) {
	e := newTestEnv(t)
	next := e.server.URL + api.PathQuestions + "?page=3"
	e.server.JSON(http.MethodGet, api.PathQuestions, http.StatusOK, map[string]any{
		"count":   41,
		"next":    next,
		"results": []any{sampleQuestion},
	})

	out, err := e.run("questions", "list", "--category", "5", "--difficulty", "easy", "--page", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "Capital of Nepal?")
	assert.Contains(t, out, "Geography")
	assert.Contains(t, out, "1 of 41 (use --page for more)")
	assert.Equal(t, "category=5&difficulty_level=EASY&page=2", e.server.Last().Query)
}

func TestQuestionsList_Nepali(t *testing.T) {
	e := newTestEnv(t)
	e.server.JSON(http.MethodGet, api.PathQuestions, http.StatusOK, map[string]any{
		"count":   1,
		"results": []any{sampleQuestion},
	})

	out, err := e.run("questions", "list", "--lang", "NP")
	require.NoError(t, err)
	assert.Contains(t, out, "नेपालको राजधानी?")
	assert.Empty(t, e.server.Last().Query)
}

func TestQuestionsShow_JSON(t *testing.T) {
	e := newTestEnv(t)
	e.server.JSON(http.MethodGet, "/api/questions/{id}/", http.StatusOK, sampleQuestion)

	out, err := e.run("questions", "show", "12", "--format", "json")
	require.NoError(t, err)

	var q exam.Question
	require.NoError(t, json.Unmarshal([]byte(out), &q))
	assert.Equal(t, 12, q.ID)
	require.Len(t, q.Answers, 2)
	assert.True(t, q.Answers[0].IsCorrect)
	assert.Equal(t, "/api/questions/12/", e.server.Last().Path)
}

func TestQuestionsShow_NotFound(t *testing.T) {
	e := newTestEnv(t)
	e.server.JSON(http.MethodGet, "/api/questions/{id}/", http.StatusNotFound, map[string]any{"detail": "Not found."})

	_, err := e.run("questions", "show", "99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Not found.")
	assert.Equal(t, exitcode.NotFound, exitcode.DetermineExitCode(err))
}

func TestQuestionsShow_InvalidID(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.run("questions", "show", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid argument")
	assert.Equal(t, exitcode.UsageError, exitcode.DetermineExitCode(err))
	assert.Empty(t, e.server.Requests())
}

func TestQuestionsCreate_FromFlags(t *testing.T) {
	e := newTestEnv(t)
	e.signIn("T1", "R1")
	e.server.JSON(http.MethodPost, api.PathQuestions, http.StatusCreated, sampleQuestion)

	_, err := e.run("questions", "create",
		"--category", "5",
		"--text", "Capital of Nepal?",
		"--option", "Kathmandu",
		"--option", "Pokhara, the lake city",
		"--correct", "1",
		"--explanation", "Kathmandu is the capital.",
	)
	require.NoError(t, err)

	last := e.server.Last()
	assert.Equal(t, "Bearer T1", last.Authorization())

	var body exam.QuestionCreate
	require.NoError(t, last.JSON(&body))
	assert.Equal(t, "Capital of Nepal?", body.QuestionTextEN)
	assert.Equal(t, 5, body.Category)
	assert.Equal(t, "MCQ", body.QuestionType)
	require.NotNil(t, body.ExplanationEN)
	require.Len(t, body.Answers, 2)
	assert.True(t, body.Answers[0].IsCorrect)
	assert.False(t, body.Answers[1].IsCorrect)
	assert.Equal(t, "Pokhara, the lake city", body.Answers[1].AnswerTextEN)
	assert.Equal(t, 2, body.Answers[1].DisplayOrder)
}

func TestQuestionsCreate_FromFile(t *testing.T) {
	e := newTestEnv(t)
	e.signIn("T1", "R1")
	e.server.JSON(http.MethodPost, api.PathQuestions, http.StatusCreated, sampleQuestion)

	path := filepath.Join(t.TempDir(), "question.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`question_text_en: Capital of Nepal?
category: 5
difficulty_level: EASY
question_type: MCQ
answers:
  - answer_text_en: Kathmandu
    is_correct: true
    display_order: 1
  - answer_text_en: Pokhara
    display_order: 2
`), 0o600))

	_, err := e.run("questions", "create", "--file", path)
	require.NoError(t, err)

	var body exam.QuestionCreate
	require.NoError(t, e.server.Last().JSON(&body))
	assert.Equal(t, "EASY", body.DifficultyLevel)
	require.Len(t, body.Answers, 2)
	assert.True(t, body.Answers[0].IsCorrect)
}

func TestQuestionsCreate_Validation(t *testing.T) {
	e := newTestEnv(t)
	e.signIn("T1", "R1")

	_, err := e.run("questions", "create", "--text", "No category")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--category")

	_, err = e.run("questions", "create", "--category", "5", "--text", "x", "--option", "a", "--correct", "3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "between 1 and 1")

	_, err = e.run("questions", "create", "--file", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	assert.Empty(t, e.server.Requests())
}

func TestQuestionsCreate_RequiresLogin(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.run("questions", "create", "--category", "5", "--text", "x")
	require.Error(t, err)
	assert.Equal(t, exitcode.AuthError, exitcode.DetermineExitCode(err))
	assert.Empty(t, e.server.Requests())
}

func TestQuestionsDelete(t *testing.T) {
	e := newTestEnv(t)
	e.signIn("T1", "R1")
	e.server.JSON(http.MethodDelete, "/api/questions/{id}/", http.StatusNoContent, nil)

	_, err := e.run("questions", "delete", "12")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without --yes")
	assert.Empty(t, e.server.Requests())

	out, err := e.run("questions", "delete", "12", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted question 12")
	assert.Equal(t, 1, e.server.Count(http.MethodDelete, "/api/questions/12/"))
}

func TestQuestionsReport(t *testing.T) {
	e := newTestEnv(t)
	e.signIn("T1", "R1")
	e.server.JSON(http.MethodPost, api.PathReports, http.StatusCreated, map[string]any{
		"id": 3, "question": 12, "reason": "TYPO", "status": "PENDING",
	})

	_, err := e.run("questions", "report", "12", "--reason", "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be one of")
	assert.Empty(t, e.server.Requests())

	out, err := e.run("questions", "report", "12", "--reason", "typo", "--description", "misspelled")
	require.NoError(t, err)
	assert.Contains(t, out, "Reported question 12 (TYPO)")

	var body map[string]any
	require.NoError(t, e.server.Last().JSON(&body))
	assert.Equal(t, float64(12), body["question"])
	assert.Equal(t, "TYPO", body["reason"])
	assert.Equal(t, "misspelled", body["description"])
}
