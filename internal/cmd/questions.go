package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pscapp/psc/internal/errors"
	"github.com/pscapp/psc/internal/exam"
	"github.com/pscapp/psc/internal/tui"
	"github.com/pscapp/psc/internal/ux"
)

// Report reasons accepted by the backend.
var reportReasons = []string{"INCORRECT_ANSWER", "TYPO", "INAPPROPRIATE", "DUPLICATE", "OTHER"}

var questionsCmd = &cobra.Command{
	Use:     "questions",
	Aliases: []string{"q"},
	Short:   "Browse, contribute and report questions",
}

var questionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List questions",
	Long: `List questions from the question bank.

Examples:
  psc questions list --category 5 --search constitution
  psc questions list --difficulty HARD --format json
`,
	RunE: runQuestionsList,
}

var questionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a question with its options",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuestionsShow,
}

var questionsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Contribute a question",
	Long: `Contribute a question, either from flags or from a YAML or JSON file whose
keys match the API fields (question_text_en, category, answers, ...).

Examples:
  psc questions create --category 5 --text "Capital of Nepal?" \
    --option Kathmandu --option Pokhara --correct 1

  psc questions create --file question.yaml
`,
	RunE: runQuestionsCreate,
}

var questionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a question you contributed",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuestionsDelete,
}

var questionsReportCmd = &cobra.Command{
	Use:   "report <id>",
	Short: "Report a problem with a question",
	Long:  `Report a problem with a question. --reason is one of ` + strings.Join(reportReasons, ", ") + `.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runQuestionsReport,
}

func init() {
	addPageFlags(questionsListCmd)
	questionsListCmd.Flags().Int("category", 0, "only questions in this category")
	questionsListCmd.Flags().String("difficulty", "", "EASY, MEDIUM or HARD")
	questionsListCmd.Flags().String("type", "", "question type, e.g. MCQ")
	questionsListCmd.Flags().String("search", "", "search term")
	questionsListCmd.Flags().String("ordering", "", "sort field, prefix with - to reverse")

	f := questionsCreateCmd.Flags()
	f.String("file", "", "YAML or JSON file with the question")
	f.Int("category", 0, "category id")
	f.String("text", "", "question text in English")
	f.String("text-np", "", "question text in Nepali")
	f.String("difficulty", "", "EASY, MEDIUM or HARD")
	f.String("type", "MCQ", "question type")
	f.StringArray("option", nil, "answer option in English (repeatable, in display order)")
	f.Int("correct", 0, "1-based position of the correct option")
	f.String("explanation", "", "explanation of the correct answer")
	f.Bool("consent", false, "allow the question to be made public")

	questionsDeleteCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")

	questionsReportCmd.Flags().String("reason", "", "report reason")
	questionsReportCmd.Flags().String("description", "", "what is wrong")
	_ = questionsReportCmd.MarkFlagRequired("reason")

	questionsCmd.AddCommand(questionsListCmd)
	questionsCmd.AddCommand(questionsShowCmd)
	questionsCmd.AddCommand(questionsCreateCmd)
	questionsCmd.AddCommand(questionsDeleteCmd)
	questionsCmd.AddCommand(questionsReportCmd)

	rootCmd.AddCommand(questionsCmd)
}

// parseID reads a positive numeric identifier argument.
func parseID(arg, what string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid argument %q: %s id must be a positive number", arg, what)
	}
	return id, nil
}

func runQuestionsList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	f := cmd.Flags()
	category, _ := f.GetInt("category")
	difficulty, _ := f.GetString("difficulty")
	qType, _ := f.GetString("type")
	search, _ := f.GetString("search")
	ordering, _ := f.GetString("ordering")

	page, err := a.exam.ListQuestions(cmd.Context(), exam.QuestionListParams{
		Page:            pageFlag(cmd),
		Category:        category,
		DifficultyLevel: strings.ToUpper(difficulty),
		QuestionType:    qType,
		Search:          search,
		Ordering:        ordering,
	})
	if err != nil {
		return ux.FormatError(err, "listing questions")
	}
	return a.list(cmd, "Questions", page, questionsView(page, a.lang()))
}

func runQuestionsShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "question")
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	q, err := a.exam.GetQuestion(cmd.Context(), id)
	if err != nil {
		return ux.FormatError(err, "loading question")
	}
	if err := present(q, "loading question"); err != nil {
		return err
	}
	return a.render(q, questionView(q, a.lang()))
}

// loadQuestionFile decodes a YAML or JSON document into a QuestionCreate by
// way of its JSON field names.
func loadQuestionFile(path string) (exam.QuestionCreate, error) {
	var in exam.QuestionCreate

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return in, errors.NewFileNotFoundError(path)
		}
		return in, errors.Wrap(errors.ErrCodeFileReadFailed, "failed to read question file", err)
	}

	// YAML is a superset of JSON, so one decoder serves both.
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return in, errors.NewFileUnmarshalError(path, "YAML", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return in, errors.NewFileUnmarshalError(path, "YAML", err)
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return in, errors.NewFileUnmarshalError(path, "question", err)
	}
	return in, nil
}

func questionFromFlags(cmd *cobra.Command) (exam.QuestionCreate, error) {
	f := cmd.Flags()
	category, _ := f.GetInt("category")
	text, _ := f.GetString("text")
	textNP, _ := f.GetString("text-np")
	difficulty, _ := f.GetString("difficulty")
	qType, _ := f.GetString("type")
	options, _ := f.GetStringArray("option")
	correct, _ := f.GetInt("correct")
	explanation, _ := f.GetString("explanation")
	consent, _ := f.GetBool("consent")

	if text == "" || category == 0 {
		return exam.QuestionCreate{}, fmt.Errorf("--text and --category are required unless --file is given")
	}
	if len(options) > 0 && (correct < 1 || correct > len(options)) {
		return exam.QuestionCreate{}, fmt.Errorf("invalid argument for --correct: must be between 1 and %d", len(options))
	}

	in := exam.QuestionCreate{
		QuestionTextEN:  text,
		QuestionTextNP:  textNP,
		Category:        category,
		DifficultyLevel: strings.ToUpper(difficulty),
		QuestionType:    qType,
		ConsentGiven:    consent,
	}
	if explanation != "" {
		in.ExplanationEN = &explanation
	}
	for i, opt := range options {
		in.Answers = append(in.Answers, exam.AnswerCreate{
			AnswerTextEN: opt,
			IsCorrect:    i+1 == correct,
			DisplayOrder: i + 1,
		})
	}
	return in, nil
}

func runQuestionsCreate(cmd *cobra.Command, args []string) error {
	var (
		in  exam.QuestionCreate
		err error
	)
	if file, _ := cmd.Flags().GetString("file"); file != "" {
		in, err = loadQuestionFile(file)
	} else {
		in, err = questionFromFlags(cmd)
	}
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	q, err := a.exam.CreateQuestion(cmd.Context(), in)
	if err != nil {
		return ux.FormatError(err, "creating question")
	}
	if err := present(q, "creating question"); err != nil {
		return err
	}
	return a.render(q, questionView(q, a.lang()))
}

func runQuestionsDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "question")
	if err != nil {
		return err
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		if !tui.ShouldPrompt() {
			return fmt.Errorf("refusing to delete question %d without --yes", id)
		}
		ok, err := tui.PromptForConfirmation(fmt.Sprintf("Delete question %d?", id), false)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("deletion cancelled")
		}
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	if err := a.exam.DeleteQuestion(cmd.Context(), id); err != nil {
		return ux.FormatError(err, "deleting question")
	}
	return a.done("Deleted question %d", id)
}

func validReason(reason string) bool {
	for _, r := range reportReasons {
		if r == reason {
			return true
		}
	}
	return false
}

func runQuestionsReport(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "question")
	if err != nil {
		return err
	}

	reason, _ := cmd.Flags().GetString("reason")
	reason = strings.ToUpper(reason)
	if !validReason(reason) {
		return fmt.Errorf("invalid argument %q for --reason: must be one of %s", reason, strings.Join(reportReasons, ", "))
	}
	description, _ := cmd.Flags().GetString("description")

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	report, err := a.exam.ReportQuestion(cmd.Context(), exam.ReportCreate{Question: id, Reason: reason, Description: description})
	if err != nil {
		return ux.FormatError(err, "reporting question")
	}
	if report == nil || a.cfg.Output.Format == "text" {
		return a.done("Reported question %d (%s)", id, reason)
	}
	return a.render(report, nil)
}
