package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pscapp/psc/internal/exam"
	"github.com/pscapp/psc/internal/ux"
)

var attemptsCmd = &cobra.Command{
	Use:   "attempts",
	Short: "Start, follow and submit test attempts",
	Long: `Work through a mock test or a practice session.

Examples:
  # Start mock test 12, answer, then submit
  psc attempts start --mock-test 12
  psc answers submit --attempt 40 --question 301 --option 1204
  psc attempts submit 40
  psc attempts results 40
`,
}

var attemptsStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start an attempt",
	RunE:  runAttemptsStart,
}

var attemptsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an attempt",
	Args:  cobra.ExactArgs(1),
	RunE:  runAttemptsShow,
}

var attemptsSubmitCmd = &cobra.Command{
	Use:   "submit <id>",
	Short: "Finish an attempt and have it scored",
	Args:  cobra.ExactArgs(1),
	RunE:  runAttemptsSubmit,
}

var attemptsResultsCmd = &cobra.Command{
	Use:   "results <id>",
	Short: "Show the scored results of an attempt",
	Args:  cobra.ExactArgs(1),
	RunE:  runAttemptsResults,
}

var attemptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your attempts",
	RunE:  runAttemptsList,
}

var answersCmd = &cobra.Command{
	Use:   "answers",
	Short: "Record answers inside an attempt",
}

var answersSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Record the answer to one question",
	RunE:  runAnswersSubmit,
}

var answersUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a recorded answer",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnswersUpdate,
}

func init() {
	attemptsStartCmd.Flags().Int("mock-test", 0, "mock test to attempt")
	attemptsStartCmd.Flags().String("mode", "MOCK_TEST", "MOCK_TEST or PRACTICE")

	addPageFlags(attemptsListCmd)
	attemptsListCmd.Flags().String("status", "", "IN_PROGRESS, COMPLETED or ABANDONED")
	attemptsListCmd.Flags().String("mode", "", "MOCK_TEST or PRACTICE")

	for _, c := range []*cobra.Command{answersSubmitCmd, answersUpdateCmd} {
		c.Flags().Int("attempt", 0, "attempt the answer belongs to")
		c.Flags().Int("question", 0, "question being answered")
		c.Flags().Int("option", 0, "id of the chosen answer option")
		c.Flags().Bool("skip", false, "skip the question")
		c.Flags().Bool("review", false, "mark the question for review")
		c.Flags().Int("seconds", 0, "time spent on the question")
	}
	_ = answersSubmitCmd.MarkFlagRequired("attempt")
	_ = answersSubmitCmd.MarkFlagRequired("question")

	attemptsCmd.AddCommand(attemptsStartCmd)
	attemptsCmd.AddCommand(attemptsShowCmd)
	attemptsCmd.AddCommand(attemptsSubmitCmd)
	attemptsCmd.AddCommand(attemptsResultsCmd)
	attemptsCmd.AddCommand(attemptsListCmd)

	answersCmd.AddCommand(answersSubmitCmd)
	answersCmd.AddCommand(answersUpdateCmd)

	rootCmd.AddCommand(attemptsCmd)
	rootCmd.AddCommand(answersCmd)
}

// authedApp builds the app for commands that need a session.
func authedApp(cmd *cobra.Command) (*app, error) {
	a, err := newApp(cmd)
	if err != nil {
		return nil, err
	}
	if err := a.requireAuth(); err != nil {
		return nil, err
	}
	return a, nil
}

func runAttemptsStart(cmd *cobra.Command, args []string) error {
	mockTest, _ := cmd.Flags().GetInt("mock-test")
	mode, _ := cmd.Flags().GetString("mode")
	mode = strings.ToUpper(mode)
	if mode == "MOCK_TEST" && mockTest == 0 {
		return fmt.Errorf("--mock-test is required in MOCK_TEST mode")
	}

	a, err := authedApp(cmd)
	if err != nil {
		return err
	}

	attempt, err := a.exam.StartAttempt(cmd.Context(), exam.StartAttemptRequest{MockTestID: mockTest, Mode: mode})
	if err != nil {
		return ux.FormatError(err, "starting attempt")
	}
	if err := present(attempt, "starting attempt"); err != nil {
		return err
	}
	return a.render(attempt, attemptView(attempt))
}

// attemptByID runs one of the single-attempt calls for the id in args.
func attemptByID(cmd *cobra.Command, args []string, action string, call func(*exam.Client, *cobra.Command, int) (*exam.UserAttempt, error)) error {
	id, err := parseID(args[0], "attempt")
	if err != nil {
		return err
	}

	a, err := authedApp(cmd)
	if err != nil {
		return err
	}

	attempt, err := call(a.exam, cmd, id)
	if err != nil {
		return ux.FormatError(err, action)
	}
	if err := present(attempt, action); err != nil {
		return err
	}
	return a.render(attempt, attemptView(attempt))
}

func runAttemptsShow(cmd *cobra.Command, args []string) error {
	return attemptByID(cmd, args, "loading attempt", func(c *exam.Client, cmd *cobra.Command, id int) (*exam.UserAttempt, error) {
		return c.GetAttempt(cmd.Context(), id)
	})
}

func runAttemptsSubmit(cmd *cobra.Command, args []string) error {
	return attemptByID(cmd, args, "submitting attempt", func(c *exam.Client, cmd *cobra.Command, id int) (*exam.UserAttempt, error) {
		return c.SubmitAttempt(cmd.Context(), id)
	})
}

func runAttemptsResults(cmd *cobra.Command, args []string) error {
	return attemptByID(cmd, args, "loading results", func(c *exam.Client, cmd *cobra.Command, id int) (*exam.UserAttempt, error) {
		return c.AttemptResults(cmd.Context(), id)
	})
}

func runAttemptsList(cmd *cobra.Command, args []string) error {
	a, err := authedApp(cmd)
	if err != nil {
		return err
	}

	status, _ := cmd.Flags().GetString("status")
	mode, _ := cmd.Flags().GetString("mode")

	page, err := a.exam.ListAttempts(cmd.Context(), exam.AttemptListParams{
		Page:   pageFlag(cmd),
		Status: strings.ToUpper(status),
		Mode:   strings.ToUpper(mode),
	})
	if err != nil {
		return ux.FormatError(err, "listing attempts")
	}
	return a.list(cmd, "Attempts", page, attemptsView(page))
}

func answerFlags(cmd *cobra.Command) (exam.AnswerSubmit, error) {
	f := cmd.Flags()
	attempt, _ := f.GetInt("attempt")
	question, _ := f.GetInt("question")
	skip, _ := f.GetBool("skip")
	review, _ := f.GetBool("review")
	seconds, _ := f.GetInt("seconds")

	in := exam.AnswerSubmit{
		UserAttempt:       attempt,
		Question:          question,
		SelectedAnswer:    optionalInt(cmd, "option"),
		TimeTakenSeconds:  seconds,
		IsSkipped:         skip,
		IsMarkedForReview: review,
	}
	if in.SelectedAnswer != nil && skip {
		return in, fmt.Errorf("--option and --skip cannot be used together")
	}
	return in, nil
}

func runAnswersSubmit(cmd *cobra.Command, args []string) error {
	in, err := answerFlags(cmd)
	if err != nil {
		return err
	}
	if in.SelectedAnswer == nil && !in.IsSkipped {
		return fmt.Errorf("one of --option or --skip is required")
	}

	a, err := authedApp(cmd)
	if err != nil {
		return err
	}

	answer, err := a.exam.SubmitAnswer(cmd.Context(), in)
	if err != nil {
		return ux.FormatError(err, "submitting answer")
	}
	if err := present(answer, "submitting answer"); err != nil {
		return err
	}
	return a.render(answer, answerView(answer))
}

func runAnswersUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "answer")
	if err != nil {
		return err
	}
	in, err := answerFlags(cmd)
	if err != nil {
		return err
	}

	a, err := authedApp(cmd)
	if err != nil {
		return err
	}

	answer, err := a.exam.UpdateAnswer(cmd.Context(), id, in)
	if err != nil {
		return ux.FormatError(err, "updating answer")
	}
	if err := present(answer, "updating answer"); err != nil {
		return err
	}
	return a.render(answer, answerView(answer))
}
