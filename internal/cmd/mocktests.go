package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/pscapp/psc/internal/api"
	"github.com/pscapp/psc/internal/exam"
	"github.com/pscapp/psc/internal/ux"
)

var mockTestsCmd = &cobra.Command{
	Use:     "mocktests",
	Aliases: []string{"mock-tests"},
	Short:   "Browse and generate mock tests",
}

var mockTestsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List mock tests",
	RunE:  runMockTestsList,
}

var mockTestsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a mock test and its questions",
	Args:  cobra.ExactArgs(1),
	RunE:  runMockTestsShow,
}

var mockTestsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Assemble a custom mock test",
	Long: `Ask the backend to assemble a custom mock test from the question bank.

Examples:
  psc mocktests generate --branch 2 --questions 50 --minutes 45
  psc mocktests generate --category 5 --category 7 --title "Weekend drill"
`,
	RunE: runMockTestsGenerate,
}

var mockTestsDurationsCmd = &cobra.Command{
	Use:   "durations",
	Short: "List the standard durations per branch and category",
	RunE:  runMockTestsDurations,
}

func init() {
	addPageFlags(mockTestsListCmd)
	mockTestsListCmd.Flags().Int("branch", 0, "only tests for this branch")
	mockTestsListCmd.Flags().Int("sub-branch", 0, "only tests for this sub-branch")
	mockTestsListCmd.Flags().String("type", "", "OFFICIAL, COMMUNITY or CUSTOM")
	mockTestsListCmd.Flags().String("search", "", "search term")

	f := mockTestsGenerateCmd.Flags()
	f.String("title", "", "title of the generated test")
	f.Int("branch", 0, "branch to draw questions from")
	f.Int("sub-branch", 0, "sub-branch to draw questions from")
	f.IntSlice("category", nil, "categories to draw questions from (repeatable)")
	f.Int("questions", 0, "number of questions")
	f.Int("minutes", 0, "duration in minutes")

	addPageFlags(mockTestsDurationsCmd)

	mockTestsCmd.AddCommand(mockTestsListCmd)
	mockTestsCmd.AddCommand(mockTestsShowCmd)
	mockTestsCmd.AddCommand(mockTestsGenerateCmd)
	mockTestsCmd.AddCommand(mockTestsDurationsCmd)

	rootCmd.AddCommand(mockTestsCmd)
}

func runMockTestsList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	f := cmd.Flags()
	branch, _ := f.GetInt("branch")
	subBranch, _ := f.GetInt("sub-branch")
	testType, _ := f.GetString("type")
	search, _ := f.GetString("search")

	page, err := a.exam.ListMockTests(cmd.Context(), exam.MockTestListParams{
		Page:      pageFlag(cmd),
		Branch:    branch,
		SubBranch: subBranch,
		TestType:  strings.ToUpper(testType),
		Search:    search,
	})
	if err != nil {
		return ux.FormatError(err, "listing mock tests")
	}
	return a.list(cmd, "Mock tests", page, mockTestsView(page, a.lang()))
}

func runMockTestsShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "mock test")
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	m, err := a.exam.GetMockTest(cmd.Context(), id)
	if err != nil {
		return ux.FormatError(err, "loading mock test")
	}
	if err := present(m, "loading mock test"); err != nil {
		return err
	}
	return a.render(m, mockTestView(m, a.lang()))
}

func optionalInt(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}

func runMockTestsGenerate(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	title, _ := f.GetString("title")
	categories, _ := f.GetIntSlice("category")
	questions, _ := f.GetInt("questions")
	minutes, _ := f.GetInt("minutes")

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	m, err := a.exam.GenerateMockTest(cmd.Context(), exam.GenerateMockTestRequest{
		TitleEN:         title,
		Branch:          optionalInt(cmd, "branch"),
		SubBranch:       optionalInt(cmd, "sub-branch"),
		Categories:      categories,
		TotalQuestions:  questions,
		DurationMinutes: minutes,
	})
	if err != nil {
		return ux.FormatError(err, "generating mock test")
	}
	if err := present(m, "generating mock test"); err != nil {
		return err
	}
	return a.render(m, mockTestView(m, a.lang()))
}

func timeConfigsView(page *api.Page[exam.TimeConfiguration]) ux.Tabular {
	return pageTable(page, []string{"ID", "Branch", "Sub-branch", "Category", "Minutes", "Questions"}, func(t exam.TimeConfiguration) []string {
		return []string{
			itoa(t.ID),
			optInt(t.Branch),
			optInt(t.SubBranch),
			optInt(t.Category),
			itoa(t.StandardDurationMinutes),
			itoa(t.QuestionsCount),
		}
	})
}

func runMockTestsDurations(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	page, err := a.exam.ListTimeConfigs(cmd.Context(), pageFlag(cmd))
	if err != nil {
		return ux.FormatError(err, "listing durations")
	}
	return a.list(cmd, "Standard durations", page, timeConfigsView(page))
}
