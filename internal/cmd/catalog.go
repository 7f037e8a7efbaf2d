package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/pscapp/psc/internal/exam"
	"github.com/pscapp/psc/internal/ux"
)

var branchesCmd = &cobra.Command{
	Use:   "branches",
	Short: "List exam branches",
	RunE:  runBranches,
}

var subBranchesCmd = &cobra.Command{
	Use:   "sub-branches",
	Short: "List sub-branches, optionally of one branch",
	RunE:  runSubBranches,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List question categories",
	Long: `List question categories.

Examples:
  # Categories shared by every branch
  psc categories --scope UNIVERSAL

  # Categories that apply to branch 2
  psc categories --branch 2
`,
	RunE: runCategories,
}

func init() {
	addPageFlags(branchesCmd)

	addPageFlags(subBranchesCmd)
	subBranchesCmd.Flags().Int("branch", 0, "only sub-branches of this branch")

	addPageFlags(categoriesCmd)
	categoriesCmd.Flags().String("scope", "", "scope: UNIVERSAL, BRANCH or SUB_BRANCH")
	categoriesCmd.Flags().Int("branch", 0, "target branch")
	categoriesCmd.Flags().Int("sub-branch", 0, "target sub-branch")
	categoriesCmd.Flags().String("search", "", "search term")

	rootCmd.AddCommand(branchesCmd)
	rootCmd.AddCommand(subBranchesCmd)
	rootCmd.AddCommand(categoriesCmd)
}

func runBranches(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	page, err := a.exam.ListBranches(cmd.Context(), exam.BranchListParams{Page: pageFlag(cmd)})
	if err != nil {
		return ux.FormatError(err, "listing branches")
	}
	return a.list(cmd, "Branches", page, branchesView(page, a.lang()))
}

func runSubBranches(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	branch, _ := cmd.Flags().GetInt("branch")
	page, err := a.exam.ListSubBranches(cmd.Context(), exam.SubBranchListParams{Branch: branch, Page: pageFlag(cmd)})
	if err != nil {
		return ux.FormatError(err, "listing sub-branches")
	}
	return a.list(cmd, "Sub-branches", page, subBranchesView(page, a.lang()))
}

func runCategories(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	scope, _ := cmd.Flags().GetString("scope")
	branch, _ := cmd.Flags().GetInt("branch")
	subBranch, _ := cmd.Flags().GetInt("sub-branch")
	search, _ := cmd.Flags().GetString("search")

	page, err := a.exam.ListCategories(cmd.Context(), exam.CategoryListParams{
		ScopeType:       strings.ToUpper(scope),
		TargetBranch:    branch,
		TargetSubBranch: subBranch,
		Search:          search,
		Page:            pageFlag(cmd),
	})
	if err != nil {
		return ux.FormatError(err, "listing categories")
	}
	return a.list(cmd, "Categories", page, categoriesView(page, a.lang()))
}
