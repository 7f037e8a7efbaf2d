package exam

import (
	"context"

	"github.com/pscapp/psc/internal/api"
)

// SubBranch is a specialisation inside a branch.
type SubBranch struct {
	ID            int     `json:"id"`
	Branch        int     `json:"branch"`
	NameEN        string  `json:"name_en"`
	NameNP        string  `json:"name_np"`
	Slug          string  `json:"slug"`
	DescriptionEN *string `json:"description_en"`
	DescriptionNP *string `json:"description_np"`
	Icon          *string `json:"icon"`
	DisplayOrder  int     `json:"display_order"`
	IsActive      bool    `json:"is_active"`
}

// Branch is a top-level exam track.
type Branch struct {
	ID             int         `json:"id"`
	NameEN         string      `json:"name_en"`
	NameNP         string      `json:"name_np"`
	Slug           string      `json:"slug"`
	DescriptionEN  *string     `json:"description_en"`
	DescriptionNP  *string     `json:"description_np"`
	Icon           *string     `json:"icon"`
	HasSubBranches bool        `json:"has_sub_branches"`
	SubBranches    []SubBranch `json:"sub_branches"`
	DisplayOrder   int         `json:"display_order"`
	IsActive       bool        `json:"is_active"`
}

// Category groups questions. ScopeType is UNIVERSAL, BRANCH or SUB_BRANCH.
type Category struct {
	ID                  int     `json:"id"`
	NameEN              string  `json:"name_en"`
	NameNP              string  `json:"name_np"`
	Slug                string  `json:"slug"`
	DescriptionEN       *string `json:"description_en"`
	DescriptionNP       *string `json:"description_np"`
	ScopeType           string  `json:"scope_type"`
	TargetBranch        *int    `json:"target_branch"`
	TargetBranchName    *string `json:"target_branch_name"`
	TargetSubBranch     *int    `json:"target_sub_branch"`
	TargetSubBranchName *string `json:"target_sub_branch_name"`
	CategoryType        string  `json:"category_type"`
	IsPublic            bool    `json:"is_public"`
	CreatedBy           *int    `json:"created_by"`
	Icon                *string `json:"icon"`
	ColorCode           *string `json:"color_code"`
	DisplayOrder        int     `json:"display_order"`
	IsActive            bool    `json:"is_active"`
	QuestionCount       *int    `json:"question_count,omitempty"`
}

// Name returns the localized name.
func (b Branch) Name(lang Language) string { return localized(lang, b.NameEN, b.NameNP) }

// Name returns the localized name.
func (s SubBranch) Name(lang Language) string { return localized(lang, s.NameEN, s.NameNP) }

// Name returns the localized name.
func (c Category) Name(lang Language) string { return localized(lang, c.NameEN, c.NameNP) }

// localized picks the Nepali text when requested and present.
func localized(lang Language, en, np string) string {
	if lang == LanguageNepali && np != "" {
		return np
	}
	return en
}

// BranchListParams filters ListBranches.
type BranchListParams struct {
	Page int
}

// SubBranchListParams filters ListSubBranches.
type SubBranchListParams struct {
	Branch int
	Page   int
}

// CategoryListParams filters ListCategories.
type CategoryListParams struct {
	ScopeType       string
	TargetBranch    int
	TargetSubBranch int
	Search          string
	Page            int
}

func (c *Client) ListBranches(ctx context.Context, p BranchListParams) (*api.Page[Branch], error) {
	return list[Branch](ctx, c, api.PathBranches, api.Query{"page": p.Page})
}

func (c *Client) ListSubBranches(ctx context.Context, p SubBranchListParams) (*api.Page[SubBranch], error) {
	return list[SubBranch](ctx, c, api.PathSubBranches, api.Query{"branch": p.Branch, "page": p.Page})
}

func (c *Client) ListCategories(ctx context.Context, p CategoryListParams) (*api.Page[Category], error) {
	return list[Category](ctx, c, api.PathCategories, api.Query{
		"scope_type":        p.ScopeType,
		"target_branch":     p.TargetBranch,
		"target_sub_branch": p.TargetSubBranch,
		"search":            p.Search,
		"page":              p.Page,
	})
}
