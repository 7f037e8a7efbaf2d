package exam

import (
	"context"
	"net/http"
	"time"

	"github.com/pscapp/psc/internal/api"
)

// Language is a content language code.
type Language string

const (
	LanguageEnglish Language = "EN"
	LanguageNepali  Language = "NP"
)

// Profile is the authenticated user's profile.
type Profile struct {
	ID                 int       `json:"id"`
	FullName           string    `json:"full_name"`
	Email              string    `json:"email"`
	PhoneNumber        *string   `json:"phone_number"`
	PreferredLanguage  Language  `json:"preferred_language"`
	TargetBranch       *int      `json:"target_branch"`
	TargetSubBranch    *int      `json:"target_sub_branch"`
	BranchName         string    `json:"branch_name,omitempty"`
	SubBranchName      string    `json:"sub_branch_name,omitempty"`
	ExperiencePoints   int       `json:"experience_points"`
	Level              int       `json:"level"`
	TotalContributions int       `json:"total_contributions"`
	ProfilePicture     *string   `json:"profile_picture"`
	IsActive           bool      `json:"is_active"`
	DateJoined         time.Time `json:"date_joined"`
}

// ProfileUpdate holds the editable fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	FullName          *string   `json:"full_name,omitempty"`
	PhoneNumber       *string   `json:"phone_number,omitempty"`
	PreferredLanguage *Language `json:"preferred_language,omitempty"`
	TargetBranch      *int      `json:"target_branch,omitempty"`
	TargetSubBranch   *int      `json:"target_sub_branch,omitempty"`
}

// Picture is an image upload.
type Picture struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CurrentProfile fetches the signed-in profile. An empty token uses the
// stored credential and allows refresh; a non-empty token is sent as is.
func (c *Client) CurrentProfile(ctx context.Context, token string) (*Profile, error) {
	return one[Profile](ctx, c, &api.Request{Method: http.MethodGet, Path: api.PathAuthUser, Token: token})
}

// UpdateProfile patches the profile with a JSON body.
func (c *Client) UpdateProfile(ctx context.Context, in ProfileUpdate) (*Profile, error) {
	return one[Profile](ctx, c, api.Patch(api.PathAuthUser, in))
}

// UploadProfilePicture patches the profile as multipart form data with the
// picture plus any scalar fields, coerced to strings.
func (c *Client) UploadProfilePicture(ctx context.Context, pic Picture, in ProfileUpdate) (*Profile, error) {
	form := api.NewForm().
		Set("full_name", in.FullName).
		Set("phone_number", in.PhoneNumber).
		Set("target_branch", in.TargetBranch).
		Set("target_sub_branch", in.TargetSubBranch)
	if in.PreferredLanguage != nil {
		form.Set("preferred_language", string(*in.PreferredLanguage))
	}
	form.AddFile(api.FormFile{
		Field:       "profile_picture",
		Filename:    pic.Filename,
		ContentType: pic.ContentType,
		Data:        pic.Data,
	})

	return one[Profile](ctx, c, &api.Request{Method: http.MethodPatch, Path: api.PathAuthUser, Form: form})
}
