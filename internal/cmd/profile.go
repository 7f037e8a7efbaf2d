package cmd

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pscapp/psc/internal/exam"
	"github.com/pscapp/psc/internal/ux"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or edit your profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the signed-in profile",
	RunE:  runProfileShow,
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update profile fields or the profile picture",
	Long: `Update the fields given as flags. Fields that are not given are left unchanged.

Examples:
  psc profile update --full-name "Sita Sharma" --language NP
  psc profile update --target-branch 2 --picture ./me.jpg
`,
	RunE: runProfileUpdate,
}

func init() {
	f := profileUpdateCmd.Flags()
	f.String("full-name", "", "display name")
	f.String("phone", "", "phone number")
	f.String("language", "", "preferred content language: EN or NP")
	f.Int("target-branch", 0, "branch you are preparing for")
	f.Int("target-sub-branch", 0, "sub-branch you are preparing for")
	f.String("picture", "", "path to an image to upload as profile picture")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileUpdateCmd)

	rootCmd.AddCommand(profileCmd)
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	p, err := a.exam.CurrentProfile(cmd.Context(), "")
	if err != nil {
		return ux.FormatError(err, "loading profile")
	}
	if err := present(p, "loading profile"); err != nil {
		return err
	}
	return a.render(p, profileView(p))
}

// profileUpdate collects the flags that were set.
func profileUpdate(cmd *cobra.Command) (exam.ProfileUpdate, error) {
	var in exam.ProfileUpdate
	f := cmd.Flags()

	if f.Changed("full-name") {
		v, _ := f.GetString("full-name")
		in.FullName = &v
	}
	if f.Changed("phone") {
		v, _ := f.GetString("phone")
		in.PhoneNumber = &v
	}
	if f.Changed("language") {
		v, _ := f.GetString("language")
		lang := exam.Language(strings.ToUpper(v))
		if lang != exam.LanguageEnglish && lang != exam.LanguageNepali {
			return in, fmt.Errorf("invalid argument %q for --language: must be EN or NP", v)
		}
		in.PreferredLanguage = &lang
	}
	if f.Changed("target-branch") {
		v, _ := f.GetInt("target-branch")
		in.TargetBranch = &v
	}
	if f.Changed("target-sub-branch") {
		v, _ := f.GetInt("target-sub-branch")
		in.TargetSubBranch = &v
	}
	return in, nil
}

func readPicture(path string) (exam.Picture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return exam.Picture{}, ux.FormatError(err, "reading picture")
	}

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return exam.Picture{Filename: filepath.Base(path), ContentType: contentType, Data: data}, nil
}

func runProfileUpdate(cmd *cobra.Command, args []string) error {
	in, err := profileUpdate(cmd)
	if err != nil {
		return err
	}
	picture, _ := cmd.Flags().GetString("picture")
	if in == (exam.ProfileUpdate{}) && picture == "" {
		return fmt.Errorf("nothing to update: pass at least one field flag or --picture")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	var p *exam.Profile
	if picture != "" {
		pic, err := readPicture(picture)
		if err != nil {
			return err
		}
		p, err = a.exam.UploadProfilePicture(cmd.Context(), pic, in)
		if err != nil {
			return ux.FormatError(err, "uploading profile picture")
		}
	} else {
		p, err = a.exam.UpdateProfile(cmd.Context(), in)
		if err != nil {
			return ux.FormatError(err, "updating profile")
		}
	}

	// Reload so the session reflects fields the backend derives on save.
	a.session.RefreshUser(cmd.Context())
	if u := a.session.State().User; u != nil {
		p = u
	}

	if p == nil {
		return a.done("Profile updated")
	}
	return a.render(p, profileView(p))
}
