package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pscapp/psc/internal/api"
	"github.com/pscapp/psc/internal/health"
	"github.com/pscapp/psc/internal/schema"
	"github.com/pscapp/psc/internal/ux"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the backend connection, credentials and session",
	Long: `Run the diagnostics psc depends on:

  backend             the backend answers a public endpoint
  stored-credentials  the credentials file can be decrypted
  session             the stored session is still accepted
  api-schema          every endpoint psc calls is in the backend's OpenAPI document

Exits non-zero when any check is unhealthy. Being signed out only
degrades the result.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// DoctorReport is the output of doctor.
type DoctorReport struct {
	BaseURL string         `json:"base_url"`
	Status  health.Status  `json:"status"`
	Checks  []health.Check `json:"checks"`
	Schema  *schema.Report `json:"schema,omitempty"`
}

func (r DoctorReport) Table() ux.Table {
	t := ux.Table{
		Headers: []string{"Check", "Status", "Result"},
		Footer:  "Overall: " + r.Status.String(),
	}
	for _, c := range r.Checks {
		t.Rows = append(t.Rows, []string{c.Name, c.Status.String(), c.Message})
	}
	if r.Schema == nil {
		return t
	}
	for _, f := range r.Schema.Findings {
		t.Rows = append(t.Rows, []string{"  " + f.Endpoint.Name, string(health.StatusUnhealthy), f.Message})
	}
	t.Footer += fmt.Sprintf(" (%s %s: %d paths, %d endpoints checked)",
		orDash(r.Schema.Title), r.Schema.Version, r.Schema.Paths, r.Schema.Checked)
	return t
}

func runDoctor(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	schemaCheck := health.NewSchemaChecker(a.client, api.Catalog)

	manager := health.NewManager().WithTimeout(a.cfg.API.Timeout.Std() + 5*time.Second)
	manager.AddChecker(health.NewBackendChecker(a.client, a.client.BaseURL()))
	manager.AddChecker(health.NewCredentialsChecker(a.file, time.Now))
	manager.AddChecker(health.NewSessionChecker(a.session, a.store))
	manager.AddChecker(schemaCheck)

	report := manager.Run(cmd.Context())
	for _, c := range report.Checks {
		a.logger.Debug("health check", "name", c.Name, "status", c.Status, "latency", c.Latency)
	}

	out := DoctorReport{
		BaseURL: a.client.BaseURL(),
		Status:  report.Status,
		Checks:  report.Checks,
		Schema:  schemaCheck.Report(),
	}
	if err := a.render(out, out); err != nil {
		return err
	}

	failed := report.Failed()
	if len(failed) == 0 {
		return nil
	}
	names := make([]string, len(failed))
	for i, c := range failed {
		names[i] = c.Name
	}
	return fmt.Errorf("%d check(s) failed: %s", len(failed), strings.Join(names, ", "))
}
