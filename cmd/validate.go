package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/foomo/docsite-mcp/service"
	"github.com/foomo/docsite-mcp/siteconfig"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type validateResult struct {
	Valid    bool                 `json:"valid"`
	Findings []siteconfig.Finding `json:"findings"`
}

func newValidateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the links and icons of the site config",
		Long: `validate checks that every nav and sidebar link is an external URL or a
root-relative path and that every social icon is known. With --content-dir internal
links must resolve to a markdown page, with --probe and --base-url they must answer 200.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := loadSite(ctx, a.l, a.settings, nil)
			if err != nil {
				return err
			}

			svc := service.NewService(a.l, c, siteSettings(a.settings), nil)
			findings, err := svc.Validate(ctx)
			if err != nil {
				return err
			}
			if a.settings.Probe {
				probed, err := svc.ProbeLinks(ctx)
				if err != nil {
					return err
				}
				findings = append(findings, probed...)
			}
			a.l.Debug("validate finished", zap.Int("findings", len(findings)))

			if err := writeFindings(cmd.OutOrStdout(), findings, a.settings.JSON); err != nil {
				return err
			}
			if a.settings.Strict {
				return siteconfig.Err(findings)
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print findings as JSON")
	cmd.Flags().Bool("strict", false, "exit non-zero when there are findings")
	cmd.Flags().Bool("probe", false, "request every internal link from --base-url")
	return cmd
}

func writeFindings(w io.Writer, findings []siteconfig.Finding, asJSON bool) error {
	if asJSON {
		if findings == nil {
			findings = []siteconfig.Finding{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(validateResult{Valid: len(findings) == 0, Findings: findings})
	}
	if len(findings) == 0 {
		_, err := fmt.Fprintln(w, "site config is valid")
		return err
	}
	for _, f := range findings {
		if _, err := fmt.Fprintln(w, f.String()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d finding(s)\n", len(findings))
	return err
}
