package cmd

import (
	"github.com/foomo/docsite-mcp/siteconfig"
	"github.com/spf13/cobra"
)

func newPrintCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "print",
		Short: "Print the site config as JSON for the site generator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadSite(cmd.Context(), a.l, a.settings, nil)
			if err != nil {
				return err
			}
			return siteconfig.Encode(cmd.OutOrStdout(), c)
		},
	}
}
