package cmd

import (
	"fmt"
	"os"

	"github.com/foomo/docsite-mcp/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries what PersistentPreRunE prepared for the sub commands
type app struct {
	settings config.Settings
	l        *zap.Logger
}

// NewRootCmd creates the docsite command with all sub commands
func NewRootCmd() *cobra.Command {
	a := &app{l: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "docsite",
		Short: "Documentation site navigation config tools",
		Long: `docsite loads the navigation config of a documentation site (title, nav,
sidebar, social links), validates its links and serves it to MCP clients.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			l, err := newLogger(settings.Debug)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			a.settings = settings
			a.l = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.l.Sync()
		},
	}
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newValidateCmd(a),
		newPrintCmd(a),
		newServeCmd(a),
	)
	return rootCmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger logs JSON to stderr, or to the console with debug on. stdout stays
// free for the MCP stdio transport.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
