// Package cli wires the pomo command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/sadopc/pomo/internal/config"
	"github.com/sadopc/pomo/internal/store"
	"github.com/spf13/cobra"
)

// options is shared by every command in one invocation.
type options struct {
	dbPath string
}

func newRootCmd(version string) *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:   "pomo",
		Short: "pomo - a terminal Pomodoro timer",
		Long: `pomo is a Pomodoro timer for the terminal.

Run without arguments to start the interactive timer. The subcommands
manage tasks, settings, reports and exports without opening the UI.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(cmd, o)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	root.PersistentFlags().StringVar(&o.dbPath, "db", "", "Database path (default $POMO_DB or the user config dir)")

	root.AddCommand(newReportCmd(o))
	root.AddCommand(newExportCmd(o))
	root.AddCommand(newTaskCmd(o))
	root.AddCommand(newSettingsCmd(o))
	return root
}

// Execute runs the root command
func Execute(version string) error {
	if err := newRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// config resolves the process config; --db wins over the environment.
func (o *options) config() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.dbPath != "" {
		cfg.SetDBPath(o.dbPath)
	}
	return cfg, nil
}

// openStore opens the database for a one-shot command. Unlike the UI there
// is no in-memory fallback: a change that cannot be saved is an error.
func (o *options) openStore() (*store.Store, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	s, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	return s, nil
}
