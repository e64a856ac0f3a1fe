package cli

import (
	"fmt"

	"github.com/sadopc/pomo/internal/export"
	"github.com/sadopc/pomo/internal/store"
	"github.com/spf13/cobra"
)

func newExportCmd(o *options) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the session log as CSV or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			s, err := o.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			sessions, err := s.ListSessions(store.SessionFilter{})
			if err != nil {
				return err
			}
			tasks, err := s.ListTasks(true)
			if err != nil {
				return err
			}
			index := export.TaskIndex(tasks)

			if out == "" || out == "-" {
				return export.Write(f, cmd.OutOrStdout(), sessions, index)
			}
			if err := export.ToFile(f, sessions, index, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d sessions to %s\n", len(sessions), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "Output format: csv, json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}
