package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sadopc/pomo/internal/store"
	"github.com/spf13/cobra"
)

func newSettingsCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change timer settings",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print every setting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			return printSettings(cmd, s)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key=value>...",
		Short: "Change one or more settings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			for _, arg := range args {
				k, v, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("expected key=value, got %q", arg)
				}
				k = strings.TrimSpace(k)
				if !slices.Contains(store.SettingKeys, k) {
					return fmt.Errorf("unknown setting %q (one of %s)", k, strings.Join(store.SettingKeys, ", "))
				}
				if err := s.UpdateSetting(k, strings.TrimSpace(v)); err != nil {
					return err
				}
			}
			return printSettings(cmd, s)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.ResetSettings(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Settings reset to defaults")
			return nil
		},
	})
	return cmd
}

func printSettings(cmd *cobra.Command, s *store.Store) error {
	all, err := s.GetAllSettings()
	if err != nil {
		return err
	}
	values := make(map[string]string, len(all))
	for _, st := range all {
		values[st.Key] = st.Value
	}
	out := cmd.OutOrStdout()
	for _, k := range store.SettingKeys {
		fmt.Fprintf(out, "%-20s %s\n", k, values[k])
	}
	return nil
}
