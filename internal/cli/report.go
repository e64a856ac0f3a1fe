package cli

import (
	"fmt"
	"time"

	"github.com/sadopc/pomo/internal/report"
	"github.com/sadopc/pomo/internal/store"
	"github.com/spf13/cobra"
)

func newReportCmd(o *options) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the daily Pomodoro report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}
			s, err := o.openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			return printReport(cmd, s, days, time.Now())
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "Number of days to show")
	return cmd
}

func printReport(cmd *cobra.Command, s *store.Store, n int, now time.Time) error {
	sessions, err := s.ListSessions(store.SessionFilter{})
	if err != nil {
		return err
	}
	tasks, err := s.ListTasks(true)
	if err != nil {
		return err
	}

	days := report.Daily(sessions, tasks, now.Location())
	window := report.LastDays(days, n, now)
	sum := report.Summarize(window, nil, 0)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-12s %9s %8s %8s %6s %5s\n", "Day", "Pomodoros", "Focus", "Total", "Tasks", "Goal")
	for i := len(window) - 1; i >= 0; i-- {
		d := window[i]
		fmt.Fprintf(out, "%-12s %9d %8s %8s %6d %4d%%\n",
			report.DateLabel(d.Date, now),
			d.CompletedWork,
			report.FormatMinutes(d.FocusMinutes),
			report.FormatMinutes(d.TotalMinutes),
			d.CompletedTasks,
			d.GoalPercent(),
		)
	}
	fmt.Fprintf(out, "\n%d pomodoros, %s focus over %d active days (last %d)\n",
		sum.WorkSessions, report.FormatMinutes(sum.FocusMinutes), sum.ActiveDays, n)
	return nil
}
