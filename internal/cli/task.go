package cli

import (
	"fmt"
	"strings"

	"github.com/sadopc/pomo/internal/store"
	"github.com/spf13/cobra"
)

const shortIDLen = 8

func newTaskCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}
	cmd.AddCommand(newTaskAddCmd(o))
	cmd.AddCommand(newTaskListCmd(o))
	cmd.AddCommand(newTaskDoneCmd(o))
	cmd.AddCommand(newTaskRmCmd(o))
	cmd.AddCommand(newTaskActiveCmd(o))
	return cmd
}

func newTaskAddCmd(o *options) *cobra.Command {
	var estimate int
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			s, err := o.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			t, err := s.CreateTask(title, estimate)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s\n", shortID(t.ID), t.Title)
			return nil
		},
	}
	cmd.Flags().IntVarP(&estimate, "estimate", "e", 1, "Estimated pomodoros")
	return cmd
}

func newTaskListCmd(o *options) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List open tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			tasks, err := s.ListTasks(all)
			if err != nil {
				return err
			}
			active, err := s.ActiveTask()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				fmt.Fprintln(out, "No tasks.")
				return nil
			}
			for _, t := range tasks {
				check := "[ ]"
				if t.Completed {
					check = "[x]"
				}
				mark := " "
				if t.ID == active {
					mark = "*"
				}
				fmt.Fprintf(out, "%s %s %s %-36s %d/%d\n", mark, shortID(t.ID), check, t.Title, t.Actual, t.Estimated)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include completed tasks")
	return cmd
}

func newTaskDoneCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task complete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			t, err := findTask(s, args[0])
			if err != nil {
				return err
			}
			t, err = s.ToggleTaskComplete(t.ID)
			if err != nil {
				return err
			}
			verb := "Reopened"
			if t.Completed {
				verb = "Completed"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, t.Title)
			return nil
		},
	}
}

func newTaskRmCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			t, err := findTask(s, args[0])
			if err != nil {
				return err
			}
			if err := s.DeleteTask(t.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", t.Title)
			return nil
		},
	}
}

func newTaskActiveCmd(o *options) *cobra.Command {
	var unset bool
	cmd := &cobra.Command{
		Use:   "active [id]",
		Short: "Show or set the task work sessions count toward",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			out := cmd.OutOrStdout()

			switch {
			case unset:
				if err := s.SetActiveTask(""); err != nil {
					return err
				}
				fmt.Fprintln(out, "Active task cleared")
				return nil
			case len(args) == 1:
				t, err := findTask(s, args[0])
				if err != nil {
					return err
				}
				if t.Completed {
					return fmt.Errorf("task %s is completed", t.Title)
				}
				if err := s.SetActiveTask(t.ID); err != nil {
					return err
				}
				fmt.Fprintf(out, "Active task: %s\n", t.Title)
				return nil
			}

			id, err := s.ActiveTask()
			if err != nil {
				return err
			}
			if id == "" {
				fmt.Fprintln(out, "No active task")
				return nil
			}
			t, err := s.GetTask(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s %d/%d\n", shortID(t.ID), t.Title, t.Actual, t.Estimated)
			return nil
		},
	}
	cmd.Flags().BoolVar(&unset, "clear", false, "Clear the active task")
	return cmd
}

// findTask resolves a full id or a unique id prefix.
func findTask(s *store.Store, ref string) (*store.Task, error) {
	tasks, err := s.ListTasks(true)
	if err != nil {
		return nil, err
	}
	var match *store.Task
	for i := range tasks {
		t := &tasks[i]
		if t.ID == ref {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			if match != nil {
				return nil, fmt.Errorf("task id %q is ambiguous", ref)
			}
			match = t
		}
	}
	if match == nil {
		return nil, fmt.Errorf("no task matches %q", ref)
	}
	return match, nil
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}
