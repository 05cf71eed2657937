package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/usecase/tracker"
)

func (c *CLI) trackCmd() *cobra.Command {
	var (
		limit  time.Duration
		noSave bool
	)
	cmd := &cobra.Command{
		Use:   "track <id>",
		Short: "Time a task in the foreground",
		Long: `Start the timer for a task and show the running counter. Ctrl-C (or
--for) stops it, records the session and saves the total tracked time as
the task's actual time.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.engine(cmd)
			if err != nil {
				return err
			}
			p, err := c.printer(cmd)
			if err != nil {
				return err
			}
			id, err := resolveID(a, cmd, args[0])
			if err != nil {
				return err
			}

			interactive := p.format == outputTable
			t, err := tracker.Open(cmd.Context(), a.Tasks, a.Sessions, id, a.Logger,
				tracker.WithLocation(a.Location),
				tracker.WithTick(a.Config.Engine.TrackerTick),
				tracker.OnTick(func(_ string, elapsed time.Duration) {
					if interactive {
						p.printf("\r%s", tracker.FormatDuration(elapsed))
					}
				}))
			if err != nil {
				return err
			}
			defer t.Close()

			task, err := a.Tasks.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if interactive {
				p.printf("Tracking %s (Ctrl-C to stop)\n", p.headline.Render(task.Title))
			}

			wait := cmd.Context()
			if limit > 0 {
				var cancel context.CancelFunc
				wait, cancel = context.WithTimeout(wait, limit)
				defer cancel()
			}
			t.Start()
			<-wait.Done()

			// The command context is cancelled by now; finish the writes anyway.
			ctx := context.WithoutCancel(cmd.Context())
			session, err := t.Stop(ctx)
			if interactive {
				p.printf("\n")
			}
			if err != nil {
				return err
			}

			result := trackResult{Session: session}
			if !noSave {
				saved, err := t.Save(ctx)
				if err != nil {
					return err
				}
				result.Task = saved
			}
			if ok, err := p.structured(result); ok {
				return err
			}
			if session == nil {
				p.printf("Less than a second tracked, nothing recorded.\n")
			} else {
				p.printf("Recorded %s\n", tracker.FormatDuration(session.Elapsed()))
			}
			if result.Task != nil {
				p.printf("Actual time: %.2fh\n", result.Task.ActualTime)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&limit, "for", 0, "Stop automatically after this long")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Record the session without updating the task's actual time")
	return cmd
}

type trackResult struct {
	Session *domain.TimeSession `json:"session"`
	Task    *domain.Task        `json:"task,omitempty"`
}

func (c *CLI) sessionsCmd() *cobra.Command {
	var remove string
	cmd := &cobra.Command{
		Use:   "sessions <id>",
		Short: "List or delete the recorded time sessions of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.engine(cmd)
			if err != nil {
				return err
			}
			p, err := c.printer(cmd)
			if err != nil {
				return err
			}
			id, err := resolveID(a, cmd, args[0])
			if err != nil {
				return err
			}
			t, err := a.Trackers.Open(cmd.Context(), id)
			if err != nil {
				return err
			}
			if remove != "" {
				if err := t.DeleteSession(cmd.Context(), remove); err != nil {
					return err
				}
			}

			snapshot := t.Snapshot()
			if ok, err := p.structured(snapshot); ok {
				return err
			}
			if len(snapshot.Sessions) == 0 {
				p.printf("%s\n", p.muted.Render("No sessions recorded."))
				return nil
			}
			w := p.table()
			fmt.Fprintln(w, "ID\tDATE\tSTART\tEND\tDURATION")
			for _, s := range snapshot.Sessions {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.Date,
					s.StartTime.In(a.Location).Format("15:04:05"),
					s.EndTime.In(a.Location).Format("15:04:05"),
					tracker.FormatDuration(s.Elapsed()))
			}
			fmt.Fprintf(w, "\t\t\tTotal\t%s\n", tracker.FormatDuration(time.Duration(snapshot.Total)*time.Second))
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&remove, "delete", "", "Delete the session with this id first")
	return cmd
}
