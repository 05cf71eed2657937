package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/usecase/analytics"
	"github.com/fastygo/taskflow/usecase/suggest"
)

type statsResult struct {
	Snapshot domain.Analytics `json:"snapshot"`
	Insights domain.Insights  `json:"insights"`
}

func (c *CLI) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the analytics snapshot and productivity insights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.engine(cmd)
			if err != nil {
				return err
			}
			p, err := c.printer(cmd)
			if err != nil {
				return err
			}

			result := statsResult{Insights: a.Tasks.Insights()}
			if snapshot := a.Tasks.Analytics(); snapshot != nil {
				result.Snapshot = *snapshot
			} else {
				result.Snapshot = analytics.Compute(a.Tasks.List(cmd.Context()), time.Now(), a.Location)
			}
			if ok, err := p.structured(result); ok {
				return err
			}

			s, in := result.Snapshot, result.Insights
			p.printf("%s\n", p.headline.Render("Overview"))
			w := p.table()
			fmt.Fprintf(w, "Tasks\t%d total, %d completed, %d open\n", s.TotalTasks, s.CompletedTasks, s.PendingTasks)
			fmt.Fprintf(w, "Productivity\t%d%% (%s)\n", in.ProductivityScore, in.ScoreLabel)
			fmt.Fprintf(w, "Completed today\t%d\n", in.CompletedToday)
			fmt.Fprintf(w, "Completed this week\t%d\n", in.CompletedThisWeek)
			fmt.Fprintf(w, "Overdue\t%d\n", in.OverdueCount)
			fmt.Fprintf(w, "Avg. completion\t%.1fh\n", in.AverageCompletionHours)
			if err := w.Flush(); err != nil {
				return err
			}

			p.printf("\n%s\n", p.headline.Render("Categories"))
			w = p.table()
			for _, category := range domain.Categories {
				fmt.Fprintf(w, "%s\t%d\n", category, s.CategoryDistribution[category])
			}
			if err := w.Flush(); err != nil {
				return err
			}

			p.printf("\n%s\n", p.headline.Render("Completed, last 7 days"))
			w = p.table()
			for _, point := range s.CompletionTrends {
				fmt.Fprintf(w, "%s\t%s %d\n", point.Date, strings.Repeat("#", point.Completed), point.Completed)
			}
			return w.Flush()
		},
	}
}

func (c *CLI) suggestCmd() *cobra.Command {
	var apply string
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Show smart suggestions, or run one with --apply",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.engine(cmd)
			if err != nil {
				return err
			}
			p, err := c.printer(cmd)
			if err != nil {
				return err
			}
			tasks := a.Tasks.List(cmd.Context())

			if apply != "" {
				s, found := a.Suggest.Find(tasks, a.Dismissed, apply)
				if !found {
					return domain.NewError(domain.ErrCodeNotFound, "suggestion not active")
				}
				updated, err := a.Suggest.ApplyAction(cmd.Context(), a.Tasks, s, a.Logger)
				if err != nil {
					return err
				}
				if ok, err := p.structured(map[string]interface{}{"suggestion": s, "updated": updated}); ok {
					return err
				}
				if s.Action.Name == "" {
					p.printf("%s: try `%s`\n", s.Action.Label, actionHint(s))
					return nil
				}
				p.printf("%s: updated %d task(s)\n", s.Action.Label, updated)
				return nil
			}

			suggestions := a.Suggest.Evaluate(tasks, a.Dismissed)
			if ok, err := p.structured(suggestions); ok {
				return err
			}
			if len(suggestions) == 0 {
				p.printf("%s\n", p.muted.Render("Nothing to suggest right now."))
				return nil
			}
			for _, s := range suggestions {
				title := s.Title
				switch s.Kind {
				case suggest.KindWarning:
					title = p.overdue.Render(title)
				case suggest.KindSuccess:
					title = p.headline.Render(title)
				}
				p.printf("[%s] %s\n    %s\n    -> %s\n", s.ID, title, s.Description, s.Action.Label)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&apply, "apply", "", "Run the action of the suggestion with this id")
	return cmd
}

// actionHint maps a navigation action to the equivalent command.
func actionHint(s suggest.Suggestion) string {
	if s.Action.Filter != "" {
		return "taskctl ls --filter " + s.Action.Filter
	}
	return "taskctl stats"
}
