package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/internal/app"
	"github.com/fastygo/taskflow/usecase/query"
)

// resolveID accepts a full id or a unique prefix of one.
func resolveID(a *app.App, cmd *cobra.Command, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", domain.Invalidf("task id is required")
	}
	var match string
	for _, t := range a.Tasks.List(cmd.Context()) {
		if t.ID == raw {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, raw) {
			if match != "" {
				return "", domain.Invalidf("task id prefix %q is ambiguous", raw)
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", domain.ErrTaskNotFound
	}
	return match, nil
}

func (c *CLI) addCmd() *cobra.Command {
	var (
		description string
		category    string
		priority    string
		due         string
		estimate    float64
		tags        []string
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.engine(cmd)
			if err != nil {
				return err
			}
			p, err := c.printer(cmd)
			if err != nil {
				return err
			}

			draft := domain.Draft{
				Title:         strings.Join(args, " "),
				Description:   description,
				Category:      domain.Category(strings.ToLower(category)),
				Priority:      domain.Priority(strings.ToLower(priority)),
				EstimatedTime: estimate,
				Tags:          query.SplitList(tags...),
			}
			if due != "" {
				d, err := query.ParseDate(due, a.Location)
				if err != nil {
					return err
				}
				draft.DueDate = &d
			}
			a.Settings.Load(cmd.Context()).ApplyDefaults(&draft)

			task, err := a.Tasks.Create(cmd.Context(), draft)
			if task != nil {
				if printErr := p.task(task, a.Location); printErr != nil {
					return printErr
				}
			}
			return err
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&description, "description", "d", "", "Task description")
	flags.StringVarP(&category, "category", "c", "", "work, personal, urgent, health or learning")
	flags.StringVarP(&priority, "priority", "p", "", "low, medium or high")
	flags.StringVar(&due, "due", "", "Due date (YYYY-MM-DD or RFC 3339)")
	flags.Float64Var(&estimate, "estimate", 0, "Estimated time in hours")
	flags.StringSliceVarP(&tags, "tag", "t", nil, "Tags (repeatable or comma separated)")
	return cmd
}

func (c *CLI) editCmd() *cobra.Command {
	var (
		title       string
		description string
		category    string
		priority    string
		status      string
		due         string
		estimate    float64
		actual      float64
		tags        []string
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task",
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

			flags := cmd.Flags()
			var patch domain.Patch
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("category") {
				v := domain.Category(strings.ToLower(category))
				patch.Category = &v
			}
			if flags.Changed("priority") {
				v := domain.Priority(strings.ToLower(priority))
				patch.Priority = &v
			}
			if flags.Changed("status") {
				v := domain.Status(strings.ToLower(status))
				patch.Status = &v
			}
			if flags.Changed("due") {
				if due == "" || strings.EqualFold(due, "none") {
					patch.ClearDueDate = true
				} else {
					d, err := query.ParseDate(due, a.Location)
					if err != nil {
						return err
					}
					patch.DueDate = &d
				}
			}
			if flags.Changed("estimate") {
				patch.EstimatedTime = &estimate
			}
			if flags.Changed("actual") {
				patch.ActualTime = &actual
			}
			if flags.Changed("tag") {
				patch.Tags = append([]string{}, query.SplitList(tags...)...)
			}

			task, err := a.Tasks.Update(cmd.Context(), id, patch)
			if task != nil {
				if printErr := p.task(task, a.Location); printErr != nil {
					return printErr
				}
			}
			return err
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&title, "title", "", "New title")
	flags.StringVarP(&description, "description", "d", "", "New description")
	flags.StringVarP(&category, "category", "c", "", "New category")
	flags.StringVarP(&priority, "priority", "p", "", "New priority")
	flags.StringVarP(&status, "status", "s", "", "pending, in_progress or completed")
	flags.StringVar(&due, "due", "", `New due date; "none" clears it`)
	flags.Float64Var(&estimate, "estimate", 0, "Estimated time in hours")
	flags.Float64Var(&actual, "actual", 0, "Actual time in hours")
	flags.StringSliceVarP(&tags, "tag", "t", nil, "Replace tags")
	return cmd
}

func (c *CLI) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"delete"},
		Short:   "Delete tasks",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.engine(cmd)
			if err != nil {
				return err
			}
			p, err := c.printer(cmd)
			if err != nil {
				return err
			}
			for _, arg := range args {
				id, err := resolveID(a, cmd, arg)
				if err != nil {
					return err
				}
				if err := a.Tasks.Delete(cmd.Context(), id); err != nil {
					return err
				}
				if err := a.Trackers.Discard(cmd.Context(), id); err != nil {
					return err
				}
				p.printf("Deleted %s\n", shortID(id))
			}
			return nil
		},
	}
}

func (c *CLI) toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a task between completed and pending",
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
			task, err := a.Tasks.ToggleCompletion(cmd.Context(), id)
			if task != nil {
				if ok, printErr := p.structured(task); ok {
					if printErr != nil {
						return printErr
					}
				} else {
					p.printf("%s is now %s\n", task.Title, task.Status)
				}
			}
			return err
		},
	}
}

func (c *CLI) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task",
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
			task, err := a.Tasks.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return p.task(task, a.Location)
		},
	}
}

func (c *CLI) listCmd() *cobra.Command {
	var (
		filter         string
		categories     []string
		priorities     []string
		statuses       []string
		tags           []string
		dueFrom        string
		dueTo          string
		hasDescription bool
		overdue        bool
		search         string
		sortKey        string
	)
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tasks",
		Long: `List tasks through the quick filter (all, pending, completed, urgent,
overdue, due-today, high-priority or a category name), the advanced
criteria and a case-insensitive search over title, description and tags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.engine(cmd)
			if err != nil {
				return err
			}
			p, err := c.printer(cmd)
			if err != nil {
				return err
			}
			from, to, err := query.ParseDateRange(dueFrom, dueTo, a.Location)
			if err != nil {
				return err
			}

			params := query.Params{
				Basic: query.ParseBasicFilter(filter),
				Advanced: query.AdvancedFilter{
					Categories: query.ParseCategories(categories...),
					Priorities: query.ParsePriorities(priorities...),
					Statuses:   query.ParseStatuses(statuses...),
					Tags:       query.SplitList(tags...),
					DueFrom:    from,
					DueTo:      to,
				},
				Search: search,
				Sort:   query.ParseSortKey(sortKey),
			}
			if cmd.Flags().Changed("has-description") {
				params.Advanced.HasDescription = &hasDescription
			}
			if cmd.Flags().Changed("overdue") {
				params.Advanced.IsOverdue = &overdue
			}

			tasks := a.Query.Project(a.Tasks.List(cmd.Context()), params)
			return p.tasks(tasks, time.Now(), a.Location)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&filter, "filter", "f", "all", "Quick filter")
	flags.StringSliceVarP(&categories, "category", "c", nil, "Categories (any of)")
	flags.StringSliceVarP(&priorities, "priority", "p", nil, "Priorities (any of)")
	flags.StringSliceVarP(&statuses, "status", "s", nil, "Statuses (any of)")
	flags.StringSliceVarP(&tags, "tag", "t", nil, "Tags (any of)")
	flags.StringVar(&dueFrom, "due-from", "", "Due on or after this date")
	flags.StringVar(&dueTo, "due-to", "", "Due on or before this date")
	flags.BoolVar(&hasDescription, "has-description", false, "Only tasks with (or, with =false, without) a description")
	flags.BoolVar(&overdue, "overdue", false, "Only overdue (or, with =false, not overdue) tasks")
	flags.StringVarP(&search, "search", "q", "", "Search term")
	flags.StringVar(&sortKey, "sort", string(query.SortCreatedAt), "createdAt, title, dueDate or priority")
	return cmd
}

func (c *CLI) countsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "counts",
		Short: "Show task counts per status and category",
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
			counts := query.Count(a.Tasks.List(cmd.Context()))
			if ok, err := p.structured(counts); ok {
				return err
			}

			w := p.table()
			p.printf("%s\n", p.headline.Render("Tasks"))
			fmt.Fprintf(w, "total\t%d\n", counts.Total)
			fmt.Fprintf(w, "pending\t%d\n", counts.Pending)
			fmt.Fprintf(w, "completed\t%d\n", counts.Completed)
			fmt.Fprintf(w, "urgent\t%d\n", counts.Urgent)
			for _, category := range domain.Categories {
				fmt.Fprintf(w, "%s\t%d\n", category, counts.Categories[category])
			}
			return w.Flush()
		},
	}
}
