package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fastygo/taskflow/domain"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// printer renders command results in the format chosen with --output.
type printer struct {
	out    io.Writer
	format string

	overdue  lipgloss.Style
	done     lipgloss.Style
	high     lipgloss.Style
	muted    lipgloss.Style
	headline lipgloss.Style
}

func (c *CLI) printer(cmd *cobra.Command) (*printer, error) {
	format := strings.ToLower(c.opts.Output)
	switch format {
	case "", outputTable:
		format = outputTable
	case outputJSON, outputYAML:
	default:
		return nil, domain.Invalidf("unknown output format %q", c.opts.Output)
	}

	out := cmd.OutOrStdout()
	r := lipgloss.NewRenderer(out)
	return &printer{
		out:      out,
		format:   format,
		overdue:  r.NewStyle().Foreground(lipgloss.Color("196")),
		done:     r.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true),
		high:     r.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		muted:    r.NewStyle().Foreground(lipgloss.Color("241")),
		headline: r.NewStyle().Bold(true),
	}, nil
}

// structured writes v as JSON or YAML and reports whether it did.
func (p *printer) structured(v interface{}) (bool, error) {
	switch p.format {
	case outputJSON:
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case outputYAML:
		// Round-trip through JSON so YAML keys match the JSON field names.
		raw, err := json.Marshal(v)
		if err != nil {
			return true, err
		}
		var generic interface{}
		if err := json.Unmarshal(raw, &generic); err != nil {
			return true, err
		}
		enc := yaml.NewEncoder(p.out)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return true, err
		}
		return true, enc.Close()
	default:
		return false, nil
	}
}

func (p *printer) table() *tabwriter.Writer {
	return tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
}

func (p *printer) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format, args...)
}

func (p *printer) tasks(tasks []domain.Task, now time.Time, loc *time.Location) error {
	if ok, err := p.structured(tasks); ok {
		return err
	}
	if len(tasks) == 0 {
		p.printf("%s\n", p.muted.Render("No tasks found."))
		return nil
	}

	w := p.table()
	fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tPRIORITY\tSTATUS\tDUE")
	for i := range tasks {
		t := &tasks[i]
		title := t.Title
		switch {
		case t.IsCompleted():
			title = p.done.Render(title)
		case t.IsOverdue(now):
			title = p.overdue.Render(title)
		}
		priority := string(t.Priority)
		if t.Priority == domain.PriorityHigh {
			priority = p.high.Render(priority)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(t.ID), title, t.Category, priority, t.Status, formatDue(t.DueDate, loc))
	}
	return w.Flush()
}

func (p *printer) task(t *domain.Task, loc *time.Location) error {
	if ok, err := p.structured(t); ok {
		return err
	}
	w := p.table()
	fmt.Fprintf(w, "ID:\t%s\n", t.ID)
	fmt.Fprintf(w, "Title:\t%s\n", p.headline.Render(t.Title))
	if t.Description != "" {
		fmt.Fprintf(w, "Description:\t%s\n", t.Description)
	}
	fmt.Fprintf(w, "Category:\t%s\n", t.Category)
	fmt.Fprintf(w, "Priority:\t%s\n", t.Priority)
	fmt.Fprintf(w, "Status:\t%s\n", t.Status)
	fmt.Fprintf(w, "Due:\t%s\n", formatDue(t.DueDate, loc))
	if len(t.Tags) > 0 {
		fmt.Fprintf(w, "Tags:\t%s\n", strings.Join(t.Tags, ", "))
	}
	fmt.Fprintf(w, "Estimated:\t%.2fh\n", t.EstimatedTime)
	fmt.Fprintf(w, "Actual:\t%.2fh\n", t.ActualTime)
	fmt.Fprintf(w, "Created:\t%s\n", t.CreatedAt.In(loc).Format("2006-01-02 15:04"))
	if t.CompletedAt != nil {
		fmt.Fprintf(w, "Completed:\t%s\n", t.CompletedAt.In(loc).Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func formatDue(due *time.Time, loc *time.Location) string {
	if due == nil {
		return "-"
	}
	return due.In(loc).Format("2006-01-02")
}

// shortID trims uuids for tables; any unique prefix is accepted back.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
