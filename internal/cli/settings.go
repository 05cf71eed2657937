package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fastygo/taskflow/domain"
)

func (c *CLI) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read or change preferences",
	}
	cmd.AddCommand(c.settingsGetCmd(), c.settingsSetCmd())
	return cmd
}

func (c *CLI) settingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show preferences and storage usage",
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
			settings := a.Settings.Load(cmd.Context())
			usage, err := a.Settings.StorageUsage(cmd.Context())
			if err != nil {
				return err
			}
			if ok, err := p.structured(map[string]interface{}{"settings": settings, "storage": usage}); ok {
				return err
			}

			w := p.table()
			fmt.Fprintf(w, "theme\t%s\n", settings.Theme)
			fmt.Fprintf(w, "notifications\t%t\n", settings.Notifications)
			fmt.Fprintf(w, "auto-save\t%t\n", settings.AutoSave)
			fmt.Fprintf(w, "default-category\t%s\n", settings.DefaultCategory)
			fmt.Fprintf(w, "default-priority\t%s\n", settings.DefaultPriority)
			fmt.Fprintf(w, "working-hours\t%s-%s\n", settings.WorkingHours.Start, settings.WorkingHours.End)
			fmt.Fprintf(w, "reminder-time\t%d min\n", settings.ReminderTime)
			fmt.Fprintf(w, "storage\t%.2f KB in %d entries\n", usage.KB, usage.Keys)
			return w.Flush()
		},
	}
}

func (c *CLI) settingsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one preference",
		Long: `Change one preference. Keys: theme, notifications, auto-save,
default-category, default-priority, working-hours (HH:MM-HH:MM) and
reminder-time (minutes).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.engine(cmd)
			if err != nil {
				return err
			}
			p, err := c.printer(cmd)
			if err != nil {
				return err
			}
			patch, err := settingsPatch(args[0], args[1])
			if err != nil {
				return err
			}
			settings, err := a.Settings.Update(cmd.Context(), patch)
			if err != nil {
				return err
			}
			if ok, err := p.structured(settings); ok {
				return err
			}
			p.printf("%s = %s\n", args[0], args[1])
			return nil
		},
	}
}

// settingsPatch turns one key/value pair into a patch. Values are validated
// by the settings service.
func settingsPatch(key, value string) (domain.SettingsPatch, error) {
	var patch domain.SettingsPatch
	value = strings.TrimSpace(value)
	switch strings.ToLower(key) {
	case "theme":
		v := strings.ToLower(value)
		patch.Theme = &v
	case "notifications", "auto-save", "autosave":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return patch, domain.Invalidf("%s expects true or false", key)
		}
		if strings.HasPrefix(strings.ToLower(key), "auto") {
			patch.AutoSave = &v
		} else {
			patch.Notifications = &v
		}
	case "default-category":
		v := domain.Category(strings.ToLower(value))
		patch.DefaultCategory = &v
	case "default-priority":
		v := domain.Priority(strings.ToLower(value))
		patch.DefaultPriority = &v
	case "working-hours":
		start, end, ok := strings.Cut(value, "-")
		if !ok {
			return patch, domain.Invalidf("working-hours expects HH:MM-HH:MM")
		}
		patch.WorkingHours = &domain.WorkingHours{Start: strings.TrimSpace(start), End: strings.TrimSpace(end)}
	case "reminder-time":
		v, err := strconv.Atoi(value)
		if err != nil {
			return patch, domain.Invalidf("reminder-time expects minutes")
		}
		patch.ReminderTime = &v
	default:
		return patch, domain.Invalidf("unknown setting %q", key)
	}
	return patch, nil
}

func (c *CLI) wipeCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Delete every task, session and preference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return domain.Invalidf("wipe deletes all data; pass --yes to confirm")
			}
			a, err := c.engine(cmd)
			if err != nil {
				return err
			}
			if err := a.Settings.Wipe(cmd.Context()); err != nil {
				return err
			}
			cmd.Println("All data deleted.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the wipe")
	return cmd
}
