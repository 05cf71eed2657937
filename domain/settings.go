package domain

import (
	"encoding/json"
	"time"
)

type WorkingHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Settings holds user preferences persisted next to the tasks.
type Settings struct {
	Theme           string       `json:"theme"`
	Notifications   bool         `json:"notifications"`
	AutoSave        bool         `json:"autoSave"`
	DefaultCategory Category     `json:"defaultCategory"`
	DefaultPriority Priority     `json:"defaultPriority"`
	WorkingHours    WorkingHours `json:"workingHours"`
	ReminderTime    int          `json:"reminderTime"`
}

// DefaultSettings returns the preferences used when nothing was saved.
func DefaultSettings() Settings {
	return Settings{
		Theme:           "light",
		Notifications:   true,
		AutoSave:        true,
		DefaultCategory: CategoryPersonal,
		DefaultPriority: PriorityMedium,
		WorkingHours:    WorkingHours{Start: "09:00", End: "17:00"},
		ReminderTime:    30,
	}
}

// MergeSettings decodes raw over the defaults. Keys missing from raw keep
// their default value; invalid enum values fall back as well.
func MergeSettings(raw []byte) (Settings, error) {
	settings := DefaultSettings()
	if len(raw) == 0 {
		return settings, nil
	}
	if err := json.Unmarshal(raw, &settings); err != nil {
		return DefaultSettings(), err
	}
	settings.normalize()
	return settings, nil
}

func (s *Settings) normalize() {
	defaults := DefaultSettings()
	if s.Theme != "light" && s.Theme != "dark" {
		s.Theme = defaults.Theme
	}
	if !s.DefaultCategory.Valid() {
		s.DefaultCategory = defaults.DefaultCategory
	}
	if !s.DefaultPriority.Valid() {
		s.DefaultPriority = defaults.DefaultPriority
	}
	if s.WorkingHours.Start == "" {
		s.WorkingHours.Start = defaults.WorkingHours.Start
	}
	if s.WorkingHours.End == "" {
		s.WorkingHours.End = defaults.WorkingHours.End
	}
	if s.ReminderTime < 0 {
		s.ReminderTime = defaults.ReminderTime
	}
}

// ApplyDefaults fills empty draft enums from the user's preferences.
func (s Settings) ApplyDefaults(d *Draft) {
	if d.Category == "" {
		d.Category = s.DefaultCategory
	}
	if d.Priority == "" {
		d.Priority = s.DefaultPriority
	}
}

// SettingsPatch is a partial settings update; nil fields are kept.
type SettingsPatch struct {
	Theme           *string       `json:"theme,omitempty"`
	Notifications   *bool         `json:"notifications,omitempty"`
	AutoSave        *bool         `json:"autoSave,omitempty"`
	DefaultCategory *Category     `json:"defaultCategory,omitempty"`
	DefaultPriority *Priority     `json:"defaultPriority,omitempty"`
	WorkingHours    *WorkingHours `json:"workingHours,omitempty"`
	ReminderTime    *int          `json:"reminderTime,omitempty"`
}

func (p SettingsPatch) Validate() error {
	if p.Theme != nil && *p.Theme != "light" && *p.Theme != "dark" {
		return Invalidf("unknown theme %q", *p.Theme)
	}
	if p.DefaultCategory != nil && !p.DefaultCategory.Valid() {
		return Invalidf("unknown category %q", *p.DefaultCategory)
	}
	if p.DefaultPriority != nil && !p.DefaultPriority.Valid() {
		return Invalidf("unknown priority %q", *p.DefaultPriority)
	}
	if p.WorkingHours != nil {
		if !validClock(p.WorkingHours.Start) || !validClock(p.WorkingHours.End) {
			return Invalidf("working hours must use HH:MM")
		}
	}
	if p.ReminderTime != nil && *p.ReminderTime < 0 {
		return Invalidf("reminder time must not be negative")
	}
	return nil
}

// Apply merges the patch over s.
func (p SettingsPatch) Apply(s *Settings) {
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.Notifications != nil {
		s.Notifications = *p.Notifications
	}
	if p.AutoSave != nil {
		s.AutoSave = *p.AutoSave
	}
	if p.DefaultCategory != nil {
		s.DefaultCategory = *p.DefaultCategory
	}
	if p.DefaultPriority != nil {
		s.DefaultPriority = *p.DefaultPriority
	}
	if p.WorkingHours != nil {
		s.WorkingHours = *p.WorkingHours
	}
	if p.ReminderTime != nil {
		s.ReminderTime = *p.ReminderTime
	}
}

func validClock(value string) bool {
	_, err := time.Parse("15:04", value)
	return err == nil
}
