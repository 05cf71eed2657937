package kv

// Storage keys. The names are part of the stored data format; renaming one
// orphans existing entries.
const (
	KeyTasks         = "smart-tasks"
	KeyAnalytics     = "task-analytics"
	KeySettings      = "app-settings"
	sessionKeyPrefix = "time-"
)

// SessionKey returns the key holding the time-session log of a task.
func SessionKey(taskID string) string {
	return sessionKeyPrefix + taskID
}
