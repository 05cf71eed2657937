package monitor

import "time"

// Status is the last observed health of local storage and the task store.
type Status struct {
	Driver    string    `json:"driver"`
	Storage   bool      `json:"storage"`
	Entries   int       `json:"entries"`
	Tasks     int       `json:"tasks"`
	Dirty     bool      `json:"dirty"`
	LastCheck time.Time `json:"last_check"`
}

// Healthy reports whether storage answers and holds everything in memory.
func (s Status) Healthy() bool {
	return s.Storage && !s.Dirty
}
