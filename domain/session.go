package domain

import "time"

// TimeSession represents one contiguous start-stop interval of tracked work.
type TimeSession struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"taskId,omitempty"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Duration  int64     `json:"duration"`
	Date      string    `json:"date"`
}

// Elapsed returns the session duration.
func (s *TimeSession) Elapsed() time.Duration {
	if s == nil {
		return 0
	}
	return time.Duration(s.Duration) * time.Second
}

// TotalHours sums session durations and converts them to hours.
func TotalHours(sessions []TimeSession) float64 {
	var seconds int64
	for _, s := range sessions {
		seconds += s.Duration
	}
	return float64(seconds) / 3600
}
