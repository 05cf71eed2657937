package domain

import "time"

// TrendPoint counts completions on one calendar day.
type TrendPoint struct {
	Date      string `json:"date"`
	Completed int    `json:"completed"`
}

// Analytics is a derived snapshot of the task list. It is a cache: it can
// always be rebuilt from the tasks and is never edited on its own.
type Analytics struct {
	TotalTasks           int              `json:"totalTasks"`
	CompletedTasks       int              `json:"completedTasks"`
	PendingTasks         int              `json:"pendingTasks"`
	CategoryDistribution map[Category]int `json:"categoryDistribution"`
	CompletionTrends     []TrendPoint     `json:"completionTrends"`
	LastUpdated          time.Time        `json:"lastUpdated"`
}

// Insights are dashboard figures derived on demand.
type Insights struct {
	ProductivityScore      int     `json:"productivityScore"`
	ScoreLabel             string  `json:"scoreLabel"`
	CompletedToday         int     `json:"completedToday"`
	CompletedThisWeek      int     `json:"completedThisWeek"`
	OverdueCount           int     `json:"overdueCount"`
	AverageCompletionHours float64 `json:"averageCompletionHours"`
}
