package transport

import (
	"strings"
	"time"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/usecase/query"
)

// TaskCreateRequest is the body of POST /api/v1/tasks. Dates may be given
// as YYYY-MM-DD or RFC 3339.
type TaskCreateRequest struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Priority      string   `json:"priority"`
	DueDate       string   `json:"dueDate"`
	EstimatedTime float64  `json:"estimatedTime"`
	Tags          []string `json:"tags"`
}

func (r TaskCreateRequest) Draft(loc *time.Location) (domain.Draft, error) {
	draft := domain.Draft{
		Title:         r.Title,
		Description:   r.Description,
		Category:      domain.Category(strings.ToLower(r.Category)),
		Priority:      domain.Priority(strings.ToLower(r.Priority)),
		EstimatedTime: r.EstimatedTime,
		Tags:          r.Tags,
	}
	if strings.TrimSpace(r.DueDate) != "" {
		due, err := query.ParseDate(r.DueDate, loc)
		if err != nil {
			return domain.Draft{}, err
		}
		draft.DueDate = &due
	}
	return draft, draft.Validate()
}

// TaskUpdateRequest is the body of PUT /api/v1/tasks/{id}. Omitted fields are
// left unchanged; an empty dueDate clears it.
type TaskUpdateRequest struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	Category      *string  `json:"category"`
	Priority      *string  `json:"priority"`
	Status        *string  `json:"status"`
	DueDate       *string  `json:"dueDate"`
	EstimatedTime *float64 `json:"estimatedTime"`
	ActualTime    *float64 `json:"actualTime"`
	Tags          []string `json:"tags"`
}

func (r TaskUpdateRequest) Patch(loc *time.Location) (domain.Patch, error) {
	patch := domain.Patch{
		Title:         r.Title,
		Description:   r.Description,
		EstimatedTime: r.EstimatedTime,
		ActualTime:    r.ActualTime,
		Tags:          r.Tags,
	}
	if r.Category != nil {
		category := domain.Category(strings.ToLower(*r.Category))
		patch.Category = &category
	}
	if r.Priority != nil {
		priority := domain.Priority(strings.ToLower(*r.Priority))
		patch.Priority = &priority
	}
	if r.Status != nil {
		status := domain.Status(strings.ToLower(*r.Status))
		patch.Status = &status
	}
	if r.DueDate != nil {
		if strings.TrimSpace(*r.DueDate) == "" {
			patch.ClearDueDate = true
		} else {
			due, err := query.ParseDate(*r.DueDate, loc)
			if err != nil {
				return domain.Patch{}, err
			}
			patch.DueDate = &due
		}
	}
	return patch, patch.Validate()
}

// AnalyticsResponse pairs the cached snapshot with live dashboard figures.
type AnalyticsResponse struct {
	Snapshot *domain.Analytics `json:"snapshot"`
	Insights domain.Insights   `json:"insights"`
}

// ImportResponse reports what an import added.
type ImportResponse struct {
	Format   string        `json:"format"`
	Imported int           `json:"imported"`
	Tasks    []domain.Task `json:"tasks"`
}
