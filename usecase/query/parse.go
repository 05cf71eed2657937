package query

import (
	"strconv"
	"strings"
	"time"

	"github.com/fastygo/taskflow/domain"
)

const dateLayout = "2006-01-02"

// ParseSortKey maps user input to a SortKey, defaulting to createdAt.
func ParseSortKey(raw string) SortKey {
	switch SortKey(strings.TrimSpace(raw)) {
	case SortTitle:
		return SortTitle
	case SortDueDate, "due", "due_date":
		return SortDueDate
	case SortPriority:
		return SortPriority
	default:
		return SortCreatedAt
	}
}

// ParseBasicFilter normalizes the quick filter name.
func ParseBasicFilter(raw string) BasicFilter {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "":
		return FilterAll
	case "today", "due_today":
		return FilterDueToday
	case "high", "high_priority":
		return FilterHighPriority
	default:
		return BasicFilter(value)
	}
}

// ParseDateRange parses inclusive YYYY-MM-DD bounds in loc. The lower bound
// starts at midnight, the upper bound ends at the last instant of its day.
// RFC 3339 timestamps are taken as exact instants.
func ParseDateRange(from, to string, loc *time.Location) (*time.Time, *time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	var start, end *time.Time
	if from = strings.TrimSpace(from); from != "" {
		t, _, err := parseBound(from, loc)
		if err != nil {
			return nil, nil, domain.Invalidf("invalid start date %q", from)
		}
		start = &t
	}
	if to = strings.TrimSpace(to); to != "" {
		t, dateOnly, err := parseBound(to, loc)
		if err != nil {
			return nil, nil, domain.Invalidf("invalid end date %q", to)
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		end = &t
	}
	return start, end, nil
}

func parseBound(value string, loc *time.Location) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(dateLayout, value, loc); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	return t, false, err
}

// ParseFlag turns "true"/"1"/"yes" into a set flag; anything else leaves it unset.
func ParseFlag(raw string) *bool {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "yes" {
		value = "true"
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil || !parsed {
		return nil
	}
	return &parsed
}

// SplitList splits comma-separated values, dropping blanks.
func SplitList(values ...string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func ParseCategories(values ...string) []domain.Category {
	var out []domain.Category
	for _, v := range SplitList(values...) {
		out = append(out, domain.Category(strings.ToLower(v)))
	}
	return out
}

func ParsePriorities(values ...string) []domain.Priority {
	var out []domain.Priority
	for _, v := range SplitList(values...) {
		out = append(out, domain.Priority(strings.ToLower(v)))
	}
	return out
}

func ParseStatuses(values ...string) []domain.Status {
	var out []domain.Status
	for _, v := range SplitList(values...) {
		out = append(out, domain.Status(strings.ToLower(v)))
	}
	return out
}

// ParseDate reads a single YYYY-MM-DD date (midnight in loc) or an RFC 3339
// timestamp.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, _, err := parseBound(strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, domain.Invalidf("invalid date %q", value)
	}
	return t, nil
}
