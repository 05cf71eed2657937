package interchange

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fastygo/taskflow/domain"
)

// Header is the fixed CSV column layout.
var Header = []string{
	"Title",
	"Description",
	"Category",
	"Priority",
	"Status",
	"Created At",
	"Due Date",
	"Completed At",
	"Estimated Time",
	"Actual Time",
}

const csvTimeLayout = "2006-01-02T15:04:05.000Z07:00"

const (
	colTitle = iota
	colDescription
	colCategory
	colPriority
	colStatus
	colCreatedAt
	colDueDate
	colCompletedAt
	colEstimated
	colActual
)

// EncodeCSV writes the header and one row per task. Fields holding a comma,
// quote or line break are quoted with inner quotes doubled. Ids and tags
// have no column and are not exported.
func (c *Codec) EncodeCSV(w io.Writer, tasks []domain.Task) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return err
	}
	for i := range tasks {
		if err := writer.Write(encodeRow(&tasks[i])); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func encodeRow(t *domain.Task) []string {
	return []string{
		t.Title,
		t.Description,
		string(t.Category),
		string(t.Priority),
		string(t.Status),
		formatTime(&t.CreatedAt),
		formatTime(t.DueDate),
		formatTime(t.CompletedAt),
		strconv.FormatFloat(t.EstimatedTime, 'f', -1, 64),
		strconv.FormatFloat(t.ActualTime, 'f', -1, 64),
	}
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(csvTimeLayout)
}

// DecodeCSV drops the header row, skips blank rows and maps the ten columns
// by position. Short rows are accepted; missing values fall back to defaults.
// Every row becomes a new task with a fresh id.
func (c *Codec) DecodeCSV(r io.Reader) ([]domain.Task, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return []domain.Task{}, nil
		}
		return nil, domain.WrapError(domain.ErrCodeFormat, "failed to parse CSV file", err)
	}

	now := c.now()
	tasks := []domain.Task{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.WrapError(domain.ErrCodeFormat, "failed to parse CSV file", err)
		}
		if blank(record) {
			continue
		}
		tasks = append(tasks, c.decodeRow(record, len(tasks), now))
	}
	return tasks, nil
}

func (c *Codec) decodeRow(record []string, index int, now time.Time) domain.Task {
	field := func(i int) string {
		if i < len(record) {
			return record[i]
		}
		return ""
	}

	task := domain.Task{
		ID:            c.newID(),
		Title:         field(colTitle),
		Description:   field(colDescription),
		Category:      domain.Category(orDefault(field(colCategory), string(domain.CategoryPersonal))),
		Priority:      domain.Priority(orDefault(field(colPriority), string(domain.PriorityMedium))),
		Status:        domain.Status(orDefault(field(colStatus), string(domain.StatusPending))),
		CreatedAt:     now,
		UpdatedAt:     now,
		DueDate:       parseTime(field(colDueDate)),
		CompletedAt:   parseTime(field(colCompletedAt)),
		EstimatedTime: parseNumber(field(colEstimated)),
		ActualTime:    parseNumber(field(colActual)),
		Tags:          []string{},
	}
	if task.Title == "" {
		task.Title = fmt.Sprintf("Imported Task %d", index+1)
	}
	if created := parseTime(field(colCreatedAt)); created != nil {
		task.CreatedAt = *created
	}
	return task
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
