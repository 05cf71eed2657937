package interchange

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fastygo/taskflow/domain"
)

// EncodeJSON writes a two-space indented array. A nil slice is written as [].
func (c *Codec) EncodeJSON(w io.Writer, tasks []domain.Task) error {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tasks)
}

// DecodeJSON requires a top-level array. Elements are read field by field so
// a wrong-typed field degrades to its zero value instead of failing the file.
func (c *Codec) DecodeJSON(r io.Reader) ([]domain.Task, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeFormat, "failed to read file", err)
	}
	trimmed := bytes.TrimSpace(data)
	if !json.Valid(trimmed) {
		return nil, domain.NewError(domain.ErrCodeFormat, "failed to parse JSON file")
	}
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, domain.ErrNotArray
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		return nil, domain.WrapError(domain.ErrCodeFormat, "failed to parse JSON file", err)
	}

	tasks := make([]domain.Task, 0, len(elements))
	for _, element := range elements {
		tasks = append(tasks, decodeTask(element))
	}
	return tasks, nil
}

func decodeTask(raw json.RawMessage) domain.Task {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domain.Task{}
	}
	task := domain.Task{
		ID:            rawString(fields["id"]),
		Title:         rawString(fields["title"]),
		Description:   rawString(fields["description"]),
		Category:      domain.Category(rawString(fields["category"])),
		Priority:      domain.Priority(rawString(fields["priority"])),
		Status:        domain.Status(rawString(fields["status"])),
		DueDate:       rawTime(fields["dueDate"]),
		CompletedAt:   rawTime(fields["completedAt"]),
		EstimatedTime: rawNumber(fields["estimatedTime"]),
		ActualTime:    rawNumber(fields["actualTime"]),
		Tags:          rawStrings(fields["tags"]),
	}
	if created := rawTime(fields["createdAt"]); created != nil {
		task.CreatedAt = *created
	}
	if updated := rawTime(fields["updatedAt"]); updated != nil {
		task.UpdatedAt = *updated
	}
	return task
}

// rawString accepts strings and numbers; anything else is empty.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func rawNumber(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	return parseNumber(rawString(raw))
}

func rawStrings(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var values []json.RawMessage
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s := rawString(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// rawTime accepts ISO strings and epoch milliseconds.
func rawTime(raw json.RawMessage) *time.Time {
	if len(raw) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return parseTime(s)
	}
	var ms int64
	if err := json.Unmarshal(raw, &ms); err == nil {
		t := time.UnixMilli(ms).UTC()
		return &t
	}
	return nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseTime(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

// parseNumber reads the longest leading decimal number, exponent included,
// and returns 0 when there is none.
func parseNumber(value string) float64 {
	f, err := strconv.ParseFloat(numberPrefix(strings.TrimSpace(value)), 64)
	if err != nil {
		return 0
	}
	return f
}

// numberPrefix returns the part of value matching
// [+-]?digits[.digits][(e|E)[+-]?digits]. Hex, Inf and NaN forms never match.
func numberPrefix(value string) string {
	i := 0
	if i < len(value) && (value[i] == '+' || value[i] == '-') {
		i++
	}
	i = skipDigits(value, i)
	if i < len(value) && value[i] == '.' {
		i = skipDigits(value, i+1)
	}
	if i < len(value) && (value[i] == 'e' || value[i] == 'E') {
		j := i + 1
		if j < len(value) && (value[j] == '+' || value[j] == '-') {
			j++
		}
		if k := skipDigits(value, j); k > j {
			i = k
		}
	}
	return value[:i]
}

func skipDigits(value string, i int) int {
	for i < len(value) && value[i] >= '0' && value[i] <= '9' {
		i++
	}
	return i
}
