// Package interchange converts task lists to and from the JSON and CSV
// export formats.
package interchange

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/taskflow/domain"
)

// Format is an export/import file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

const (
	mimeJSON = "application/json"
	mimeCSV  = "text/csv"
)

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return mimeCSV
	}
	return mimeJSON
}

// ParseFormat accepts "json" or "csv" in any case.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", domain.ErrUnsupportedFormat
	}
}

// FileName builds the download name, e.g. tasks-2024-06-15.csv.
func FileName(format Format, now time.Time) string {
	return fmt.Sprintf("tasks-%s.%s", now.Format("2006-01-02"), format)
}

// Codec carries the clock and id generator used when decoding CSV rows.
type Codec struct {
	now   func() time.Time
	newID func() string
}

type Option func(*Codec)

func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

func WithIDGenerator(gen func() string) Option {
	return func(c *Codec) {
		if gen != nil {
			c.newID = gen
		}
	}
}

func New(opts ...Option) *Codec {
	c := &Codec{now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encode writes tasks in the given format.
func (c *Codec) Encode(w io.Writer, format Format, tasks []domain.Task) error {
	switch format {
	case FormatJSON:
		return c.EncodeJSON(w, tasks)
	case FormatCSV:
		return c.EncodeCSV(w, tasks)
	default:
		return domain.ErrUnsupportedFormat
	}
}

// DetectFormat resolves the import format from a MIME type, falling back to
// the file extension when the type is empty or generic.
func DetectFormat(contentType, filename string) (Format, error) {
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil {
			switch mediaType {
			case mimeJSON, "text/json":
				return FormatJSON, nil
			case mimeCSV, "application/csv":
				return FormatCSV, nil
			case "application/octet-stream", "text/plain":
			default:
				return "", domain.ErrUnsupportedFormat
			}
		}
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", domain.ErrUnsupportedFormat
}

// Import picks the decoder before reading anything from r. Nothing is
// written anywhere; the caller decides whether to commit the result.
func (c *Codec) Import(contentType, filename string, r io.Reader) ([]domain.Task, Format, error) {
	format, err := DetectFormat(contentType, filename)
	if err != nil {
		return nil, "", err
	}
	var tasks []domain.Task
	switch format {
	case FormatJSON:
		tasks, err = c.DecodeJSON(r)
	default:
		tasks, err = c.DecodeCSV(r)
	}
	return tasks, format, err
}

var defaultCodec = New()

// ToJSON renders tasks as an indented JSON array.
func ToJSON(tasks []domain.Task) (string, error) {
	var buf bytes.Buffer
	if err := defaultCodec.EncodeJSON(&buf, tasks); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FromJSON parses a JSON array of tasks.
func FromJSON(text string) ([]domain.Task, error) {
	return defaultCodec.DecodeJSON(strings.NewReader(text))
}

// ToCSV renders tasks as CSV with the fixed header.
func ToCSV(tasks []domain.Task) (string, error) {
	var buf bytes.Buffer
	if err := defaultCodec.EncodeCSV(&buf, tasks); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FromCSV parses CSV rows into new tasks.
func FromCSV(text string) ([]domain.Task, error) {
	return defaultCodec.DecodeCSV(strings.NewReader(text))
}
