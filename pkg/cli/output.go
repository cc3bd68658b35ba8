package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is plain text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
	// FormatCSV is CSV output.
	FormatCSV OutputFormat = "csv"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case FormatText, FormatJSON, FormatCSV:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// Formatter formats command output.
type Formatter interface {
	Format(data interface{}) ([]byte, error)
	FormatTo(w io.Writer, data interface{}) error
}

// TextFormatter formats output as plain text. Types that implement
// fmt.Stringer control their own text rendering.
type TextFormatter struct{}

// Format converts data to text format.
func (f *TextFormatter) Format(data interface{}) ([]byte, error) {
	return []byte(fmt.Sprintf("%v\n", data)), nil
}

// FormatTo writes data to writer in text format.
func (f *TextFormatter) FormatTo(w io.Writer, data interface{}) error {
	_, err := fmt.Fprintf(w, "%v\n", data)
	return err
}

// JSONFormatter formats output as JSON.
type JSONFormatter struct {
	Indent bool
}

// Format converts data to JSON format.
func (f *JSONFormatter) Format(data interface{}) ([]byte, error) {
	if f.Indent {
		return json.MarshalIndent(data, "", "  ")
	}
	return json.Marshal(data)
}

// FormatTo writes data to writer in JSON format.
func (f *JSONFormatter) FormatTo(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// CSVMarshaler is implemented by report types that can render
// themselves as CSV rows.
type CSVMarshaler interface {
	CSVHeader() []string
	CSVRecords() [][]string
}

// CSVFormatter formats output as CSV. Data must implement CSVMarshaler
// or be a raw [][]string of records.
type CSVFormatter struct {
	// Headers is prepended to raw [][]string data. CSVMarshaler values
	// supply their own header and ignore it.
	Headers []string
}

// Format converts data to CSV format.
func (f *CSVFormatter) Format(data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.FormatTo(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatTo writes data to writer in CSV format.
func (f *CSVFormatter) FormatTo(w io.Writer, data interface{}) error {
	csvWriter := csv.NewWriter(w)

	switch v := data.(type) {
	case CSVMarshaler:
		if err := csvWriter.Write(v.CSVHeader()); err != nil {
			return err
		}
		if err := csvWriter.WriteAll(v.CSVRecords()); err != nil {
			return err
		}
	case [][]string:
		if len(f.Headers) > 0 {
			if err := csvWriter.Write(f.Headers); err != nil {
				return err
			}
		}
		if err := csvWriter.WriteAll(v); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%T does not support CSV output", data)
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// NewFormatter creates a new formatter for the specified format.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatCSV:
		return &CSVFormatter{}
	default:
		return &TextFormatter{}
	}
}
