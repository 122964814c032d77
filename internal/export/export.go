// Package export writes completion history to files and reads it back.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	apperrors "pomodoro/zenpomo/internal/errors"
	"pomodoro/zenpomo/internal/model"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const FilePrefix = "zenpomo-report-"

var Formats = []Format{FormatJSON, FormatYAML, FormatCSV, FormatXLSX}

// Columns is the header row shared by the tabular formats.
var Columns = []string{
	"ID",
	"Task",
	"Date",
	"Focus sessions completed",
	"Focus (s)",
	"Short break (s)",
	"Long break (s)",
	"Focus per block",
	"Long breaks",
}

// ParseFormat accepts a format name or a file name with a known extension.
func ParseFormat(value string) (Format, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if i := strings.LastIndexByte(v, '.'); i >= 0 {
		v = v[i+1:]
	}
	switch v {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	}
	return "", apperrors.InvalidInput("invalid_format", fmt.Sprintf("unsupported export format %q", value))
}

// FileName is the default report file name for a day.
func FileName(format Format, day time.Time) string {
	return FilePrefix + day.Format("2006-01-02") + "." + string(format)
}

func Write(w io.Writer, format Format, records []model.CompletionRecord) error {
	if records == nil {
		records = []model.CompletionRecord{}
	}
	switch format {
	case FormatJSON:
		return WriteJSON(w, records)
	case FormatYAML:
		return WriteYAML(w, records)
	case FormatCSV:
		return WriteCSV(w, records)
	case FormatXLSX:
		return WriteXLSX(w, records)
	}
	return apperrors.InvalidInput("invalid_format", fmt.Sprintf("unsupported export format %q", format))
}

// Read decodes records written by Write. Only JSON and YAML can be read.
func Read(r io.Reader, format Format) ([]model.CompletionRecord, error) {
	switch format {
	case FormatJSON:
		return ReadJSON(r)
	case FormatYAML:
		return ReadYAML(r)
	}
	return nil, apperrors.InvalidInput("invalid_format", fmt.Sprintf("cannot import %s files", format))
}

func WriteJSON(w io.Writer, records []model.CompletionRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

func ReadJSON(r io.Reader) ([]model.CompletionRecord, error) {
	var records []model.CompletionRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, apperrors.InvalidInput("invalid_import", "decode json: "+err.Error())
	}
	return records, nil
}

func WriteYAML(w io.Writer, records []model.CompletionRecord) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func ReadYAML(r io.Reader) ([]model.CompletionRecord, error) {
	var records []model.CompletionRecord
	if err := yaml.NewDecoder(r).Decode(&records); err != nil && err != io.EOF {
		return nil, apperrors.InvalidInput("invalid_import", "decode yaml: "+err.Error())
	}
	return records, nil
}

func row(record model.CompletionRecord) []string {
	cfg := record.Configuration
	return []string{
		record.ID,
		record.Name,
		record.Date,
		strconv.Itoa(record.TotalFocusSessionsCompleted),
		strconv.Itoa(cfg.FocusDurationSeconds),
		strconv.Itoa(cfg.ShortBreakDurationSeconds),
		strconv.Itoa(cfg.LongBreakDurationSeconds),
		strconv.Itoa(cfg.FocusRepsPerBlock),
		strconv.Itoa(cfg.LongBreakCount),
	}
}
