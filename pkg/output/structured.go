package output

import (
	"encoding/json"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/sdejongh/photoharvest/pkg/models"
)

// ReportDocument is the machine-readable form of an execution report
type ReportDocument struct {
	OperationID string           `json:"operation_id" yaml:"operation_id"`
	PlanID      string           `json:"plan_id,omitempty" yaml:"plan_id,omitempty"`
	Mode        string           `json:"mode" yaml:"mode"`
	Status      string           `json:"status" yaml:"status"`
	Duration    string           `json:"duration" yaml:"duration"`
	DurationMs  int64            `json:"duration_ms" yaml:"duration_ms"`
	Stats       StatsDocument    `json:"stats" yaml:"stats"`
	Results     []ResultDocument `json:"results,omitempty" yaml:"results,omitempty"`
	Errors      []ErrorDocument  `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// StatsDocument holds execution counters
type StatsDocument struct {
	FilesPlanned     int   `json:"files_planned" yaml:"files_planned"`
	FilesCopied      int   `json:"files_copied" yaml:"files_copied"`
	FilesMoved       int   `json:"files_moved" yaml:"files_moved"`
	FilesSkipped     int   `json:"files_skipped" yaml:"files_skipped"`
	FilesVerified    int   `json:"files_verified" yaml:"files_verified"`
	FilesErrored     int   `json:"files_errored" yaml:"files_errored"`
	BytesTransferred int64 `json:"bytes_transferred" yaml:"bytes_transferred"`
}

// ResultDocument is the outcome of one plan entry
type ResultDocument struct {
	Source   string `json:"source" yaml:"source"`
	Dest     string `json:"dest" yaml:"dest"`
	Outcome  string `json:"outcome" yaml:"outcome"`
	Bytes    int64  `json:"bytes,omitempty" yaml:"bytes,omitempty"`
	Verified bool   `json:"verified,omitempty" yaml:"verified,omitempty"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ErrorDocument is one recorded error
type ErrorDocument struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

// NewReportDocument converts a report
func NewReportDocument(report *models.ExecutionReport) ReportDocument {
	doc := ReportDocument{
		OperationID: report.OperationID,
		PlanID:      report.PlanID,
		Mode:        string(report.Mode),
		Status:      string(report.Status),
		Duration:    report.Duration.String(),
		DurationMs:  report.Duration.Milliseconds(),
		Stats: StatsDocument{
			FilesPlanned:     report.Stats.FilesPlanned,
			FilesCopied:      report.Stats.FilesCopied,
			FilesMoved:       report.Stats.FilesMoved,
			FilesSkipped:     report.Stats.FilesSkipped,
			FilesVerified:    report.Stats.FilesVerified,
			FilesErrored:     report.Stats.FilesErrored,
			BytesTransferred: report.Stats.BytesTransferred,
		},
	}
	for _, r := range report.Results {
		doc.Results = append(doc.Results, ResultDocument{
			Source:   r.SourcePath,
			Dest:     r.DestPath,
			Outcome:  string(r.Outcome),
			Bytes:    r.Bytes,
			Verified: r.Verified,
			Error:    r.Error,
		})
	}
	for _, e := range report.Errors {
		doc.Errors = append(doc.Errors, ErrorDocument{Path: e.FilePath, Error: e.Error})
	}
	return doc
}

type encodeFunc func(w io.Writer, v any) error

// StructuredFormatter stays silent during execution and writes the final
// report as a single document
type StructuredFormatter struct {
	mu     sync.Mutex
	name   string
	writer io.Writer
	encode encodeFunc
}

// NewJSONFormatter creates a formatter writing indented JSON
func NewJSONFormatter() *StructuredFormatter {
	return &StructuredFormatter{name: "json", encode: encodeJSON}
}

// NewYAMLFormatter creates a formatter writing YAML
func NewYAMLFormatter() *StructuredFormatter {
	return &StructuredFormatter{name: "yaml", encode: encodeYAML}
}

// Start records the writer
func (f *StructuredFormatter) Start(writer io.Writer, totalFiles int, totalBytes int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	return nil
}

// Progress is a no-op
func (f *StructuredFormatter) Progress(update ProgressUpdate) error {
	return nil
}

// Complete writes the report
func (f *StructuredFormatter) Complete(report *models.ExecutionReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.encode(f.out(), NewReportDocument(report))
}

// Error writes a failure document
func (f *StructuredFormatter) Error(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.encode(f.out(), map[string]string{
		"status": string(models.StatusFailed),
		"error":  err.Error(),
	})
}

// Name returns the formatter name
func (f *StructuredFormatter) Name() string {
	return f.name
}

func (f *StructuredFormatter) out() io.Writer {
	if f.writer == nil {
		return os.Stdout
	}
	return f.writer
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
