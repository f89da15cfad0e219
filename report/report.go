// Package report writes diagnostic snapshots of the running demo to disk.
package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/hexaflex/shadercube/bench"
	"github.com/hexaflex/shadercube/compat"
	"github.com/hexaflex/shadercube/optimizer"
	"github.com/hexaflex/shadercube/quality"
)

// TimeLayout formats the timestamp part of report file names.
const TimeLayout = "2006-01-02_15-04-05"

// DefaultPrefix names reports written by the demo.
const DefaultPrefix = "shadercube_report"

// Document is a complete diagnostic snapshot. Sections which were not
// collected are omitted.
type Document struct {
	Timestamp     time.Time                     `json:"timestamp"`
	Version       string                        `json:"version,omitempty"`
	Optimizer     *optimizer.Report             `json:"optimizer,omitempty"`
	Quality       *quality.Report               `json:"adaptiveQuality,omitempty"`
	Compatibility *compat.Report                `json:"compatibility,omitempty"`
	Benchmark     map[string]bench.ShaderResult `json:"benchmark,omitempty"`
	Note          string                        `json:"note,omitempty"`
}

// FileName returns the name of a report written at t.
func FileName(prefix string, t time.Time) string {
	return prefix + "_" + t.Format(TimeLayout) + ".json"
}

// Write encodes doc into dir and returns the path of the new file. The file
// name is derived from prefix and the document timestamp.
func Write(dir, prefix string, doc *Document) (string, error) {
	if doc.Timestamp.IsZero() {
		doc.Timestamp = time.Now()
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "report: encode")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "report: create %s", dir)
	}

	path := filepath.Join(dir, FileName(prefix, doc.Timestamp))
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return "", errors.Wrapf(err, "report: write %s", path)
	}

	return path, nil
}

// Read decodes a report written by Write.
func Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "report: read %s", path)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "report: decode %s", path)
	}

	return &doc, nil
}
