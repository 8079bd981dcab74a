// Package classifier assigns a type label and confidence to file records
// using an ordered pipeline of heuristics.
package classifier

import (
	"fmt"
	"sort"

	"github.com/jeffanddom/organizex/internal/filetype"
	"github.com/jeffanddom/organizex/internal/logging"
	"github.com/jeffanddom/organizex/internal/scanner"
)

const (
	fallbackConfidence    = 0.5
	distributionThreshold = 0.5
	suggestionThreshold   = 0.7
)

// Classification is the predicted type of one record
type Classification struct {
	Path       string         `json:"path"`
	Name       string         `json:"name"`
	Type       filetype.Label `json:"type"`
	Confidence float64        `json:"confidence"`
}

// Report is the outcome of classifying a batch
type Report struct {
	Classifications []Classification            `json:"classifications"`
	Distribution    map[filetype.Label]int      `json:"distribution"`
	Suggestions     map[filetype.Label][]string `json:"suggestions"`
}

// Classifier runs the scoring pipeline
type Classifier struct {
	rules  []rule
	logger logging.Logger
}

// New creates a classifier with the standard pipeline
func New(logger logging.Logger) *Classifier {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Classifier{rules: defaultRules, logger: logger}
}

// Classify predicts the type of record. It never fails: an internal error
// yields Other with confidence 0.5.
func (c *Classifier) Classify(record *scanner.FileRecord) (result Classification) {
	result = Classification{Path: record.Path, Name: record.Name}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("classification failed", "file", record.Name, "error", fmt.Sprint(r))
			result.Type = filetype.Other
			result.Confidence = fallbackConfidence
		}
	}()

	acc := &accumulator{label: filetype.Other}
	for _, r := range c.rules {
		r.apply(record, acc)
	}

	result.Type = acc.label
	result.Confidence = clamp(acc.confidence)
	return result
}

// ClassifyMany classifies every record and derives the type distribution
// and the suggested organisation
func (c *Classifier) ClassifyMany(records []*scanner.FileRecord) *Report {
	report := &Report{
		Classifications: make([]Classification, 0, len(records)),
		Distribution:    make(map[filetype.Label]int),
		Suggestions:     make(map[filetype.Label][]string),
	}

	for _, record := range records {
		cl := c.Classify(record)
		report.Classifications = append(report.Classifications, cl)

		if cl.Confidence >= distributionThreshold {
			report.Distribution[cl.Type]++
		}
		if cl.Confidence >= suggestionThreshold {
			report.Suggestions[cl.Type] = append(report.Suggestions[cl.Type], cl.Name)
		}
	}

	for label := range report.Suggestions {
		sort.Strings(report.Suggestions[label])
	}
	return report
}
