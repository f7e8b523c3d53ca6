// Package bundle reads report bundles: YAML files that carry a report's
// header fields and its CSV pastes, for building a report without the editor.
//
//	title: Fraud Watchlist
//	period: 18 Oct 2025 - 24 Oct 2025
//	sections:
//	  - key: india
//	    csv: |
//	      Date,Title,Category,Summary,Source
//	      2025-10-18,Counterfeit seizure,IPR,...,https://...
//	  - key: analysis
//	    file: ~/reports/analysis.csv
//	combined: |
//	  Section,Date,Title,Category,Summary,Source
//	  ...
package bundle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/fraudwatch/internal/core"
)

// Bundle is one report as pasted CSV plus header fields. Empty header fields
// fall back to the configured defaults.
type Bundle struct {
	Title      string    `yaml:"title"`
	Period     string    `yaml:"period"`
	Categories string    `yaml:"categories"`
	Compiled   string    `yaml:"compiled"`
	Sections   []Section `yaml:"sections"`
	Combined   string    `yaml:"combined"`

	// dir resolves relative section files.
	dir string
}

// Section is one per-section paste, inline or from a file.
type Section struct {
	Key      string `yaml:"key"`
	CSV      string `yaml:"csv"`
	FilePath string `yaml:"file"`
}

// FromFile reads a bundle from a YAML file.
func FromFile(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("bundle %s: %w", path, err)
	}
	b.dir = filepath.Dir(path)
	return b, nil
}

// Parse decodes a bundle and checks that every section names a key and
// exactly one source.
func Parse(data []byte) (*Bundle, error) {
	var b Bundle
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, err
	}

	var errs []error
	for i, s := range b.Sections {
		switch {
		case strings.TrimSpace(s.Key) == "":
			errs = append(errs, fmt.Errorf("sections[%d]: key is required", i))
		case s.CSV != "" && s.FilePath != "":
			errs = append(errs, fmt.Errorf("sections[%d] (%s): set csv or file, not both", i, s.Key))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &b, nil
}

// Document builds the report on top of defaults. The combined paste, if
// any, replaces all records first; each section paste then replaces its
// section in bundle order.
func (b *Bundle) Document(defaults core.Document) (core.Document, error) {
	doc := core.Document{
		Title:      firstNonEmpty(b.Title, defaults.Title),
		Period:     firstNonEmpty(b.Period, defaults.Period),
		Categories: firstNonEmpty(b.Categories, defaults.Categories),
		Compiled:   firstNonEmpty(b.Compiled, defaults.Compiled),
	}

	if b.Combined != "" {
		doc = doc.ReplaceAll(core.ParseRows(b.Combined, core.CombinedSchema))
	}

	for _, s := range b.Sections {
		text, err := s.text(b.dir)
		if err != nil {
			return core.Document{}, err
		}
		doc = doc.ReplaceSection(s.Key, core.ParseSection(text, s.Key))
	}
	return doc, nil
}

// text returns the section's CSV, reading its file when one is named.
func (s Section) text(dir string) (string, error) {
	if s.FilePath == "" {
		return s.CSV, nil
	}

	path, err := s.File(dir)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read section file %s: %w", path, err)
	}
	return string(data), nil
}

// File returns the section's file path, expanding ~ and resolving relative
// paths against dir.
func (s Section) File(dir string) (string, error) {
	switch {
	case strings.HasPrefix(s.FilePath, "~/"):
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, s.FilePath[2:]), nil
	case filepath.IsAbs(s.FilePath) || dir == "":
		return s.FilePath, nil
	default:
		return filepath.Join(dir, s.FilePath), nil
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
