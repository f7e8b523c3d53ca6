package core

import (
	"regexp"
	"strings"
)

// GroupBySection groups records by section. Groups appear in the order their
// section was first seen and keep insertion order inside. A section without
// records has no group; callers treat absence as "no data".
func GroupBySection(records []Record) []SectionGroup {
	var groups []SectionGroup
	index := make(map[string]int)

	for _, rec := range records {
		i, ok := index[rec.Section]
		if !ok {
			i = len(groups)
			index[rec.Section] = i
			groups = append(groups, SectionGroup{Section: rec.Section})
		}
		groups[i].Records = append(groups[i].Records, rec)
	}
	return groups
}

var pointPrefix = regexp.MustCompile(`^\d+\.\s*`)

// NumberedPoints splits a numbered-section summary into its points:
// one per line, trimmed, blank lines dropped, a leading "1. " style prefix
// removed. Order is preserved.
func NumberedPoints(summary string) []string {
	var points []string
	for _, piece := range strings.Split(summary, "\n") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		piece = pointPrefix.ReplaceAllString(piece, "")
		if piece == "" {
			continue
		}
		points = append(points, piece)
	}
	return points
}
