package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// SectionInfo describes how a report section is labelled and rendered.
type SectionInfo struct {
	Key      string // Canonical key: "india"
	Label    string // Display label: "INDIA"
	Order    int    // Position of the paste box in the editor
	Numbered bool   // Summary renders as an ordered list of points
}

var (
	sections   = make(map[string]SectionInfo)
	sectionsMu sync.RWMutex
)

func init() {
	RegisterSection(SectionInfo{Key: "india", Label: "INDIA", Order: 10})
	RegisterSection(SectionInfo{Key: "international", Label: "INTERNATIONAL", Order: 20})
	RegisterSection(SectionInfo{Key: "analysis", Label: "ANALYSIS", Order: 30, Numbered: true})
	RegisterSection(SectionInfo{Key: "recommendation", Label: "RECOMMENDATION", Order: 40, Numbered: true})
}

// RegisterSection adds a section to the registry.
// Panics if a section with the same key is already registered.
func RegisterSection(info SectionInfo) {
	sectionsMu.Lock()
	defer sectionsMu.Unlock()

	info.Key = CanonicalSection(info.Key)
	if _, exists := sections[info.Key]; exists {
		panic(fmt.Sprintf("section already registered: %s", info.Key))
	}
	if info.Label == "" {
		info.Label = strings.ToUpper(info.Key)
	}
	sections[info.Key] = info
}

// LookupSection returns the registered info for a section.
// Returns false if not registered.
func LookupSection(section string) (SectionInfo, bool) {
	sectionsMu.RLock()
	defer sectionsMu.RUnlock()

	info, ok := sections[CanonicalSection(section)]
	return info, ok
}

// DescribeSection returns registered info, or a plain un-numbered description
// for a section that only exists in pasted data.
func DescribeSection(section string) SectionInfo {
	if info, ok := LookupSection(section); ok {
		return info
	}
	key := CanonicalSection(section)
	return SectionInfo{Key: key, Label: strings.ToUpper(key)}
}

// Sections returns all registered sections sorted by Order, then key.
func Sections() []SectionInfo {
	sectionsMu.RLock()
	defer sectionsMu.RUnlock()

	result := make([]SectionInfo, 0, len(sections))
	for _, info := range sections {
		result = append(result, info)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Order != result[j].Order {
			return result[i].Order < result[j].Order
		}
		return result[i].Key < result[j].Key
	})

	return result
}
