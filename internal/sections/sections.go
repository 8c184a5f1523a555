// Package sections extracts numbered lists that follow known marker lines in
// model output.
//
// This is a best-effort scan tied to the wording the prompts ask the model
// to use. If the model rephrases a marker, its section comes back empty.
// Prefer structured output over extending this parser.
package sections

import (
	"regexp"
	"strings"
)

var numbered = regexp.MustCompile(`^\d+\.`)

// Marker names a section and the literal text that opens it.
type Marker struct {
	Name string `yaml:"name" json:"name"`
	Text string `yaml:"text" json:"text"`
}

// Section is one parsed list, possibly empty.
type Section struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

// Parse scans text line by line. A line containing a marker's text opens
// that marker's section; a numbered line inside a section contributes its
// text without the number; every other line is dropped. Markers are tried
// in order, so the first matching marker wins. The result has one section
// per marker, in marker order.
func Parse(text string, markers []Marker) []Section {
	result := make([]Section, len(markers))
	for i, marker := range markers {
		result[i] = Section{Name: marker.Name, Items: []string{}}
	}

	current := -1
	for _, line := range strings.Split(text, "\n") {
		if idx := markerIndex(line, markers); idx >= 0 {
			current = idx
			continue
		}

		if current < 0 {
			continue
		}

		trimmed := strings.TrimSpace(line)
		loc := numbered.FindStringIndex(trimmed)
		if loc == nil {
			continue
		}

		result[current].Items = append(result[current].Items, strings.TrimSpace(trimmed[loc[1]:]))
	}

	return result
}

// Lookup returns the items of the named section, or nil.
func Lookup(parsed []Section, name string) []string {
	for _, section := range parsed {
		if section.Name == name {
			return section.Items
		}
	}
	return nil
}

func markerIndex(line string, markers []Marker) int {
	for i, marker := range markers {
		if marker.Text != "" && strings.Contains(line, marker.Text) {
			return i
		}
	}
	return -1
}
