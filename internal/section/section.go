// =============================================================================
// Sample Reducer - Section Lookup
// =============================================================================
//
// An experiment is a list of sections, each with a free-text header and an
// HTML body. The user names the section to reduce by its header; headers are
// typed by hand, so both sides are compared after label normalization
// ("Media Preparation:" matches "media  preparation").
//
// Sections are read from a YAML (or JSON) file:
//
//   - header: "Media Preparation"
//     journal_id: 1841
//     contents: |
//       <table>...</table>
//
// =============================================================================

package section

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/sample-reducer/internal/errors"
	"github.com/ginjaninja78/sample-reducer/internal/normalize"
)

// ErrSectionNotFound is returned when no section header matches.
var ErrSectionNotFound = errors.New("section not found")

// ErrEmptySection is returned when the matching section has no contents.
var ErrEmptySection = errors.New("section has no contents")

// Section is one experiment section.
type Section struct {
	Header    string `yaml:"header"`
	JournalID int64  `yaml:"journal_id"`
	Contents  string `yaml:"contents"`
}

// LoadFile reads a list of sections.
func LoadFile(path string) ([]Section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sections file %s", path)
	}

	var sections []Section
	if err := yaml.Unmarshal(data, &sections); err != nil {
		return nil, errors.Wrapf(err, "failed to parse sections file %s", path)
	}

	return sections, nil
}

// Find returns the first section whose header matches header.
func Find(sections []Section, header string) (Section, error) {
	for _, s := range sections {
		if !normalize.SameLabel(s.Header, header) {
			continue
		}
		if s.Contents == "" {
			return Section{}, errors.Wrapf(ErrEmptySection, "%q", s.Header)
		}
		return s, nil
	}

	return Section{}, errors.WithHintf(
		errors.Wrapf(ErrSectionNotFound, "%q", header),
		"available sections: %s", headers(sections))
}

func headers(sections []Section) string {
	if len(sections) == 0 {
		return "(none)"
	}
	quoted := make([]string, len(sections))
	for i, s := range sections {
		quoted[i] = strconv.Quote(s.Header)
	}
	return strings.Join(quoted, ", ")
}
