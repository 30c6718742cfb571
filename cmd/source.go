package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sample-reducer/internal/errors"
	"github.com/ginjaninja78/sample-reducer/internal/section"
)

// sourceFlags selects the section HTML a command works on: either a raw HTML
// file, or a section of a sections file picked by header.
type sourceFlags struct {
	htmlFile     string
	sectionsFile string
	header       string
}

func (s *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.htmlFile, "html", "", "Path to a file holding the section HTML")
	cmd.Flags().StringVar(&s.sectionsFile, "sections", "", "Path to a YAML/JSON sections file (default from config)")
	cmd.Flags().StringVar(&s.header, "section", "", "Header of the section to use (with --sections)")
	cmd.MarkFlagsMutuallyExclusive("html", "section")
}

// load returns the section HTML and a label naming where it came from.
func (s *sourceFlags) load() (html, label string, err error) {
	if s.htmlFile != "" {
		data, err := os.ReadFile(s.htmlFile)
		if err != nil {
			return "", "", errors.Wrap(err, "failed to read HTML file")
		}
		return string(data), s.htmlFile, nil
	}

	if s.header == "" {
		return "", "", errors.WithHint(
			errors.New("no section selected"),
			"pass --html FILE, or --section HEADER with a sections file",
		)
	}

	path := s.sectionsFile
	if path == "" {
		path = cfg.SectionsFile
	}
	if path == "" {
		return "", "", errors.WithHint(
			errors.New("no sections file"),
			"pass --sections FILE or set sections_file in the configuration",
		)
	}

	sections, err := section.LoadFile(path)
	if err != nil {
		return "", "", err
	}
	sec, err := section.Find(sections, s.header)
	if err != nil {
		return "", "", err
	}

	logger.Debugw("Section selected", "header", sec.Header, "journal_id", sec.JournalID)
	return sec.Contents, sec.Header, nil
}
