package render

import (
	"bufio"
	"io"
	"strings"

	"github.com/eshaffer321/cropplanner/internal/domain/report"
)

// Text writes the document as indented plain text.
func Text(w io.Writer, doc *report.Document) error {
	bw := bufio.NewWriter(w)

	bw.WriteString(doc.Title)
	bw.WriteByte('\n')
	bw.WriteString(strings.Repeat("=", len([]rune(doc.Title))))
	bw.WriteByte('\n')

	for _, section := range doc.Sections {
		if section.Kind != report.SectionHeader {
			bw.WriteByte('\n')
			bw.WriteString(section.Heading)
			bw.WriteString(":\n")
		}
		for _, line := range section.Lines {
			bw.WriteString(strings.Repeat("  ", line.Indent+1))
			bw.WriteString(line.Label)
			bw.WriteString(": ")
			bw.WriteString(line.Value)
			bw.WriteByte('\n')
		}
	}

	return bw.Flush()
}
