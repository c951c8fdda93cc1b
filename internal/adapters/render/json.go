package render

import (
	"encoding/json"
	"io"

	"github.com/eshaffer321/cropplanner/internal/domain/report"
)

// JSON writes the document as indented JSON.
func JSON(w io.Writer, doc *report.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}
