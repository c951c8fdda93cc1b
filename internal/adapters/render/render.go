// Package render serializes report documents.
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/eshaffer321/cropplanner/internal/domain/report"
)

// Renderer writes a document in one output format.
type Renderer interface {
	Render(w io.Writer, doc *report.Document) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(w io.Writer, doc *report.Document) error

func (f RendererFunc) Render(w io.Writer, doc *report.Document) error {
	return f(w, doc)
}

// Format describes a registered output format.
type Format struct {
	Name        string
	Extension   string
	ContentType string
	Renderer    Renderer
}

// FileName returns the download name of doc in this format.
func (f Format) FileName(doc *report.Document) string {
	return doc.FileName(f.Extension)
}

// UnknownFormatError is returned for an unregistered format name.
type UnknownFormatError struct {
	Name string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown report format %q", e.Name)
}

// Format names.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

// DefaultFormat is used when no format is requested.
const DefaultFormat = FormatPDF

// Registry maps format names to renderers.
type Registry struct {
	formats map[string]Format
}

// NewRegistry returns a registry with the built-in formats.
func NewRegistry() *Registry {
	r := &Registry{formats: make(map[string]Format)}
	r.Register(Format{Name: FormatText, Extension: "txt", ContentType: "text/plain; charset=utf-8", Renderer: RendererFunc(Text)})
	r.Register(Format{Name: FormatJSON, Extension: "json", ContentType: "application/json", Renderer: RendererFunc(JSON)})
	r.Register(Format{Name: FormatPDF, Extension: "pdf", ContentType: "application/pdf", Renderer: RendererFunc(PDF)})
	r.Register(Format{Name: FormatXLSX, Extension: "xlsx", ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Renderer: RendererFunc(XLSX)})
	return r
}

// Register adds or replaces a format.
func (r *Registry) Register(f Format) {
	r.formats[strings.ToLower(f.Name)] = f
}

// Lookup finds a format by name. An empty name selects DefaultFormat;
// "txt" is accepted for text.
func (r *Registry) Lookup(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "":
		name = DefaultFormat
	case "txt":
		name = FormatText
	}
	f, ok := r.formats[name]
	if !ok {
		return Format{}, &UnknownFormatError{Name: name}
	}
	return f, nil
}

// Names lists the registered formats in order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.formats))
	for name := range r.formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
