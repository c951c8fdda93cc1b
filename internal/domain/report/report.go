// Package report assembles the crop plan document.
//
// A Document is an ordered list of labeled sections. Renderers (text, PDF,
// spreadsheet) serialize it without adding content of their own, so the same
// input always yields the same document. The only time-dependent value is
// GeneratedAt, which lives in the header section.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/eshaffer321/cropplanner/internal/domain/aggregator"
	"github.com/eshaffer321/cropplanner/internal/domain/catalog"
)

// Title is the document title.
const Title = "Crop Optimization Report"

// Unavailable is printed in place of a missing price.
const Unavailable = "unavailable"

// SectionKind identifies a section.
type SectionKind string

const (
	SectionHeader     SectionKind = "header"
	SectionSummary    SectionKind = "summary"
	SectionPrices     SectionKind = "prices"
	SectionAllocation SectionKind = "allocation"
)

// Line is a labeled value. Indent nests a line under the one above it.
type Line struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Indent int    `json:"indent,omitempty"`
}

// Section is a titled group of lines.
type Section struct {
	Kind    SectionKind `json:"kind"`
	Heading string      `json:"heading"`
	Lines   []Line      `json:"lines"`
}

// Document is the assembled report.
type Document struct {
	Title       string    `json:"title"`
	GeneratedAt time.Time `json:"generated_at"`
	Region      string    `json:"region"`
	Crops       []string  `json:"crops"`
	Sections    []Section `json:"sections"`
}

// Section returns the section of the given kind.
func (d *Document) Section(kind SectionKind) (Section, bool) {
	for _, s := range d.Sections {
		if s.Kind == kind {
			return s, true
		}
	}
	return Section{}, false
}

// FileName is the download name for the document.
func (d *Document) FileName(ext string) string {
	return FileName(d.Region, d.Crops, d.GeneratedAt, ext)
}

// Input is everything the assembler reads.
type Input struct {
	Region      string
	LandArea    float64
	Records     []aggregator.Record
	GeneratedAt time.Time
}

// Assemble builds the document. It is a pure function of in.
func Assemble(in Input) *Document {
	generated := in.GeneratedAt.UTC()

	crops := make([]string, len(in.Records))
	for i, r := range in.Records {
		crops[i] = r.Crop
	}

	regionName := "-"
	if in.Region != "" {
		regionName = catalog.DisplayName(in.Region)
	}

	doc := &Document{
		Title:       Title,
		GeneratedAt: generated,
		Region:      in.Region,
		Crops:       crops,
	}

	doc.Sections = append(doc.Sections, Section{
		Kind:    SectionHeader,
		Heading: Title,
		Lines: []Line{
			{Label: "Generated", Value: generated.Format(time.RFC3339)},
		},
	})

	doc.Sections = append(doc.Sections, Section{
		Kind:    SectionSummary,
		Heading: "Summary",
		Lines: []Line{
			{Label: "Region", Value: regionName},
			{Label: "Land area", Value: FormatArea(in.LandArea)},
			{Label: "Crops", Value: strings.Join(crops, ", ")},
		},
	})

	prices := Section{Kind: SectionPrices, Heading: "Market Prices"}
	for _, r := range in.Records {
		prices.Lines = append(prices.Lines, Line{Label: r.Crop, Value: FormatQuote(r.Quote)})
		switch {
		case r.Quote.Available && r.Quote.Warning != "":
			prices.Lines = append(prices.Lines, Line{Label: "Note", Value: r.Quote.Warning, Indent: 1})
		case !r.Quote.Available && r.Quote.Reason != "":
			prices.Lines = append(prices.Lines, Line{Label: "Note", Value: r.Quote.Reason, Indent: 1})
		}
		if r.Forecast != nil {
			prices.Lines = append(prices.Lines, Line{Label: "Forecast", Value: FormatPrice(*r.Forecast), Indent: 1})
		}
	}
	doc.Sections = append(doc.Sections, prices)

	alloc := Section{Kind: SectionAllocation, Heading: "Allocation and Fertilizer (%)"}
	for _, r := range in.Records {
		alloc.Lines = append(alloc.Lines, Line{
			Label: r.Crop,
			Value: fmt.Sprintf("%s (%s)", FormatArea(r.Area), FormatPercent(r.Percent)),
		})
		for _, n := range r.Profile {
			alloc.Lines = append(alloc.Lines, Line{
				Label:  n.Name,
				Value:  formatNumber(n.Percent) + "%",
				Indent: 1,
			})
		}
	}
	doc.Sections = append(doc.Sections, alloc)

	return doc
}

// FormatQuote prints a price or the unavailable sentinel.
func FormatQuote(q aggregator.Quote) string {
	if !q.Available {
		return Unavailable
	}
	return FormatPrice(q.Price)
}

// FormatPrice prints a rupee amount; whole amounts have no decimals.
func FormatPrice(p float64) string {
	return "₹" + formatNumber(p)
}

// FormatArea prints hectares with two decimals.
func FormatArea(ha float64) string {
	return strconv.FormatFloat(ha, 'f', 2, 64) + " ha"
}

// FormatPercent prints a share with one decimal.
func FormatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64) + "%"
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FileName builds report_<region>_<crop+crop>_<YYYYMMDD-HHMMSS>.<ext>.
func FileName(region string, crops []string, generatedAt time.Time, ext string) string {
	parts := []string{"report"}
	if r := slug(region); r != "" {
		parts = append(parts, r)
	}
	if len(crops) > 0 {
		slugs := make([]string, 0, len(crops))
		for _, c := range crops {
			slugs = append(slugs, slug(c))
		}
		parts = append(parts, strings.Join(slugs, "+"))
	}
	parts = append(parts, generatedAt.UTC().Format("20060102-150405"))

	name := strings.Join(parts, "_")
	if ext = strings.TrimPrefix(ext, "."); ext != "" {
		name += "." + ext
	}
	return name
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "-") {
				b.WriteByte('-')
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
