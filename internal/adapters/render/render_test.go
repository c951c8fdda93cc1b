package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/eshaffer321/cropplanner/internal/domain/aggregator"
	"github.com/eshaffer321/cropplanner/internal/domain/allocator"
	"github.com/eshaffer321/cropplanner/internal/domain/catalog"
	"github.com/eshaffer321/cropplanner/internal/domain/report"
)

func sampleDocument(t *testing.T) *report.Document {
	t.Helper()
	req := allocator.Request{LandArea: 5, Region: "karnataka", Crops: []string{"Rice", "Ragi"}}
	result, err := allocator.Normalize(req, nil)
	require.NoError(t, err)

	quotes := map[string]aggregator.Quote{
		"Rice": aggregator.PriceQuote("Rice", "karnataka", 1850, ""),
		"Ragi": aggregator.Unavailable("Ragi", "karnataka", "status 404"),
	}
	records, err := aggregator.Aggregate(result, "karnataka", quotes, catalog.Default())
	require.NoError(t, err)

	return report.Assemble(report.Input{
		Region:      "karnataka",
		LandArea:    5,
		Records:     records,
		GeneratedAt: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
	})
}

func TestRegistry_Lookup(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name string
		want string
		ext  string
	}{
		{"", FormatPDF, "pdf"},
		{"text", FormatText, "txt"},
		{"TXT", FormatText, "txt"},
		{"json", FormatJSON, "json"},
		{"xlsx", FormatXLSX, "xlsx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := r.Lookup(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Name)
			assert.Equal(t, tt.ext, f.Extension)
			assert.NotEmpty(t, f.ContentType)
		})
	}

	_, err := r.Lookup("docx")
	var unknown *UnknownFormatError
	assert.True(t, errors.As(err, &unknown))
	assert.Equal(t, []string{"json", "pdf", "text", "xlsx"}, r.Names())
}

func TestFormat_FileName(t *testing.T) {
	f, err := NewRegistry().Lookup("text")
	require.NoError(t, err)
	assert.Equal(t, "report_karnataka_rice+ragi_20240501-093000.txt", f.FileName(sampleDocument(t)))
}

func TestText(t *testing.T) {
	doc := sampleDocument(t)

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, doc))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "Crop Optimization Report\n========================\n"))
	assert.Contains(t, out, "  Generated: 2024-05-01T09:30:00Z\n")
	assert.Contains(t, out, "\nSummary:\n  Region: Karnataka\n  Land area: 5.00 ha\n  Crops: Rice, Ragi\n")
	assert.Contains(t, out, "  Rice: ₹1850\n")
	assert.Contains(t, out, "  Ragi: unavailable\n    Note: status 404\n")
	assert.Contains(t, out, "  Rice: 2.50 ha (50.0%)\n    Nitrogen: ")

	var again bytes.Buffer
	require.NoError(t, Text(&again, doc))
	assert.Equal(t, buf.Bytes(), again.Bytes())
}

func TestJSON(t *testing.T) {
	doc := sampleDocument(t)

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, doc))
	assert.Contains(t, buf.String(), `"value": "₹1850"`)

	var decoded report.Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, doc.Title, decoded.Title)
	assert.Equal(t, doc.Crops, decoded.Crops)
	require.Len(t, decoded.Sections, len(doc.Sections))
	assert.Equal(t, doc.Sections[2].Lines, decoded.Sections[2].Lines)
}

func TestPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, sampleDocument(t)))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.True(t, bytes.Contains(buf.Bytes(), []byte("%%EOF")))
}

func TestXLSX(t *testing.T) {
	doc := sampleDocument(t)

	var buf bytes.Buffer
	require.NoError(t, XLSX(&buf, doc))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(SheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, report.Title, title)

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)

	var lines int
	for _, s := range doc.Sections {
		lines += len(s.Lines)
	}
	// Title row and a blank row precede the lines.
	assert.Len(t, rows, lines+2)
	assert.Equal(t, []string{"Summary", "Region", "Karnataka"}, rows[3])
}
