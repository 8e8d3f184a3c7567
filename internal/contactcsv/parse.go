// Package contactcsv converts between CSV text and contact rows.
package contactcsv

import (
	"regexp"
	"strings"

	"wacms/internal/phone"
)

// UnknownName is used when a row has no name
const UnknownName = "Unknown"

// Mode tells how columns are located
type Mode int

const (
	// Positional reads name, phone and tags from columns 0, 1 and 2.
	Positional Mode = iota
	// Headered reads columns by the names found in the first row.
	Headered
)

// Columns maps fields to column indexes
type Columns struct {
	Name  int
	Phone int
	Tags  int
}

// Layout is resolved once per import
type Layout struct {
	Mode    Mode
	Columns Columns
}

// Row is one parsed contact
type Row struct {
	Name  string
	Phone string
	Tags  []string
}

var tagSeparators = regexp.MustCompile(`[;,|]`)

// Parse reads contacts from CSV text. Rows whose phone normalizes to an
// empty string are dropped.
func Parse(text, defaultCountryCode string) []Row {
	records := SplitRecords(text)
	if len(records) == 0 {
		return nil
	}

	layout := DetectLayout(records[0])
	start := 0
	if layout.Mode == Headered {
		start = 1
	}

	rows := make([]Row, 0, len(records)-start)
	for _, record := range records[start:] {
		p := phone.ForImport(cell(record, layout.Columns.Phone), defaultCountryCode)
		if p == "" {
			continue
		}

		name := strings.TrimSpace(cell(record, layout.Columns.Name))
		if name == "" {
			name = UnknownName
		}

		rows = append(rows, Row{
			Name:  name,
			Phone: p,
			Tags:  SplitTags(cell(record, layout.Columns.Tags)),
		})
	}
	return rows
}

// DetectLayout treats the row as a header when any lower-cased cell is
// name, phone or tags. A field missing from a header keeps its positional
// column.
func DetectLayout(first []string) Layout {
	lower := make([]string, len(first))
	for i, c := range first {
		lower[i] = strings.ToLower(c)
	}

	positional := Columns{Name: 0, Phone: 1, Tags: 2}
	nameIdx, phoneIdx, tagsIdx := indexOf(lower, "name"), indexOf(lower, "phone"), indexOf(lower, "tags")
	if nameIdx < 0 && phoneIdx < 0 && tagsIdx < 0 {
		return Layout{Mode: Positional, Columns: positional}
	}

	columns := positional
	if nameIdx >= 0 {
		columns.Name = nameIdx
	}
	if phoneIdx >= 0 {
		columns.Phone = phoneIdx
	}
	if tagsIdx >= 0 {
		columns.Tags = tagsIdx
	}
	return Layout{Mode: Headered, Columns: columns}
}

// SplitTags splits on ";", "," or "|", trimming pieces and dropping empties
func SplitTags(raw string) []string {
	tags := []string{}
	if raw == "" {
		return tags
	}
	for _, piece := range tagSeparators.Split(raw, -1) {
		if t := strings.TrimSpace(piece); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// SplitRecords tokenizes CSV text into trimmed cells.
// Quotes toggle quoted mode and "" inside quotes yields a literal quote.
// \n, \r\n and \r end a row outside quotes. A leading BOM is ignored and
// rows made only of blank cells are dropped.
func SplitRecords(text string) [][]string {
	text = strings.TrimPrefix(text, "\ufeff")

	var (
		records  [][]string
		row      []string
		current  strings.Builder
		inQuotes bool
	)

	endCell := func() {
		row = append(row, strings.TrimSpace(current.String()))
		current.Reset()
	}
	endRow := func() {
		if !blank(row) {
			records = append(records, row)
		}
		row = nil
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]

		if inQuotes {
			if ch == '"' {
				if i+1 < len(text) && text[i+1] == '"' {
					current.WriteByte('"')
					i++
				} else {
					inQuotes = false
				}
			} else {
				current.WriteByte(ch)
			}
			continue
		}

		switch ch {
		case '"':
			inQuotes = true
		case ',':
			endCell()
		case '\n', '\r':
			endCell()
			if ch == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			endRow()
		default:
			current.WriteByte(ch)
		}
	}

	if current.Len() > 0 || len(row) > 0 {
		endCell()
		endRow()
	}

	return records
}

func blank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func indexOf(cells []string, want string) int {
	for i, c := range cells {
		if c == want {
			return i
		}
	}
	return -1
}
