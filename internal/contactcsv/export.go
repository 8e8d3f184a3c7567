package contactcsv

import (
	"strings"

	"wacms/internal/models"
)

const header = "name,phone,tags"

// Export writes contacts as CSV: a header row, tags joined with ", ",
// rows separated by CRLF.
func Export(contacts []models.Contact) string {
	lines := make([]string, 0, len(contacts)+1)
	lines = append(lines, header)
	for _, c := range contacts {
		lines = append(lines, strings.Join([]string{
			escape(c.Name),
			escape(c.Phone),
			escape(strings.Join(c.Tags, ", ")),
		}, ","))
	}
	return strings.Join(lines, "\r\n")
}

// escape quotes values containing a quote, comma or line break
func escape(v string) string {
	if strings.ContainsAny(v, "\",\n\r") {
		return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return v
}
