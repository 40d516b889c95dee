package chat

import (
	"encoding/csv"
	"strings"
)

// IsTabular decides whether assistant text should render as a table: it
// contains a comma and spans more than one line. The server does not declare
// a content type, so this is a best-effort sniff that can misclassify prose
// containing commas across lines; that is a documented limitation, not
// something to patch around.
func IsTabular(text string) bool {
	return strings.Contains(text, ",") && strings.Contains(text, "\n")
}

// ParseCSV splits tabular assistant text into rows. Rows may have ragged
// lengths and loosely quoted cells; anything unparseable degrades to a
// line-by-line comma split so the chat never drops a message.
func ParseCSV(text string) [][]string {
	reader := csv.NewReader(strings.NewReader(strings.TrimSpace(text)))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err == nil && len(rows) > 0 {
		return rows
	}

	var out [][]string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		out = append(out, strings.Split(line, ","))
	}
	return out
}
