package media

import "strings"

// Filter returns the records whose description contains keyword as a
// case-insensitive substring, preserving order. An empty keyword matches every
// record. The result is never nil.
func Filter(records []Record, keyword string) []Record {
	needle := strings.ToLower(keyword)
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Description), needle) {
			out = append(out, r)
		}
	}
	return out
}
