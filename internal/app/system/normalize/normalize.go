// Package normalize provides the canonical trimming and casing applied to
// form and query input before it is stored or compared.
package normalize

import "strings"

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and collapses inner runs of spaces.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Status trims and lowercases a status value. Inner spaces are kept so
// "En Revision" becomes "en revision".
func Status(s string) string {
	return strings.ToLower(Name(s))
}

// QueryParam trims a query parameter.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// List splits a comma-separated value, trims each item and drops empties.
// It returns nil when nothing remains.
func List(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
