// Package geo maps the ISO-3166 alpha-2 codes stored in the event table to the
// alpha-3 codes the choropleth is keyed by.
package geo

import (
	"strings"

	"github.com/biter777/countries"
)

// ToISO3 converts an alpha-2 code to alpha-3. Codes that are already alpha-3
// are accepted too. The second return value is false for unknown codes.
func ToISO3(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 2 && len(code) != 3 {
		return "", false
	}

	c := countries.ByName(code)
	if c == countries.Unknown {
		return "", false
	}
	return c.Alpha3(), true
}

// Name returns the english country name, or the code itself if unknown
func Name(code string) string {
	c := countries.ByName(strings.ToUpper(strings.TrimSpace(code)))
	if c == countries.Unknown {
		return code
	}
	return c.String()
}
