// Package slug builds URL slugs that keep non-Latin letters, so Arabic
// product names produce readable slugs.
package slug

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

var (
	disallowed = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	separators = regexp.MustCompile(`[-\s]+`)
)

// Make lower-cases value, drops punctuation and collapses whitespace and
// dashes into single dashes.
func Make(value string) string {
	value = norm.NFKC.String(value)
	value = disallowed.ReplaceAllString(strings.ToLower(value), "")
	value = separators.ReplaceAllString(value, "-")
	return strings.Trim(value, "-_")
}

// WithSuffix appends the first 8 characters of a random UUID to Make(value).
func WithSuffix(value string) string {
	return Make(value) + "-" + uuid.NewString()[:8]
}
