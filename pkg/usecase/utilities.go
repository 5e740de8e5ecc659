package usecase

import (
	"regexp"
	"strings"
)

var whitespaceRunRe = regexp.MustCompile(`\s+`)

// CleanStringWhitespace normalizes free-text input that should be a single
// paragraph: trims it and collapses every whitespace run to one space.
func CleanStringWhitespace(text string) string {
	return whitespaceRunRe.ReplaceAllString(strings.TrimSpace(text), " ")
}
