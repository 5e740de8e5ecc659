package authordb

import (
	"regexp"
	"strings"
)

// accentCommands maps LaTeX accent escapes to their composed characters for
// the sequences that actually occur in authordb.yaml.
var accentReplacer = strings.NewReplacer(
	`\'e`, "é", `\'{e}`, "é",
	"\\`e", "è", "\\`{e}", "è",
	`\"o`, "ö", `\"{o}`, "ö",
	`\"u`, "ü", `\"{u}`, "ü",
	`\"a`, "ä", `\"{a}`, "ä",
	`\~n`, "ñ", `\~{n}`, "ñ",
	`\'a`, "á", `\'{a}`, "á",
	`\'i`, "í", `\'{i}`, "í",
	`\'o`, "ó", `\'{o}`, "ó",
	`\'u`, "ú", `\'{u}`, "ú",
	`\c{c}`, "ç",
	`\&`, "&",
	`~`, " ",
)

var (
	latexCommandRe = regexp.MustCompile(`\\[a-zA-Z]+\s*`)
	multiSpaceRe   = regexp.MustCompile(` +`)
)

// latexToText flattens LaTeX markup in registry text fields to plain text.
// Only the constructs seen in authordb.yaml are handled: accent escapes,
// argument-less commands and grouping braces.
func latexToText(tex string) string {
	text := accentReplacer.Replace(strings.TrimSpace(tex))
	text = latexCommandRe.ReplaceAllString(text, "")
	text = strings.NewReplacer("{", "", "}", "").Replace(text)
	return multiSpaceRe.ReplaceAllString(text, " ")
}
