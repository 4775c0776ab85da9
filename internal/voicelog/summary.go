package voicelog

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minSummaryLen keeps the original text when preamble stripping would
// leave too little to be useful on its own.
const minSummaryLen = 10

// summaryPreambles are leading fragments stripped from the transcription
// before it becomes the record summary.
var summaryPreambles = []string{
	"i ", "just ", "hey ", "note ", "update ",
	"log a call ", "log an email ", "log a meeting ", "log a note ",
	"called ", "emailed ", "met with ", "had a meeting with ", "had a call with ",
	"spoke to ", "spoke with ", "talked to ", "talked with ",
}

// BuildSummary derives the record summary from the raw transcription:
// leading preambles are stripped and the first letter is capitalized.
// The raw text is never modified; the summary is a separate field.
func BuildSummary(text string) string {
	summary := strings.TrimSpace(text)

	stripped := true
	for stripped {
		stripped = false
		lower := strings.ToLower(summary)
		for _, p := range summaryPreambles {
			if strings.HasPrefix(lower, p) {
				summary = strings.TrimSpace(summary[len(p):])
				stripped = true
				break
			}
		}
	}

	if len(summary) < minSummaryLen {
		summary = strings.TrimSpace(text)
	}

	return capitalize(summary)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	if unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
