package voicelog

import (
	"regexp"
	"strings"

	"github.com/xits/voicelog/internal/registry"
)

// contactRE matches "<anchor> <Capitalized> [<Capitalized>]". The anchor
// set covers the prepositions and activity verbs that introduce a person
// in dictated logs; the name part stays case-sensitive so ordinary words
// don't qualify.
var contactRE = regexp.MustCompile(
	`(?:(?i:\b(?:with|to|from|and|met|called|emailed|spoke (?:to|with)|talked (?:to|with)))\s+)` +
		`([A-Z][a-z]+)(?:\s+([A-Z][a-z]+))?`)

// contactSkipWords are capitalized words that follow contact anchors but
// are never names: weekdays, months, deixis, activity nouns.
var contactSkipWords = map[string]struct{}{
	"Monday": {}, "Tuesday": {}, "Wednesday": {}, "Thursday": {}, "Friday": {},
	"Saturday": {}, "Sunday": {}, "January": {}, "February": {}, "March": {},
	"April": {}, "May": {}, "June": {}, "July": {}, "August": {}, "September": {},
	"October": {}, "November": {}, "December": {}, "Today": {}, "Tomorrow": {},
	"The": {}, "This": {}, "That": {}, "They": {}, "Their": {}, "About": {},
	"Called": {}, "Emailed": {}, "Meeting": {}, "Note": {}, "Update": {},
}

// ExtractContact scans the transcription for a personal-name mention.
// account, when non-nil, excludes spans that are part of the matched
// organization's name or aliases so "at Ranch Ehrlo Society" never turns
// into a contact. The first qualifying span wins; no qualifying span is
// not an error and returns nil.
func ExtractContact(text string, account *registry.Entry) *Contact {
	// Blank out the account name up front, mirroring the span exclusion
	// below for the common case where the canonical name appears verbatim.
	if account != nil {
		text = removeFold(text, account.Name())
	}

	for _, m := range contactRE.FindAllStringSubmatch(text, -1) {
		first, last := m[1], m[2]

		if _, skip := contactSkipWords[first]; skip {
			continue
		}
		if _, skip := contactSkipWords[last]; skip {
			last = ""
		}

		span := first
		if last != "" {
			span = first + " " + last
		}
		if account != nil && account.Mentions(span) {
			continue
		}

		return &Contact{FirstName: first, LastName: last}
	}

	return nil
}

// removeFold removes all case-insensitive occurrences of sub from s.
func removeFold(s, sub string) string {
	if sub == "" {
		return s
	}
	lower := strings.ToLower(s)
	needle := strings.ToLower(sub)

	var b strings.Builder
	for {
		i := strings.Index(lower, needle)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		s = s[i+len(sub):]
		lower = lower[i+len(needle):]
	}
}
