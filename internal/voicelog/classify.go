package voicelog

import "regexp"

// Indicator vocabulary per activity type. Classification is positional:
// the earliest-occurring indicator in the text decides the type, on the
// assumption that the first activity verb mentioned is the primary
// activity ("called Jane then emailed a quote" is a call).
var activityIndicators = []struct {
	activityType ActivityType
	patterns     []*regexp.Regexp
}{
	{ActivityCall, compileAll(
		`\bcall(?:ed|ing)?\b`,
		`\bphon(?:e|ed|ing)\b`,
		`\brang\b`,
		`\bspoke (?:to|with)\b`,
		`\btalked (?:to|with)\b`,
		`\bdialed\b`,
		`\bcold call\b`,
		`\bphone call\b`,
	)},
	{ActivityEmail, compileAll(
		`\bemail(?:ed|ing)?\b`,
		`\be-mail(?:ed|ing)?\b`,
		`\bsent (?:a |an )?(?:email|message|note)\b`,
		`\binbox\b`,
		`\bwrote to\b`,
		`\bfollowed up via email\b`,
	)},
	{ActivityMeeting, compileAll(
		`\bm(?:et|eeting)\b`,
		`\bsat down with\b`,
		`\bvisit(?:ed|ing)?\b`,
		`\bsite visit\b`,
		`\bdemo(?:nstrat(?:ed|ion))?\b`,
		`\bpresent(?:ed|ation)\b`,
		`\blunch(?:ed)?\b`,
		`\bcoffee with\b`,
		`\bteams call\b`,
		`\bzoom\b`,
		`\bwebex\b`,
		`\bin-person\b`,
		`\bface to face\b`,
	)},
	{ActivityNote, compileAll(
		`\bnote\b`,
		`\bupdate\b`,
		`\bfyi\b`,
		`\bheads up\b`,
		`\breminder\b`,
	)},
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?i)`+p))
	}
	return out
}

// Classify infers the activity type from the transcription. It is total:
// every input yields exactly one type, with Note as the no-evidence
// fallback. When indicators from several types are present the one with
// the smallest match offset wins; offset ties keep the declaration order
// above (call > email > meeting > note).
func Classify(text string) ActivityType {
	best := ActivityNote
	bestPos := -1

	for _, group := range activityIndicators {
		for _, re := range group.patterns {
			loc := re.FindStringIndex(text)
			if loc == nil {
				continue
			}
			if bestPos == -1 || loc[0] < bestPos {
				bestPos = loc[0]
				best = group.activityType
			}
		}
	}

	return best
}
