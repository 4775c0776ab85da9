package voicelog

import (
	"regexp"
	"sort"
	"strings"

	"github.com/xits/voicelog/internal/registry"
)

const (
	// matchFloor is the minimum qualifying score. Entries scoring below it
	// are excluded: an account is never guessed without lexical evidence.
	matchFloor = 0.5

	// minSubstringLen guards the containment strategy against matching on
	// short fragments ("co", "the").
	minSubstringLen = 4

	scoreEpsilon = 1e-9
)

// anchorRE finds prepositional anchors that introduce organization
// mentions. The span after "at"/"for" is the primary candidate.
var anchorRE = regexp.MustCompile(`(?i)\b(at|for|about|with|from|regarding)\b[ \t]+`)

// spanEndRE terminates a candidate span at the start of the next clause.
var spanEndRE = regexp.MustCompile(`(?i)\s+about\b|\s+regarding\b|\s+and\b|\s+they\b|\s+we\b|\s+I\b|\s*[,.;:!?]`)

// tokenStopwords are ignored when computing token-overlap ratios.
var tokenStopwords = map[string]struct{}{
	"of": {}, "the": {}, "and": {}, "&": {},
}

// candidate is one organization span under consideration.
type candidate struct {
	span    string // original casing, trimmed
	folded  string
	primary bool // introduced by "at"/"for"
}

// ScoredCandidate is a qualifying (span, entry) pairing, for diagnostics.
type ScoredCandidate struct {
	Span     string
	Account  string
	Score    float64
	Strategy string
}

// scoreStrategy is one stage of the matching cascade. Stages are ordered
// by descending strength; the first stage that fires decides the pair's
// score, and the stage's position doubles as the precedence rank used to
// split score ties (an exact canonical hit beats an explicit alias, which
// beats a derived lookup form).
type scoreStrategy struct {
	name  string
	score func(folded string, e *registry.Entry) float64
}

var strategies = []scoreStrategy{
	{"exact", func(c string, e *registry.Entry) float64 {
		if c == e.NameLower() {
			return 1.0
		}
		return 0
	}},
	{"alias", func(c string, e *registry.Entry) float64 {
		if e.HasExplicitAlias(c) {
			return 1.0
		}
		return 0
	}},
	{"derived", func(c string, e *registry.Entry) float64 {
		if e.HasDerived(c) {
			return 1.0
		}
		return 0
	}},
	{"suffix", func(c string, e *registry.Entry) float64 {
		if registry.StripLegalSuffix(c) == e.Normalized() {
			return 0.9
		}
		return 0
	}},
	{"substring", func(c string, e *registry.Entry) float64 {
		if len(c) >= minSubstringLen &&
			(strings.Contains(e.NameLower(), c) || strings.Contains(c, e.NameLower())) {
			return 0.7
		}
		for _, a := range e.Aliases() {
			if len(a) >= minSubstringLen && len(c) >= minSubstringLen &&
				(strings.Contains(a, c) || strings.Contains(c, a)) {
				return 0.7
			}
		}
		return 0
	}},
	{"tokens", func(c string, e *registry.Entry) float64 {
		return tokenOverlapScore(c, e)
	}},
}

// tokenOverlapScore maps the overlap ratio between the candidate's tokens
// and a multi-word entry's tokens into the 0.5–0.7 band. Ratios under 0.5
// do not qualify.
func tokenOverlapScore(folded string, e *registry.Entry) float64 {
	entryTokens := make([]string, 0, len(e.Tokens()))
	for _, t := range e.Tokens() {
		if _, stop := tokenStopwords[t]; !stop {
			entryTokens = append(entryTokens, t)
		}
	}
	if len(entryTokens) < 2 {
		return 0
	}

	candTokens := make(map[string]struct{})
	for _, t := range strings.Fields(folded) {
		candTokens[t] = struct{}{}
	}

	overlap := 0
	for _, t := range entryTokens {
		if _, ok := candTokens[t]; ok {
			overlap++
		}
	}

	ratio := float64(overlap) / float64(len(entryTokens))
	if ratio < matchFloor {
		return 0
	}
	return 0.5 + 0.4*(ratio-0.5)
}

// Matcher resolves organization mentions against an immutable registry.
// It is a pure function of (text, registry) and safe for concurrent use.
type Matcher struct {
	reg *registry.Registry
}

// NewMatcher returns a Matcher over reg.
func NewMatcher(reg *registry.Registry) *Matcher {
	return &Matcher{reg: reg}
}

// Registry returns the registry the matcher scores against.
func (m *Matcher) Registry() *registry.Registry { return m.reg }

// Match resolves the best account mention in text. Ties between distinct
// accounts at the top score are split first by strategy precedence (an
// exact canonical hit beats an explicit alias beats a derived form), then
// by the superstring rule (the entry whose canonical name covers every
// other tied entry's name wins); a residual tie is reported as Unmatched
// rather than guessed.
func (m *Matcher) Match(text string) MatchResult {
	cands := extractCandidates(text)

	type pairing struct {
		entry    *registry.Entry
		span     string
		score    float64
		strategy string
		rank     int // strategy index; lower is stronger evidence
	}

	resolved := func(p pairing) MatchResult {
		return MatchResult{
			Entry:       p.entry,
			Confidence:  p.score,
			MatchedSpan: p.span,
			Strategy:    p.strategy,
		}
	}

	var best float64
	var top []pairing

	for _, c := range cands {
		for _, e := range m.reg.Entries() {
			for rank, s := range strategies {
				score := s.score(c.folded, e)
				if score == 0 {
					continue
				}
				switch {
				case score > best+scoreEpsilon:
					best = score
					top = top[:0]
					top = append(top, pairing{e, c.span, score, s.name, rank})
				case score > best-scoreEpsilon:
					top = append(top, pairing{e, c.span, score, s.name, rank})
				}
				break // cascade: first firing strategy decides the pair
			}
		}
	}

	if len(top) == 0 {
		return MatchResult{Kind: UnmatchedNoMatch, Candidate: primaryCandidate(cands)}
	}

	// Collapse multiple spans hitting the same entry onto its strongest
	// pairing; candidate order breaks rank ties deterministically.
	var unique []pairing
	index := make(map[string]int)
	for _, p := range top {
		key := p.entry.NameLower()
		if at, dup := index[key]; dup {
			if p.rank < unique[at].rank {
				unique[at] = p
			}
			continue
		}
		index[key] = len(unique)
		unique = append(unique, p)
	}

	if len(unique) == 1 {
		return resolved(unique[0])
	}

	// Strategy precedence: only the entries backed by the strongest kind
	// of evidence stay tied. An exact canonical name is never outvoted by
	// another entry's derived first word sharing the same span.
	minRank := unique[0].rank
	for _, p := range unique[1:] {
		if p.rank < minRank {
			minRank = p.rank
		}
	}
	var tied []pairing
	for _, p := range unique {
		if p.rank == minRank {
			tied = append(tied, p)
		}
	}

	if len(tied) == 1 {
		return resolved(tied[0])
	}

	// Superstring tie-break: the entry whose canonical name contains every
	// other tied entry's canonical name is the longer, more specific match.
	var winners []pairing
	for _, p := range tied {
		covers := true
		for _, other := range tied {
			if other.entry == p.entry {
				continue
			}
			if !strings.Contains(p.entry.NameLower(), other.entry.NameLower()) {
				covers = false
				break
			}
		}
		if covers {
			winners = append(winners, p)
		}
	}
	if len(winners) == 1 {
		return resolved(winners[0])
	}

	// Genuinely ambiguous: never pick arbitrarily between accounts.
	names := make([]string, 0, len(tied))
	for _, p := range tied {
		names = append(names, p.entry.Name())
	}
	sort.Strings(names)
	return MatchResult{
		Kind:      UnmatchedAmbiguous,
		Candidate: primaryCandidate(cands),
		Ambiguous: names,
	}
}

// Explain returns every qualifying (span, account) pairing sorted by
// descending score, for the diagnostic surface.
func (m *Matcher) Explain(text string) []ScoredCandidate {
	var out []ScoredCandidate
	for _, c := range extractCandidates(text) {
		for _, e := range m.reg.Entries() {
			for _, s := range strategies {
				score := s.score(c.folded, e)
				if score >= matchFloor {
					out = append(out, ScoredCandidate{
						Span:     c.span,
						Account:  e.Name(),
						Score:    score,
						Strategy: s.name,
					})
				}
				if score != 0 {
					break
				}
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// extractCandidates builds the ordered candidate list: the whole text,
// then each anchored span with its leading word windows. Order matters
// for deterministic tie handling.
func extractCandidates(text string) []candidate {
	trimmed := strings.TrimSpace(text)
	var out []candidate
	seen := make(map[string]struct{})

	add := func(span string, primary bool) {
		span = strings.Trim(strings.TrimSpace(span), `"'`)
		folded := registry.Fold(span)
		if folded == "" {
			return
		}
		if _, dup := seen[folded]; dup {
			return
		}
		seen[folded] = struct{}{}
		out = append(out, candidate{span: span, folded: folded, primary: primary})
	}

	add(trimmed, false)

	for _, loc := range anchorRE.FindAllStringSubmatchIndex(trimmed, -1) {
		anchor := strings.ToLower(trimmed[loc[2]:loc[3]])
		rest := trimmed[loc[1]:]
		if end := spanEndRE.FindStringIndex(rest); end != nil {
			rest = rest[:end[0]]
		}
		rest = strings.TrimSpace(rest)
		if rest == "" {
			continue
		}

		primary := anchor == "at" || anchor == "for"
		add(rest, primary)

		// Leading word windows catch "SaskTel to demo managed print"
		// style spans where the mention is a prefix of the clause.
		words := strings.Fields(rest)
		for n := 1; n < len(words) && n <= 4; n++ {
			add(strings.Join(words[:n], " "), false)
		}
	}

	return out
}

// primaryCandidate picks the best diagnostic span for an Unmatched
// result: the first "at"/"for" span, else the first anchored span.
func primaryCandidate(cands []candidate) string {
	// Index 0 is the whole text; diagnostics want the narrower spans.
	if len(cands) < 2 {
		return ""
	}
	for _, c := range cands[1:] {
		if c.primary {
			return c.span
		}
	}
	return cands[1].span
}
