// Package registry provides the immutable known-accounts registry for voicelog.
//
// The registry is built once per invocation from one or more account sources
// (cal-proxy, a local accounts file, the built-in fallback list) and is
// read-only for the lifetime of a match. Every account carries its canonical
// name plus derived lookup forms: explicit aliases, capital-letter acronyms,
// parenthetical-stripped variants, distinctive first words, and a
// legal-suffix-normalized form ("Cameco Corporation" → "cameco").
package registry

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Account is a single organization entry as supplied by a provider.
type Account struct {
	Name    string   `json:"name" yaml:"name"`
	Aliases []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

// Entry is an account with its precomputed lookup forms. Entries are
// immutable after Build.
type Entry struct {
	Account Account

	nameLower  string
	normalized string // legal-suffix-stripped, lowercase
	tokens     []string
	aliases    map[string]struct{} // explicit, provider-supplied
	derived    map[string]struct{} // acronym, parenthetical, first-word forms
}

// Registry is an immutable set of account entries with derived lookup forms.
type Registry struct {
	entries []*Entry
}

// legalSuffixes are trailing tokens stripped for suffix-normalized matching.
var legalSuffixes = map[string]struct{}{
	"corporation":  {},
	"corp":         {},
	"inc":          {},
	"incorporated": {},
	"ltd":          {},
	"limited":      {},
	"llc":          {},
	"company":      {},
	"co":           {},
}

var parentheticalRE = regexp.MustCompile(`\s*\([^)]*\)\s*`)

// Build constructs a Registry from a merged account list. Accounts with
// blank names are skipped; duplicate canonical names (case-insensitive)
// keep the first occurrence.
func Build(accounts []Account) *Registry {
	seen := make(map[string]struct{}, len(accounts))
	entries := make([]*Entry, 0, len(accounts))

	for _, a := range accounts {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			continue
		}
		key := Fold(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		a.Name = name
		entries = append(entries, newEntry(a))
	}

	return &Registry{entries: entries}
}

func newEntry(a Account) *Entry {
	e := &Entry{
		Account:    a,
		nameLower:  Fold(a.Name),
		normalized: StripLegalSuffix(Fold(a.Name)),
		tokens:     tokenize(a.Name),
		aliases:    make(map[string]struct{}),
		derived:    make(map[string]struct{}),
	}

	for _, alias := range a.Aliases {
		if k := Fold(alias); k != "" && k != e.nameLower {
			e.aliases[k] = struct{}{}
		}
	}

	// Derived forms live in a separate tier: they resolve a mention, but an
	// exact canonical name or an explicit alias on another entry outranks
	// them when both fire on the same span.
	addDerived := func(k string) {
		if k == "" || k == e.nameLower {
			return
		}
		if _, explicit := e.aliases[k]; explicit {
			return
		}
		e.derived[k] = struct{}{}
	}

	// Parenthetical-stripped variant, e.g. "SIGA (Gaming)" → "SIGA".
	addDerived(Fold(parentheticalRE.ReplaceAllString(a.Name, " ")))

	// Capital-letter acronym, e.g. "Farm Credit Canada" → "fcc".
	if abbr := Acronym(a.Name); len(abbr) >= 2 {
		addDerived(strings.ToLower(abbr))
	}

	// Distinctive first word, e.g. "Cameco Corporation" → "cameco".
	if first := firstToken(a.Name); len(first) > 3 {
		addDerived(strings.ToLower(first))
	}

	return e
}

// Entries returns the registry's entries. The returned slice must not be
// mutated.
func (r *Registry) Entries() []*Entry { return r.entries }

// Len returns the number of accounts in the registry.
func (r *Registry) Len() int { return len(r.entries) }

// Accounts returns a name-sorted copy of the underlying account list.
func (r *Registry) Accounts() []Account {
	out := make([]Account, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Account)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup returns the entry whose canonical name matches name
// (case-insensitive), or nil.
func (r *Registry) Lookup(name string) *Entry {
	key := Fold(name)
	for _, e := range r.entries {
		if e.nameLower == key {
			return e
		}
	}
	return nil
}

// Name returns the entry's canonical account name.
func (e *Entry) Name() string { return e.Account.Name }

// NameLower returns the folded canonical name.
func (e *Entry) NameLower() string { return e.nameLower }

// Normalized returns the legal-suffix-stripped, folded canonical name.
func (e *Entry) Normalized() string { return e.normalized }

// Tokens returns the folded tokens of the canonical name.
func (e *Entry) Tokens() []string { return e.tokens }

// HasAlias reports whether the folded form of s is a known lookup form
// (explicit alias or derived) of this entry.
func (e *Entry) HasAlias(s string) bool {
	return e.HasExplicitAlias(s) || e.HasDerived(s)
}

// HasExplicitAlias reports whether the folded form of s is a
// provider-supplied alias of this entry.
func (e *Entry) HasExplicitAlias(s string) bool {
	_, ok := e.aliases[Fold(s)]
	return ok
}

// HasDerived reports whether the folded form of s is a derived lookup
// form (acronym, parenthetical-stripped variant, distinctive first word).
func (e *Entry) HasDerived(s string) bool {
	_, ok := e.derived[Fold(s)]
	return ok
}

// Aliases returns every folded lookup form, explicit and derived, in
// sorted order.
func (e *Entry) Aliases() []string {
	out := make([]string, 0, len(e.aliases)+len(e.derived))
	for a := range e.aliases {
		out = append(out, a)
	}
	for a := range e.derived {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Mentions reports whether span is lexically part of this account's
// identity: a substring of the canonical name, or a substring or exact
// match of any alias. Used to keep organization mentions from being
// extracted as contact names.
func (e *Entry) Mentions(span string) bool {
	s := Fold(span)
	if s == "" {
		return false
	}
	if strings.Contains(e.nameLower, s) {
		return true
	}
	for a := range e.aliases {
		if a == s || strings.Contains(a, s) {
			return true
		}
	}
	for a := range e.derived {
		if a == s || strings.Contains(a, s) {
			return true
		}
	}
	return false
}

// Fold lowercases and trims a lookup key.
func Fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// StripLegalSuffix removes trailing legal-entity tokens ("Corporation",
// "Inc", "Ltd", ...) from an already-folded name. Returns the input
// unchanged when stripping would leave nothing.
func StripLegalSuffix(folded string) string {
	tokens := strings.Fields(folded)
	for len(tokens) > 1 {
		last := strings.TrimRight(tokens[len(tokens)-1], ".")
		if _, ok := legalSuffixes[last]; !ok {
			break
		}
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}

// Acronym returns the concatenated uppercase letters of name
// ("SGI Canada" → "SGIC"). Empty when fewer than two capitals exist.
func Acronym(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsUpper(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() < 2 {
		return ""
	}
	return b.String()
}

func tokenize(name string) []string {
	return strings.Fields(Fold(name))
}

func firstToken(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
