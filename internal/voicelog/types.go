// Package voicelog parses free-form sales-activity transcriptions into
// structured activity records.
//
// The pipeline is deterministic rules + lookup, no statistical models:
//   - activity type classification from indicator vocabulary
//   - fuzzy account resolution against an immutable registry
//   - contact name extraction from prepositional patterns
//   - record composition with a structured failure path
//
// All analysis reads only the immutable transcription and registry; the
// package performs no I/O.
package voicelog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xits/voicelog/internal/registry"
)

// ErrEmptyInput rejects blank transcriptions before any analysis runs.
// Distinct from the no-account-match failure, which is a structured result.
var ErrEmptyInput = errors.New("transcription is empty")

// ActivityType is the category of interaction being logged.
type ActivityType string

const (
	ActivityCall    ActivityType = "call"
	ActivityEmail   ActivityType = "email"
	ActivityMeeting ActivityType = "meeting"
	ActivityNote    ActivityType = "note"
)

// Valid reports whether t is one of the four known activity types.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityCall, ActivityEmail, ActivityMeeting, ActivityNote:
		return true
	}
	return false
}

func (t ActivityType) String() string { return string(t) }

// Contact is an extracted personal name. LastName may be empty when the
// transcription only gives a first name.
type Contact struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
}

// Display returns the contact's full display name.
func (c Contact) Display() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// Unmatched kinds, for diagnostics.
const (
	UnmatchedNoMatch   = "no_match"
	UnmatchedAmbiguous = "ambiguous"
)

// MatchResult is the outcome of resolving an organization mention.
// Either Entry is non-nil (matched, with confidence and span for
// diagnostics) or it is nil and Candidate/Ambiguous describe what was
// found. A match is never silently partial.
type MatchResult struct {
	Entry       *registry.Entry
	Confidence  float64
	MatchedSpan string
	Strategy    string

	// Unmatched diagnostics.
	Kind      string   // "no_match" or "ambiguous"
	Candidate string   // best organization mention found, if any
	Ambiguous []string // tied account names when Kind is "ambiguous"
}

// Matched reports whether an account was resolved.
func (m MatchResult) Matched() bool { return m.Entry != nil }

// AccountName returns the matched canonical account name, or "".
func (m MatchResult) AccountName() string {
	if m.Entry == nil {
		return ""
	}
	return m.Entry.Name()
}

// ActivityRecord is the terminal artifact handed to the record store.
// Composing the same inputs twice yields identical records except for
// CreatedAt.
type ActivityRecord struct {
	Type      ActivityType `json:"type"`
	Account   string       `json:"account"`
	Contact   string       `json:"contact,omitempty"`
	Summary   string       `json:"summary"`
	RawText   string       `json:"raw_text"`
	CreatedAt time.Time    `json:"created_at"`
}

// LogText returns the marker-prefixed text persisted by the record store.
func (r *ActivityRecord) LogText() string {
	return "[VOICE LOG] " + r.Summary
}

// Confirmation returns the human-readable success message.
func (r *ActivityRecord) Confirmation() string {
	var b strings.Builder
	b.WriteString("Logged ")
	b.WriteString(string(r.Type))
	if r.Contact != "" {
		b.WriteString(" with ")
		b.WriteString(r.Contact)
	}
	b.WriteString(" at ")
	b.WriteString(r.Account)
	b.WriteString(": ")
	b.WriteString(r.Summary)
	return b.String()
}

// FailureReport is the structured failure produced when no account could
// be resolved. No record is emitted alongside it.
type FailureReport struct {
	Reason    string       `json:"reason"`
	Kind      string       `json:"kind"`
	Candidate string       `json:"candidate,omitempty"`
	Ambiguous []string     `json:"ambiguous,omitempty"`
	Type      ActivityType `json:"type"`
	Contact   string       `json:"contact,omitempty"`
	RawText   string       `json:"raw_text"`
}

// Message returns the operator-facing failure text: it echoes the best
// candidate so a human can supply a correction and re-invoke.
func (f *FailureReport) Message() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Could not match an account from: %q\n", f.RawText)
	if f.Kind == UnmatchedAmbiguous && len(f.Ambiguous) > 0 {
		fmt.Fprintf(&b, "Ambiguous between: %s\n", strings.Join(f.Ambiguous, ", "))
	} else if f.Candidate != "" {
		fmt.Fprintf(&b, "Closest organization mention: %q\n", f.Candidate)
	}
	fmt.Fprintf(&b, "Detected type: %s\n", f.Type)
	if f.Contact != "" {
		fmt.Fprintf(&b, "Contact found: %s\n", f.Contact)
	}
	b.WriteString("Please specify the account name.")
	return b.String()
}

// Result is the terminal outcome of one parse: exactly one of Record or
// Failure is non-nil.
type Result struct {
	Type    ActivityType
	Match   MatchResult
	Contact *Contact

	Record  *ActivityRecord
	Failure *FailureReport
}

// Emitted reports whether the parse produced a postable record.
func (r *Result) Emitted() bool { return r.Record != nil }
