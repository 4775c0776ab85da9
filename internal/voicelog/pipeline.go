package voicelog

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/xits/voicelog/internal/registry"
)

// Clock supplies record timestamps. Injected so tests can pin time.
type Clock func() time.Time

// Parser runs the full transcription → record pipeline over an immutable
// registry. A Parser is safe for concurrent use; each Parse is one
// self-contained unit of work with no retained state.
type Parser struct {
	matcher *Matcher
	clock   Clock
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithClock overrides the record timestamp source.
func WithClock(c Clock) ParserOption {
	return func(p *Parser) { p.clock = c }
}

// NewParser returns a Parser over reg.
func NewParser(reg *registry.Registry, opts ...ParserOption) *Parser {
	p := &Parser{
		matcher: NewMatcher(reg),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse analyzes one transcription and returns the terminal result:
// either a composed record or a structured failure. The only error is
// input validation; blank input is rejected before any analysis runs.
//
// The classifier and matcher read only the immutable text and registry
// and run concurrently; contact extraction follows the matcher because
// it needs the resolved account to exclude organization spans.
func (p *Parser) Parse(ctx context.Context, text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		wg           sync.WaitGroup
		activityType ActivityType
		match        MatchResult
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		activityType = Classify(text)
	}()
	go func() {
		defer wg.Done()
		match = p.matcher.Match(text)
	}()
	wg.Wait()

	contact := ExtractContact(text, match.Entry)

	result := &Result{
		Type:    activityType,
		Match:   match,
		Contact: contact,
	}
	result.Record, result.Failure = Compose(activityType, match, contact, text, p.clock)
	return result, nil
}

// Matcher exposes the parser's account matcher for diagnostic surfaces.
func (p *Parser) Matcher() *Matcher { return p.matcher }
