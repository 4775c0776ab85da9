package registry

import (
	"context"
	"sort"
	"strings"
)

// Provider supplies account entries from an external source. Providers are
// read-only collaborators: the registry core never writes back.
type Provider interface {
	// Name returns the unique provider identifier (e.g. "calproxy", "file").
	Name() string

	// Fetch retrieves the provider's current account list.
	Fetch(ctx context.Context) ([]Account, error)
}

// Merge combines account lists in ascending priority order: a later list's
// entry replaces an earlier one with the same folded name (better casing
// wins) and their alias sets are unioned. Lists that only add lower-quality
// names should therefore come first and the fallback list last.
func Merge(lists ...[]Account) []Account {
	byKey := make(map[string]Account)
	var order []string

	for _, list := range lists {
		for _, a := range list {
			name := strings.TrimSpace(a.Name)
			if name == "" {
				continue
			}
			key := Fold(name)

			existing, ok := byKey[key]
			if !ok {
				byKey[key] = Account{Name: name, Aliases: dedupAliases(nil, a.Aliases)}
				order = append(order, key)
				continue
			}
			byKey[key] = Account{
				Name:    name, // later list wins on casing
				Aliases: dedupAliases(existing.Aliases, a.Aliases),
			}
		}
	}

	out := make([]Account, 0, len(order))
	for _, key := range order {
		out = append(out, byKey[key])
	}
	return out
}

// Load fetches from every provider in order and merges the results with the
// built-in fallback list. Provider errors are collected per provider name so
// a dead cal-proxy degrades to the fallback list instead of failing the
// invocation.
func Load(ctx context.Context, providers ...Provider) (*Registry, map[string]error) {
	errs := make(map[string]error)
	lists := make([][]Account, 0, len(providers)+1)

	for _, p := range providers {
		accounts, err := p.Fetch(ctx)
		if err != nil {
			errs[p.Name()] = err
			continue
		}
		lists = append(lists, accounts)
	}
	lists = append(lists, Fallback())

	return Build(Merge(lists...)), errs
}

func dedupAliases(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	var out []string
	for _, a := range append(append([]string{}, base...), extra...) {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, dup := seen[Fold(a)]; dup {
			continue
		}
		seen[Fold(a)] = struct{}{}
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// StaticProvider wraps a fixed account list as a Provider. Used for tests
// and for the built-in fallback when composed explicitly.
type StaticProvider struct {
	ProviderName string
	List         []Account
}

func (p *StaticProvider) Name() string { return p.ProviderName }

func (p *StaticProvider) Fetch(context.Context) ([]Account, error) {
	out := make([]Account, len(p.List))
	copy(out, p.List)
	return out, nil
}
