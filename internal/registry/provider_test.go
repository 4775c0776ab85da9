package registry

import (
	"context"
	"errors"
	"testing"
)

type failingProvider struct{ name string }

func (p *failingProvider) Name() string { return p.name }
func (p *failingProvider) Fetch(context.Context) ([]Account, error) {
	return nil, errors.New("unreachable")
}

func TestMerge_LaterListWinsOnCasing(t *testing.T) {
	backup := []Account{
		{Name: "government of saskatchewan"}, // underscored backup key, poor casing
		{Name: "Obscure Local Shop"},
	}
	pipeline := []Account{
		{Name: "Government of Saskatchewan"},
	}

	merged := Merge(backup, pipeline)

	if len(merged) != 2 {
		t.Fatalf("merged %d accounts, want 2", len(merged))
	}
	if merged[0].Name != "Government of Saskatchewan" {
		t.Errorf("casing = %q, want pipeline casing", merged[0].Name)
	}
	if merged[1].Name != "Obscure Local Shop" {
		t.Errorf("backup-only account lost: %v", merged)
	}
}

func TestMerge_UnionsAliases(t *testing.T) {
	merged := Merge(
		[]Account{{Name: "SGI Canada", Aliases: []string{"SGI"}}},
		[]Account{{Name: "SGI Canada", Aliases: []string{"SGI", "SGI Insurance"}}},
	)

	if len(merged) != 1 {
		t.Fatalf("merged %d accounts, want 1", len(merged))
	}
	if len(merged[0].Aliases) != 2 {
		t.Errorf("aliases = %v, want deduped union of 2", merged[0].Aliases)
	}
}

func TestLoad_ProviderFailureDegradesToFallback(t *testing.T) {
	reg, errs := Load(context.Background(), &failingProvider{name: "calproxy"})

	if reg.Len() != len(Fallback()) {
		t.Errorf("registry has %d entries, want fallback's %d", reg.Len(), len(Fallback()))
	}
	if errs["calproxy"] == nil {
		t.Error("provider error not surfaced")
	}
}

func TestLoad_FallbackCasingWins(t *testing.T) {
	provider := &StaticProvider{
		ProviderName: "calproxy",
		List:         []Account{{Name: "sasktel"}, {Name: "Brand New Account"}},
	}

	reg, errs := Load(context.Background(), provider)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if e := reg.Lookup("SaskTel"); e == nil || e.Name() != "SaskTel" {
		t.Error("fallback casing did not win over provider casing")
	}
	if reg.Lookup("Brand New Account") == nil {
		t.Error("provider-only account missing from registry")
	}
}
