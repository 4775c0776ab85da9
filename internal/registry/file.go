package registry

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileProvider reads a curated accounts list from a YAML file.
//
// Accepted formats:
//
//	accounts:
//	  - name: Cameco Corporation
//	    aliases: [Cameco]
//
// or a bare top-level list of the same entries.
type FileProvider struct {
	Path string
}

type accountsFile struct {
	Accounts []Account `yaml:"accounts"`
}

func (p *FileProvider) Name() string { return "file" }

func (p *FileProvider) Fetch(context.Context) ([]Account, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("reading accounts file: %w", err)
	}

	var wrapped accountsFile
	if err := yaml.Unmarshal(data, &wrapped); err == nil && len(wrapped.Accounts) > 0 {
		return validateAccounts(wrapped.Accounts, p.Path)
	}

	var bare []Account
	if err := yaml.Unmarshal(data, &bare); err != nil {
		return nil, fmt.Errorf("parsing accounts file %s: %w", p.Path, err)
	}
	return validateAccounts(bare, p.Path)
}

func validateAccounts(accounts []Account, path string) ([]Account, error) {
	for i, a := range accounts {
		if a.Name == "" {
			return nil, fmt.Errorf("accounts file %s: entry %d has no name", path, i)
		}
	}
	return accounts, nil
}
