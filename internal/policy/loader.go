package policy

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Document is the on-disk shape of the permission tables. Client grants are
// declared client -> permissions and inverted at load time for the
// ClientsHaving lookup.
type Document struct {
	Roles           map[string][]string `yaml:"roles"`
	AffiliatedRoles map[string][]string `yaml:"affiliated_roles"`
	DatasetRoles    map[string][]string `yaml:"dataset_roles"`
	ContextRoles    map[string][]string `yaml:"context_roles"`
	Clients         map[string][]string `yaml:"clients"`
}

// Loader loads permission tables from disk
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a new policy loader
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

// LoadFromFile loads the permission tables from a YAML file
func (l *Loader) LoadFromFile(path string) (*Memory, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return l.Load(content)
}

// Load parses permission tables from YAML content
func (l *Loader) Load(content []byte) (*Memory, error) {
	doc := &Document{}
	if err := yaml.Unmarshal(content, doc); err != nil {
		return nil, fmt.Errorf("failed to parse policy document: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	m := NewMemory()
	m.roles = buildRoleTable(doc.Roles)
	m.affiliated = buildRoleTable(doc.AffiliatedRoles)
	m.dataset = buildRoleTable(doc.DatasetRoles)
	m.context = buildRoleTable(doc.ContextRoles)

	// Invert client -> permissions into permission -> clients
	for client, permissions := range doc.Clients {
		for _, p := range permissions {
			if m.clients[p] == nil {
				m.clients[p] = make(Set)
			}
			m.clients[p][client] = struct{}{}
		}
	}

	l.logger.Info("Loaded permission policy",
		zap.Int("roles", len(doc.Roles)),
		zap.Int("affiliated_roles", len(doc.AffiliatedRoles)),
		zap.Int("dataset_roles", len(doc.DatasetRoles)),
		zap.Int("context_roles", len(doc.ContextRoles)),
		zap.Int("clients", len(doc.Clients)),
	)

	return m, nil
}

// Validate rejects documents with blank role, client or permission names
func (d *Document) Validate() error {
	tables := map[string]map[string][]string{
		"roles":            d.Roles,
		"affiliated_roles": d.AffiliatedRoles,
		"dataset_roles":    d.DatasetRoles,
		"context_roles":    d.ContextRoles,
		"clients":          d.Clients,
	}
	for table, entries := range tables {
		for name, permissions := range entries {
			if name == "" {
				return fmt.Errorf("%s: empty name is not allowed", table)
			}
			for _, p := range permissions {
				if p == "" {
					return fmt.Errorf("%s[%s]: empty permission is not allowed", table, name)
				}
			}
		}
	}
	return nil
}

func buildRoleTable(entries map[string][]string) roleTable {
	t := make(roleTable, len(entries))
	for role, permissions := range entries {
		t[role] = NewSet(permissions...)
	}
	return t
}
