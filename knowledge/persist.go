package knowledge

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// snapshotVersion is written to every saved snapshot.
const snapshotVersion = 1

type snapshot struct {
	Version    int                 `yaml:"version"`
	Namespaces []string            `yaml:"namespaces"`
	Aliases    map[string]string   `yaml:"aliases,omitempty"`
	Types      []TypeDefinition    `yaml:"types,omitempty"`
	Terms      []TermDefinition    `yaml:"terms,omitempty"`
	Services   []ServiceDefinition `yaml:"services,omitempty"`
}

// Save writes kb to w as YAML. Entries are sorted so equal knowledge bases
// produce identical output.
func Save(w io.Writer, kb *KnowledgeBase) error {
	if kb == nil {
		kb = Empty()
	}

	s := snapshot{
		Version:    snapshotVersion,
		Namespaces: kb.Namespaces(),
		Aliases:    kb.aliases,
		Types:      kb.Types(),
	}
	for _, name := range slices.Sorted(maps.Keys(kb.terms)) {
		s.Terms = append(s.Terms, kb.terms[name])
	}
	for _, ns := range slices.Sorted(maps.Keys(kb.services)) {
		s.Services = append(s.Services, kb.services[ns])
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode knowledge base: %w", err)
	}
	return enc.Close()
}

// Load reads a knowledge base written by Save.
func Load(r io.Reader) (*KnowledgeBase, error) {
	var s snapshot
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		if err == io.EOF {
			return Empty(), nil
		}
		return nil, fmt.Errorf("failed to decode knowledge base: %w", err)
	}
	if s.Version > snapshotVersion {
		return nil, fmt.Errorf("unsupported knowledge base version %d", s.Version)
	}

	b := NewBuilder()
	for _, ns := range s.Namespaces {
		b.AddNamespace(ns)
	}
	for alias, ns := range s.Aliases {
		b.AddAlias(alias, ns)
	}
	for _, t := range s.Types {
		if strings.TrimSpace(t.FullName) == "" {
			return nil, fmt.Errorf("knowledge base type without a name")
		}
		b.AddTypeDefinition(t)
	}
	for _, t := range s.Terms {
		b.AddTerm(t)
	}
	for _, svc := range s.Services {
		b.AddService(svc)
	}
	return b.Build(), nil
}
