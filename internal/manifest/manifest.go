// Package manifest reads symbol manifests: YAML files listing the literal
// texts a package interns, from which symtool generates the package's
// registration table.
//
// A manifest looks like:
//
//	package: httpsym
//	table: symbols
//	symbols:
//	  - name: MethodGet
//	    text: GET
//	  - name: MethodPost
//	    text: POST
//	    doc: POST requests create resources.
//
// Manifests are validated against an embedded CUE schema before use.
package manifest

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// DefaultTable is the table variable name when a manifest does not set one.
const DefaultTable = "symbols"

// Manifest describes one generated symbol table.
type Manifest struct {
	Package string   `json:"package" yaml:"package"`
	Table   string   `json:"table" yaml:"table,omitempty"`
	Name    string   `json:"name,omitempty" yaml:"name,omitempty"`
	Strict  *bool    `json:"strict,omitempty" yaml:"strict,omitempty"`
	Symbols []Symbol `json:"symbols" yaml:"symbols"`

	// Path is the file the manifest was read from, if any.
	Path string `json:"-" yaml:"-"`
}

// Symbol is one site of the table.
type Symbol struct {
	Name string `json:"name" yaml:"name"`
	Text string `json:"text" yaml:"text"`
	Doc  string `json:"doc,omitempty" yaml:"doc,omitempty"`
}

// TableName returns the table's diagnostic name, defaulting to the package.
func (m *Manifest) TableName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.Package
}

// IsStrict reports whether generated tables use strict init, falling back to
// def when the manifest does not say.
func (m *Manifest) IsStrict(def bool) bool {
	if m.Strict != nil {
		return *m.Strict
	}
	return def
}

// Texts returns the distinct texts in first-occurrence order.
func (m *Manifest) Texts() []string {
	seen := make(map[string]bool, len(m.Symbols))
	var out []string
	for _, s := range m.Symbols {
		if !seen[s.Text] {
			seen[s.Text] = true
			out = append(out, s.Text)
		}
	}
	return out
}

// Parse validates data against the manifest schema and decodes it. filename
// is only used in error positions.
func Parse(filename string, data []byte) (*Manifest, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &CompileError{File: filename, Field: "yaml", Message: err.Error()}
	}
	var raw any
	if doc.Kind != 0 {
		if err := doc.Decode(&raw); err != nil {
			return nil, &CompileError{File: filename, Field: "yaml", Message: err.Error()}
		}
	}
	if raw == nil {
		raw = map[string]any{}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("manifest schema: %w", err)
	}

	v := schema.LookupPath(cue.ParsePath("#Manifest")).Unify(ctx.Encode(raw))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(filename, &doc, err)
	}

	m := &Manifest{Path: filename}
	if err := v.Decode(m); err != nil {
		return nil, formatCUEError(filename, &doc, err)
	}
	if err := m.check(filename, &doc); err != nil {
		return nil, err
	}
	return m, nil
}

// MustParse is like Parse but panics on error.
func MustParse(filename string, data []byte) *Manifest {
	m, err := Parse(filename, data)
	if err != nil {
		panic(err)
	}
	return m
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(path, data)
}

// Match expands glob patterns into a sorted list of paths. A path matched by
// several patterns is listed once.
func Match(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("manifest pattern %q: %w", p, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Glob loads every manifest matching the patterns, sorted by path.
func Glob(patterns []string) ([]*Manifest, error) {
	paths, err := Match(patterns)
	if err != nil {
		return nil, err
	}
	out := make([]*Manifest, 0, len(paths))
	for _, p := range paths {
		m, err := Load(p)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// check enforces what the schema cannot express: site names are unique and
// do not shadow the table variable.
func (m *Manifest) check(filename string, doc *yaml.Node) error {
	if m.Table == "" {
		m.Table = DefaultTable
	}
	names := make(map[string]int, len(m.Symbols))
	for i, s := range m.Symbols {
		path := []string{"symbols", fmt.Sprint(i), "name"}
		if prev, ok := names[s.Name]; ok {
			return newCompileError(filename, doc, path,
				fmt.Sprintf("duplicate symbol name %q (first declared at symbols[%d])", s.Name, prev))
		}
		if s.Name == m.Table {
			return newCompileError(filename, doc, path,
				fmt.Sprintf("symbol name %q collides with the table variable", s.Name))
		}
		names[s.Name] = i
	}
	return nil
}

// Encode writes m as YAML.
func (m *Manifest) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return enc.Close()
}

// FromTexts builds a manifest with one symbol per distinct text, naming
// sites Sym0, Sym1, ... in order.
func FromTexts(pkg string, texts []string) *Manifest {
	m := &Manifest{Package: pkg, Table: DefaultTable}
	seen := make(map[string]bool, len(texts))
	for _, t := range texts {
		if seen[t] {
			continue
		}
		seen[t] = true
		m.Symbols = append(m.Symbols, Symbol{
			Name: fmt.Sprintf("Sym%d", len(m.Symbols)),
			Text: t,
		})
	}
	return m
}
