package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/symtab/internal/config"
)

// Scenario defines a conformance test for a registry.
type Scenario struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Normalize   string      `yaml:"normalize,omitempty"`
	Tables      []TableDef  `yaml:"tables,omitempty"`
	Flow        []Step      `yaml:"flow"`
	Assertions  []Assertion `yaml:"assertions,omitempty"`
}

// TableDef declares a site table and its literals in declaration order.
type TableDef struct {
	Name   string   `yaml:"name"`
	Strict bool     `yaml:"strict,omitempty"`
	Sites  []string `yaml:"sites"`
}

// Step is one operation in the flow. Exactly one of Register, Site, Intern,
// Lookup or Opaque must be set.
type Step struct {
	Register string  `yaml:"register,omitempty"`
	Site     string  `yaml:"site,omitempty"`
	Index    int     `yaml:"index,omitempty"`
	Intern   *string `yaml:"intern,omitempty"`
	Lookup   *string `yaml:"lookup,omitempty"`
	Opaque   string  `yaml:"opaque,omitempty"`
	As       string  `yaml:"as,omitempty"`
	Expect   *Expect `yaml:"expect,omitempty"`
}

// Expect holds the optional checks for a step.
type Expect struct {
	Found    *bool   `yaml:"found,omitempty"`
	Inserted *int    `yaml:"inserted,omitempty"`
	Text     *string `yaml:"text,omitempty"`
}

// Assertion is a check evaluated after the flow.
type Assertion struct {
	Type    string   `yaml:"type"`
	Handles []string `yaml:"handles,omitempty"`
	Count   int      `yaml:"count,omitempty"`
}

// Step operations.
const (
	OpRegister = "register"
	OpSite     = "site"
	OpIntern   = "intern"
	OpLookup   = "lookup"
	OpOpaque   = "opaque"
)

// Assertion types.
const (
	AssertSame     = "same"
	AssertDistinct = "distinct"
	AssertLen      = "len"
)

// Op returns the operation the step performs, or "" if none or several are
// set.
func (s Step) Op() string {
	var ops []string
	if s.Register != "" {
		ops = append(ops, OpRegister)
	}
	if s.Site != "" {
		ops = append(ops, OpSite)
	}
	if s.Intern != nil {
		ops = append(ops, OpIntern)
	}
	if s.Lookup != nil {
		ops = append(ops, OpLookup)
	}
	if s.Opaque != "" {
		ops = append(ops, OpOpaque)
	}
	if len(ops) != 1 {
		return ""
	}
	return ops[0]
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.Description == "" {
		return errors.New("description is required")
	}
	if len(s.Flow) == 0 {
		return errors.New("flow list is required and must be non-empty")
	}
	switch s.Normalize {
	case "", config.NormalizeNone, config.NormalizeNFC, config.NormalizeLower:
	default:
		return fmt.Errorf("normalize: unknown normalizer %q", s.Normalize)
	}

	tables := make(map[string]int, len(s.Tables))
	for i, tbl := range s.Tables {
		if tbl.Name == "" {
			return fmt.Errorf("tables[%d]: name is required", i)
		}
		if _, dup := tables[tbl.Name]; dup {
			return fmt.Errorf("tables[%d]: duplicate table %q", i, tbl.Name)
		}
		tables[tbl.Name] = len(tbl.Sites)
	}

	handles := make(map[string]bool)
	for i, step := range s.Flow {
		op := step.Op()
		switch op {
		case "":
			return fmt.Errorf("flow[%d]: exactly one of register, site, intern, lookup, opaque is required", i)
		case OpRegister:
			if _, ok := tables[step.Register]; !ok {
				return fmt.Errorf("flow[%d]: unknown table %q", i, step.Register)
			}
		case OpSite:
			n, ok := tables[step.Site]
			if !ok {
				return fmt.Errorf("flow[%d]: unknown table %q", i, step.Site)
			}
			if step.Index < 0 || step.Index >= n {
				return fmt.Errorf("flow[%d]: site index %d out of range for table %q", i, step.Index, step.Site)
			}
		case OpOpaque:
			if !handles[step.Opaque] {
				return fmt.Errorf("flow[%d]: handle %q is not bound by an earlier step", i, step.Opaque)
			}
		}
		if step.As != "" {
			if op == OpLookup || op == OpRegister {
				return fmt.Errorf("flow[%d]: %s steps cannot bind a handle", i, op)
			}
			handles[step.As] = true
		}
	}

	for i, a := range s.Assertions {
		switch a.Type {
		case AssertSame, AssertDistinct:
			if len(a.Handles) < 2 {
				return fmt.Errorf("assertions[%d]: %s needs at least two handles", i, a.Type)
			}
			for _, h := range a.Handles {
				if !handles[h] {
					return fmt.Errorf("assertions[%d]: unknown handle %q", i, h)
				}
			}
		case AssertLen:
			if a.Count < 0 {
				return fmt.Errorf("assertions[%d]: count must be non-negative", i)
			}
		default:
			return fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
		}
	}
	return nil
}
