package manifest

import (
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

// CompileError reports an invalid manifest, positioned in the YAML source
// when the offending node can be found.
type CompileError struct {
	File    string
	Line    int
	Column  int
	Field   string
	Message string
}

func (e *CompileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.File, e.Line, e.Column, e.Field, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.File, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError converts the first CUE error into a CompileError located in
// the YAML document.
func formatCUEError(filename string, doc *yaml.Node, err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &CompileError{File: filename, Field: "cue", Message: err.Error()}
	}
	first := errs[0]
	var path []string
	for _, p := range first.Path() {
		if !strings.HasPrefix(p, "#") {
			path = append(path, p)
		}
	}
	format, args := first.Msg()
	return newCompileError(filename, doc, path, fmt.Sprintf(format, args...))
}

func newCompileError(filename string, doc *yaml.Node, path []string, msg string) *CompileError {
	field := strings.Join(path, ".")
	if field == "" {
		field = "manifest"
	}
	e := &CompileError{File: filename, Field: field, Message: msg}
	if n := locate(doc, path); n != nil {
		e.Line, e.Column = n.Line, n.Column
	}
	return e
}

// locate walks path through doc and returns the deepest node it reaches.
func locate(doc *yaml.Node, path []string) *yaml.Node {
	n := doc
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return nil
		}
		n = n.Content[0]
	}
	for _, elem := range path {
		next := child(n, elem)
		if next == nil {
			break
		}
		n = next
	}
	return n
}

func child(n *yaml.Node, elem string) *yaml.Node {
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].Value == elem {
				return n.Content[i+1]
			}
		}
	case yaml.SequenceNode:
		if i, err := strconv.Atoi(elem); err == nil && i >= 0 && i < len(n.Content) {
			return n.Content[i]
		}
	}
	return nil
}
