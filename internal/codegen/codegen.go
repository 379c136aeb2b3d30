// Package codegen turns symbol manifests into Go source declaring a
// registration table, its sites and the init function that registers them.
package codegen

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"github.com/roach88/symtab/internal/manifest"
)

// ErrStale indicates a generated file that no longer matches its manifest.
var ErrStale = errors.New("codegen: generated file is stale")

// Options control generation.
type Options struct {
	// StrictDefault applies when a manifest does not set strict.
	StrictDefault bool
}

var fileTemplate = template.Must(template.New("symbols").Funcs(template.FuncMap{
	"quote": strconv.Quote,
}).Parse(`// Code generated by symtool gen from {{.Source}}. DO NOT EDIT.

package {{.Package}}

import "github.com/roach88/symtab/symbol"

var {{.Table}} = symbol.NewTable({{quote .TableName}}{{if .Strict}}, symbol.WithStrictInit(){{end}})

var (
{{- range .Symbols}}
{{- range .Doc}}
	// {{.}}
{{- end}}
	{{.Name}} = {{$.Table}}.Site({{quote .Text}})
{{- end}}
)

func init() { {{.Table}}.Register() }
`))

type fileData struct {
	Source    string
	Package   string
	Table     string
	TableName string
	Strict    bool
	Symbols   []siteData
}

type siteData struct {
	Name string
	Text string
	Doc  []string
}

// Generate renders m as gofmt-formatted Go source.
func Generate(m *manifest.Manifest, opts Options) ([]byte, error) {
	data := fileData{
		Source:    filepath.Base(m.Path),
		Package:   m.Package,
		Table:     m.Table,
		TableName: m.TableName(),
		Strict:    m.IsStrict(opts.StrictDefault),
	}
	if data.Source == "." || data.Source == "" {
		data.Source = "manifest"
	}
	if data.Table == "" {
		data.Table = manifest.DefaultTable
	}
	for _, s := range m.Symbols {
		data.Symbols = append(data.Symbols, siteData{
			Name: s.Name,
			Text: s.Text,
			Doc:  docLines(s.Doc),
		})
	}

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", data.Source, err)
	}
	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", data.Source, err)
	}
	return out, nil
}

func docLines(doc string) []string {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return nil
	}
	lines := strings.Split(doc, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return lines
}

// OutputPath returns where the file generated from m goes: next to the
// manifest, named after it with a _symbols.go suffix.
func OutputPath(m *manifest.Manifest) string {
	base := strings.TrimSuffix(filepath.Base(m.Path), filepath.Ext(m.Path))
	return filepath.Join(filepath.Dir(m.Path), base+"_symbols.go")
}

// WriteFile generates m into OutputPath(m) and returns the path written.
func WriteFile(m *manifest.Manifest, opts Options) (string, error) {
	out, err := Generate(m, opts)
	if err != nil {
		return "", err
	}
	path := OutputPath(m)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// Check reports ErrStale when the file at OutputPath(m) differs from what
// Generate would write, or does not exist.
func Check(m *manifest.Manifest, opts Options) error {
	want, err := Generate(m, opts)
	if err != nil {
		return err
	}
	path := OutputPath(m)
	got, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w (missing)", path, ErrStale)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if !bytes.Equal(got, want) {
		return fmt.Errorf("%s: %w", path, ErrStale)
	}
	return nil
}
