// Package pnpm parses pnpm-workspace.yaml's catalog and catalogs mappings.
//
// Values are plain npm version specs, treated exactly like npm version
// specs, so this package only extracts (name, spec, span)
// tuples; internal/version/npmmatch does the actual range matching for
// both npm and PnpmCatalog kinds.
package pnpm

import (
	"gopkg.in/yaml.v3"

	"github.com/skanehira/version-lsp/internal/domain"
	"github.com/skanehira/version-lsp/internal/parser"
	"github.com/skanehira/version-lsp/internal/span"
)

// Parser implements parser.Parser for pnpm-workspace.yaml.
type Parser struct{}

func New() *Parser { return &Parser{} }

func (*Parser) Kind() domain.RegistryKind { return domain.KindPnpmCatalog }

func (*Parser) Parse(text string) ([]domain.PackageEntry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		// A document that does not decode as YAML yields no entries, even
		// when the syntax error comes after a well-formed catalog.
		return nil, &parser.Error{Kind: parser.InvalidSyntax, Message: err.Error()}
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, nil
	}

	finder := span.NewFinder(text)
	var entries []domain.PackageEntry

	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		val := root.Content[i+1]
		switch key.Value {
		case "catalog":
			entries = append(entries, extractMapping(val, finder)...)
		case "catalogs":
			if val.Kind != yaml.MappingNode {
				continue
			}
			for j := 0; j+1 < len(val.Content); j += 2 {
				entries = append(entries, extractMapping(val.Content[j+1], finder)...)
			}
		}
	}
	return entries, nil
}

func extractMapping(node *yaml.Node, finder *span.Finder) []domain.PackageEntry {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	var entries []domain.PackageEntry
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i]
		value := node.Content[i+1]
		if value.Kind != yaml.ScalarNode || value.Value == "" {
			continue
		}
		entries = append(entries, domain.PackageEntry{
			Name:        name.Value,
			VersionSpec: value.Value,
			Range:       nodeRange(value, finder),
			Kind:        domain.KindPnpmCatalog,
		})
	}
	return entries
}

// nodeRange converts a scalar node's 1-based line/column into a span,
// assuming the decoded Value appears verbatim in the source right after
// that position's opening quote, if any (true for plain, single-quoted
// and double-quoted scalars without escapes, which covers every
// realistic pnpm catalog version spec).
func nodeRange(node *yaml.Node, finder *span.Finder) span.Range {
	start := finder.ByteOffset(node.Line-1, node.Column-1)
	if node.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle) != 0 {
		start++ // the node's column points at the opening quote
	}
	end := start + len(node.Value)
	return finder.Range(start, end)
}
