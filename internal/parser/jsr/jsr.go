// Package jsr parses the "imports" map of deno.json/deno.jsonc into
// PackageEntry values for jsr: specifiers.
//
// deno.jsonc allows "//" and "/* */" comments, which encoding/json
// rejects outright. Rather than pull in a new dependency for a problem
// this narrow, comments are blanked out in place (replaced with spaces,
// never removed) before the same regex-based block scan the npm parser
// uses runs over the result — blanking in place keeps every surviving
// byte at its original offset, so spans computed against the stripped
// copy are still valid against the original document.
package jsr

import (
	"regexp"
	"strings"

	"github.com/skanehira/version-lsp/internal/domain"
	"github.com/skanehira/version-lsp/internal/span"
)

var (
	importsBlock  = regexp.MustCompile(`(?s)"imports"\s*:\s*\{(.*?)\}`)
	entryPattern  = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	jsrSpecifier  = regexp.MustCompile(`^jsr:(@[^/]+/[^@]+)(?:@(.+))?$`)
)

// Parser implements parser.Parser for deno.json(c).
type Parser struct{}

func New() *Parser { return &Parser{} }

func (*Parser) Kind() domain.RegistryKind { return domain.KindJsr }

func (*Parser) Parse(text string) ([]domain.PackageEntry, error) {
	stripped := stripJSONC(text)
	finder := span.NewFinder(text)

	var entries []domain.PackageEntry
	for _, bm := range importsBlock.FindAllSubmatchIndex([]byte(stripped), -1) {
		blockStart := bm[2]
		blockText := stripped[bm[2]:bm[3]]
		for _, em := range entryPattern.FindAllSubmatchIndex([]byte(blockText), -1) {
			value := blockText[em[4]:em[5]]
			m := jsrSpecifier.FindStringSubmatchIndex(value)
			if m == nil {
				continue
			}
			name := value[m[2]:m[3]]

			var versionSpec string
			var start, end int
			if m[4] >= 0 {
				versionSpec = value[m[4]:m[5]]
				start = blockStart + em[4] + m[4]
				end = blockStart + em[4] + m[5]
			} else {
				versionSpec = "latest"
				start = blockStart + em[4]
				end = blockStart + em[5]
			}

			entries = append(entries, domain.PackageEntry{
				Name:        name,
				VersionSpec: versionSpec,
				Range:       finder.Range(start, end),
				Kind:        domain.KindJsr,
			})
		}
	}
	return entries, nil
}

// stripJSONC blanks // line comments and /* */ block comments that occur
// outside string literals, preserving every other byte's offset.
func stripJSONC(text string) string {
	b := []byte(text)
	inString := false
	escaped := false
	for i := 0; i < len(b); i++ {
		c := b[i]
		if inString {
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch {
		case c == '"':
			inString = true
		case c == '/' && i+1 < len(b) && b[i+1] == '/':
			for i < len(b) && b[i] != '\n' {
				b[i] = ' '
				i++
			}
		case c == '/' && i+1 < len(b) && b[i+1] == '*':
			b[i], b[i+1] = ' ', ' '
			i += 2
			for i+1 < len(b) && !(b[i] == '*' && b[i+1] == '/') {
				if b[i] != '\n' {
					b[i] = ' '
				}
				i++
			}
			if i+1 < len(b) {
				b[i], b[i+1] = ' ', ' '
				i++
			}
		}
	}
	return strings.TrimRight(string(b), "")
}
