// Package gomod parses go.mod require directives into PackageEntry
// values.
//
// Both the single-line "require module version" form and the
// require ( … ) block form match the same two capture groups, scanned
// line by line so the directive word being elided inside a block doesn't
// matter. Module paths retain their case exactly as written; the
// "!"-escaping used to build goproxy URLs happens later, never during
// parsing. Lines commented "// indirect" are included as ordinary
// entries.
package gomod

import (
	"regexp"
	"strings"

	"github.com/skanehira/version-lsp/internal/domain"
	"github.com/skanehira/version-lsp/internal/span"
)

var (
	blockOpen  = regexp.MustCompile(`^require\s*\(\s*$`)
	singleLine = regexp.MustCompile(`^require\s+(\S+)\s+(v[\w.\-+]+)`)
	blockLine  = regexp.MustCompile(`^(\S+)\s+(v[\w.\-+]+)`)
)

// Parser implements parser.Parser for go.mod.
type Parser struct{}

func New() *Parser { return &Parser{} }

func (*Parser) Kind() domain.RegistryKind { return domain.KindGoProxy }

func (*Parser) Parse(text string) ([]domain.PackageEntry, error) {
	finder := span.NewFinder(text)
	var entries []domain.PackageEntry

	inBlock := false
	offset := 0
	for _, rawLine := range strings.Split(text, "\n") {
		lineStart := offset
		offset += len(rawLine) + 1 // account for the stripped "\n"

		line := stripComment(rawLine)
		trimmed := strings.TrimSpace(line)

		if trimmed == ")" {
			inBlock = false
			continue
		}
		if blockOpen.MatchString(trimmed) {
			inBlock = true
			continue
		}

		re := singleLine
		if inBlock {
			re = blockLine
		}
		m := re.FindStringSubmatchIndex(trimmed)
		if m == nil {
			continue
		}

		// trimmed is line with leading whitespace stripped; recover the
		// byte offset of that stripped prefix within rawLine.
		leadingWS := len(line) - len(strings.TrimLeft(line, " \t"))
		base := lineStart + leadingWS

		name := trimmed[m[2]:m[3]]
		version := trimmed[m[4]:m[5]]
		versionStart := base + m[4]
		versionEnd := base + m[5]

		entries = append(entries, domain.PackageEntry{
			Name:        name,
			VersionSpec: version,
			Range:       finder.Range(versionStart, versionEnd),
			Kind:        domain.KindGoProxy,
		})
	}
	return entries, nil
}

func stripComment(line string) string {
	if idx := strings.Index(line, "//"); idx != -1 {
		return line[:idx]
	}
	return line
}
