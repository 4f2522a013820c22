// Package cargo parses Cargo.toml dependency tables into PackageEntry
// values.
//
// Like the npm parser, this scans for table headers and entry lines with
// regular expressions rather than building a full TOML AST: a TOML decoder
// such as BurntSushi/toml (not a dependency of this module) exposes no
// byte-offset information, and a byte-accurate span is
// exactly what diagnostics need. A line-oriented scan also tolerates a
// broken table further down the file without losing entries already
// parsed from earlier tables, recovering at the next top-level
// structure.
package cargo

import (
	"regexp"
	"strings"

	"github.com/skanehira/version-lsp/internal/domain"
	"github.com/skanehira/version-lsp/internal/span"
)

var (
	headerPattern = regexp.MustCompile(`(?m)^\[([^\]]+)\]\s*$`)
	// dependencies, dev-dependencies, build-dependencies, and their
	// target.<cfg>.<kind> mirrors.
	tableNamePattern = regexp.MustCompile(`^(?:target\.[^.]+\.)?(dependencies|dev-dependencies|build-dependencies)$`)
	entryLinePattern = regexp.MustCompile(`(?m)^\s*([A-Za-z0-9_.-]+)\s*=\s*(.+?)\s*$`)
	inlineVersion    = regexp.MustCompile(`version\s*=\s*"((?:[^"\\]|\\.)*)"`)
	bareString       = regexp.MustCompile(`^"((?:[^"\\]|\\.)*)"$`)
	workspaceTrue    = regexp.MustCompile(`workspace\s*=\s*true`)
	pathOrGitKey     = regexp.MustCompile(`\b(path|git)\s*=`)
)

// Parser implements parser.Parser for Cargo.toml.
type Parser struct{}

func New() *Parser { return &Parser{} }

func (*Parser) Kind() domain.RegistryKind { return domain.KindCratesIo }

func (*Parser) Parse(text string) ([]domain.PackageEntry, error) {
	finder := span.NewFinder(text)
	sections := splitSections(text)

	var entries []domain.PackageEntry
	for _, sec := range sections {
		if !tableNamePattern.MatchString(sec.name) {
			continue
		}
		for _, m := range entryLinePattern.FindAllSubmatchIndex([]byte(sec.body), -1) {
			name := sec.body[m[2]:m[3]]
			rawValue := sec.body[m[4]:m[5]]
			valOff := sec.start + m[4]

			entry, ok := entryFor(name, rawValue, valOff, finder)
			if !ok {
				continue
			}
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func entryFor(name, rawValue string, rawValueOffset int, finder *span.Finder) (domain.PackageEntry, bool) {
	if bm := bareString.FindStringSubmatchIndex(rawValue); bm != nil {
		start := rawValueOffset + bm[2]
		end := rawValueOffset + bm[3]
		return domain.PackageEntry{
			Name:        name,
			VersionSpec: rawValue[bm[2]:bm[3]],
			Range:       finder.Range(start, end),
			Kind:        domain.KindCratesIo,
		}, true
	}

	if strings.HasPrefix(rawValue, "{") {
		if pathOrGitKey.MatchString(rawValue) || workspaceTrue.MatchString(rawValue) {
			return domain.PackageEntry{}, false
		}
		if vm := inlineVersion.FindStringSubmatchIndex(rawValue); vm != nil {
			start := rawValueOffset + vm[2]
			end := rawValueOffset + vm[3]
			return domain.PackageEntry{
				Name:        name,
				VersionSpec: rawValue[vm[2]:vm[3]],
				Range:       finder.Range(start, end),
				Kind:        domain.KindCratesIo,
			}, true
		}
	}
	return domain.PackageEntry{}, false
}

type section struct {
	name  string
	body  string
	start int // byte offset of body within the document
}

// splitSections finds every [table] header and returns the text between
// it and the next header (or EOF) as that table's body.
func splitSections(text string) []section {
	headers := headerPattern.FindAllSubmatchIndex([]byte(text), -1)
	sections := make([]section, 0, len(headers))
	for i, h := range headers {
		name := text[h[2]:h[3]]
		bodyStart := h[1]
		bodyEnd := len(text)
		if i+1 < len(headers) {
			bodyEnd = headers[i+1][0]
		}
		sections = append(sections, section{name: name, body: text[bodyStart:bodyEnd], start: bodyStart})
	}
	return sections
}
