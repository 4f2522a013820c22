// Package npm parses package.json dependency fields into PackageEntry
// values.
//
// Rather than build a full JSON AST (which would force every caller to
// walk a generic any-typed tree just to recover byte offsets stdlib
// encoding/json does not expose), this scans for each dependency block
// with a pair of regular expressions and computes spans directly from the
// match indices. That also gives recovery at the next top-level
// structure for free: a malformed field further down the document
// simply fails to match and is skipped, the others are still extracted.
package npm

import (
	"regexp"

	"github.com/skanehira/version-lsp/internal/domain"
	"github.com/skanehira/version-lsp/internal/span"
)

// fieldNames are the top-level string-valued dependency maps package.json defines.
var fieldNames = []string{"dependencies", "devDependencies", "peerDependencies", "optionalDependencies"}

var (
	blockPattern = func(field string) *regexp.Regexp {
		return regexp.MustCompile(`(?s)"` + regexp.QuoteMeta(field) + `"\s*:\s*\{(.*?)\}`)
	}
	entryPattern = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	npmAlias     = regexp.MustCompile(`^npm:(.+)@([^@]*)$`)
)

var skippedPrefixes = []string{
	"file:", "link:", "portal:", "workspace:", "git+", "http:", "https:", "github:",
}

// Parser implements parser.Parser for package.json.
type Parser struct{}

func New() *Parser { return &Parser{} }

func (*Parser) Kind() domain.RegistryKind { return domain.KindNpm }

func (*Parser) Parse(text string) ([]domain.PackageEntry, error) {
	finder := span.NewFinder(text)
	var entries []domain.PackageEntry
	seen := make(map[int]bool) // dedupe by match start offset across overlapping field scans

	for _, field := range fieldNames {
		block := blockPattern(field)
		for _, bm := range block.FindAllSubmatchIndex([]byte(text), -1) {
			blockStart := bm[2]
			blockText := text[bm[2]:bm[3]]
			for _, em := range entryPattern.FindAllSubmatchIndex([]byte(blockText), -1) {
				valStart := blockStart + em[4]
				valEnd := blockStart + em[5]
				if seen[valStart] {
					continue
				}
				name := blockText[em[2]:em[3]]
				value := blockText[em[4]:em[5]]

				entry, ok := entryFor(name, value, valStart, valEnd, finder)
				if !ok {
					continue
				}
				seen[valStart] = true
				entries = append(entries, entry)
			}
		}
	}
	return entries, nil
}

func entryFor(name, value string, valStart, valEnd int, finder *span.Finder) (domain.PackageEntry, bool) {
	if name == "" || isSkippable(value) {
		return domain.PackageEntry{}, false
	}

	versionSpec := value
	rangeStart, rangeEnd := valStart, valEnd
	if m := npmAlias.FindStringSubmatch(value); m != nil {
		// npm:<real>@<ver> aliases report name = real, version_spec = ver.
		name = m[1]
		versionSpec = m[2]
		// The highlighted span still covers the whole alias text, since
		// that's the only text present for this declaration to point at.
	}

	return domain.PackageEntry{
		Name:        name,
		VersionSpec: versionSpec,
		Range:       finder.Range(rangeStart, rangeEnd),
		Kind:        domain.KindNpm,
	}, true
}

func isSkippable(value string) bool {
	for _, p := range skippedPrefixes {
		if len(value) >= len(p) && value[:len(p)] == p {
			return true
		}
	}
	return looksLikeBareRepoShorthand(value)
}

// looksLikeBareRepoShorthand matches "<owner>/<repo>" with no version,
// e.g. "user/project" or "user/project#branch", which npm also accepts
// as a git-shorthand dependency value with no resolvable registry version.
var bareShorthand = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+(#.*)?$`)

func looksLikeBareRepoShorthand(value string) bool {
	return bareShorthand.MatchString(value)
}
