// Package parser declares the pure, I/O-free contract every manifest
// parser implements: parsers here never touch a registry or a
// resolver, they only turn document text into PackageEntry values.
package parser

import "github.com/skanehira/version-lsp/internal/domain"

// ErrorKind classifies why a parser failed to fully process a document.
type ErrorKind int

const (
	InvalidSyntax ErrorKind = iota
	UnsupportedFeature
	InternalError
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidSyntax:
		return "InvalidSyntax"
	case UnsupportedFeature:
		return "UnsupportedFeature"
	default:
		return "InternalError"
	}
}

// Error is returned by a Parser when it cannot process the document. It
// never crashes the server or touches the cache: the backend logs it and
// publishes no diagnostics for that document.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Kind.String() + ": " + e.Message }

// Parser extracts PackageEntry values from one manifest's text. A Parser
// implementation is pure: no I/O, no mutation of globals. The line- and
// regex-based parsers (npm, cargo, gomod, jsr) skip text they cannot
// match and return the entries they could extract; the YAML-based
// parsers (githubactions, pnpm) return no entries and an *Error when the
// document does not decode as YAML.
type Parser interface {
	// Kind returns the RegistryKind this parser produces entries for.
	Kind() domain.RegistryKind
	// Parse extracts entries from text. A non-nil error comes with no
	// entries.
	Parse(text string) ([]domain.PackageEntry, error)
}
