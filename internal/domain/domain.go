// Package domain holds the data model shared by every subsystem: the
// closed RegistryKind tag set and the types that travel across parser,
// matcher, registry client, and cache boundaries.
package domain

import "github.com/skanehira/version-lsp/internal/span"

// RegistryKind is a closed tag set. Every file, package entry, and cache
// row carries exactly one. The string form is stable and persisted in the
// cache, so it must never change for an existing constant.
type RegistryKind string

const (
	KindGitHubActions RegistryKind = "github"
	KindNpm           RegistryKind = "npm"
	KindCratesIo      RegistryKind = "crates"
	KindGoProxy       RegistryKind = "go_proxy"
	KindPnpmCatalog   RegistryKind = "pnpm_catalog"
	KindJsr           RegistryKind = "jsr"
)

// AllKinds enumerates the closed set in a stable order.
var AllKinds = []RegistryKind{
	KindGitHubActions,
	KindNpm,
	KindCratesIo,
	KindGoProxy,
	KindPnpmCatalog,
	KindJsr,
}

// PackageEntry is a single dependency occurrence found in a document.
type PackageEntry struct {
	Name string
	// VersionSpec is the verbatim requirement text used for comparison.
	// For GitHub Actions entries pinned to a commit SHA with a trailing
	// "# vX.Y.Z" comment, this is the comment's version, not the SHA.
	VersionSpec string
	Range       span.Range
	Kind        RegistryKind
}

// PackageVersions is an ordered sequence of version strings for one
// (kind, name) pair, oldest first (ascending publish order).
type PackageVersions struct {
	Kind     RegistryKind
	Name     string
	Versions []string
	DistTags map[string]string
}

// CompareStatus is the classification CompareResult carries.
type CompareStatus int

const (
	StatusLatest CompareStatus = iota
	StatusOutdated
	StatusNewer
	StatusNotFound
	StatusInvalid
)

func (s CompareStatus) String() string {
	switch s {
	case StatusLatest:
		return "Latest"
	case StatusOutdated:
		return "Outdated"
	case StatusNewer:
		return "Newer"
	case StatusNotFound:
		return "NotFound"
	case StatusInvalid:
		return "Invalid"
	default:
		return "Unknown"
	}
}

// CompareResult is what a matcher produces for one entry given the
// resolved latest version.
type CompareResult struct {
	Status CompareStatus
	Latest string // populated for Outdated and Newer
}
