package version

import "github.com/skanehira/version-lsp/internal/domain"

// CompareInput bundles everything a matcher needs to produce one
// CompareResult. Available is the package's full stored version list in
// ascending publish order, matching domain.PackageVersions; DistTags is
// nil or empty for every kind except npm.
type CompareInput struct {
	Spec             string
	Available        []string
	DistTags         map[string]string
	IgnorePrerelease bool
}

// Matcher implements the per-RegistryKind decisions: whether some
// available version satisfies a spec, and how the spec compares against
// the resolved latest. Compare is the single entry point here — each
// matcher's satisfaction grammar needs the full available list to
// resolve an "effective current" version from a range, not just the
// literal spec string, so splitting that plumbing across two methods
// would only move it into a shared orchestrator with no behavioral
// difference. See DESIGN.md.
type Matcher interface {
	Kind() domain.RegistryKind
	Compare(in CompareInput) domain.CompareResult
	// VersionExists reports whether some version in available satisfies
	// spec, without going through the full Compare pipeline.
	VersionExists(spec string, available []string) bool
}
