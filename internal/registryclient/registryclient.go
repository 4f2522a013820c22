// Package registryclient declares the Client interface implemented once
// per RegistryKind, and the shared FetchResult every implementation
// returns.
package registryclient

import (
	"context"

	"github.com/skanehira/version-lsp/internal/domain"
)

// FetchResult is what one client call returns for a single package.
type FetchResult struct {
	Versions []string
	DistTags map[string]string
}

// Client fetches the full version list and dist-tags for one package
// name under a single RegistryKind.
type Client interface {
	Kind() domain.RegistryKind
	Fetch(ctx context.Context, name string) (FetchResult, error)
}
