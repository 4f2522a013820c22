// Package githubactions parses `uses:` step references from GitHub
// Actions workflow and composite-action YAML into PackageEntry values.
//
// Job-level `uses:` (reusable workflows) is intentionally not visited:
// this package only descends into sequences found under a "steps" key,
// which is where both workflow jobs and composite actions' `runs:` block
// list their individual action references.
package githubactions

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/skanehira/version-lsp/internal/domain"
	"github.com/skanehira/version-lsp/internal/parser"
	"github.com/skanehira/version-lsp/internal/span"
)

var (
	shaPattern     = regexp.MustCompile(`^[0-9a-fA-F]{40}$`)
	commentVersion = regexp.MustCompile(`^#\s*(\S+)`)
)

// Parser implements parser.Parser for workflow/composite-action YAML.
type Parser struct{}

func New() *Parser { return &Parser{} }

func (*Parser) Kind() domain.RegistryKind { return domain.KindGitHubActions }

func (*Parser) Parse(text string) ([]domain.PackageEntry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, &parser.Error{Kind: parser.InvalidSyntax, Message: err.Error()}
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	finder := span.NewFinder(text)
	var entries []domain.PackageEntry
	collectSteps(doc.Content[0], finder, &entries)
	return entries, nil
}

// collectSteps recursively finds every "steps" key in any mapping and
// extracts "uses" references from the mapping items of its sequence.
func collectSteps(node *yaml.Node, finder *span.Finder, out *[]domain.PackageEntry) {
	if node == nil {
		return
	}
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i]
			val := node.Content[i+1]
			if key.Value == "steps" && val.Kind == yaml.SequenceNode {
				for _, step := range val.Content {
					extractUses(step, finder, out)
				}
			}
			collectSteps(val, finder, out)
		}
	case yaml.SequenceNode:
		for _, child := range node.Content {
			collectSteps(child, finder, out)
		}
	}
}

func extractUses(step *yaml.Node, finder *span.Finder, out *[]domain.PackageEntry) {
	if step == nil || step.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(step.Content); i += 2 {
		key := step.Content[i]
		val := step.Content[i+1]
		if key.Value != "uses" || val.Kind != yaml.ScalarNode {
			continue
		}
		entry, ok := entryFromUses(val, finder)
		if ok {
			*out = append(*out, entry)
		}
	}
}

func entryFromUses(val *yaml.Node, finder *span.Finder) (domain.PackageEntry, bool) {
	value := val.Value
	at := strings.LastIndex(value, "@")
	if at < 0 {
		return domain.PackageEntry{}, false
	}
	namePath := value[:at]
	ref := value[at+1:]
	if namePath == "" || ref == "" {
		return domain.PackageEntry{}, false
	}

	parts := strings.Split(namePath, "/")
	if len(parts) < 2 {
		return domain.PackageEntry{}, false
	}
	name := parts[0] + "/" + parts[1]

	nodeStart := finder.ByteOffset(val.Line-1, val.Column-1)
	refStart := nodeStart + at + 1
	refEnd := refStart + len(ref)

	versionSpec := ref
	if shaPattern.MatchString(ref) {
		if cm := commentVersion.FindStringSubmatch(val.LineComment); cm != nil {
			versionSpec = cm[1]
		}
	}

	return domain.PackageEntry{
		Name:        name,
		VersionSpec: versionSpec,
		Range:       finder.Range(refStart, refEnd),
		Kind:        domain.KindGitHubActions,
	}, true
}
