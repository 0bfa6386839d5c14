// Package util resolves user-typed id prefixes to stored ids.
package util

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/josephgoksu/taskgraph/internal/task"
)

const (
	// DefaultShortIDLength keeps the entity prefix plus three id characters.
	DefaultShortIDLength = 8
	// MaxAmbiguousCandidates caps the candidates listed in an ambiguity error.
	MaxAmbiguousCandidates = 5
)

// ShortID truncates id to n characters (DefaultShortIDLength when n <= 0).
//
//	ShortID("task-abcdef12", 0)  // "task-abc"
//	ShortID("task-abcdef12", 10) // "task-abcde"
func ShortID(id string, n int) string {
	if n <= 0 {
		n = DefaultShortIDLength
	}
	if len(id) <= n {
		return id
	}
	return id[:n]
}

// PrefixFinder is implemented by task.Reader.
type PrefixFinder interface {
	FindTaskIDsByPrefix(ctx context.Context, prefix string) ([]string, error)
	FindProjectIDsByPrefix(ctx context.Context, prefix string) ([]string, error)
}

// AmbiguousIDError reports a prefix that matches more than one id.
type AmbiguousIDError struct {
	Entity     string
	Prefix     string
	Candidates []string
}

func (e *AmbiguousIDError) Error() string {
	shown := e.Candidates
	if len(shown) > MaxAmbiguousCandidates {
		shown = shown[:MaxAmbiguousCandidates]
	}
	return fmt.Sprintf("%s prefix %q is ambiguous: matches %d (%s)",
		e.Entity, e.Prefix, len(e.Candidates), strings.Join(shown, ", "))
}

// Unwrap classifies ambiguity as bad input.
func (e *AmbiguousIDError) Unwrap() error { return task.ErrValidation }

// ResolveTaskID accepts a full task id, a prefix of one, or a prefix without
// the "task-" part.
func ResolveTaskID(ctx context.Context, f PrefixFinder, idOrPrefix string) (string, error) {
	return resolve(ctx, "task", "task-", f.FindTaskIDsByPrefix, idOrPrefix)
}

// ResolveProjectID is ResolveTaskID for "proj-" ids.
func ResolveProjectID(ctx context.Context, f PrefixFinder, idOrPrefix string) (string, error) {
	return resolve(ctx, "project", "proj-", f.FindProjectIDsByPrefix, idOrPrefix)
}

func resolve(ctx context.Context, entity, idPrefix string,
	find func(context.Context, string) ([]string, error), idOrPrefix string) (string, error) {
	raw := strings.TrimSpace(idOrPrefix)
	if raw == "" {
		return "", &task.ValidationError{Field: "id", Message: entity + " id is required"}
	}
	normalized := raw
	if !strings.HasPrefix(normalized, idPrefix) {
		normalized = idPrefix + normalized
	}

	candidates, err := find(ctx, normalized)
	if err != nil {
		return "", fmt.Errorf("find %s ids: %w", entity, err)
	}
	switch {
	case len(candidates) == 0:
		return "", &task.NotFoundError{Entity: entity, ID: raw}
	case len(candidates) == 1:
		return candidates[0], nil
	case slices.Contains(candidates, normalized):
		return normalized, nil
	}
	return "", &AmbiguousIDError{Entity: entity, Prefix: raw, Candidates: candidates}
}
