// Package util provides shared utility functions.
package util

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	// DefaultShortIDLength is the default number of characters for short IDs.
	DefaultShortIDLength = 8
	// MaxAmbiguousCandidates is the max number of candidates to show in ambiguous error.
	MaxAmbiguousCandidates = 5
)

// Errors returned by ID resolution functions.
var (
	ErrAmbiguousID = errors.New("ambiguous ID prefix")
	ErrNotFound    = errors.New("not found")
)

// NewID returns a random 128-bit task identifier.
func NewID() string {
	return uuid.NewString()
}

// ShortID returns a shortened version of an ID.
// If n is 0 or negative, DefaultShortIDLength (8) is used.
//
// Examples:
//
//	ShortID("3f2a9c1e-7b4d-4e0f-9a51-2c8d6e0b1f34", 0) → "3f2a9c1e"
//	ShortID("17", 0) → "17" (no truncation if shorter)
func ShortID(id string, n int) string {
	if n <= 0 {
		n = DefaultShortIDLength
	}
	if len(id) <= n {
		return id
	}
	return id[:n]
}

// ResolveTaskID resolves a task ID or prefix against the known ids.
//
// Resolution rules:
//  1. An exact match wins, even when it is also a prefix of other ids
//     (legacy ids such as "1" and "17").
//  2. If idOrPrefix matches exactly one id prefix, return that id.
//  3. If multiple matches, return ErrAmbiguousID with candidates.
//  4. If no matches, return ErrNotFound.
func ResolveTaskID(ids []string, idOrPrefix string) (string, error) {
	if idOrPrefix == "" {
		return "", fmt.Errorf("task ID: %w", ErrNotFound)
	}

	var candidates []string
	for _, id := range ids {
		if id == idOrPrefix {
			return id, nil
		}
		if strings.HasPrefix(id, idOrPrefix) {
			candidates = append(candidates, id)
		}
	}
	return resolveFromCandidates(idOrPrefix, candidates, "task")
}

// resolveFromCandidates handles the common resolution logic.
func resolveFromCandidates(prefix string, candidates []string, entityType string) (string, error) {
	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("%s with prefix %q: %w", entityType, prefix, ErrNotFound)
	case 1:
		return candidates[0], nil
	default:
		shown := candidates
		if len(shown) > MaxAmbiguousCandidates {
			shown = shown[:MaxAmbiguousCandidates]
		}
		return "", fmt.Errorf("%w: prefix %q matches %d %ss: %v",
			ErrAmbiguousID, prefix, len(candidates), entityType, shown)
	}
}
