// Package slug derives URL-safe identifiers from human-readable names
// and resolves collisions within an entity scope.
package slug

import (
	"context"
	"fmt"
	"strings"

	gosimple "github.com/gosimple/slug"
)

// Checker reports whether a slug is already taken within one uniqueness
// scope (categories, tags, and posts are separate scopes — each store
// implements its own Checker). excludeID lets updates keep their own
// slug: a row never collides with itself.
type Checker interface {
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
}

// Make normalizes text into a slug: lowercase, diacritics stripped,
// every run of non-[a-z0-9] collapsed to a single hyphen, leading and
// trailing hyphens trimmed. Deterministic and pure.
//
//	Make("Héllo World!!")   → "hello-world"
//	Make("  --Foo_Bar--  ") → "foo-bar"
func Make(text string) string {
	// gosimple keeps underscores; this scheme does not.
	return gosimple.Make(strings.ReplaceAll(text, "_", "-"))
}

// EnsureUnique resolves base to a slug that is free within the
// checker's scope, appending -2, -3, … until an unoccupied value is
// found. Idempotent under retries (an update passing its own ID via
// excludeID keeps its slug).
//
// This pre-check is a UX optimization, not the correctness guarantee:
// two fully concurrent creations can both see the same slug as free.
// The store's UNIQUE index is the final arbiter — the loser of such a
// race gets a conflict error from the insert itself.
func EnsureUnique(ctx context.Context, checker Checker, base, excludeID string) (string, error) {
	if base == "" {
		base = "untitled"
	}

	candidate := base
	for n := 2; ; n++ {
		taken, err := checker.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("slug: checking %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}
