package aggregate

import "fmt"

// Scope selects whose entries a query covers.
type Scope string

const (
	ScopeMine   Scope = "mine"
	ScopeFamily Scope = "family"
	ScopeAll    Scope = "all"
)

// ParseScope maps a scope name to a Scope. An empty name means ScopeMine.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "", ScopeMine:
		return ScopeMine, nil
	case ScopeFamily:
		return ScopeFamily, nil
	case ScopeAll:
		return ScopeAll, nil
	default:
		return "", fmt.Errorf("unknown scope %q", s)
	}
}

// Fallback explains why a family query was answered with the user's own entries.
type Fallback string

const (
	FallbackNone         Fallback = ""
	FallbackNoFamily     Fallback = "no_family"
	FallbackNoMembers    Fallback = "no_members"
	FallbackLookupFailed Fallback = "lookup_failed"
)
