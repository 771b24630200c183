// Package policy implements the Identity Matcher and Policy Engine,
// grounded on auth/server/auth/auth.go's principal-list handling and on
// original_source/src/poudriered/poudriered.c's
// valid_user/valid_group/is_*_allowed matching semantics.
package policy

// Principal is a policy principal descriptor: a name, a numeric id, or the
// wildcard "*". It is decoded straight off the dynamic config tree, so it
// keeps a three-way shape rather than collapsing to a single string type.
type Principal struct {
	Wildcard bool
	Name     string
	ID       *int
}

// IsWildcard reports whether p is the "*" literal.
func (p Principal) IsWildcard() bool { return p.Wildcard }

// Credential is the access-control record attached to a subject: a list of
// user principals and a list of group principals. A match on any principal
// in either list grants access.
type Credential struct {
	Users  []Principal
	Groups []Principal
}

// Rule pairs a subject name (an operation, command, flag, or "*") with its
// Credential. Rules are kept in a slice, not a map, because the Policy
// Engine's exact-then-wildcard lookup depends on encounter order: it
// remembers the rule keyed "*" encountered during the walk and falls back
// to it only if no exact match turns up later.
type Rule struct {
	Subject    string
	Credential Credential
	// Arguments holds the nested per-flag ACL for command rules: the
	// argument section lives inside the individual command rule it
	// escalates, not as a separate top-level section.
	Arguments []Rule
}

// Section is an ordered list of rules, e.g. the "operation" or "command"
// top-level policy sections.
type Section []Rule

// Policy is the full, immutable-once-loaded ACL tree.
type Policy struct {
	Operation Section
	Command   Section
}

// Client is the authorization-relevant subset of a connected session: the
// peer identity captured once at accept time and never refreshed for the
// life of the session.
type Client struct {
	UID uint32
	GID uint32
}
