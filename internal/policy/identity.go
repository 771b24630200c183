package policy

import (
	"os/user"
	"strconv"
)

// matchesUser is the Identity Matcher for a user principal against a peer
// uid. Any resolution failure (unknown name) simply means "does not
// match" — no error is surfaced upward.
func matchesUser(p Principal, uid uint32) bool {
	if p.Wildcard {
		return true
	}
	if p.ID != nil {
		return uint32(*p.ID) == uid
	}
	if p.Name == "" {
		return false
	}
	u, err := user.Lookup(p.Name)
	if err != nil {
		return false
	}
	resolved, err := strconv.ParseUint(u.Uid, 10, 32)
	if err != nil {
		return false
	}
	return uint32(resolved) == uid
}

// matchesGroup is matchesUser's group-principal counterpart.
func matchesGroup(p Principal, gid uint32) bool {
	if p.Wildcard {
		return true
	}
	if p.ID != nil {
		return uint32(*p.ID) == gid
	}
	if p.Name == "" {
		return false
	}
	g, err := user.LookupGroup(p.Name)
	if err != nil {
		return false
	}
	resolved, err := strconv.ParseUint(g.Gid, 10, 32)
	if err != nil {
		return false
	}
	return uint32(resolved) == gid
}

// credentialMatches reports whether any principal in cred's user or group
// lists matches cl — the "group OR user" check run for every rule lookup
// (operation, command, and argument tiers alike).
func credentialMatches(cred Credential, cl Client) bool {
	for _, g := range cred.Groups {
		if matchesGroup(g, cl.GID) {
			return true
		}
	}
	for _, u := range cred.Users {
		if matchesUser(u, cl.UID) {
			return true
		}
	}
	return false
}
