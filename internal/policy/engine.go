package policy

import "strings"

// findRule is the single exact-then-wildcard lookup helper shared across
// the operation, command, and argument tiers.
//
// It walks section in order, returning the first rule whose Subject exactly
// equals name; failing that, it returns the first rule encountered along
// the way whose Subject is "*". Returns found=false if neither exists.
func findRule(section []Rule, name string) (Rule, bool) {
	var wildcard *Rule
	for i := range section {
		r := &section[i]
		if r.Subject == name {
			return *r, true
		}
		if wildcard == nil && r.Subject == "*" {
			wildcard = r
		}
	}
	if wildcard != nil {
		return *wildcard, true
	}
	return Rule{}, false
}

// IsOperationAllowed reports whether cl is authorized to invoke opName.
func IsOperationAllowed(p Policy, opName string, cl Client) bool {
	rule, ok := findRule(p.Operation, opName)
	if !ok {
		return false
	}
	return credentialMatches(rule.Credential, cl)
}

// IsCommandAllowed reports whether cl is authorized to run cmdName. It
// always returns the matched rule (exact or wildcard), even on denial, so
// the Request Router can attempt an argument-level escalation.
func IsCommandAllowed(p Policy, cmdName string, cl Client) (bool, *Rule) {
	rule, ok := findRule(p.Command, cmdName)
	if !ok {
		return false, nil
	}
	return credentialMatches(rule.Credential, cl), &rule
}

// IsArgumentsAllowed authorizes an individual command's argument string
// against matchedCommandRule's nested per-flag ACL. It tokenizes argString
// on ASCII whitespace, considers only tokens beginning
// with '-' as flags needing authorization, and requires every flag to be
// individually authorized against matchedCommandRule's nested Arguments
// section. An argument string with no flags is vacuously allowed.
func IsArgumentsAllowed(argString string, matchedCommandRule *Rule, cl Client) bool {
	if matchedCommandRule == nil {
		return false
	}
	flags := flagTokens(argString)
	if len(flags) == 0 {
		return true
	}
	for _, flag := range flags {
		rule, ok := findRule(matchedCommandRule.Arguments, flag)
		if !ok {
			return false
		}
		if !credentialMatches(rule.Credential, cl) {
			return false
		}
	}
	return true
}

// flagTokens splits argString on ASCII whitespace, discards empty tokens,
// and returns only those tokens whose first byte is '-'; non-flag tokens
// are ignored for authorization.
func flagTokens(argString string) []string {
	var flags []string
	for _, tok := range strings.FieldsFunc(argString, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n'
	}) {
		if tok == "" {
			continue
		}
		if tok[0] == '-' {
			flags = append(flags, tok)
		}
	}
	return flags
}
