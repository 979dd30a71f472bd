package core

import (
	"strings"
)

// RuleMatch names the keyword and/or sender fragment that made a rule
// match, for the dispatch audit log.
type RuleMatch struct {
	Keyword string
	Sender  string
}

// MatchRule evaluates one case rule against an email's subject and sender.
//
// Keywords and sender fragments are case-insensitive substring checks.
// When the rule carries both lists, both must hit; when it carries only
// one, that one decides alone; when it carries neither, the rule is dead
// and never matches. Fragments are unanchored: "fruno" also matches
// "notfruno.com".
func MatchRule(rule CaseRule, subject, sender string) (RuleMatch, bool) {
	hasKeywords := len(rule.Keywords) > 0
	hasSenders := len(rule.Senders) > 0

	if !hasKeywords && !hasSenders {
		return RuleMatch{}, false
	}

	var match RuleMatch

	if hasKeywords {
		keyword, ok := containsAny(subject, rule.Keywords)
		if !ok {
			return RuleMatch{}, false
		}
		match.Keyword = keyword
	}

	if hasSenders {
		fragment, ok := containsAny(sender, rule.Senders)
		if !ok {
			return RuleMatch{}, false
		}
		match.Sender = fragment
	}

	return match, true
}

// containsAny returns the first candidate occurring in haystack,
// case-insensitively. Blank candidates never match; the loader filters
// them out, this is the matcher's own invariant.
func containsAny(haystack string, candidates []string) (string, bool) {
	lowered := strings.ToLower(haystack)
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(candidate)) {
			return candidate, true
		}
	}
	return "", false
}
