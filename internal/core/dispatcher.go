package core

import (
	"time"

	"go.uber.org/zap"
)

// Dispatcher evaluates the ordered case rules against incoming emails and
// returns the first match. Order is semantically significant, so the rule
// set is an explicit slice, never a map.
type Dispatcher struct {
	rules  []CaseRule
	logger *zap.Logger
}

// NewDispatcher creates a dispatcher over an ordered rule set. The rules
// are an immutable snapshot: a config reload builds a new Dispatcher.
func NewDispatcher(rules []CaseRule, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		rules:  rules,
		logger: logger,
	}
}

// Dispatch returns the first rule (in configured order) matching the
// subject and sender, or nil when no rule matches. A full non-match is a
// legitimate "ignore this email" outcome and is not logged as a match.
func (d *Dispatcher) Dispatch(subject, sender string) *DispatchResult {
	for _, rule := range d.rules {
		match, ok := MatchRule(rule, subject, sender)
		if !ok {
			continue
		}

		d.logger.Info("Case matched",
			zap.String("case_id", rule.ID),
			zap.String("matched_keyword", match.Keyword),
			zap.String("matched_sender", match.Sender))

		return &DispatchResult{
			CaseID:         rule.ID,
			MatchedKeyword: match.Keyword,
			MatchedSender:  match.Sender,
			DispatchedAt:   time.Now(),
		}
	}
	return nil
}

// Rule looks up a rule by case id.
func (d *Dispatcher) Rule(id string) (CaseRule, bool) {
	for _, rule := range d.rules {
		if rule.ID == id {
			return rule, true
		}
	}
	return CaseRule{}, false
}

// Rules returns the ordered rule snapshot.
func (d *Dispatcher) Rules() []CaseRule {
	return d.rules
}
