// Package commands classifies free-form user replies in the confirmation
// phase into a small tagged command set, so the session flow never inspects
// raw message text itself.
package commands

import (
	"context"
	"strings"
)

// Kind tags a classified reply.
type Kind int

const (
	// Unrecognized means the reply is neither a confirmation nor a change
	// request; the flow re-shows the summary with usage hints.
	Unrecognized Kind = iota
	// Confirm commits the candidate.
	Confirm
	// Change mutates specific candidate fields.
	Change
)

// FieldChange is one field update from a change command.
type FieldChange struct {
	Field string
	Value string
}

// Command is the classified form of a user reply.
type Command struct {
	Kind    Kind
	Changes []FieldChange
}

// Classifier turns a raw reply into a Command. The context is accepted so an
// implementation may consult the completion API for looser phrasing.
type Classifier interface {
	Classify(ctx context.Context, text string) Command
}

// confirmWords are accepted confirmation replies. The bot speaks casual
// Filipino/Taglish, so the local affirmatives are included.
var confirmWords = map[string]bool{
	"confirm":   true,
	"confirmed": true,
	"yes":       true,
	"ok":        true,
	"okay":      true,
	"upload":    true,
	"sige":      true,
	"oo":        true,
}

// RuleClassifier is the deterministic classifier: exact confirm words and
// the "change field:value[, field:value...]" form.
type RuleClassifier struct{}

// NewRuleClassifier creates the rule-based reply classifier.
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{}
}

// Classify implements Classifier.
func (rc *RuleClassifier) Classify(_ context.Context, text string) Command {
	trimmed := strings.TrimSpace(text)
	lowered := strings.ToLower(trimmed)

	if confirmWords[strings.TrimRight(lowered, ".!")] {
		return Command{Kind: Confirm}
	}

	if lowered == "change" {
		// A bare "change" is a valid no-op; the flow re-shows the summary.
		return Command{Kind: Change}
	}

	if _, ok := strings.CutPrefix(lowered, "change "); ok {
		// Parse from the original text so values keep their casing. The
		// matched prefix is ASCII, so it spans the same bytes in trimmed even
		// when lowering changed byte lengths further along.
		return Command{Kind: Change, Changes: parseChanges(trimmed[len("change "):])}
	}

	return Command{Kind: Unrecognized}
}

// parseChanges splits "field:value, field:value" pairs. Malformed pairs are
// dropped; values may themselves contain colons (e.g. timestamps).
func parseChanges(raw string) []FieldChange {
	var changes []FieldChange
	for _, part := range strings.Split(raw, ",") {
		field, value, found := strings.Cut(part, ":")
		if !found {
			continue
		}
		field = strings.ToLower(strings.TrimSpace(field))
		value = strings.TrimSpace(value)
		if field == "" || value == "" {
			continue
		}
		changes = append(changes, FieldChange{Field: field, Value: value})
	}
	return changes
}
