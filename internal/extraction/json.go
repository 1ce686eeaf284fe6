package extraction

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/retail-receipt-ingest/internal/domain/transaction"
)

// ErrNoData means the model produced no parseable transaction data. Callers
// decide the user-facing message.
var ErrNoData = errors.New("no transaction data extracted")

var fenceRe = regexp.MustCompile("(?is)```(?:json)?\\s*(.*?)\\s*```")

// locateJSON finds the JSON payload inside a model reply that may wrap it in
// prose or a fenced code block. It tries, in order: the first fenced block,
// a direct parse of the whole reply, then the first balanced-looking
// {...} or [...] substring. Returns nil when nothing parses.
func locateJSON(content string) []byte {
	candidate := strings.TrimSpace(content)
	if m := fenceRe.FindStringSubmatch(content); m != nil {
		candidate = strings.TrimSpace(m[1])
	}

	if json.Valid([]byte(candidate)) {
		return []byte(candidate)
	}

	// Greedy first-to-last match, same as scanning for {[\s\S]*} — model
	// replies carry at most one payload.
	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(candidate, pair[0])
		end := strings.LastIndex(candidate, pair[1])
		if start >= 0 && end > start {
			sub := candidate[start : end+1]
			if json.Valid([]byte(sub)) {
				return []byte(sub)
			}
		}
	}

	return nil
}

// parseCandidates decodes the model reply into candidate records. A single
// object yields one candidate; an array yields each element. The empty
// array sentinel (and a reply with no JSON at all) yields ErrNoData.
func parseCandidates(content string) ([]*transaction.Candidate, error) {
	payload := locateJSON(content)
	if payload == nil {
		return nil, ErrNoData
	}

	trimmed := strings.TrimSpace(string(payload))
	if strings.HasPrefix(trimmed, "[") {
		var many []*transaction.Candidate
		if err := json.Unmarshal(payload, &many); err != nil {
			return nil, ErrNoData
		}
		if len(many) == 0 {
			return nil, ErrNoData
		}
		return many, nil
	}

	var one transaction.Candidate
	if err := json.Unmarshal(payload, &one); err != nil {
		return nil, ErrNoData
	}
	return []*transaction.Candidate{&one}, nil
}
