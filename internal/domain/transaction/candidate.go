package transaction

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Unknown is the sentinel the extraction model emits for fields it could not
// read. A field holding it counts as missing for completeness purposes.
const Unknown = "unknown"

// Candidate field names as they appear in the extraction schema and in
// change commands.
const (
	FieldStoreID   = "store_id"
	FieldType      = "type"
	FieldAmount    = "amount"
	FieldDate      = "date"
	FieldSource    = "source"
	FieldReference = "reference"
	FieldSender    = "sender"
)

// Candidate is the mutable transaction record under construction for one
// chat session. All fields are kept as raw strings until commit; user
// replies are assigned verbatim and only parsed when the record is
// committed.
type Candidate struct {
	StoreID   string `json:"store_id,omitempty"`
	Type      string `json:"type"`
	Amount    string `json:"amount"`
	Date      string `json:"date"`
	Source    string `json:"source"`
	Reference string `json:"reference"`
	Sender    string `json:"sender"`
}

// UnmarshalJSON accepts both string and numeric amounts since the model is
// inconsistent about quoting numbers.
func (c *Candidate) UnmarshalJSON(data []byte) error {
	type alias Candidate
	aux := struct {
		*alias
		Amount any `json:"amount"`
	}{alias: (*alias)(c)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	switch v := aux.Amount.(type) {
	case nil:
		c.Amount = ""
	case string:
		c.Amount = v
	case float64:
		c.Amount = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		c.Amount = fmt.Sprint(v)
	}

	return nil
}

// Field returns the value of the named candidate field. The second return
// reports whether the name is a known field.
func (c *Candidate) Field(name string) (string, bool) {
	switch name {
	case FieldStoreID:
		return c.StoreID, true
	case FieldType:
		return c.Type, true
	case FieldAmount:
		return c.Amount, true
	case FieldDate:
		return c.Date, true
	case FieldSource:
		return c.Source, true
	case FieldReference:
		return c.Reference, true
	case FieldSender:
		return c.Sender, true
	default:
		return "", false
	}
}

// SetField assigns a value to the named candidate field. Returns false for
// unknown field names, which callers must reject rather than silently drop.
func (c *Candidate) SetField(name, value string) bool {
	switch name {
	case FieldStoreID:
		c.StoreID = value
	case FieldType:
		c.Type = value
	case FieldAmount:
		c.Amount = value
	case FieldDate:
		c.Date = value
	case FieldSource:
		c.Source = value
	case FieldReference:
		c.Reference = value
	case FieldSender:
		c.Sender = value
	default:
		return false
	}
	return true
}

// Filled reports whether a raw field value counts as present: non-empty and
// not the model's "unknown" sentinel.
func Filled(value string) bool {
	trimmed := strings.TrimSpace(value)
	return trimmed != "" && !strings.EqualFold(trimmed, Unknown)
}

// Completeness is the classification of a candidate against the required
// field set.
type Completeness int

const (
	// Blank means every required field is missing, empty or "unknown".
	Blank Completeness = iota
	// Incomplete means some but not all required fields are present.
	Incomplete
	// Complete means no required field is missing.
	Complete
)

func (c Completeness) String() string {
	switch c {
	case Blank:
		return "blank"
	case Incomplete:
		return "incomplete"
	case Complete:
		return "complete"
	default:
		return "invalid"
	}
}

// Classify evaluates the candidate against the required field set. A record
// with zero required fields filled is Blank, never Incomplete; this covers
// the degenerate empty required list as well.
func Classify(c *Candidate, required []string) Completeness {
	filled := 0
	for _, name := range required {
		value, ok := c.Field(name)
		if ok && Filled(value) {
			filled++
		}
	}

	switch {
	case filled == 0:
		return Blank
	case filled == len(required):
		return Complete
	default:
		return Incomplete
	}
}

// MissingFields returns the required fields that are still unfilled, in
// required-set order (most-urgently-needed first). The result never contains
// duplicates, so recomputing after an unproductive reply is idempotent.
func MissingFields(c *Candidate, required []string) []string {
	var missing []string
	seen := make(map[string]bool, len(required))
	for _, name := range required {
		if seen[name] {
			continue
		}
		seen[name] = true
		value, ok := c.Field(name)
		if !ok || !Filled(value) {
			missing = append(missing, name)
		}
	}
	return missing
}
