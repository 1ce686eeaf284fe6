package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuleClassifier_Confirm(t *testing.T) {
	rc := NewRuleClassifier()
	ctx := context.Background()

	for _, text := range []string{"confirm", "CONFIRM", "  Confirm  ", "yes", "ok", "Okay", "upload", "sige", "oo", "confirm!"} {
		t.Run(text, func(t *testing.T) {
			cmd := rc.Classify(ctx, text)
			assert.Equal(t, Confirm, cmd.Kind)
			assert.Empty(t, cmd.Changes)
		})
	}
}

func TestRuleClassifier_Change(t *testing.T) {
	rc := NewRuleClassifier()
	ctx := context.Background()

	t.Run("SingleField", func(t *testing.T) {
		cmd := rc.Classify(ctx, "change amount:100")
		assert.Equal(t, Change, cmd.Kind)
		assert.Equal(t, []FieldChange{{Field: "amount", Value: "100"}}, cmd.Changes)
	})

	t.Run("MultipleFields", func(t *testing.T) {
		cmd := rc.Classify(ctx, "change amount:100, date:2024-01-05")
		assert.Equal(t, Change, cmd.Kind)
		assert.Equal(t, []FieldChange{
			{Field: "amount", Value: "100"},
			{Field: "date", Value: "2024-01-05"},
		}, cmd.Changes)
	})

	t.Run("CaseInsensitivePrefixAndField", func(t *testing.T) {
		cmd := rc.Classify(ctx, "Change Sender:Juan Dela Cruz")
		assert.Equal(t, Change, cmd.Kind)
		assert.Equal(t, []FieldChange{{Field: "sender", Value: "Juan Dela Cruz"}}, cmd.Changes)
	})

	t.Run("MultibyteCaseFoldKeepsOffsets", func(t *testing.T) {
		// U+0130 lowers to a shorter byte sequence; the field name before it
		// must still come out intact.
		cmd := rc.Classify(ctx, "change sender:İbrahim ÇELİK")
		assert.Equal(t, Change, cmd.Kind)
		assert.Equal(t, []FieldChange{{Field: "sender", Value: "İbrahim ÇELİK"}}, cmd.Changes)
	})

	t.Run("ValueKeepsColons", func(t *testing.T) {
		cmd := rc.Classify(ctx, "change date:2024-01-05T10:30:00Z")
		assert.Equal(t, Change, cmd.Kind)
		assert.Equal(t, []FieldChange{{Field: "date", Value: "2024-01-05T10:30:00Z"}}, cmd.Changes)
	})

	t.Run("BareChangeIsEmptyChangeList", func(t *testing.T) {
		cmd := rc.Classify(ctx, "change")
		assert.Equal(t, Change, cmd.Kind)
		assert.Empty(t, cmd.Changes)
	})

	t.Run("MalformedPairsDropped", func(t *testing.T) {
		cmd := rc.Classify(ctx, "change amount:100, nonsense, :5, date:")
		assert.Equal(t, Change, cmd.Kind)
		assert.Equal(t, []FieldChange{{Field: "amount", Value: "100"}}, cmd.Changes)
	})
}

func TestRuleClassifier_Unrecognized(t *testing.T) {
	rc := NewRuleClassifier()
	ctx := context.Background()

	for _, text := range []string{"", "maybe later", "what is this", "changeling amount:5"} {
		t.Run("text="+text, func(t *testing.T) {
			cmd := rc.Classify(ctx, text)
			assert.Equal(t, Unrecognized, cmd.Kind)
		})
	}
}
