package transaction

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRequired = []string{"amount", "date", "reference", "sender"}

func TestClassify(t *testing.T) {
	t.Run("CompleteWhenAllRequiredFilled", func(t *testing.T) {
		c := &Candidate{
			Type:      "cash",
			Amount:    "500",
			Date:      "2024-01-05",
			Reference: "INV-22",
			Sender:    "Juan",
		}
		assert.Equal(t, Complete, Classify(c, testRequired))
	})

	t.Run("BlankWhenAllRequiredMissing", func(t *testing.T) {
		testCases := []struct {
			name string
			c    *Candidate
		}{
			{"Empty", &Candidate{}},
			{"UnknownSentinels", &Candidate{Amount: "unknown", Date: "Unknown", Reference: "UNKNOWN", Sender: "unknown"}},
			{"Whitespace", &Candidate{Amount: "  ", Date: "", Reference: "\t", Sender: ""}},
			{"OnlyNonRequiredFilled", &Candidate{Type: "cash", Source: "telegram"}},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				assert.Equal(t, Blank, Classify(tc.c, testRequired))
			})
		}
	})

	t.Run("IncompleteWhenStrictSubsetFilled", func(t *testing.T) {
		testCases := []struct {
			name string
			c    *Candidate
		}{
			{"AmountOnly", &Candidate{Amount: "750.00"}},
			{"AllButSender", &Candidate{Amount: "750.00", Date: "2024-01-05", Reference: "INV-22"}},
			{"DateAndUnknownAmount", &Candidate{Amount: "unknown", Date: "2024-01-05"}},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				assert.Equal(t, Incomplete, Classify(tc.c, testRequired))
			})
		}
	})

	t.Run("EmptyRequiredSetIsBlank", func(t *testing.T) {
		c := &Candidate{Amount: "100"}
		assert.Equal(t, Blank, Classify(c, nil))
	})
}

func TestMissingFields(t *testing.T) {
	t.Run("PreservesRequiredOrder", func(t *testing.T) {
		c := &Candidate{Date: "2024-01-05"}
		assert.Equal(t, []string{"amount", "reference", "sender"}, MissingFields(c, testRequired))
	})

	t.Run("NoDuplicatesFromRepeatedRequiredEntries", func(t *testing.T) {
		c := &Candidate{}
		missing := MissingFields(c, []string{"amount", "amount", "date"})
		assert.Equal(t, []string{"amount", "date"}, missing)
	})

	t.Run("RecomputationIsIdempotent", func(t *testing.T) {
		c := &Candidate{Amount: "500"}
		first := MissingFields(c, testRequired)
		second := MissingFields(c, testRequired)
		assert.Equal(t, first, second)
	})

	t.Run("EmptyWhenComplete", func(t *testing.T) {
		c := &Candidate{Amount: "500", Date: "2024-01-05", Reference: "x", Sender: "y"}
		assert.Empty(t, MissingFields(c, testRequired))
	})
}

func TestCandidate_FieldAccess(t *testing.T) {
	c := &Candidate{}

	ok := c.SetField("amount", "123.45")
	require.True(t, ok)
	value, ok := c.Field("amount")
	require.True(t, ok)
	assert.Equal(t, "123.45", value)

	assert.False(t, c.SetField("balance", "999"), "unknown fields must be rejected")
	_, ok = c.Field("balance")
	assert.False(t, ok)
}

func TestCandidate_UnmarshalJSON(t *testing.T) {
	t.Run("NumericAmount", func(t *testing.T) {
		var c Candidate
		err := json.Unmarshal([]byte(`{"type":"cash","amount":750.5,"date":"2024-01-05","reference":"INV-22","sender":"Juan"}`), &c)
		require.NoError(t, err)
		assert.Equal(t, "750.5", c.Amount)
		assert.Equal(t, "Juan", c.Sender)
	})

	t.Run("StringAmount", func(t *testing.T) {
		var c Candidate
		err := json.Unmarshal([]byte(`{"amount":"1,532.75"}`), &c)
		require.NoError(t, err)
		assert.Equal(t, "1,532.75", c.Amount)
	})

	t.Run("NullAmount", func(t *testing.T) {
		var c Candidate
		err := json.Unmarshal([]byte(`{"amount":null,"reference":"REF"}`), &c)
		require.NoError(t, err)
		assert.Equal(t, "", c.Amount)
		assert.Equal(t, "REF", c.Reference)
	})
}

func TestFilled(t *testing.T) {
	assert.True(t, Filled("500"))
	assert.True(t, Filled(" x "))
	assert.False(t, Filled(""))
	assert.False(t, Filled("   "))
	assert.False(t, Filled("unknown"))
	assert.False(t, Filled("Unknown"))
}
