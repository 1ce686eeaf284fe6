package extraction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retail-receipt-ingest/internal/domain/transaction"
)

func TestParseCandidates(t *testing.T) {
	t.Run("FencedCodeBlock", func(t *testing.T) {
		reply := "Here you go:\n```json\n{\"type\":\"cash\",\"amount\":500,\"date\":\"2024-01-05\",\"source\":\"telegram\",\"reference\":\"INV-22\",\"sender\":\"Juan\"}\n```\nLet me know!"

		candidates, err := parseCandidates(reply)
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, "500", candidates[0].Amount)
		assert.Equal(t, "Juan", candidates[0].Sender)
	})

	t.Run("BareObject", func(t *testing.T) {
		candidates, err := parseCandidates(`{"amount":"750.00","reference":"unknown"}`)
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, "750.00", candidates[0].Amount)
	})

	t.Run("ObjectBuriedInProse", func(t *testing.T) {
		reply := `Sure! Based on the receipt, {"amount": 1532.75, "sender": "MJ"} is what I found.`

		candidates, err := parseCandidates(reply)
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, "1532.75", candidates[0].Amount)
	})

	t.Run("ArrayOfTransactions", func(t *testing.T) {
		reply := "```\n[{\"amount\":100,\"sender\":\"A\"},{\"amount\":200,\"sender\":\"B\"}]\n```"

		candidates, err := parseCandidates(reply)
		require.NoError(t, err)
		require.Len(t, candidates, 2)
		assert.Equal(t, "200", candidates[1].Amount)
	})

	t.Run("EmptyArraySentinel", func(t *testing.T) {
		_, err := parseCandidates("```json\n[]\n```")
		assert.ErrorIs(t, err, ErrNoData)
	})

	t.Run("NoJSONAtAll", func(t *testing.T) {
		_, err := parseCandidates("I could not read this receipt, sorry.")
		assert.ErrorIs(t, err, ErrNoData)
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		_, err := parseCandidates("{amount: five hundred")
		assert.ErrorIs(t, err, ErrNoData)
	})
}

func TestFallbackCandidate(t *testing.T) {
	manila, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)
	sentAt := time.Date(2024, 6, 1, 3, 0, 0, 0, time.UTC)

	t.Run("TotalWithCurrency", func(t *testing.T) {
		c, ok := fallbackCandidate("TOTAL: PHP 1,532.75\nThank you", sentAt, manila)
		require.True(t, ok)
		assert.Equal(t, "1,532.75", c.Amount)
		assert.Equal(t, transaction.TypeCash, c.Type)
		assert.Equal(t, transaction.SourceTelegram, c.Source)
		assert.Equal(t, sentAt.In(manila).Format(time.RFC3339), c.Date)
		assert.Empty(t, c.Reference)
		assert.Empty(t, c.Sender)
	})

	t.Run("AmountKeyword", func(t *testing.T) {
		c, ok := fallbackCandidate("amount 750.00", sentAt, manila)
		require.True(t, ok)
		assert.Equal(t, "750.00", c.Amount)
	})

	t.Run("NoAmountMentioned", func(t *testing.T) {
		_, ok := fallbackCandidate("have a nice day", sentAt, manila)
		assert.False(t, ok)
	})
}

func TestApplyDefaults(t *testing.T) {
	manila, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)
	sentAt := time.Date(2024, 6, 1, 3, 0, 0, 0, time.UTC)

	t.Run("BlankDateDefaultsToSendTime", func(t *testing.T) {
		c := &transaction.Candidate{Amount: "500", Date: "unknown"}
		applyDefaults(c, sentAt, manila)
		assert.Equal(t, sentAt.In(manila).Format(time.RFC3339), c.Date)
		assert.Equal(t, transaction.TypeCash, c.Type)
		assert.Equal(t, transaction.SourceTelegram, c.Source)
	})

	t.Run("ModelDateKept", func(t *testing.T) {
		c := &transaction.Candidate{Date: "2024-01-05"}
		applyDefaults(c, sentAt, manila)
		assert.Equal(t, "2024-01-05", c.Date)
	})
}
