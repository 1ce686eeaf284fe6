package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/retail-receipt-ingest/internal/flow"
	"github.com/retail-receipt-ingest/internal/telegram"
)

func setupWebhookRouter(sessionFlow SessionFlow) *gin.Engine {
	r := gin.New()
	h := NewTelegramWebhookHandler(testLogger(), sessionFlow)
	r.POST("/webhook/telegram", h.Handle)
	return r
}

func TestTelegramWebhook_AcknowledgesMessage(t *testing.T) {
	flowMock := new(mockSessionFlow)
	flowMock.On("HandleUpdate", mock.Anything, mock.MatchedBy(func(in *telegram.Inbound) bool {
		return in.ChatID == 100 && in.Text == "hello"
	})).Return(flow.Result{OK: true})

	r := setupWebhookRouter(flowMock)

	body := []byte(`{
		"update_id": 1,
		"message": {
			"message_id": 10,
			"date": 1704412800,
			"chat": {"id": 100, "type": "private"},
			"from": {"id": 100, "is_bot": false},
			"text": "hello"
		}
	}`)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook/telegram", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok": true}`, w.Body.String())
	flowMock.AssertExpectations(t)
}

func TestTelegramWebhook_NotOKOnUnresolvableStore(t *testing.T) {
	flowMock := new(mockSessionFlow)
	flowMock.On("HandleUpdate", mock.Anything, mock.Anything).Return(flow.Result{OK: false})

	r := setupWebhookRouter(flowMock)

	body := []byte(`{
		"update_id": 2,
		"message": {
			"message_id": 11,
			"date": 1704412800,
			"chat": {"id": 200, "type": "private"},
			"text": "confirm"
		}
	}`)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook/telegram", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	// Still HTTP 200; only the body signals the failure.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok": false}`, w.Body.String())
}

func TestTelegramWebhook_DropsNonMessageUpdates(t *testing.T) {
	flowMock := new(mockSessionFlow)
	r := setupWebhookRouter(flowMock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook/telegram", bytes.NewReader([]byte(`{"update_id": 3}`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok": true}`, w.Body.String())
	flowMock.AssertNotCalled(t, "HandleUpdate", mock.Anything, mock.Anything)
}

func TestTelegramWebhook_AcknowledgesMalformedBody(t *testing.T) {
	flowMock := new(mockSessionFlow)
	r := setupWebhookRouter(flowMock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook/telegram", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok": true}`, w.Body.String())
}
