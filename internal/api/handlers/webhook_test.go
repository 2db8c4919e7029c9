package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"community_whatsapp_bot/internal/domain/message"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockInboundHandler struct {
	mock.Mock
}

func (m *MockInboundHandler) HandleIncoming(ctx context.Context, phoneNumber, text string) error {
	args := m.Called(ctx, phoneNumber, text)
	return args.Error(0)
}

type MockMessageRepo struct {
	mock.Mock
}

func (m *MockMessageRepo) Create(ctx context.Context, msg *message.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessageRepo) UpdateStatusByGatewayID(ctx context.Context, gatewayID, status string) error {
	args := m.Called(ctx, gatewayID, status)
	return args.Error(0)
}

func (m *MockMessageRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessageRepo) LogInteraction(ctx context.Context, i *message.Interaction) error {
	args := m.Called(ctx, i)
	return args.Error(0)
}

func (m *MockMessageRepo) HasReminder(ctx context.Context, userID, courseID int64) (bool, error) {
	args := m.Called(ctx, userID, courseID)
	return args.Bool(0), args.Error(1)
}

func silentLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newWebhookRouter(inbound InboundHandler, repo message.Repository) http.Handler {
	h := NewWebhookHandler("secret-token", inbound, repo, silentLogger())
	r := chi.NewRouter()
	r.Get("/webhooks/whatsapp", h.Verify)
	r.Post("/webhooks/whatsapp", h.Receive)
	r.Post("/webhooks/whatsapp/status", h.Status)
	return r
}

func TestWebhookVerify_EchoesChallenge(t *testing.T) {
	router := newWebhookRouter(new(MockInboundHandler), new(MockMessageRepo))

	req := httptest.NewRequest(http.MethodGet,
		"/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=secret-token&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "12345", rec.Body.String())
}

func TestWebhookVerify_WrongToken(t *testing.T) {
	router := newWebhookRouter(new(MockInboundHandler), new(MockMessageRepo))

	req := httptest.NewRequest(http.MethodGet,
		"/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestWebhookVerify_WrongMode(t *testing.T) {
	router := newWebhookRouter(new(MockInboundHandler), new(MockMessageRepo))

	req := httptest.NewRequest(http.MethodGet,
		"/webhooks/whatsapp?hub.mode=unsubscribe&hub.verify_token=secret-token", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func webhookEventBody(from, text string) []byte {
	payload := map[string]any{
		"entry": []map[string]any{{
			"changes": []map[string]any{{
				"value": map[string]any{
					"messages": []map[string]any{{
						"from": from,
						"type": "text",
						"text": map[string]string{"body": text},
					}},
				},
			}},
		}},
	}
	b, _ := json.Marshal(payload)
	return b
}

func TestWebhookReceive_DispatchesTextMessages(t *testing.T) {
	inbound := new(MockInboundHandler)
	inbound.On("HandleIncoming", mock.Anything, "+96650112233", "مساعدة").Return(nil)
	router := newWebhookRouter(inbound, new(MockMessageRepo))

	req := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp",
		bytes.NewReader(webhookEventBody("+96650112233", "مساعدة")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	inbound.AssertExpectations(t)
}

func TestWebhookReceive_HandlerErrorStillAcknowledged(t *testing.T) {
	inbound := new(MockInboundHandler)
	inbound.On("HandleIncoming", mock.Anything, "+1", "hi").Return(assert.AnError)
	router := newWebhookRouter(inbound, new(MockMessageRepo))

	req := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp",
		bytes.NewReader(webhookEventBody("+1", "hi")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhookReceive_IgnoresNonTextMessages(t *testing.T) {
	inbound := new(MockInboundHandler)
	router := newWebhookRouter(inbound, new(MockMessageRepo))

	payload := map[string]any{
		"entry": []map[string]any{{
			"changes": []map[string]any{{
				"value": map[string]any{
					"messages": []map[string]any{{"from": "+1", "type": "image"}},
				},
			}},
		}},
	}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	inbound.AssertNotCalled(t, "HandleIncoming", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhookReceive_MalformedBody(t *testing.T) {
	router := newWebhookRouter(new(MockInboundHandler), new(MockMessageRepo))

	req := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookStatus_UpdatesMessage(t *testing.T) {
	repo := new(MockMessageRepo)
	repo.On("UpdateStatusByGatewayID", mock.Anything, "msg_abc", "delivered").Return(nil)
	router := newWebhookRouter(new(MockInboundHandler), repo)

	body, _ := json.Marshal(map[string]string{"message_id": "msg_abc", "status": "delivered"})
	req := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp/status", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestWebhookStatus_MissingFields(t *testing.T) {
	repo := new(MockMessageRepo)
	router := newWebhookRouter(new(MockInboundHandler), repo)

	body, _ := json.Marshal(map[string]string{"message_id": "msg_abc"})
	req := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp/status", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "UpdateStatusByGatewayID", mock.Anything, mock.Anything, mock.Anything)
}
