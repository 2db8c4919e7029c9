package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"community_whatsapp_bot/internal/api"
	"community_whatsapp_bot/internal/domain/message"

	"github.com/sirupsen/logrus"
)

type InboundHandler interface {
	HandleIncoming(ctx context.Context, phoneNumber, text string) error
}

// WebhookHandler terminates the WhatsApp Cloud API webhook: subscription
// verification, inbound message events and delivery-status callbacks.
type WebhookHandler struct {
	verifyToken string
	inbound     InboundHandler
	msgRepo     message.Repository
	logger      *logrus.Entry
}

func NewWebhookHandler(verifyToken string, inbound InboundHandler, msgRepo message.Repository, logger *logrus.Entry) *WebhookHandler {
	return &WebhookHandler{
		verifyToken: verifyToken,
		inbound:     inbound,
		msgRepo:     msgRepo,
		logger:      logger,
	}
}

// Verify answers the gateway's subscription handshake. The challenge is
// echoed back verbatim only when the mode and token match.
func (h *WebhookHandler) Verify(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode != "subscribe" || token != h.verifyToken {
		h.logger.WithField("mode", mode).Warn("Webhook verification rejected")
		w.WriteHeader(http.StatusForbidden)
		return
	}

	h.logger.Info("Webhook verified")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(challenge))
}

type webhookEvent struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []struct {
					From string `json:"from"`
					Type string `json:"type"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// Receive processes inbound message events. The gateway expects a 200 for
// every delivered event, so per-message failures are logged and swallowed.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	var event webhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	for _, entry := range event.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if msg.Type != "text" || msg.Text.Body == "" {
					continue
				}
				if err := h.inbound.HandleIncoming(r.Context(), msg.From, msg.Text.Body); err != nil {
					h.logger.WithError(err).WithField("phone_number", msg.From).
						Error("Failed to handle inbound message")
				}
			}
		}
	}

	w.WriteHeader(http.StatusOK)
}

type statusUpdateRequest struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
}

// Status applies a delivery-status callback to the outgoing message log.
func (h *WebhookHandler) Status(w http.ResponseWriter, r *http.Request) {
	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MessageID == "" || req.Status == "" {
		api.Error(w, http.StatusBadRequest, "message_id and status are required")
		return
	}

	if err := h.msgRepo.UpdateStatusByGatewayID(r.Context(), req.MessageID, req.Status); err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
