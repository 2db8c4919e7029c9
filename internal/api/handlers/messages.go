package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"community_whatsapp_bot/internal/api"
	"community_whatsapp_bot/internal/app"
)

type BulkSender interface {
	SendBulk(ctx context.Context, phoneNumbers []string, body string) []app.BulkSendResult
}

type MessagesHandler struct {
	sender BulkSender
}

func NewMessagesHandler(sender BulkSender) *MessagesHandler {
	return &MessagesHandler{sender: sender}
}

type BulkSendRequest struct {
	PhoneNumbers []string `json:"phone_numbers"`
	Message      string   `json:"message"`
}

func (h *MessagesHandler) SendBulk(w http.ResponseWriter, r *http.Request) {
	var req BulkSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.PhoneNumbers) == 0 {
		api.Error(w, http.StatusBadRequest, "phone_numbers is required")
		return
	}
	if req.Message == "" {
		api.Error(w, http.StatusBadRequest, "message is required")
		return
	}

	results := h.sender.SendBulk(r.Context(), req.PhoneNumbers, req.Message)
	api.JSON(w, http.StatusOK, map[string]any{"results": results})
}
