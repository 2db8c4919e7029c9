package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"community_whatsapp_bot/internal/api"
	"community_whatsapp_bot/internal/app"
	"community_whatsapp_bot/internal/domain/content"

	"github.com/go-chi/chi/v5"
)

type ContentScheduler interface {
	ScheduleContent(ctx context.Context, input app.ScheduleContentInput) (*content.Item, error)
}

type ContentHandler struct {
	svc  ContentScheduler
	repo content.Repository
}

func NewContentHandler(svc ContentScheduler, repo content.Repository) *ContentHandler {
	return &ContentHandler{svc: svc, repo: repo}
}

type ScheduleContentRequest struct {
	ContentType    string `json:"content_type"`
	Content        string `json:"content"`
	MediaURL       string `json:"media_url"`
	TargetAudience string `json:"target_audience"`
	ScheduleTime   string `json:"schedule_time"`
}

type ContentResponse struct {
	ID             int64     `json:"id"`
	ContentType    string    `json:"content_type"`
	Content        string    `json:"content"`
	MediaURL       string    `json:"media_url,omitempty"`
	TargetAudience string    `json:"target_audience"`
	ScheduleTime   time.Time `json:"schedule_time"`
	Status         string    `json:"status"`
	SentCount      int       `json:"sent_count"`
	FailedCount    int       `json:"failed_count"`
	CreatedAt      time.Time `json:"created_at"`
}

func contentToResponse(item *content.Item) *ContentResponse {
	resp := &ContentResponse{
		ID:             item.ID,
		ContentType:    string(item.ContentType),
		Content:        item.Content,
		TargetAudience: item.TargetAudience,
		ScheduleTime:   item.ScheduleTime,
		Status:         string(item.Status),
		SentCount:      item.SentCount,
		FailedCount:    item.FailedCount,
		CreatedAt:      item.CreatedAt,
	}
	if item.MediaURL.Valid {
		resp.MediaURL = item.MediaURL.String
	}
	return resp
}

func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			api.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	items, err := h.repo.List(r.Context(), limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	out := make([]*ContentResponse, 0, len(items))
	for _, item := range items {
		out = append(out, contentToResponse(item))
	}
	api.JSON(w, http.StatusOK, out)
}

func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid content id")
		return
	}

	item, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, contentToResponse(item))
}

func (h *ContentHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}
	if req.TargetAudience == "" {
		api.Error(w, http.StatusBadRequest, "target_audience is required")
		return
	}

	contentType := content.TypeAnnouncement
	if req.ContentType != "" {
		contentType = content.Type(req.ContentType)
		if !contentType.IsValid() {
			api.Error(w, http.StatusBadRequest, "content_type must be announcement, reminder or other")
			return
		}
	}

	scheduleTime, err := time.Parse(time.RFC3339, req.ScheduleTime)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "schedule_time must be an RFC3339 timestamp")
		return
	}

	item, err := h.svc.ScheduleContent(r.Context(), app.ScheduleContentInput{
		ContentType:    contentType,
		Content:        req.Content,
		MediaURL:       req.MediaURL,
		TargetAudience: req.TargetAudience,
		ScheduleTime:   scheduleTime,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusCreated, contentToResponse(item))
}
