package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"community_whatsapp_bot/internal/api"
	"community_whatsapp_bot/internal/app"
	"community_whatsapp_bot/internal/domain/faq"

	"github.com/go-chi/chi/v5"
)

type FAQService interface {
	GetAll(ctx context.Context, category string) ([]*faq.Entry, error)
	Search(ctx context.Context, term string) ([]*faq.Entry, error)
	AddFAQ(ctx context.Context, question, answer string, keywords []string, category string) (*faq.Entry, error)
	UpdateFAQ(ctx context.Context, id int64, question, answer string, keywords []string, category string) (*faq.Entry, error)
	DeleteFAQ(ctx context.Context, id int64) error
	Statistics(ctx context.Context) (*app.FAQStatistics, error)
}

type FAQHandler struct {
	svc FAQService
}

func NewFAQHandler(svc FAQService) *FAQHandler {
	return &FAQHandler{svc: svc}
}

type FAQRequest struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Keywords []string `json:"keywords"`
	Category string   `json:"category"`
}

type FAQResponse struct {
	ID         int64     `json:"id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Keywords   []string  `json:"keywords"`
	Category   string    `json:"category"`
	UsageCount int       `json:"usage_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func faqToResponse(e *faq.Entry) *FAQResponse {
	keywords := e.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return &FAQResponse{
		ID:         e.ID,
		Question:   e.Question,
		Answer:     e.Answer,
		Keywords:   keywords,
		Category:   e.Category,
		UsageCount: e.UsageCount,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func faqListToResponse(entries []*faq.Entry) []*FAQResponse {
	out := make([]*FAQResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, faqToResponse(e))
	}
	return out
}

func (h *FAQHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.GetAll(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, faqListToResponse(entries))
}

func (h *FAQHandler) Search(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		api.Error(w, http.StatusBadRequest, "search term is required")
		return
	}

	entries, err := h.svc.Search(r.Context(), term)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, faqListToResponse(entries))
}

func (h *FAQHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req FAQRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}
	if req.Answer == "" {
		api.Error(w, http.StatusBadRequest, "answer is required")
		return
	}

	entry, err := h.svc.AddFAQ(r.Context(), req.Question, req.Answer, req.Keywords, req.Category)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusCreated, faqToResponse(entry))
}

func (h *FAQHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid faq id")
		return
	}

	var req FAQRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}
	if req.Answer == "" {
		api.Error(w, http.StatusBadRequest, "answer is required")
		return
	}

	entry, err := h.svc.UpdateFAQ(r.Context(), id, req.Question, req.Answer, req.Keywords, req.Category)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, faqToResponse(entry))
}

func (h *FAQHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid faq id")
		return
	}

	if err := h.svc.DeleteFAQ(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *FAQHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Statistics(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, map[string]any{
		"statistics": map[string]any{
			"total_faqs":  stats.Stats.TotalEntries,
			"total_usage": stats.Stats.TotalUsage,
			"avg_usage":   stats.Stats.AverageUsage,
		},
		"top_faqs": faqListToResponse(stats.Top),
	})
}
