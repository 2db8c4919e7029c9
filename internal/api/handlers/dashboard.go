package handlers

import (
	"context"
	"net/http"
	"time"

	"community_whatsapp_bot/internal/api"
	"community_whatsapp_bot/internal/app"
	"community_whatsapp_bot/internal/domain/analytics"
)

type DashboardService interface {
	Dashboard(ctx context.Context) (*app.DashboardStats, error)
}

type DashboardHandler struct {
	svc DashboardService
}

func NewDashboardHandler(svc DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

type SnapshotResponse struct {
	Date             string  `json:"date"`
	TotalUsers       int     `json:"total_users"`
	ActiveUsers      int     `json:"active_users"`
	NewUsers         int     `json:"new_users"`
	MessagesSent     int     `json:"messages_sent"`
	MessagesReceived int     `json:"messages_received"`
	EngagementRate   float64 `json:"engagement_rate"`
}

func snapshotToResponse(s *analytics.Snapshot) *SnapshotResponse {
	return &SnapshotResponse{
		Date:             s.Date.Format(time.DateOnly),
		TotalUsers:       s.TotalUsers,
		ActiveUsers:      s.ActiveUsers,
		NewUsers:         s.NewUsers,
		MessagesSent:     s.MessagesSent,
		MessagesReceived: s.MessagesReceived,
		EngagementRate:   s.EngagementRate,
	}
}

func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Dashboard(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	recent := make([]*SnapshotResponse, 0, len(stats.Recent))
	for _, s := range stats.Recent {
		recent = append(recent, snapshotToResponse(s))
	}

	api.JSON(w, http.StatusOK, map[string]any{
		"users": map[string]int{
			"total":  stats.Users.Total,
			"active": stats.Users.Active,
			"new":    stats.Users.New,
		},
		"messages": map[string]int{
			"sent":     stats.Messages.Sent,
			"received": stats.Messages.Received,
		},
		"recent": recent,
	})
}
