package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"community_whatsapp_bot/internal/api"
	"community_whatsapp_bot/internal/domain/user"

	"github.com/go-chi/chi/v5"
)

// Accepts an optional country code followed by 7 to 15 digits.
var phoneNumberPattern = regexp.MustCompile(`^\+?\d{7,15}$`)

type UsersHandler struct {
	repo user.Repository
}

func NewUsersHandler(repo user.Repository) *UsersHandler {
	return &UsersHandler{repo: repo}
}

type UserRequest struct {
	PhoneNumber string `json:"phone_number"`
	Name        string `json:"name"`
	UserType    string `json:"user_type"`
	IsActive    *bool  `json:"is_active"`
}

type UserResponse struct {
	ID              int64      `json:"id"`
	PhoneNumber     string     `json:"phone_number"`
	Name            string     `json:"name,omitempty"`
	UserType        string     `json:"user_type"`
	IsActive        bool       `json:"is_active"`
	EngagementScore int        `json:"engagement_score"`
	JoinedAt        time.Time  `json:"joined_at"`
	LastActive      *time.Time `json:"last_active,omitempty"`
}

func userToResponse(u *user.User) *UserResponse {
	resp := &UserResponse{
		ID:              u.ID,
		PhoneNumber:     u.PhoneNumber,
		UserType:        string(u.UserType),
		IsActive:        u.IsActive,
		EngagementScore: u.EngagementScore,
		JoinedAt:        u.JoinedAt,
	}
	if u.Name.Valid {
		resp.Name = u.Name.String
	}
	if u.LastActive.Valid {
		t := u.LastActive.Time
		resp.LastActive = &t
	}
	return resp
}

func normalizePhone(raw string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(raw))
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			api.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	users, err := h.repo.List(r.Context(), limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userToResponse(u))
	}
	api.JSON(w, http.StatusOK, out)
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	u, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, userToResponse(u))
}

func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	phone := normalizePhone(req.PhoneNumber)
	if !phoneNumberPattern.MatchString(phone) {
		api.Error(w, http.StatusBadRequest, "phone_number must be a valid phone number")
		return
	}

	userType := user.TypeRegular
	if req.UserType != "" {
		userType = user.Type(req.UserType)
		if !userType.IsValid() {
			api.Error(w, http.StatusBadRequest, "user_type must be regular, vip or admin")
			return
		}
	}

	u := &user.User{
		PhoneNumber: phone,
		UserType:    userType,
		IsActive:    true,
	}
	if req.Name != "" {
		u.Name = sql.NullString{String: req.Name, Valid: true}
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}

	if err := h.repo.Create(r.Context(), u); err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusCreated, userToResponse(u))
}

func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req UserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	if req.PhoneNumber != "" {
		phone := normalizePhone(req.PhoneNumber)
		if !phoneNumberPattern.MatchString(phone) {
			api.Error(w, http.StatusBadRequest, "phone_number must be a valid phone number")
			return
		}
		u.PhoneNumber = phone
	}
	if req.Name != "" {
		u.Name = sql.NullString{String: req.Name, Valid: true}
	}
	if req.UserType != "" {
		userType := user.Type(req.UserType)
		if !userType.IsValid() {
			api.Error(w, http.StatusBadRequest, "user_type must be regular, vip or admin")
			return
		}
		u.UserType = userType
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}

	if err := h.repo.Update(r.Context(), u); err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, userToResponse(u))
}

func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
