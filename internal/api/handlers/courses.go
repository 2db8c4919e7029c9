package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"community_whatsapp_bot/internal/api"
	"community_whatsapp_bot/internal/domain/course"

	"github.com/go-chi/chi/v5"
)

type CoursesHandler struct {
	repo course.Repository
}

func NewCoursesHandler(repo course.Repository) *CoursesHandler {
	return &CoursesHandler{repo: repo}
}

type CourseRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Instructor   string `json:"instructor"`
	ScheduleDate string `json:"schedule_date"`
	Status       string `json:"status"`
}

type CourseResponse struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Instructor   string    `json:"instructor,omitempty"`
	ScheduleDate time.Time `json:"schedule_date"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

func courseToResponse(c *course.Course) *CourseResponse {
	resp := &CourseResponse{
		ID:           c.ID,
		Title:        c.Title,
		ScheduleDate: c.ScheduleDate,
		Status:       string(c.Status),
		CreatedAt:    c.CreatedAt,
	}
	if c.Description.Valid {
		resp.Description = c.Description.String
	}
	if c.Instructor.Valid {
		resp.Instructor = c.Instructor.String
	}
	return resp
}

func (h *CoursesHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			api.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	courses, err := h.repo.List(r.Context(), limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	out := make([]*CourseResponse, 0, len(courses))
	for _, c := range courses {
		out = append(out, courseToResponse(c))
	}
	api.JSON(w, http.StatusOK, out)
}

func (h *CoursesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid course id")
		return
	}

	c, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, courseToResponse(c))
}

func (h *CoursesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		api.Error(w, http.StatusBadRequest, "title is required")
		return
	}

	scheduleDate, err := time.Parse(time.RFC3339, req.ScheduleDate)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "schedule_date must be an RFC3339 timestamp")
		return
	}

	status := course.StatusDraft
	if req.Status != "" {
		status = course.Status(req.Status)
		if !status.IsValid() {
			api.Error(w, http.StatusBadRequest, "status must be draft, published, ongoing or completed")
			return
		}
	}

	c := &course.Course{
		Title:        req.Title,
		ScheduleDate: scheduleDate,
		Status:       status,
	}
	if req.Description != "" {
		c.Description = sql.NullString{String: req.Description, Valid: true}
	}
	if req.Instructor != "" {
		c.Instructor = sql.NullString{String: req.Instructor, Valid: true}
	}

	if err := h.repo.Create(r.Context(), c); err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusCreated, courseToResponse(c))
}

func (h *CoursesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid course id")
		return
	}

	var req CourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	if req.Title != "" {
		c.Title = req.Title
	}
	if req.Description != "" {
		c.Description = sql.NullString{String: req.Description, Valid: true}
	}
	if req.Instructor != "" {
		c.Instructor = sql.NullString{String: req.Instructor, Valid: true}
	}
	if req.ScheduleDate != "" {
		scheduleDate, err := time.Parse(time.RFC3339, req.ScheduleDate)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "schedule_date must be an RFC3339 timestamp")
			return
		}
		c.ScheduleDate = scheduleDate
	}
	if req.Status != "" {
		status := course.Status(req.Status)
		if !status.IsValid() {
			api.Error(w, http.StatusBadRequest, "status must be draft, published, ongoing or completed")
			return
		}
		c.Status = status
	}

	if err := h.repo.Update(r.Context(), c); err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, courseToResponse(c))
}

func (h *CoursesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid course id")
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
