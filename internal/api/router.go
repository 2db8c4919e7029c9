package api

import (
	"net/http"

	"community_whatsapp_bot/internal/api/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	FAQ       FAQRoutes
	Users     CRUDRoutes
	Courses   CRUDRoutes
	Content   ContentRoutes
	Messages  MessageRoutes
	Dashboard http.HandlerFunc
	Webhook   WebhookRoutes
	Health    http.HandlerFunc
}

type FAQRoutes interface {
	List(w http.ResponseWriter, r *http.Request)
	Search(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Statistics(w http.ResponseWriter, r *http.Request)
}

type CRUDRoutes interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type ContentRoutes interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Schedule(w http.ResponseWriter, r *http.Request)
}

type MessageRoutes interface {
	SendBulk(w http.ResponseWriter, r *http.Request)
}

type WebhookRoutes interface {
	Verify(w http.ResponseWriter, r *http.Request)
	Receive(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)
}

// NewRouter assembles the admin API and the gateway webhook endpoints.
func NewRouter(h Handlers, logger *logrus.Entry) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(logger))

	r.Get("/health", h.Health)

	r.Route("/webhooks/whatsapp", func(r chi.Router) {
		r.Get("/", h.Webhook.Verify)
		r.Post("/", h.Webhook.Receive)
		r.Post("/status", h.Webhook.Status)
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/faqs", func(r chi.Router) {
			r.Get("/", h.FAQ.List)
			r.Get("/search", h.FAQ.Search)
			r.Get("/statistics", h.FAQ.Statistics)
			r.Post("/", h.FAQ.Create)
			r.Put("/{id}", h.FAQ.Update)
			r.Delete("/{id}", h.FAQ.Delete)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.Users.List)
			r.Get("/{id}", h.Users.Get)
			r.Post("/", h.Users.Create)
			r.Put("/{id}", h.Users.Update)
			r.Delete("/{id}", h.Users.Delete)
		})

		r.Route("/courses", func(r chi.Router) {
			r.Get("/", h.Courses.List)
			r.Get("/{id}", h.Courses.Get)
			r.Post("/", h.Courses.Create)
			r.Put("/{id}", h.Courses.Update)
			r.Delete("/{id}", h.Courses.Delete)
		})

		r.Route("/content", func(r chi.Router) {
			r.Get("/", h.Content.List)
			r.Get("/{id}", h.Content.Get)
			r.Post("/schedule", h.Content.Schedule)
		})

		r.Post("/messages/bulk", h.Messages.SendBulk)

		r.Get("/dashboard", h.Dashboard)
	})

	return r
}
