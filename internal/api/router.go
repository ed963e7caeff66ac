package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	apiContext "hookwatch/internal/api/context"
	"hookwatch/internal/api/handlers"
	"hookwatch/internal/api/middleware"
)

type Dependencies struct {
	ProjectHandler      *handlers.ProjectHandler
	TriggerHandler      *handlers.TriggerHandler
	LogHandler          *handlers.LogHandler
	RegistrationHandler *handlers.RegistrationHandler
	DeliveryHandler     *handlers.DeliveryHandler
	HealthHandler       *handlers.HealthHandler
	AuthMiddleware      *middleware.AuthMiddleware
	CORSMiddleware      *middleware.CORSMiddleware
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	// Inbound deliveries from GitHub. Public by design; the delivery id in
	// the query string scopes the request to one project.
	router.POST("/hooks/github", wrap(deps.DeliveryHandler.Handle))

	// Webhook registration, called by the dashboard cross-origin.
	router.POST("/api/v1/webhooks/register", chain(deps.RegistrationHandler.Register, deps.CORSMiddleware.Handle))

	authMid := deps.AuthMiddleware

	// Project management
	router.POST("/api/v1/projects", chain(deps.ProjectHandler.Create, authMid.Handle))
	router.GET("/api/v1/projects", chain(deps.ProjectHandler.List, authMid.Handle))
	router.GET("/api/v1/projects/:project_id", chain(deps.ProjectHandler.Get, authMid.Handle))
	router.PATCH("/api/v1/projects/:project_id", chain(deps.ProjectHandler.Update, authMid.Handle))
	router.DELETE("/api/v1/projects/:project_id", chain(deps.ProjectHandler.Delete, authMid.Handle))

	// Event triggers
	router.GET("/api/v1/event-types", chain(deps.TriggerHandler.ListTypes, authMid.Handle))
	router.POST("/api/v1/events", chain(deps.TriggerHandler.Create, authMid.Handle))
	router.PATCH("/api/v1/events/:event_id", chain(deps.TriggerHandler.Update, authMid.Handle))
	router.DELETE("/api/v1/events/:event_id", chain(deps.TriggerHandler.Delete, authMid.Handle))

	// Dispatch logs
	router.GET("/api/v1/events/:event_id/logs", chain(deps.LogHandler.List, authMid.Handle))

	router.GET("/health", wrap(deps.HealthHandler.Check))

	// CORS preflight for any registered route.
	router.GlobalOPTIONS = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deps.CORSMiddleware.SetHeaders(w)
		w.WriteHeader(http.StatusNoContent)
	})

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		// Inject params into context
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
