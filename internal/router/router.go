package router

import (
	"github.com/fasthttp/router"

	apiHandler "github.com/fastygo/taskflow/api/handler"
)

type Handlers struct {
	Task        *apiHandler.TaskHandler
	Suggestion  *apiHandler.SuggestionHandler
	Tracker     *apiHandler.TrackerHandler
	Interchange *apiHandler.InterchangeHandler
	Settings    *apiHandler.SettingsHandler
	Health      *apiHandler.HealthHandler
}

func New(handlers Handlers) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Tasks
	r.GET("/api/v1/tasks", handlers.Task.GetTasks)
	r.POST("/api/v1/tasks", handlers.Task.CreateTask)
	r.GET("/api/v1/tasks/{id}", handlers.Task.GetTask)
	r.PUT("/api/v1/tasks/{id}", handlers.Task.UpdateTask)
	r.DELETE("/api/v1/tasks/{id}", handlers.Task.DeleteTask)
	r.POST("/api/v1/tasks/{id}/toggle", handlers.Task.ToggleTask)
	r.GET("/api/v1/counts", handlers.Task.GetCounts)
	r.GET("/api/v1/analytics", handlers.Task.GetAnalytics)

	// Suggestions
	r.GET("/api/v1/suggestions", handlers.Suggestion.GetSuggestions)
	r.DELETE("/api/v1/suggestions/dismissed", handlers.Suggestion.ClearDismissed)
	r.POST("/api/v1/suggestions/{id}/dismiss", handlers.Suggestion.Dismiss)
	r.POST("/api/v1/suggestions/{id}/apply", handlers.Suggestion.Apply)

	// Time tracking
	r.GET("/api/v1/tracker/{id}", handlers.Tracker.Get)
	r.POST("/api/v1/tracker/{id}/start", handlers.Tracker.Start)
	r.POST("/api/v1/tracker/{id}/pause", handlers.Tracker.Pause)
	r.POST("/api/v1/tracker/{id}/stop", handlers.Tracker.Stop)
	r.POST("/api/v1/tracker/{id}/save", handlers.Tracker.Save)
	r.DELETE("/api/v1/tracker/{id}/sessions/{session}", handlers.Tracker.DeleteSession)

	// Import / export
	r.GET("/api/v1/export", handlers.Interchange.Export)
	r.POST("/api/v1/import", handlers.Interchange.Import)

	// Settings & maintenance
	r.GET("/api/v1/settings", handlers.Settings.Get)
	r.PUT("/api/v1/settings", handlers.Settings.Update)
	r.DELETE("/api/v1/data", handlers.Settings.Wipe)

	return r
}
