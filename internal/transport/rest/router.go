package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"agenteval/internal/service"
	"agenteval/internal/transport/rest/handler"
	"agenteval/internal/transport/rest/middleware"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService      *service.AuthService
	TopicService     *service.TopicService
	EvalService      *service.EvaluationService
	DashboardService *service.DashboardService
	Notices          *service.NoticeCenter
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	userHandler := handler.NewUserHandler(c.AuthService)
	topicHandler := handler.NewTopicHandler(c.TopicService)
	evalHandler := handler.NewEvaluationHandler(c.EvalService, c.AuthService, c.Notices)
	dashHandler := handler.NewDashboardHandler(c.DashboardService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Rater routes (any authenticated user)
	raterRoutes := v1.NewRoute().Subrouter()
	raterRoutes.Use(authMW.RequireAuth)

	raterRoutes.HandleFunc("/evaluation/session", evalHandler.StartSession).Methods("POST", "OPTIONS")
	raterRoutes.HandleFunc("/evaluation/session", evalHandler.EndSession).Methods("DELETE", "OPTIONS")
	raterRoutes.HandleFunc("/evaluation/questions/{questionId}/score", evalHandler.UpdateScore).Methods("PUT", "OPTIONS")
	raterRoutes.HandleFunc("/evaluation/questions/{questionId}", evalHandler.QuestionRating).Methods("GET", "OPTIONS")
	raterRoutes.HandleFunc("/evaluation/progress", evalHandler.Progress).Methods("GET", "OPTIONS")
	raterRoutes.HandleFunc("/evaluation/ratings", evalHandler.ClearAll).Methods("DELETE", "OPTIONS")
	raterRoutes.HandleFunc("/evaluation/notices", evalHandler.Notices).Methods("GET", "OPTIONS")

	// Admin routes
	adminRoutes := v1.NewRoute().Subrouter()
	adminRoutes.Use(authMW.RequireAdmin)

	adminRoutes.HandleFunc("/users", userHandler.Create).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/users", userHandler.List).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/users/{userId}", userHandler.Delete).Methods("DELETE", "OPTIONS")
	adminRoutes.HandleFunc("/users/{userId}/topic", userHandler.AssignTopic).Methods("PUT", "OPTIONS")

	adminRoutes.HandleFunc("/topics", topicHandler.Create).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/topics", topicHandler.List).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/topics/sample-csv", topicHandler.SampleCSV).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/topics/{topicId}", topicHandler.Get).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/topics/{topicId}", topicHandler.Update).Methods("PUT", "OPTIONS")
	adminRoutes.HandleFunc("/topics/{topicId}", topicHandler.Delete).Methods("DELETE", "OPTIONS")
	adminRoutes.HandleFunc("/topics/{topicId}/questions", topicHandler.Questions).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/topics/{topicId}/import", topicHandler.Import).Methods("POST", "OPTIONS")

	adminRoutes.HandleFunc("/dashboard/stats", dashHandler.Stats).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/dashboard/results", dashHandler.Results).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/dashboard/export", dashHandler.ExportCSV).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/dashboard/users/{userName}/topics/{topicId}/results", dashHandler.UserResults).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
