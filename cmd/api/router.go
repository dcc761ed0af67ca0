package main

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/auth"
	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/common"
	"github.com/12402940/Regional-Sales-Website-AI-based/pkg/metrics"
)

// NewRouter mounts all routes with the middleware chain: CORS, rate
// limiting, metrics, and JWT auth on everything except the auth and health
// endpoints.
func NewRouter(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.Config.Observability.MetricsEnabled {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	mux.HandleFunc("POST /v1/auth/register", deps.AuthHandler.Register)
	mux.HandleFunc("POST /v1/auth/login", deps.AuthHandler.Login)

	protected := http.NewServeMux()
	protected.HandleFunc("POST /v1/datasets", deps.DatasetHandler.Upload)
	protected.HandleFunc("GET /v1/datasets/current", deps.DatasetHandler.Current)
	protected.HandleFunc("GET /v1/datasets/current/summary", deps.DatasetHandler.Summary)
	protected.HandleFunc("POST /v1/datasets/archive/load", deps.DatasetHandler.LoadArchive)
	protected.HandleFunc("GET /v1/datasets/uploads", deps.DatasetHandler.ListUploads)
	protected.HandleFunc("GET /v1/datasets/uploads/{id}", deps.DatasetHandler.DownloadUpload)
	protected.HandleFunc("DELETE /v1/datasets/uploads/{id}", deps.DatasetHandler.DeleteUpload)

	protected.HandleFunc("POST /v1/copilot/query", deps.CopilotHandler.Query)
	protected.HandleFunc("POST /v1/copilot/train", deps.CopilotHandler.Train)
	protected.HandleFunc("GET /v1/copilot/memory", deps.CopilotHandler.Memory)
	protected.HandleFunc("DELETE /v1/copilot/memory", deps.CopilotHandler.ClearMemory)

	protected.HandleFunc("GET /v1/reports/summary", deps.ReportsHandler.Summary)
	protected.HandleFunc("GET /v1/reports/summary/export", deps.ReportsHandler.ExportSummary)
	protected.HandleFunc("GET /v1/reports/trend", deps.ReportsHandler.Trend)

	mux.Handle("/v1/", auth.Middleware(deps.AuthService)(protected))

	limiter := rate.NewLimiter(
		rate.Limit(deps.Config.Server.RateLimitPerSecond),
		deps.Config.Server.RateLimitBurst,
	)

	corsOptions := cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}
	if origins := deps.Config.Server.CORSOrigins; origins != "" && origins != "*" {
		corsOptions.AllowedOrigins = strings.Split(origins, ",")
	} else {
		corsOptions.AllowedOrigins = []string{"*"}
	}

	var handler http.Handler = mux
	handler = rateLimit(limiter, handler)
	handler = metrics.Middleware(handler)
	handler = cors.New(corsOptions).Handler(handler)
	return handler
}

func rateLimit(limiter *rate.Limiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			common.RespondError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
