// Package api provides the HTTP server for Lingvo: the learner-facing
// JSON API, the group chat SSE feed, and the admin content editor.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lingvolab/lingvo/internal/app/advice"
	"github.com/lingvolab/lingvo/internal/app/auth"
	"github.com/lingvolab/lingvo/internal/app/progression"
	"github.com/lingvolab/lingvo/internal/app/social"
	"github.com/lingvolab/lingvo/internal/domain"
	"github.com/lingvolab/lingvo/internal/health"
	"github.com/lingvolab/lingvo/internal/infra/sqlite"
)

// Server is the Lingvo HTTP API server.
type Server struct {
	db     *sqlite.DB
	auth   *auth.Service
	engine *progression.Service
	social *social.Service
	advice *advice.Service
	hub    *ChatHub
	health *health.Checker

	adminPassword  string
	corsOrigins    []string
	metricsEnabled bool
}

// NewServer creates a new API server over the wired services.
func NewServer(db *sqlite.DB, authSvc *auth.Service, engine *progression.Service,
	socialSvc *social.Service, adviceSvc *advice.Service) *Server {
	return &Server{
		db:     db,
		auth:   authSvc,
		engine: engine,
		social: socialSvc,
		advice: adviceSvc,
		hub:    NewChatHub(),
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetAdminPassword sets the content-editor password. Empty disables the
// admin surface entirely.
func (s *Server) SetAdminPassword(pw string) { s.adminPassword = pw }

// SetCORSOrigins restricts browser origins. Empty means allow all.
func (s *Server) SetCORSOrigins(origins []string) { s.corsOrigins = origins }

// SetHealthChecker attaches the periodic checker backing /health.
func (s *Server) SetHealthChecker(c *health.Checker) { s.health = c }

// Hub returns the chat hub (for shutdown).
func (s *Server) Hub() *ChatHub { return s.hub }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(s.corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if s.health == nil {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}
		status := "ok"
		code := http.StatusOK
		if !s.health.IsHealthy() {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, map[string]interface{}{
			"status": status,
			"checks": s.health.Statuses(),
		})
	})

	r.Route("/api", func(r chi.Router) {
		// Public surface
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Get("/courses", s.handleCourses)
		r.Get("/leaderboard", s.handleLeaderboard)

		// Authenticated surface
		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)

			r.Get("/auth/me", s.handleMe)
			r.Put("/auth/me", s.handleUpdateMe)
			r.Post("/placement", s.handlePlacement)

			r.Get("/user/progress", s.handleProgress)
			r.Post("/lesson/complete", s.handleLessonComplete)
			r.Post("/user/promote", s.handlePromote)
			r.Post("/user/upgrade-pro", s.handleUpgradePro)
			r.Post("/user/lose-heart", s.handleLoseHeart)
			r.Post("/shop/buy", s.handleShopBuy)
			r.Get("/wallet/history", s.handleWalletHistory)

			r.Get("/groups/join", s.handleQuickJoin)
			r.Post("/groups", s.handleCreateGroup)
			r.Get("/groups/search", s.handleSearchGroups)
			r.Get("/groups/available", s.handleAvailableGroups)
			r.Get("/groups/my", s.handleMyGroups)
			r.Post("/groups/{id}/join", s.handleJoinGroup)
			r.Post("/groups/{id}/leave", s.handleLeaveGroup)
			r.Get("/groups/{id}/messages", s.handleGroupMessages)
			r.Post("/groups/{id}/messages", s.handlePostMessage)
			r.Get("/groups/{id}/stream", s.handleChatStream)

			r.Get("/ai/advice", s.handleLatestAdvice)
			r.Post("/ai/chat", s.handleAIChat)
			r.Post("/ai/analyze", s.handleAIAnalyze)
		})

		// Admin surface (password header)
		if s.adminPassword != "" {
			r.Post("/admin/verify", s.handleAdminVerify)
			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)

				r.Get("/admin/users", s.handleAdminUsers)
				r.Post("/admin/users/{id}/update-stats", s.handleAdminUpdateStats)
				r.Delete("/admin/users/{id}", s.handleAdminDeleteUser)
				r.Get("/admin/groups", s.handleAdminGroups)
				r.Delete("/admin/groups/{id}", s.handleAdminDeleteGroup)
				r.Get("/admin/courses", s.handleAdminCourses)
				r.Post("/admin/lessons", s.handleAdminCreateLesson)
				r.Put("/admin/lessons/{id}", s.handleAdminUpdateLesson)
			})
		}
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// ─── Request context ────────────────────────────────────────────────────────

type ctxKey int

const userKey ctxKey = 0

// requireUser validates the Bearer token and stores the account id.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		userID, err := s.auth.ParseToken(token)
		if err != nil {
			writeError(w, http.StatusForbidden, err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, userID)))
	})
}

func userID(r *http.Request) int64 {
	id, _ := r.Context().Value(userKey).(int64)
	return id
}

// requireAdmin gates the content editor behind the admin password header.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Admin-Password") != s.adminPassword {
			writeError(w, http.StatusUnauthorized, "unauthorized admin access")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ─── JSON helpers ───────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeDomainError maps domain sentinels onto HTTP statuses. Every
// precondition failure keeps its distinct message.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrLessonNotFound),
		errors.Is(err, domain.ErrGroupNotFound),
		errors.Is(err, domain.ErrCourseNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidToken):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrProOnly):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrAdviceDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, domain.ErrAdviceQuota):
		writeJSON(w, http.StatusTooManyRequests, map[string]string{
			"code":    "DAILY_LIMIT_EXCEEDED",
			"message": err.Error(),
		})
	case errors.Is(err, domain.ErrUserExists),
		errors.Is(err, domain.ErrInvalidPassword),
		errors.Is(err, domain.ErrScoreOutOfRange),
		errors.Is(err, domain.ErrUnknownItem),
		errors.Is(err, domain.ErrInvalidLevel),
		errors.Is(err, domain.ErrInsufficientCoins),
		errors.Is(err, domain.ErrHeartsFull),
		errors.Is(err, domain.ErrNoHeartsLeft),
		errors.Is(err, domain.ErrFreezesFull),
		errors.Is(err, domain.ErrAlreadyPro),
		errors.Is(err, domain.ErrNothingToRepair),
		errors.Is(err, domain.ErrRepairExpired),
		errors.Is(err, domain.ErrRepairOnCooldown),
		errors.Is(err, domain.ErrTerminalLevel),
		errors.Is(err, domain.ErrGroupFull):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// corsMiddleware adds CORS headers; with no configured origins it allows
// any (mobile clients, curl).
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowed := "*"
		if len(s.corsOrigins) > 0 {
			allowed = ""
			for _, o := range s.corsOrigins {
				if o == origin || o == "*" {
					allowed = origin
					break
				}
			}
		}
		if allowed != "" {
			w.Header().Set("Access-Control-Allow-Origin", allowed)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Admin-Password")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
