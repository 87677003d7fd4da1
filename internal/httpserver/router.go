package httpserver

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"skillsocket/internal/chat"
	"skillsocket/internal/config"
	"skillsocket/internal/domain"
	"skillsocket/internal/security"
	"skillsocket/internal/service"
	"skillsocket/internal/ws"
)

var startedAt = time.Now()

// Deps bundles everything the router needs.
type Deps struct {
	Config   *config.Config
	DB       *sql.DB
	Users    domain.UserRepository
	Presence *chat.Presence
	MsgSvc   *service.MessageService
	ConvSvc  *service.ConversationService
	UserSvc  *service.UserService
	Tokens   *security.TokenService
	Redis    *redis.Client // optional, enables rate limiting
	Logger   zerolog.Logger
}

// NewRouter constructs the main HTTP router and wires routes and middleware.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(Metrics)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.Config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "SkillSocket messaging API",
			"status":  "OK",
		})
	})
	r.Get("/health", handleHealth(d.DB))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/messages", func(r chi.Router) {
		r.Use(AuthMiddleware(d.Tokens, d.Users))
		if d.Redis != nil {
			limiter := NewRateLimiter(d.Redis, d.Logger, 120, time.Minute)
			r.Use(limiter.Middleware)
		}

		r.Get("/conversations", handleListConversations(d.ConvSvc))
		r.Get("/unread/count", handleUnreadCounts(d.MsgSvc))
		r.Get("/search/users", handleSearchUsers(d.UserSvc))
		r.Get("/{otherUserID}", handleListMessages(d.MsgSvc))
		r.Post("/{otherUserID}/seen", handleMarkSeen(d.MsgSvc))
	})

	r.Get("/ws", ws.MakeHandler(d.Presence, d.MsgSvc, d.Config.CORSOrigins, d.Logger))

	return r
}

func handleHealth(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := map[string]any{
			"status":    "healthy",
			"uptime":    time.Since(startedAt).Seconds(),
			"timestamp": time.Now().UTC(),
		}
		status := http.StatusOK
		if err := db.PingContext(r.Context()); err != nil {
			health["status"] = "unhealthy"
			health["database"] = "disconnected"
			status = http.StatusServiceUnavailable
		} else {
			health["database"] = "connected"
		}
		writeJSON(w, status, health)
	}
}

// writeJSON is a small helper to send JSON responses.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
