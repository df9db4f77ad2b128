package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fndc/torneo/internal/metrics"
	"github.com/fndc/torneo/internal/middleware"
)

// Pinger はDB接続の死活確認インターフェース。/readyで使用する。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	UserResolver      middleware.CurrentUserResolver
	CORSAllowedOrigin string
	Logger            *slog.Logger
	Metrics           metrics.MetricsCollector
	MetricsGatherer   prometheus.Gatherer

	// サービス
	AuthService       AuthServiceInterface
	TournamentService TournamentServiceInterface
	CubeService       CubeServiceInterface
	UserService       UserServiceInterface

	// /ready用のDB接続
	DB Pinger
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Metrics
//
// 認可は3段階のゲートで構成される:
//
//	Auth（ベアラートークン必須）→ RequireVerified（メール確認済み）→ RequireAdmin（管理者）
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}

	authHandler := NewAuthHandler(deps.AuthService)
	tournamentHandler := NewTournamentHandler(deps.TournamentService)
	cubeHandler := NewCubeHandler(deps.CubeService)
	userHandler := NewUserHandler(deps.UserService)

	requireAuth := middleware.NewAuthMiddleware(deps.UserResolver)
	requireVerified := middleware.NewRequireVerifiedMiddleware()
	requireAdmin := middleware.NewRequireAdminMiddleware()

	// --- 公開ルート ---

	r.Get("/health", handleHealth)
	r.Get("/ready", handleReady(deps.DB))
	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/google", authHandler.Google)
		r.Post("/verify-email", authHandler.VerifyEmail)
		r.Post("/forgot-password", authHandler.ForgotPassword)
		r.Post("/reset-password", authHandler.ResetPassword)
		r.Post("/resend-verification", authHandler.ResendVerification)

		// /auth/meのみ認証が必要（確認済みゲートは通らない）
		r.With(requireAuth).Get("/me", authHandler.Me)
	})

	r.Get("/tournaments", tournamentHandler.List)
	r.Get("/tournaments/{id}", tournamentHandler.Get)
	r.Get("/cubes/tournament/{id}/enabled", cubeHandler.ListEnabled)

	// --- 確認済みユーザーのルート ---

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(requireVerified)

		r.Get("/users/profile", userHandler.GetProfile)
		r.Put("/users/profile", userHandler.UpdateProfile)

		r.Post("/tournaments/{id}/register", tournamentHandler.Register)
		r.Delete("/tournaments/{id}/register", tournamentHandler.Unregister)
		r.Get("/tournaments/{id}/registrations", tournamentHandler.Registrations)
		r.Get("/tournaments/{id}/my-registration", tournamentHandler.MyRegistration)

		r.Post("/cubes/propose", cubeHandler.Propose)
	})

	// --- 管理者ルート ---

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(requireVerified)
		r.Use(requireAdmin)

		r.Post("/tournaments", tournamentHandler.Create)
		r.Put("/tournaments/{id}", tournamentHandler.Update)
		r.Delete("/tournaments/{id}", tournamentHandler.Delete)

		r.Get("/cubes/tournament/{id}/all", cubeHandler.ListAll)
		r.Put("/cubes/{id}/status", cubeHandler.UpdateStatus)
		r.Delete("/cubes/{id}", cubeHandler.Delete)

		r.Get("/users", userHandler.List)
		r.Put("/users/{id}/role", userHandler.UpdateRole)
	})

	return r
}

// handleHealth はプロセスの生存確認に応答する。
// GET /health
func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady はDB接続を確認し、リクエストを受けられる状態かを返す。
// GET /ready
func handleReady(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				slog.Warn("readiness check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
