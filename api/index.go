package handler

import (
	"net/http"
	"time"

	"github.com/alexarts74/trip-indo/pkg/config"
	"github.com/alexarts74/trip-indo/pkg/database"
	"github.com/alexarts74/trip-indo/pkg/handlers"
	"github.com/alexarts74/trip-indo/pkg/mailer"
	customMiddleware "github.com/alexarts74/trip-indo/pkg/middleware"
	"github.com/alexarts74/trip-indo/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler 是Vercel函数的入口点
// 单体路由模式：所有API端点集中在一个Chi路由器中管理
func Handler(w http.ResponseWriter, r *http.Request) {
	cfg := config.GetCached()

	if err := cfg.Validate(); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Configuration error: "+err.Error())
		return
	}

	// 连接由池管理，warm invocation之间复用，无需手动关闭
	db := database.GetDatabase(database.DatabaseConfig{
		PostgresDSN: cfg.PostgresDSN,
		SupabaseURL: cfg.SupabaseURL,
		SupabaseKey: cfg.SupabaseKey,
		Debug:       cfg.Debug,
	})

	NewRouter(cfg, db).ServeHTTP(w, r)
}

// NewRouter 构建带全部中间件和路由的Chi路由器。
// cmd/server 的长驻进程也复用这里。
func NewRouter(cfg *config.Config, db database.DatabaseInterface) *chi.Mux {
	router := chi.NewRouter()
	setupMiddleware(router, cfg)
	setupRoutes(router, cfg, db)
	return router
}

// setupMiddleware 设置全局中间件
func setupMiddleware(router *chi.Mux, cfg *config.Config) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	// Normalize path and restore scheme/host before logging and routing
	router.Use(customMiddleware.Normalize())
	router.Use(customMiddleware.Logger(cfg))
	router.Use(customMiddleware.Recovery(cfg))

	router.Use(customMiddleware.CORS(cfg))

	// Vercel函数有时间限制，留5秒缓冲
	router.Use(middleware.Timeout(25 * time.Second))

	router.Use(middleware.Compress(5))
	router.Use(customMiddleware.MaxBodySize(1 << 20)) // 1MB

	if cfg.IsDevelopment() {
		router.Use(middleware.Heartbeat("/ping"))
	}
}

// setupRoutes 设置所有API路由
func setupRoutes(router *chi.Mux, cfg *config.Config, db database.DatabaseInterface) {
	m := mailer.FromConfig(cfg.ResendAPIKey, cfg.MailFrom, cfg.AppURL)

	authHandler := handlers.NewAuthHandler(cfg, db)
	tripsHandler := handlers.NewTripsHandler(cfg, db)
	destinationsHandler := handlers.NewDestinationsHandler(cfg, db)
	expensesHandler := handlers.NewExpensesHandler(cfg, db)
	participantsHandler := handlers.NewParticipantsHandler(cfg, db)
	invitationsHandler := handlers.NewInvitationsHandler(cfg, db, m)
	emailHandler := handlers.NewEmailHandler(cfg, m)

	// 健康检查端点
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		if err := db.HealthCheck(); err != nil {
			status = "degraded"
		}
		utils.WriteSuccessResponse(w, map[string]interface{}{
			"service": "trip-indo-api",
			"status":  status,
		})
	})

	// 数据库连接池状态端点（调试用）
	if cfg.IsDevelopment() {
		router.Get("/debug/db-pool", func(w http.ResponseWriter, r *http.Request) {
			utils.WriteSuccessResponse(w, database.GetConnectionStats())
		})
	}

	router.Route("/api", func(r chi.Router) {
		r.Use(customMiddleware.ContentTypeJSON)

		// 公开路由（不需要认证）
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.RefreshToken)
			r.Post("/logout", authHandler.Logout)

			r.With(customMiddleware.AuthMiddleware(cfg)).Get("/me", authHandler.Me)
		})

		// 独立的邀请邮件端点，保持前端的历史调用方式。
		// 不强制登录，但带token的话发送日志里能对上触发人。
		r.With(customMiddleware.OptionalAuthMiddleware(cfg)).
			Post("/send-invitation", emailHandler.SendInvitation)

		// 需要认证的路由
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.AuthMiddleware(cfg))

			r.Route("/trips", func(r chi.Router) {
				r.Post("/", tripsHandler.Create)
				r.Get("/", tripsHandler.List)

				r.Route("/{tripID}", func(r chi.Router) {
					r.Get("/", tripsHandler.Get)
					r.Put("/", tripsHandler.Update)
					r.Delete("/", tripsHandler.Delete)
					r.Get("/stats", tripsHandler.Stats)

					r.Post("/destinations", destinationsHandler.Create)
					r.Get("/destinations", destinationsHandler.List)

					r.Post("/expenses", expensesHandler.Create)
					r.Get("/expenses", expensesHandler.List)

					r.Post("/participants", participantsHandler.Add)
					r.Get("/participants", participantsHandler.List)
					r.Delete("/participants/{participantID}", participantsHandler.Remove)

					r.Post("/invitations", invitationsHandler.Create)
				})
			})

			r.Route("/destinations/{destinationID}", func(r chi.Router) {
				r.Put("/", destinationsHandler.Update)
				r.Delete("/", destinationsHandler.Delete)
				r.Post("/activities", destinationsHandler.CreateActivity)
				r.Get("/activities", destinationsHandler.ListActivities)
			})

			r.Route("/activities/{activityID}", func(r chi.Router) {
				r.Put("/", destinationsHandler.UpdateActivity)
				r.Delete("/", destinationsHandler.DeleteActivity)
			})

			r.Route("/expenses/{expenseID}", func(r chi.Router) {
				r.Get("/shares", expensesHandler.GetShares)
				r.Delete("/", expensesHandler.Delete)
			})

			r.Route("/invitations", func(r chi.Router) {
				r.Get("/sent", invitationsHandler.ListSent)
				r.Get("/received", invitationsHandler.ListReceived)
				r.Post("/{invitationID}/accept", invitationsHandler.Accept)
				r.Post("/{invitationID}/decline", invitationsHandler.Decline)
			})
		})
	})

	// 统一的404/405响应
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteNotFoundResponse(w, "Route not found: "+r.Method+" "+r.URL.Path)
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
}
