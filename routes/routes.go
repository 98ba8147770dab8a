package routes

import (
	"net/http"
	"time"

	"github.com/Dosada05/contesthub/handlers"
	"github.com/Dosada05/contesthub/middleware"
	"github.com/Dosada05/contesthub/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Contest     *handlers.ContestHandler
	Submission  *handlers.SubmissionHandler
	Admin       *handlers.AdminHandler
	User        *handlers.UserHandler
	Package     *handlers.PackageHandler
	Leaderboard *handlers.LeaderboardHandler
	Dashboard   *handlers.DashboardHandler
	Health      *handlers.HealthHandler
}

type Options struct {
	Resolver       middleware.SessionResolver
	Logger         *zap.Logger
	AllowedOrigins []string
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(opts.Logger))
	router.Use(chiMiddleware.Recoverer)
	router.Use(chiMiddleware.Timeout(60 * time.Second))

	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	authenticate := middleware.Authenticate(opts.Resolver, opts.Logger)

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health.Health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.With(authenticate).Get("/me", h.Auth.Me)
		})

		r.Get("/recent-winners", h.Contest.RecentWinners)
		r.Get("/leaderboard", h.Leaderboard.Leaderboard)
		r.Get("/packages", h.Package.ListPlans)

		r.Route("/contests", func(r chi.Router) {
			r.Get("/", h.Contest.ListContests)
			r.Get("/popular", h.Contest.Popular)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/", h.Contest.CreateContest)
				r.Route("/{contestID}", func(r chi.Router) {
					r.Get("/", h.Contest.GetContest)
					r.Put("/", h.Contest.UpdateContest)
					r.Delete("/", h.Contest.DeleteContest)
					r.Post("/image", h.Contest.UploadImage)
					r.Post("/pay", h.Contest.JoinContest)
					r.Post("/submit", h.Submission.Submit)
					r.Get("/submissions", h.Submission.List)
					r.Post("/winner", h.Submission.DeclareWinner)
				})
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Get("/dashboard", h.Dashboard.Dashboard)
			r.With(middleware.Authorize(models.RoleCreator)).Get("/creator/contests", h.Contest.MyContests)
			r.Post("/packages/{packageID}/purchase", h.Package.Purchase)

			r.Route("/user", func(r chi.Router) {
				r.Get("/stats", h.User.Stats)
				r.Get("/participated", h.User.Participated)
				r.Get("/winnings", h.User.Winnings)
				r.Put("/profile", h.User.UpdateProfile)
				r.Post("/profile/photo", h.User.UploadPhoto)
				r.Get("/package", h.User.Package)
				r.Get("/can-create-contest", h.User.CanCreateContest)
				r.Get("/{userID}", h.User.GetPublic)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.Authorize(models.RoleAdmin))
				r.Get("/stats", h.Admin.Stats)
				r.Get("/contests", h.Admin.ListContests)
				r.Put("/contests/{contestID}/status", h.Admin.SetContestStatus)
				r.Delete("/contests/{contestID}", h.Admin.DeleteContest)
				r.Get("/users", h.Admin.ListUsers)
				r.Put("/users/{userID}/role", h.Admin.SetRole)
			})
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"the requested resource could not be found","code":"not_found"}` + "\n"))
	})
}
