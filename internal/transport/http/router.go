package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"cinematch/internal/handler"
	"cinematch/internal/httputil"
	authmw "cinematch/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler      *handler.AuthHandler
	UserHandler      *handler.UserHandler
	FollowHandler    *handler.FollowHandler
	MovieHandler     *handler.MovieHandler
	ForumHandler     *handler.ForumHandler
	CommunityHandler *handler.CommunityHandler
	EventHandler     *handler.EventHandler
	JWTSecret        string

	// RateLimit wraps the whole router when non-nil.
	RateLimit func(http.Handler) http.Handler
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	if cfg.RateLimit != nil {
		r.Use(cfg.RateLimit)
	}

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Post("/register", cfg.AuthHandler.Register)
	r.Post("/login", cfg.AuthHandler.Login)
	r.Post("/token/refresh", cfg.AuthHandler.Refresh)

	// Public catalog and profile reads. A token is not required, but when one
	// is present the handlers see the caller (e.g. to mark their own likes in
	// forum listings).
	r.Group(func(r chi.Router) {
		r.Use(authmw.OptionalAuthMiddleware(cfg.JWTSecret))

		r.Get("/movies", cfg.MovieHandler.List)
		r.Get("/movies/user_stats/{username}", cfg.MovieHandler.GetUserStats)
		r.Get("/movies/{id}", cfg.MovieHandler.GetByID)
		r.Get("/movies/{id}/forum", cfg.ForumHandler.List)
		r.Get("/movies/{id}/summarize-comments", cfg.MovieHandler.SummarizeComments)
		r.Get("/forum", cfg.ForumHandler.ListByUser)

		r.Route("/users/{username}", func(r chi.Router) {
			r.Get("/", cfg.UserHandler.GetProfile)
			r.Get("/movies", cfg.UserHandler.GetMovies)
			r.Get("/stats", cfg.UserHandler.GetStats)
			r.Get("/comments", cfg.UserHandler.GetComments)
			r.Get("/followers", cfg.FollowHandler.GetFollowers)
			r.Get("/following", cfg.FollowHandler.GetFollowing)
		})
	})

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

		r.Get("/me", cfg.AuthHandler.Me)
		r.Post("/logout", cfg.AuthHandler.Logout)
		r.Post("/logout-all", cfg.AuthHandler.LogoutAll)

		r.Post("/users/{username}/follow", cfg.FollowHandler.Follow)
		r.Delete("/users/{username}/follow", cfg.FollowHandler.Unfollow)
		r.Post("/users/{username}/upload-image", cfg.UserHandler.UploadImage)

		r.Get("/movies/{id}/user_action", cfg.MovieHandler.GetUserAction)
		r.Post("/movies/{id}/user_action", cfg.MovieHandler.UpdateUserAction)
		r.Post("/movies/{id}/rate", cfg.MovieHandler.Rate)
		r.Post("/movies/{id}/forum", cfg.ForumHandler.Post)

		r.Post("/forum/{id}/like", cfg.ForumHandler.ToggleLike)
		r.Post("/forum/{id}/report", cfg.ForumHandler.Report)

		r.Route("/communities", func(r chi.Router) {
			r.Post("/", cfg.CommunityHandler.Create)
			r.Get("/", cfg.CommunityHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", cfg.CommunityHandler.Get)
				r.Delete("/delete", cfg.CommunityHandler.Delete)
				r.Post("/add-member", cfg.CommunityHandler.AddMember)
				r.Get("/members", cfg.CommunityHandler.Members)
				r.Post("/upload-icon", cfg.CommunityHandler.UploadIcon)

				r.Route("/chats", func(r chi.Router) {
					r.Post("/", cfg.CommunityHandler.CreateChat)
					r.Get("/", cfg.CommunityHandler.Chats)
					r.Post("/{chatID}/messages", cfg.CommunityHandler.PostMessage)
					r.Get("/{chatID}/messages", cfg.CommunityHandler.Messages)
					r.Post("/{chatID}/polls", cfg.CommunityHandler.CreatePoll)
					r.Get("/{chatID}/polls", cfg.CommunityHandler.Polls)
				})
			})
		})

		r.Post("/polls/{id}/vote", cfg.CommunityHandler.Vote)

		r.Route("/events", func(r chi.Router) {
			r.Get("/", cfg.EventHandler.List)
			r.Post("/", cfg.EventHandler.Create)
			r.Get("/user_stats", cfg.EventHandler.UserStats)
			r.Get("/{id}", cfg.EventHandler.Get)
			r.Put("/{id}", cfg.EventHandler.Update)
			r.Delete("/{id}", cfg.EventHandler.Delete)
			r.Post("/{id}/join", cfg.EventHandler.Join)
			r.Post("/{id}/leave", cfg.EventHandler.Leave)
		})
	})

	return r
}
