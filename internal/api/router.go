package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/smikis/how-well-you-know/internal/api/handlers"
	"github.com/smikis/how-well-you-know/internal/api/middleware"
	"github.com/smikis/how-well-you-know/internal/service"
	"github.com/smikis/how-well-you-know/internal/websocket"
)

func NewRouter(services *service.Services, hub *websocket.Hub) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth)
	gameHandler := handlers.NewGameHandler(services.Game)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))

			r.Route("/games", func(r chi.Router) {
				r.Post("/", gameHandler.Create)
				r.Get("/{idOrCode}", gameHandler.Get)
				r.Post("/{idOrCode}/join", gameHandler.Join)
				r.Post("/{id}/questions", gameHandler.CreateQuestion)
				r.Post("/{id}/start", gameHandler.Start)
				r.Post("/{id}/choices", gameHandler.RecordChoice)
				r.Post("/{id}/guesses", gameHandler.RecordGuess)
				r.Get("/{id}/questions/{questionId}/results", gameHandler.GetResults)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/me/games", gameHandler.GetUserGames)
			})
		})

		// WebSocket endpoint
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
