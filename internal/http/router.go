package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"rickmorty-api/internal/handlers"
	"rickmorty-api/internal/service"
	"rickmorty-api/internal/storage"
	"rickmorty-api/internal/vectorstore"
)

// Authenticator guards the routes that need a logged-in caller.
type Authenticator interface {
	Middleware(next http.Handler) http.Handler
}

// Deps holds dependencies for the HTTP router.
type Deps struct {
	ChatService    service.ChatService
	RatingService  service.RatingService
	ProfileService service.ProfileService
	AccountService service.AccountService
	Auth           Authenticator

	VectorStore vectorstore.VectorStore
	Collection  string
	DB          handlers.Pinger
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(CORS)
	r.Use(Tracing)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)

	chatHandler := handlers.NewChatHandler(deps.ChatService)
	episodeRatings := handlers.NewRatingHandler(deps.RatingService, storage.KindEpisode)
	characterRatings := handlers.NewRatingHandler(deps.RatingService, storage.KindCharacter)
	averageHandler := handlers.NewAverageRatingHandler(deps.RatingService)
	collectionHandler := handlers.NewCollectionHandler(deps.RatingService)
	profileHandler := handlers.NewProfileHandler(deps.ProfileService)
	accountHandler := handlers.NewAccountHandler(deps.AccountService)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.DB, deps.Collection)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)
		r.Post("/user/register", accountHandler.Register)
		r.Post("/token", accountHandler.Token)
		r.Post("/token/refresh", accountHandler.Refresh)
		r.Method(http.MethodGet, "/average_rating/{type}/{id}", averageHandler)

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.Middleware)

			// Every method reaches the chat handler so it can answer 405 itself.
			r.Handle("/chatbot", chatHandler)

			r.Get("/episodes/ratings/{id}", episodeRatings.Get)
			r.Post("/episodes/ratings/{id}", episodeRatings.Post)
			r.Get("/characters/ratings/{id}", characterRatings.Get)
			r.Post("/characters/ratings/{id}", characterRatings.Post)
			r.Method(http.MethodGet, "/collection/{type}", collectionHandler)
			r.Get("/profile", profileHandler.Get)
			r.Post("/profile", profileHandler.Post)
		})
	})

	return r
}
