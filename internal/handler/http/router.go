package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Team-WishU/wishu-backend/internal/service"
	"github.com/Team-WishU/wishu-backend/pkg/health"
	"github.com/Team-WishU/wishu-backend/pkg/middleware"
)

// Services bundles the service layer dependencies of the router.
type Services struct {
	User         *service.UserService
	Bucket       *service.BucketService
	Friend       *service.FriendService
	Product      *service.ProductService
	Chatbot      *service.ChatbotService
	Verification *service.VerificationService
}

// NewRouter creates a chi router with all routes registered.
func NewRouter(
	services Services,
	wsHandler http.Handler,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig middleware.CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("wishu"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Token validator that bridges to the user service's JWT validation.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := services.User.ValidateToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID:   claims.UserID,
			Email:    claims.Email,
			Nickname: claims.Nickname,
		}, nil
	}

	authHandler := NewAuthHandler(services.User, logger)
	verificationHandler := NewVerificationHandler(services.Verification, logger)
	userHandler := NewUserHandler(services.User, logger)
	friendHandler := NewFriendHandler(services.Friend, logger)
	productHandler := NewProductHandler(services.Product, logger)
	bucketHandler := NewBucketHandler(services.Bucket, logger)
	chatbotHandler := NewChatbotHandler(services.Chatbot, logger)

	// REST API. Compression and the request deadline apply here only; the
	// websocket endpoint below is long-lived and must not inherit them.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Compress(5))
		r.Use(chimw.Timeout(30 * time.Second))
		r.Use(ContentTypeJSON)

		// Auth endpoints (public)
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.RequestLogger(logger))

			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.RefreshToken)
			r.Post("/email/send", verificationHandler.SendCode)
			r.Post("/email/verify", verificationHandler.VerifyCode)
		})

		// User profile endpoints (auth required)
		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))
			r.Use(middleware.RequestLogger(logger))

			r.Get("/me", userHandler.GetProfile)
			r.Delete("/me", userHandler.DeleteAccount)
		})

		// Friendship endpoints (auth required)
		r.Route("/friends", func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))
			r.Use(middleware.RequestLogger(logger))

			r.Get("/", friendHandler.ListFriends)
			r.Delete("/{friendId}", friendHandler.RemoveFriend)

			r.Post("/requests", friendHandler.SendRequest)
			r.Get("/requests/incoming", friendHandler.ListIncoming)
			r.Get("/requests/outgoing", friendHandler.ListOutgoing)
			r.Post("/requests/{fromUserId}/accept", friendHandler.AcceptRequest)
			r.Delete("/requests/{fromUserId}", friendHandler.RejectRequest)
			r.Delete("/requests/outgoing/{toUserId}", friendHandler.CancelRequest)
		})

		// Product catalog and wish endpoints (auth required)
		r.Route("/products", func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))
			r.Use(middleware.RequestLogger(logger))

			r.Post("/", productHandler.Create)
			r.Get("/", productHandler.List)
			r.Get("/wishes/me", productHandler.MyWishes)
			r.Get("/{id}", productHandler.GetByID)
			r.Delete("/{id}", productHandler.Delete)
			r.Post("/{id}/wish", productHandler.Wish)
			r.Delete("/{id}/wish", productHandler.Unwish)
		})

		// Shared bucket endpoints (auth required)
		r.Route("/shared-buckets", func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))
			r.Use(middleware.RequestLogger(logger))

			r.Get("/wishlist", bucketHandler.Wishlist)
			r.Get("/my", bucketHandler.FindMine)
			r.Get("/{id}/wishlist", bucketHandler.SharedWishlist)
			r.Get("/{id}/comments", bucketHandler.ListComments)
			r.Post("/{id}/comment", bucketHandler.PostComment)
		})

		// Chatbot endpoints (auth required)
		r.Route("/chatbot", func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))
			r.Use(middleware.RequestLogger(logger))

			r.Post("/messages", chatbotHandler.Message)
			r.Delete("/session", chatbotHandler.Reset)
		})
	})

	// Realtime endpoint. The websocket handler authenticates via the token
	// query parameter itself, so no Auth middleware here.
	if wsHandler != nil {
		r.Get("/ws", wsHandler.ServeHTTP)
	}

	return r
}
