// Package rest exposes the user service over HTTP. It owns only transport
// concerns: request decoding, bearer-token extraction, and mapping of the
// service error taxonomy to stable statuses.
package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/withgossing/bank-app/internal/logging"
	"github.com/withgossing/bank-app/internal/server/auth"
	"github.com/withgossing/bank-app/internal/server/models"
	"github.com/withgossing/bank-app/internal/server/services"
)

// UserService is the slice of the service layer the HTTP boundary consumes.
type UserService interface {
	Register(ctx context.Context, req services.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.TokenPair, *models.User, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	VerifyAccessToken(tokenString string) (*auth.Claims, error)
	TokenValidity(kind auth.TokenKind) time.Duration
	GetByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, caller *models.User, id string, req services.UpdateRequest) (*models.User, error)
	Deactivate(ctx context.Context, caller *models.User, id string) error
}

type Server struct {
	address string
	users   UserService
	logger  logging.Logger
}

func NewServer(a string, l logging.Logger, us UserService) *Server {
	return &Server{
		address: a,
		logger:  l.With("module", "http_server"),
		users:   us,
	}
}

// Router builds the gin engine with all routes mounted.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	users := r.Group("/api/users")
	{
		users.POST("/register", s.register)
		users.POST("/login", s.login)
		users.POST("/refresh", s.refresh)

		protected := users.Group("")
		protected.Use(s.authRequired())
		{
			protected.GET("/me", s.currentUser)
			protected.GET("/:id", s.getUser)
			protected.PUT("/:id", s.updateUser)
			protected.DELETE("/:id", s.deleteUser)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

// Run serves HTTP until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:         s.address,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
