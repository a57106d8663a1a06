// Package httpapi exposes the public HTTP surface: registration, login,
// token refresh, heartbeats, redemption and account queries.
package httpapi

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/evgsol/vipgate/internal/logging"
	"github.com/evgsol/vipgate/internal/server/auth"
	"github.com/evgsol/vipgate/internal/server/models"
	"github.com/evgsol/vipgate/internal/server/services"
)

// AuthProvider is the slice of the auth service the handlers need.
type AuthProvider interface {
	Register(ctx context.Context, username, password, email, hardware, ip string) (*models.User, error)
	Login(ctx context.Context, username, password, hardware, version, ip string) (*models.User, *services.TokenPair, error)
	Logout(ctx context.Context, sessionToken string) error
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, username, email, code, newPassword string) error
	VerifyEmail(ctx context.Context, activationToken string) error
}

type HeartbeatProvider interface {
	Heartbeat(ctx context.Context, sessionToken, hardware, version string) error
}

type RechargeProvider interface {
	Redeem(ctx context.Context, userID int64, cardCode string) (*models.User, *models.RechargeCard, error)
	ListLogs(ctx context.Context, userID int64) ([]*models.RechargeLog, error)
}

type UserProvider interface {
	GetUserInfo(ctx context.Context, userID int64) (*services.UserInfo, error)
}

// Server wires the HTTP routes to the services.
type Server struct {
	auth      AuthProvider
	heartbeat HeartbeatProvider
	recharge  RechargeProvider
	users     UserProvider
	tokens    *auth.Manager
	logger    logging.Logger

	// statusInterval is echoed to clients on login so they know the
	// expected heartbeat cadence, in minutes.
	statusInterval int
}

func NewServer(authSvc AuthProvider, hb HeartbeatProvider, rc RechargeProvider, us UserProvider, tokens *auth.Manager, logger logging.Logger, statusInterval int) *Server {
	return &Server{
		auth:           authSvc,
		heartbeat:      hb,
		recharge:       rc,
		users:          us,
		tokens:         tokens,
		logger:         logger.With("module", "http"),
		statusInterval: statusInterval,
	}
}

// Router builds the gin engine with all routes and middleware attached.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger(s.logger))

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", s.handleRegister)
			authGroup.POST("/login", s.handleLogin)
			authGroup.POST("/refresh", s.handleRefresh)
			authGroup.POST("/reset-password", s.handleResetRequest)
			authGroup.POST("/reset-password/verify", s.handleResetConfirm)
			authGroup.POST("/verify-email", s.handleVerifyEmail)
		}

		api.POST("/heartbeat", s.handleHeartbeat)

		protected := api.Group("", authRequired(s.tokens))
		{
			protected.GET("/users/me", s.handleUserInfo)
			protected.POST("/users/logout", s.handleLogout)
			protected.POST("/recharge", s.handleRedeem)
			protected.GET("/recharge/logs", s.handleRechargeLogs)
		}
	}

	return r
}
