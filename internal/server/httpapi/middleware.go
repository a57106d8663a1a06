package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/evgsol/vipgate/internal/logging"
	"github.com/evgsol/vipgate/internal/server/auth"
)

const (
	ctxUserID       = "user_id"
	ctxUserName     = "username"
	ctxSessionToken = "session_token"

	headerRequestID = "X-Request-ID"
)

// requestID tags every request with an id, honoring one supplied by the
// client so ids survive proxies.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(headerRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

func requestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info(c.Request.Context(), "request",
			"request_id", c.GetString(headerRequestID),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return header
}

// authRequired validates the bearer token as an access token and stashes the
// caller's identity in the request context. The raw token is kept too: the
// session registry is keyed by it.
func authRequired(tokens *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Resp{Code: http.StatusUnauthorized, Message: "unauthorized"})
			return
		}
		claims, err := tokens.Validate(token, auth.TokenAccess)
		if err != nil {
			errorResp(c, err)
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			errorResp(c, err)
			return
		}
		c.Set(ctxUserID, userID)
		c.Set(ctxUserName, claims.Username)
		c.Set(ctxSessionToken, token)
		c.Next()
	}
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(ctxUserID)
}
