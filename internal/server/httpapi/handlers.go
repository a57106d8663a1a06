package httpapi

import (
	"errors"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/evgsol/vipgate/internal/server/models"
)

type registerReq struct {
	Username        string `json:"username" binding:"required"`
	Password        string `json:"password" binding:"required"`
	Email           string `json:"email" binding:"required"`
	HardwareCode    string `json:"hardware_code"`
	SoftwareVersion string `json:"software_version"`
}

type loginReq struct {
	Username        string `json:"username" binding:"required"`
	Password        string `json:"password" binding:"required"`
	HardwareCode    string `json:"hardware_code"`
	SoftwareVersion string `json:"software_version"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type resetRequestReq struct {
	Email string `json:"email" binding:"required"`
}

type resetConfirmReq struct {
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type verifyEmailReq struct {
	Token string `json:"token" binding:"required"`
}

type heartbeatReq struct {
	HardwareCode    string `json:"hardware_code"`
	SoftwareVersion string `json:"software_version"`
}

type redeemReq struct {
	CardCode string `json:"card_code" binding:"required"`
}

type loginResp struct {
	AccessToken    string    `json:"access_token"`
	RefreshToken   string    `json:"refresh_token"`
	StatusInterval int       `json:"status_interval"`
	User           *userResp `json:"user"`
}

type userResp struct {
	ID            int64      `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	EmailVerified bool       `json:"email_verified"`
	VIPLevel      int        `json:"vip_level"`
	VIPExpiresAt  *time.Time `json:"vip_expires_at,omitempty"`
}

type redeemResp struct {
	CardCode     string     `json:"card_code"`
	VIPLevel     int        `json:"vip_level"`
	DurationDays int        `json:"duration_days"`
	VIPExpiresAt *time.Time `json:"vip_expires_at"`
}

type rechargeLogResp struct {
	CardCode     string    `json:"card_code"`
	VIPLevel     int       `json:"vip_level"`
	DurationDays int       `json:"duration_days"`
	RechargeTime time.Time `json:"recharge_time"`
}

func toUserResp(u *models.User) *userResp {
	resp := &userResp{
		ID:            u.ID,
		Username:      u.UserName,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		VIPLevel:      u.EffectiveVIP(time.Now()),
	}
	if resp.VIPLevel > 0 {
		resp.VIPExpiresAt = u.VIPExpiresAt
	}
	return resp
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestResp(c, "invalid request body")
		return
	}
	user, err := s.auth.Register(c.Request.Context(), req.Username, req.Password, req.Email, req.HardwareCode, c.ClientIP())
	if err != nil {
		errorResp(c, err)
		return
	}
	successResp(c, toUserResp(user))
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestResp(c, "invalid request body")
		return
	}
	user, pair, err := s.auth.Login(c.Request.Context(), req.Username, req.Password, req.HardwareCode, req.SoftwareVersion, c.ClientIP())
	if err != nil {
		errorResp(c, err)
		return
	}
	successResp(c, loginResp{
		AccessToken:    pair.AccessToken,
		RefreshToken:   pair.RefreshToken,
		StatusInterval: s.statusInterval,
		User:           toUserResp(user),
	})
}

func (s *Server) handleRefresh(c *gin.Context) {
	var req refreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestResp(c, "invalid request body")
		return
	}
	token, err := s.auth.RefreshAccessToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		errorResp(c, err)
		return
	}
	successResp(c, gin.H{"access_token": token})
}

func (s *Server) handleResetRequest(c *gin.Context) {
	var req resetRequestReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestResp(c, "invalid request body")
		return
	}
	if err := s.auth.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		errorResp(c, err)
		return
	}
	successResp(c, nil)
}

func (s *Server) handleResetConfirm(c *gin.Context) {
	var req resetConfirmReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestResp(c, "invalid request body")
		return
	}
	if err := s.auth.ConfirmPasswordReset(c.Request.Context(), req.Username, req.Email, req.Code, req.NewPassword); err != nil {
		errorResp(c, err)
		return
	}
	successResp(c, nil)
}

func (s *Server) handleVerifyEmail(c *gin.Context) {
	var req verifyEmailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestResp(c, "invalid request body")
		return
	}
	if err := s.auth.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		errorResp(c, err)
		return
	}
	successResp(c, nil)
}

// handleHeartbeat is deliberately outside the JWT middleware: the registry is
// keyed by the raw session token, and an expired-but-registered token should
// still be told it is gone rather than rejected at the parsing stage.
func (s *Server) handleHeartbeat(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		badRequestResp(c, "missing session token")
		return
	}
	// Both body fields are optional; a bare beat with no body is valid.
	var req heartbeatReq
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequestResp(c, "invalid request body")
		return
	}
	if err := s.heartbeat.Heartbeat(c.Request.Context(), token, req.HardwareCode, req.SoftwareVersion); err != nil {
		errorResp(c, err)
		return
	}
	successResp(c, nil)
}

func (s *Server) handleUserInfo(c *gin.Context) {
	info, err := s.users.GetUserInfo(c.Request.Context(), currentUserID(c))
	if err != nil {
		errorResp(c, err)
		return
	}
	successResp(c, info)
}

func (s *Server) handleLogout(c *gin.Context) {
	if err := s.auth.Logout(c.Request.Context(), c.GetString(ctxSessionToken)); err != nil {
		errorResp(c, err)
		return
	}
	successResp(c, nil)
}

func (s *Server) handleRedeem(c *gin.Context) {
	var req redeemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestResp(c, "invalid request body")
		return
	}
	user, card, err := s.recharge.Redeem(c.Request.Context(), currentUserID(c), req.CardCode)
	if err != nil {
		errorResp(c, err)
		return
	}
	successResp(c, redeemResp{
		CardCode:     card.CardCode,
		VIPLevel:     card.VIPLevel,
		DurationDays: card.DurationDays,
		VIPExpiresAt: user.VIPExpiresAt,
	})
}

func (s *Server) handleRechargeLogs(c *gin.Context) {
	logs, err := s.recharge.ListLogs(c.Request.Context(), currentUserID(c))
	if err != nil {
		errorResp(c, err)
		return
	}
	out := make([]rechargeLogResp, 0, len(logs))
	for _, l := range logs {
		out = append(out, rechargeLogResp{
			CardCode:     l.CardCode,
			VIPLevel:     l.VIPLevel,
			DurationDays: l.DurationDays,
			RechargeTime: l.RechargeTime,
		})
	}
	successResp(c, out)
}
