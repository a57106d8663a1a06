// Package services contains the server-side business logic layered on top of
// the repositories: authentication and session lifecycle, heartbeat liveness,
// card redemption, and account queries.
package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"time"

	"github.com/evgsol/vipgate/internal/common"
	"github.com/evgsol/vipgate/internal/dbx"
	"github.com/evgsol/vipgate/internal/logging"
	"github.com/evgsol/vipgate/internal/server/auth"
	"github.com/evgsol/vipgate/internal/server/config"
	"github.com/evgsol/vipgate/internal/server/email"
	"github.com/evgsol/vipgate/internal/server/models"
	"github.com/evgsol/vipgate/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

const resetCodeValidity = 30 * time.Minute

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// AuthService handles registration, login, logout, refresh-token exchange
// and the password-reset flow.
//
// The session protocol keeps at most one live session per user: Login removes
// every prior session for the user and inserts the new one inside a single
// transaction, so a concurrent second login can never leave zero or two rows.
type AuthService struct {
	db             *sql.DB
	repos          repomanager.RepositoryManager
	tokens         *auth.Manager
	policy         auth.PasswordPolicy
	sender         email.Sender
	logger         logging.Logger
	statusInterval int
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, tokens *auth.Manager, sender email.Sender, logger logging.Logger, cfg *config.Config) *AuthService {
	return &AuthService{
		db:     db,
		repos:  m,
		tokens: tokens,
		policy: auth.PasswordPolicy{
			MinLength:             cfg.PasswordMinLength,
			RequireLetterAndDigit: cfg.PasswordRequireLetterAndDigit,
		},
		sender:         sender,
		logger:         logger.With("module", "auth"),
		statusInterval: cfg.StatusInterval,
	}
}

// Register creates a new account and dispatches an activation email carrying
// an activation token. The email send is best-effort.
func (s *AuthService) Register(ctx context.Context, username, password, emailAddr, hardware, ip string) (*models.User, error) {

	blocked, err := s.repos.Blacklist(s.db).IsBlocked(ctx, username, hardware, ip)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if blocked {
		return nil, fmt.Errorf("%w: device cannot be registered", common.ErrorBadRequest)
	}

	usersRepo := s.repos.Users(s.db)

	if _, err := usersRepo.GetByUserName(ctx, username); err == nil {
		return nil, fmt.Errorf("%w: username already exists", common.ErrorBadRequest)
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}

	if _, err := usersRepo.GetByEmail(ctx, emailAddr); err == nil {
		return nil, fmt.Errorf("%w: email already exists", common.ErrorBadRequest)
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}

	if !emailRe.MatchString(emailAddr) {
		return nil, fmt.Errorf("%w: invalid email format", common.ErrorBadRequest)
	}

	if err := s.policy.Check(password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	now := time.Now()
	user := &models.User{
		UserName:          username,
		PasswordHash:      hash,
		Email:             emailAddr,
		Status:            models.UserEnabled,
		LastLoginHardware: hardware,
		LastLoginIP:       ip,
		LastLoginAt:       &now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	user, err = usersRepo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	activation, err := s.tokens.IssueActivationToken(user.ID, user.Email)
	if err != nil {
		s.logger.Error(ctx, "activation token issue failed", "user_id", user.ID, "error", err.Error())
		return user, nil
	}
	if err := s.sender.Send(ctx, user.Email, "Verify your email",
		"Use this token to verify your email: "+activation); err != nil {
		s.logger.Warn(ctx, "activation email send failed", "user_id", user.ID, "error", err.Error())
	}

	return user, nil
}

// Login verifies credentials, mints a token pair, and replaces the user's
// live session with a new one keyed by the fresh access token.
func (s *AuthService) Login(ctx context.Context, username, password, hardware, version, ip string) (*models.User, *TokenPair, error) {

	user, err := s.repos.Users(s.db).GetByUserName(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorUnauthorized
		}
		return nil, nil, common.ErrorInternal
	}

	if user.Status != models.UserEnabled {
		return nil, nil, common.ErrorUnauthorized
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, nil, common.ErrorUnauthorized
	}

	accessToken, err := s.tokens.IssueAccessToken(user.ID, user.UserName)
	if err != nil {
		return nil, nil, common.ErrorInternal
	}
	refreshToken, err := s.tokens.IssueRefreshToken(user.ID, user.UserName)
	if err != nil {
		return nil, nil, common.ErrorInternal
	}

	now := time.Now()

	// Append-only login history; a failed write never fails the login.
	if err := s.repos.LoginLogs(s.db).Append(ctx, &models.LoginLog{
		UserID:          user.ID,
		LoginTime:       now,
		HardwareCode:    hardware,
		SoftwareVersion: version,
		IPAddress:       ip,
		Status:          "success",
		CreatedAt:       now,
	}); err != nil {
		s.logger.Warn(ctx, "login log write failed", "user_id", user.ID, "error", err.Error())
	}

	// Evict any prior session and insert the new one atomically.
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		sessionsRepo := s.repos.Sessions(tx)
		if err := sessionsRepo.DeleteByUser(ctx, user.ID); err != nil {
			return err
		}
		if _, err := sessionsRepo.Create(ctx, &models.Session{
			UserID:          user.ID,
			SessionToken:    accessToken,
			LoginTime:       now,
			HardwareCode:    hardware,
			SoftwareVersion: version,
			IPAddress:       ip,
			LastActivityAt:  now,
			StatusInterval:  s.statusInterval,
			CreatedAt:       now,
		}); err != nil {
			return err
		}
		return s.repos.Users(tx).UpdateLastLogin(ctx, user.ID, hardware, version, ip, now)
	}); err != nil {
		return nil, nil, common.ErrorInternal
	}

	user.LastLoginAt = &now
	user.LastLoginHardware = hardware
	user.LastLoginVersion = version
	user.LastLoginIP = ip

	return user, &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Logout removes the session matching the presented token and stamps the
// owning user's last logout time. An unknown token is an error, never a
// silent no-op.
func (s *AuthService) Logout(ctx context.Context, sessionToken string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		sessionsRepo := s.repos.Sessions(tx)

		session, err := sessionsRepo.FindByToken(ctx, sessionToken)
		if err != nil {
			if errors.Is(err, common.ErrSessionNotFound) {
				return common.ErrorUnauthorized
			}
			return err
		}
		if err := sessionsRepo.DeleteByToken(ctx, sessionToken); err != nil {
			return err
		}
		return s.repos.Users(tx).UpdateLastLogout(ctx, session.UserID, time.Now())
	})
}

// RefreshAccessToken validates a refresh token and rotates the stored bearer
// token of the user's live session in place. A user without a live session
// cannot refresh: eviction revokes the refresh token's usefulness.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {

	claims, err := s.tokens.Validate(refreshToken, auth.TokenRefresh)
	if err != nil {
		return "", common.ErrorUnauthorized
	}
	userID, err := claims.UserID()
	if err != nil {
		return "", common.ErrorUnauthorized
	}

	user, err := s.repos.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", common.ErrorInternal
	}

	session, err := s.repos.Sessions(s.db).FindByUser(ctx, user.ID)
	if err != nil {
		if errors.Is(err, common.ErrSessionNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", common.ErrorInternal
	}

	newAccessToken, err := s.tokens.IssueAccessToken(user.ID, user.UserName)
	if err != nil {
		return "", common.ErrorInternal
	}

	if err := s.repos.Sessions(s.db).UpdateToken(ctx, session.ID, newAccessToken); err != nil {
		if errors.Is(err, common.ErrSessionNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", common.ErrorInternal
	}

	return newAccessToken, nil
}

// RequestPasswordReset generates a 6-digit code backed by a server-side row
// (30 minute validity) and emails it to the account address.
func (s *AuthService) RequestPasswordReset(ctx context.Context, emailAddr string) error {

	user, err := s.repos.Users(s.db).GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}

	code, err := makeResetCode()
	if err != nil {
		return common.ErrorInternal
	}
	token, err := s.tokens.IssueResetToken(user.ID, user.Email)
	if err != nil {
		return common.ErrorInternal
	}

	now := time.Now()
	expiresAt := now.Add(resetCodeValidity)

	codesRepo := s.repos.ResetCodes(s.db)
	existing, err := codesRepo.FindUnusedByUser(ctx, user.ID)
	switch {
	case err == nil:
		if err := codesRepo.Replace(ctx, existing.ID, code, token, expiresAt); err != nil {
			return common.ErrorInternal
		}
	case errors.Is(err, common.ErrorNotFound):
		if err := codesRepo.Create(ctx, &models.VerificationCode{
			UserID:    user.ID,
			Email:     user.Email,
			Code:      code,
			Token:     token,
			ExpiresAt: expiresAt,
			CreatedAt: now,
		}); err != nil {
			return common.ErrorInternal
		}
	default:
		return common.ErrorInternal
	}

	if err := s.sender.Send(ctx, user.Email, "Password reset",
		"Your password reset code is: "+code); err != nil {
		s.logger.Warn(ctx, "reset email send failed", "user_id", user.ID, "error", err.Error())
	}

	return nil
}

// ConfirmPasswordReset consumes a reset code and updates the password. The
// policy is enforced before the code is marked used, so a weak password does
// not burn the code.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, username, emailAddr, code, newPassword string) error {

	user, err := s.repos.Users(s.db).GetByUserName(ctx, username)
	if err != nil || user.Email != emailAddr {
		return fmt.Errorf("%w: unknown account", common.ErrorBadRequest)
	}

	codesRepo := s.repos.ResetCodes(s.db)
	vc, err := codesRepo.FindByUserAndCode(ctx, user.ID, code)
	if err != nil {
		return fmt.Errorf("%w: invalid verification code", common.ErrorBadRequest)
	}
	if vc.Used {
		return fmt.Errorf("%w: verification code has already been used", common.ErrorBadRequest)
	}
	if !vc.ExpiresAt.After(time.Now()) {
		return fmt.Errorf("%w: verification code has expired", common.ErrorBadRequest)
	}

	if err := s.policy.Check(newPassword); err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return common.ErrorInternal
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		// The conditional consume decides the winner when two confirmations
		// of the same code race; the Used read above is only a fast path.
		consumed, err := s.repos.ResetCodes(tx).MarkUsed(ctx, vc.ID)
		if err != nil {
			return err
		}
		if !consumed {
			return fmt.Errorf("%w: verification code has already been used", common.ErrorBadRequest)
		}
		return s.repos.Users(tx).UpdatePasswordHash(ctx, user.ID, hash, time.Now())
	})
}

// VerifyEmail validates an activation token and marks the account's email
// address verified.
func (s *AuthService) VerifyEmail(ctx context.Context, activationToken string) error {

	claims, err := s.tokens.Validate(activationToken, auth.TokenActivation)
	if err != nil {
		return common.ErrorUnauthorized
	}
	userID, err := claims.UserID()
	if err != nil {
		return common.ErrorUnauthorized
	}

	if err := s.repos.Users(s.db).SetEmailVerified(ctx, userID, time.Now()); err != nil {
		return common.ErrorInternal
	}
	return nil
}

func makeResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
