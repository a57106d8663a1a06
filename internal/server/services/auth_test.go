package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evgsol/vipgate/internal/common"
	"github.com/evgsol/vipgate/internal/server/models"
)

func TestRegister_CreatesAccountAndSendsActivation(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	user, err := env.auth.Register(ctx, "newuser", "password123", "newuser@example.com", "hw-1", "10.0.0.1")
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	assert.False(t, user.EmailVerified)

	mail := env.sender.last(t)
	assert.Equal(t, "newuser@example.com", mail.To)

	token := strings.TrimPrefix(mail.Body, "Use this token to verify your email: ")
	require.NotEqual(t, mail.Body, token, "activation mail must carry the token")

	require.NoError(t, env.auth.VerifyEmail(ctx, token))

	info, err := env.users.GetUserInfo(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, info.EmailVerified)
}

func TestRegister_RejectsDuplicatesAndBadEmail(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	env.seedUser(t, "taken", "password123")

	_, err := env.auth.Register(ctx, "taken", "password123", "other@example.com", "", "")
	require.ErrorIs(t, err, common.ErrorBadRequest)

	_, err = env.auth.Register(ctx, "other", "password123", "taken@example.com", "", "")
	require.ErrorIs(t, err, common.ErrorBadRequest, "seeded address is already registered")

	_, err = env.auth.Register(ctx, "third", "password123", "not-an-email", "", "")
	require.ErrorIs(t, err, common.ErrorBadRequest)
}

func TestRegister_RejectsWeakPassword(t *testing.T) {
	env := setupEnv(t)

	_, err := env.auth.Register(context.Background(), "weak", "short", "weak@example.com", "", "")
	require.ErrorIs(t, err, common.ErrWeakPassword)
	assert.Equal(t, 0, env.countRows(t, "users"))
}

func TestRegister_BlockedDevice(t *testing.T) {
	env := setupEnv(t)

	_, err := env.db.Exec(`INSERT INTO blacklist (hardware_code, reason) VALUES ('hw-banned', 'abuse')`)
	require.NoError(t, err)

	_, err = env.auth.Register(context.Background(), "banned", "password123", "banned@example.com", "hw-banned", "10.0.0.9")
	require.ErrorIs(t, err, common.ErrorBadRequest)
	assert.Equal(t, 0, env.countRows(t, "users"))
}

func TestLogin_IssuesTokensAndSession(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	seeded := env.seedUser(t, "kate", "password123")

	user, pair, err := env.auth.Login(ctx, "kate", "password123", "hw-1", "1.2.3", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, user.ID)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	session, err := env.repos.Sessions(env.db).FindByToken(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, session.UserID)
	assert.Equal(t, env.cfg.StatusInterval, session.StatusInterval)

	assert.Equal(t, 1, env.countRows(t, "login_logs"))
}

func TestLogin_WrongPassword(t *testing.T) {
	env := setupEnv(t)

	env.seedUser(t, "luke", "password123")

	_, _, err := env.auth.Login(context.Background(), "luke", "wrongpass1", "", "", "")
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	_, _, err = env.auth.Login(context.Background(), "nobody", "password123", "", "", "")
	require.ErrorIs(t, err, common.ErrorUnauthorized, "unknown user must look like a bad password")
}

func TestLogin_DisabledAccount(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	user := env.seedUser(t, "mallory", "password123")
	_, err := env.db.Exec(`UPDATE users SET status = ? WHERE id = ?`, string(models.UserDisabled), user.ID)
	require.NoError(t, err)

	_, _, err = env.auth.Login(ctx, "mallory", "password123", "", "", "")
	require.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.Equal(t, 0, env.countRows(t, "sessions"))
}

func TestLogin_SecondLoginEvictsFirstSession(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	env.seedUser(t, "nina", "password123")

	_, first, err := env.auth.Login(ctx, "nina", "password123", "hw-old", "1.0", "10.0.0.1")
	require.NoError(t, err)
	_, second, err := env.auth.Login(ctx, "nina", "password123", "hw-new", "1.1", "10.0.0.2")
	require.NoError(t, err)

	assert.Equal(t, 1, env.countRows(t, "sessions"), "at most one live session per user")

	err = env.heartbeat.Heartbeat(ctx, first.AccessToken, "hw-old", "1.0")
	require.ErrorIs(t, err, common.ErrorUnauthorized, "evicted session token must stop working")

	require.NoError(t, env.heartbeat.Heartbeat(ctx, second.AccessToken, "hw-new", "1.1"))
}

func TestLogout_RemovesSession(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	user := env.seedUser(t, "oscar", "password123")
	_, pair, err := env.auth.Login(ctx, "oscar", "password123", "", "", "")
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(ctx, pair.AccessToken))
	assert.Equal(t, 0, env.countRows(t, "sessions"))

	fresh, err := env.repos.Users(env.db).GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, fresh.LastLogoutAt)

	err = env.auth.Logout(ctx, pair.AccessToken)
	require.ErrorIs(t, err, common.ErrorUnauthorized, "second logout must not be a silent no-op")
}

func TestRefreshAccessToken_RotatesSessionToken(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	env.seedUser(t, "peggy", "password123")
	_, pair, err := env.auth.Login(ctx, "peggy", "password123", "", "", "")
	require.NoError(t, err)

	fresh, err := env.auth.RefreshAccessToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, fresh)

	_, err = env.repos.Sessions(env.db).FindByToken(ctx, fresh)
	require.NoError(t, err, "session must be keyed by the new token")
	_, err = env.repos.Sessions(env.db).FindByToken(ctx, pair.AccessToken)
	require.ErrorIs(t, err, common.ErrSessionNotFound, "old token must be dropped")
}

func TestRefreshAccessToken_RejectsAccessToken(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	env.seedUser(t, "quinn", "password123")
	_, pair, err := env.auth.Login(ctx, "quinn", "password123", "", "", "")
	require.NoError(t, err)

	_, err = env.auth.RefreshAccessToken(ctx, pair.AccessToken)
	require.ErrorIs(t, err, common.ErrorUnauthorized, "an access token is not a refresh token")
}

func TestRefreshAccessToken_NoLiveSession(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	env.seedUser(t, "rita", "password123")
	_, pair, err := env.auth.Login(ctx, "rita", "password123", "", "", "")
	require.NoError(t, err)
	require.NoError(t, env.auth.Logout(ctx, pair.AccessToken))

	_, err = env.auth.RefreshAccessToken(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, common.ErrorUnauthorized, "logout revokes the refresh token's use")
}

func TestPasswordReset_FullFlow(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	user := env.seedUser(t, "sam", "password123")

	require.NoError(t, env.auth.RequestPasswordReset(ctx, user.Email))

	mail := env.sender.last(t)
	code := strings.TrimPrefix(mail.Body, "Your password reset code is: ")
	require.Len(t, code, 6)

	require.NoError(t, env.auth.ConfirmPasswordReset(ctx, "sam", user.Email, code, "newpassword1"))

	_, _, err := env.auth.Login(ctx, "sam", "newpassword1", "", "", "")
	require.NoError(t, err)
	_, _, err = env.auth.Login(ctx, "sam", "password123", "", "", "")
	require.ErrorIs(t, err, common.ErrorUnauthorized, "old password must stop working")

	err = env.auth.ConfirmPasswordReset(ctx, "sam", user.Email, code, "anotherpass2")
	require.ErrorIs(t, err, common.ErrorBadRequest, "a code is single use")
}

func TestPasswordReset_WeakPasswordDoesNotBurnCode(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	user := env.seedUser(t, "tina", "password123")
	require.NoError(t, env.auth.RequestPasswordReset(ctx, user.Email))
	code := strings.TrimPrefix(env.sender.last(t).Body, "Your password reset code is: ")

	err := env.auth.ConfirmPasswordReset(ctx, "tina", user.Email, code, "short")
	require.ErrorIs(t, err, common.ErrWeakPassword)

	require.NoError(t, env.auth.ConfirmPasswordReset(ctx, "tina", user.Email, code, "longenough1"))
}

func TestPasswordReset_NewRequestReplacesCode(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	user := env.seedUser(t, "ursula", "password123")

	require.NoError(t, env.auth.RequestPasswordReset(ctx, user.Email))
	firstCode := strings.TrimPrefix(env.sender.last(t).Body, "Your password reset code is: ")

	require.NoError(t, env.auth.RequestPasswordReset(ctx, user.Email))
	secondCode := strings.TrimPrefix(env.sender.last(t).Body, "Your password reset code is: ")

	assert.Equal(t, 1, env.countRows(t, "verification_codes"), "a new request overwrites the pending row")

	if firstCode != secondCode {
		err := env.auth.ConfirmPasswordReset(ctx, "ursula", user.Email, firstCode, "longenough1")
		require.ErrorIs(t, err, common.ErrorBadRequest, "a replaced code must stop working")
	}
	require.NoError(t, env.auth.ConfirmPasswordReset(ctx, "ursula", user.Email, secondCode, "longenough1"))
}

func TestPasswordReset_CodeConsumedExactlyOnce(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	user := env.seedUser(t, "uma", "password123")
	require.NoError(t, env.auth.RequestPasswordReset(ctx, user.Email))

	vc, err := env.repos.ResetCodes(env.db).FindUnusedByUser(ctx, user.ID)
	require.NoError(t, err)

	// Two consumers of one code: the conditional update lets only the
	// first one through even when both read the row as unused beforehand.
	consumed, err := env.repos.ResetCodes(env.db).MarkUsed(ctx, vc.ID)
	require.NoError(t, err)
	assert.True(t, consumed)

	consumed, err = env.repos.ResetCodes(env.db).MarkUsed(ctx, vc.ID)
	require.NoError(t, err)
	assert.False(t, consumed, "the second consume must lose")

	err = env.auth.ConfirmPasswordReset(ctx, "uma", user.Email, vc.Code, "longenough1")
	require.ErrorIs(t, err, common.ErrorBadRequest)
	_, _, err = env.auth.Login(ctx, "uma", "password123", "", "", "")
	require.NoError(t, err, "the losing confirmation must not change the password")
}

func TestPasswordReset_UnknownEmail(t *testing.T) {
	env := setupEnv(t)

	err := env.auth.RequestPasswordReset(context.Background(), "ghost@example.com")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPasswordReset_MismatchedIdentity(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	user := env.seedUser(t, "victor", "password123")
	env.seedUser(t, "walter", "password123")
	require.NoError(t, env.auth.RequestPasswordReset(ctx, user.Email))
	code := strings.TrimPrefix(env.sender.last(t).Body, "Your password reset code is: ")

	err := env.auth.ConfirmPasswordReset(ctx, "walter", user.Email, code, "longenough1")
	require.ErrorIs(t, err, common.ErrorBadRequest, "code is bound to the requesting account")
}
