package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/evgsol/vipgate/internal/logging"
	"github.com/evgsol/vipgate/internal/server/auth"
	"github.com/evgsol/vipgate/internal/server/config"
	"github.com/evgsol/vipgate/internal/server/models"
	"github.com/evgsol/vipgate/internal/server/repositories/repomanager"
)

var testDBSeq atomic.Int64

const testSchema = `
CREATE TABLE users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    email TEXT NOT NULL,
    email_verified BOOLEAN NOT NULL DEFAULT FALSE,
    vip_level INTEGER NOT NULL DEFAULT 0,
    vip_expires_at TIMESTAMP,
    status TEXT NOT NULL DEFAULT 'enabled',
    last_login_at TIMESTAMP,
    last_login_hardware TEXT NOT NULL DEFAULT '',
    last_login_version TEXT NOT NULL DEFAULT '',
    last_login_ip TEXT NOT NULL DEFAULT '',
    last_logout_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
CREATE TABLE sessions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    session_token TEXT NOT NULL UNIQUE,
    login_time TIMESTAMP NOT NULL,
    hardware_code TEXT NOT NULL DEFAULT '',
    software_version TEXT NOT NULL DEFAULT '',
    ip_address TEXT NOT NULL DEFAULT '',
    last_activity_at TIMESTAMP NOT NULL,
    status_interval INTEGER NOT NULL DEFAULT 10,
    created_at TIMESTAMP NOT NULL
);
CREATE TABLE recharge_cards (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    card_code TEXT NOT NULL UNIQUE,
    vip_level INTEGER NOT NULL,
    duration_days INTEGER NOT NULL,
    price REAL NOT NULL DEFAULT 0,
    is_used BOOLEAN NOT NULL DEFAULT FALSE,
    used_at TIMESTAMP,
    used_by INTEGER,
    created_at TIMESTAMP NOT NULL
);
CREATE TABLE recharge_logs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    card_code TEXT NOT NULL,
    vip_level INTEGER NOT NULL,
    duration_days INTEGER NOT NULL,
    recharge_time TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL
);
CREATE TABLE login_logs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    login_time TIMESTAMP NOT NULL,
    hardware_code TEXT NOT NULL DEFAULT '',
    software_version TEXT NOT NULL DEFAULT '',
    ip_address TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);
CREATE TABLE admin_logs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    admin_id INTEGER NOT NULL,
    action TEXT NOT NULL,
    details TEXT NOT NULL DEFAULT '',
    ip_address TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);
CREATE TABLE verification_codes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    email TEXT NOT NULL,
    code TEXT NOT NULL,
    token TEXT NOT NULL,
    expires_at TIMESTAMP NOT NULL,
    used BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL
);
CREATE TABLE blacklist (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL DEFAULT '',
    hardware_code TEXT NOT NULL DEFAULT '',
    ip_address TEXT NOT NULL DEFAULT '',
    reason TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// setupDB opens a private in-memory database with the full schema. A single
// connection serializes transactions, which mirrors how concurrent
// redemptions queue on row locks in production.
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:services_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(testSchema)
	require.NoError(t, err)
	return db
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	cfg.PasswordMinLength = 8
	cfg.StatusInterval = 5
	return cfg
}

func testTokenManager(cfg *config.Config) *auth.Manager {
	return auth.NewManager([]byte(cfg.SecretKey), cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration)
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

// captureSender records outbound mail instead of sending it.
type captureSender struct {
	mu   sync.Mutex
	sent []sentMail
}

func (s *captureSender) Send(_ context.Context, to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (s *captureSender) last(t *testing.T) sentMail {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.sent, "expected at least one mail to be sent")
	return s.sent[len(s.sent)-1]
}

type testEnv struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	cfg    *config.Config
	tokens *auth.Manager
	sender *captureSender

	auth      *AuthService
	heartbeat *HeartbeatService
	recharge  *RechargeService
	users     *UserService
	admin     *AdminService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupDB(t)
	repos := repomanager.NewPostgresRepositoryManager()
	cfg := testConfig()
	tokens := testTokenManager(cfg)
	sender := &captureSender{}
	logger := testLogger()

	return &testEnv{
		db:        db,
		repos:     repos,
		cfg:       cfg,
		tokens:    tokens,
		sender:    sender,
		auth:      NewAuthService(db, repos, tokens, sender, logger, cfg),
		heartbeat: NewHeartbeatService(db, repos, logger),
		recharge:  NewRechargeService(db, repos, logger),
		users:     NewUserService(db, repos),
		admin:     NewAdminService(db, repos, logger),
	}
}

func (e *testEnv) seedUser(t *testing.T, username, password string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	now := time.Now()
	user, err := e.repos.Users(e.db).Create(context.Background(), &models.User{
		UserName:     username,
		PasswordHash: hash,
		Email:        username + "@example.com",
		Status:       models.UserEnabled,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) seedCard(t *testing.T, code string, level, days int) *models.RechargeCard {
	t.Helper()
	card, err := e.repos.Cards(e.db).Create(context.Background(), &models.RechargeCard{
		CardCode:     code,
		VIPLevel:     level,
		DurationDays: days,
		Price:        9.99,
		CreatedAt:    time.Now(),
	})
	require.NoError(t, err)
	return card
}

func (e *testEnv) setVIP(t *testing.T, userID int64, level int, expiresAt time.Time) {
	t.Helper()
	_, err := e.repos.Users(e.db).UpdateVIP(context.Background(), userID, level, expiresAt, time.Now())
	require.NoError(t, err)
}

func (e *testEnv) countRows(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, e.db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}
