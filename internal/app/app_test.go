package app

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/blogman/internal/config"
	"github.com/prometheus/client_golang/prometheus"
)

func setTestEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-jwt-secret")
	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD", "admin-pass")
	t.Setenv("DELETE_PASSWORD", "delete-pass")
	t.Setenv("LOG_LEVEL", "")
}

func TestInit_WithValidConfig_Succeeds(t *testing.T) {
	setTestEnv(t)

	var buf bytes.Buffer
	cfg, err := Init(&buf)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	if cfg.AdminUsername != "admin" {
		t.Errorf("AdminUsername = %q, want %q", cfg.AdminUsername, "admin")
	}

	// グローバルロガーがJSON出力に設定されていること
	slog.Default().Info("init test")
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log output, got error: %v\nraw: %s", err, buf.String())
	}
	if entry["msg"] != "init test" {
		t.Errorf("msg = %q, want %q", entry["msg"], "init test")
	}
	if entry["service"] != "blogman" {
		t.Errorf("service = %q, want %q", entry["service"], "blogman")
	}
}

func TestInit_AppliesLogLevel(t *testing.T) {
	setTestEnv(t)
	t.Setenv("LOG_LEVEL", "warn")

	var buf bytes.Buffer
	if _, err := Init(&buf); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	slog.Info("suppressed")
	if buf.Len() != 0 {
		t.Errorf("info log should be suppressed at warn level, got %s", buf.String())
	}

	slog.Warn("emitted")
	if !strings.Contains(buf.String(), "emitted") {
		t.Errorf("warn log should be emitted, got %q", buf.String())
	}
}

func TestInit_WithMissingConfig_ReturnsError(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ADMIN_USERNAME", "")
	t.Setenv("ADMIN_PASSWORD", "")
	t.Setenv("DELETE_PASSWORD", "")

	var buf bytes.Buffer
	cfg, err := Init(&buf)
	if err == nil {
		t.Fatal("expected error for missing required env vars, got nil")
	}
	if cfg != nil {
		t.Error("expected nil config on error")
	}
}

func TestRun_WithMissingEnv_ReturnsError(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ADMIN_USERNAME", "")
	t.Setenv("ADMIN_PASSWORD", "")
	t.Setenv("DELETE_PASSWORD", "")

	var buf bytes.Buffer
	if err := Run(&buf, []string{"serve"}); err == nil {
		t.Fatal("Run with missing env should return error")
	}
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:         "test-jwt-secret",
		AdminUsername:     "admin",
		AdminPassword:     "admin-pass",
		DeletePassword:    "delete-pass",
		LogLevel:          slog.LevelInfo,
		ServerPort:        "0",
		ShutdownTimeout:   5 * time.Second,
		CORSAllowedOrigin: "*",
	}
}

// TestNewServer_WiresComponents は構築したサーバーでログインから作成・更新まで通ることを検証する。
func TestNewServer_WiresComponents(t *testing.T) {
	server, err := newServer(testConfig(), prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("newServer() error = %v", err)
	}
	if server.Addr != ":0" {
		t.Errorf("Addr = %q, want %q", server.Addr, ":0")
	}
	if server.ReadTimeout == 0 || server.WriteTimeout == 0 || server.IdleTimeout == 0 {
		t.Error("server timeouts should be configured")
	}

	h := server.Handler

	// ログイン
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"username":"admin","password":"admin-pass"}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, want %d", w.Code, http.StatusOK)
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(w.Body).Decode(&login); err != nil {
		t.Fatalf("failed to decode login: %v", err)
	}

	// 作成
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/create-blog",
		strings.NewReader(`{"title":"t","content":"c"}`)))
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want %d", w.Code, http.StatusCreated)
	}
	var created struct {
		Blog struct {
			ID string `json:"id"`
		} `json:"blog"`
	}
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode create: %v", err)
	}

	// 更新
	req := httptest.NewRequest(http.MethodPut, "/api/blogs/"+created.Blog.ID, strings.NewReader(`{"title":"t2"}`))
	req.Header.Set("Authorization", "Bearer "+login.Token)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("update status = %d, want %d", w.Code, http.StatusOK)
	}

	// メトリクス
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("metrics should include Go runtime collector output")
	}
}

func TestNewServer_EmptySecret_ReturnsError(t *testing.T) {
	cfg := testConfig()
	cfg.JWTSecret = ""

	if _, err := newServer(cfg, prometheus.NewRegistry()); err == nil {
		t.Fatal("expected error for empty signing secret")
	}
}

// TestServe_ShutsDownOnCancel はコンテキストのキャンセルでサーバーが正常終了することを検証する。
func TestServe_ShutsDownOnCancel(t *testing.T) {
	server := &http.Server{
		Addr:    "127.0.0.1:0",
		Handler: http.NotFoundHandler(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, server, time.Second)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve() error = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve() did not return after cancel")
	}
}

// TestServe_ListenError はリッスン失敗時にエラーが返ることを検証する。
func TestServe_ListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() error = %v", err)
	}
	defer ln.Close()

	server := &http.Server{Addr: ln.Addr().String(), Handler: http.NotFoundHandler()}

	if err := serve(context.Background(), server, time.Second); err == nil {
		t.Fatal("expected listen error for occupied address")
	}
}

func TestRunHealthcheck(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"正常", http.StatusOK, false},
		{"異常", http.StatusServiceUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/health" {
					t.Errorf("path = %q, want %q", r.URL.Path, "/health")
				}
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			u, err := url.Parse(srv.URL)
			if err != nil {
				t.Fatalf("url.Parse() error = %v", err)
			}

			err = runHealthcheck(u.Port())
			if (err != nil) != tt.wantErr {
				t.Errorf("runHealthcheck() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRun_Healthcheck_UsesServerPort(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("url.Parse() error = %v", err)
	}
	t.Setenv("SERVER_PORT", u.Port())

	if err := Run(&bytes.Buffer{}, []string{"healthcheck"}); err != nil {
		t.Errorf("Run(healthcheck) error = %v", err)
	}
}

// TestInit_LevelNotSharedAcrossCalls は再初期化が以前のロガーのレベルを書き換えないことを検証する。
func TestInit_LevelNotSharedAcrossCalls(t *testing.T) {
	setTestEnv(t)
	t.Setenv("LOG_LEVEL", "warn")

	var first bytes.Buffer
	if _, err := Init(&first); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	firstLogger := slog.Default()

	t.Setenv("LOG_LEVEL", "debug")
	var second bytes.Buffer
	if _, err := Init(&second); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	firstLogger.Info("still suppressed")
	if first.Len() != 0 {
		t.Errorf("first logger should stay at warn level, got %s", first.String())
	}
}

// TestRun_Healthcheck_LogsDotEnvError は.envの読み込み失敗が警告ログに残ることを検証する。
func TestRun_Healthcheck_LogsDotEnvError(t *testing.T) {
	dir := t.TempDir()
	// ディレクトリの.envは読み込みに失敗する
	if err := os.Mkdir(filepath.Join(dir, ".env"), 0o755); err != nil {
		t.Fatalf("os.Mkdir() error = %v", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("os.Getwd() error = %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("os.Chdir() error = %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("url.Parse() error = %v", err)
	}
	t.Setenv("SERVER_PORT", u.Port())

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	if err := Run(&bytes.Buffer{}, []string{"healthcheck"}); err != nil {
		t.Errorf("Run(healthcheck) error = %v", err)
	}
	if !strings.Contains(buf.String(), "failed to load .env") {
		t.Errorf("expected warning for unreadable .env, got %q", buf.String())
	}
}
