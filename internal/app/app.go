// Package app はブログAPIのプロセス起動とワイヤリングを提供する。
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hitoshi/blogman/internal/auth"
	"github.com/hitoshi/blogman/internal/blog"
	"github.com/hitoshi/blogman/internal/config"
	"github.com/hitoshi/blogman/internal/handler"
	"github.com/hitoshi/blogman/internal/logger"
	"github.com/hitoshi/blogman/internal/metrics"
	"github.com/hitoshi/blogman/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// defaultServerPort はSERVER_PORT未設定時のポート。
const defaultServerPort = "5000"

// Init はアプリケーションの初期化を行う。
// .envと環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする。レベルは読み込み後に更新）
	level := new(slog.LevelVar)
	logger.SetupDefault(w, level)

	// 2. .envがあれば環境変数に反映する（既存の環境変数が優先）
	if err := config.LoadDotEnv(); err != nil {
		slog.Warn("failed to load .env", slog.String("error", err.Error()))
	}

	// 3. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level.Set(cfg.LogLevel)
	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		if err := config.LoadDotEnv(); err != nil {
			slog.Warn("failed to load .env", slog.String("error", err.Error()))
		}
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = defaultServerPort
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.Bool("require_auth_for_create", cfg.RequireAuthForCreate),
	)

	return runServe(cfg)
}

// runServe はAPIサーバーモードで起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server, err := newServer(cfg, prometheus.NewRegistry())
	if err != nil {
		return err
	}

	return serve(ctx, server, cfg.ShutdownTimeout)
}

// newServer は全依存関係をワイヤリングしたHTTPサーバーを構築する。
// ブログストアはプロセス内メモリに保持し、ここで1つだけ生成する。
func newServer(cfg *config.Config, reg *prometheus.Registry) (*http.Server, error) {
	// 1. メトリクス
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	// 2. リポジトリ
	postRepo := repository.NewMemoryPostRepository()

	// 3. ドメインサービス
	verifier, err := auth.NewVerifier(auth.VerifierConfig{
		AdminUsername: cfg.AdminUsername,
		AdminPassword: cfg.AdminPassword,
		SigningSecret: cfg.JWTSecret,
	}, collector)
	if err != nil {
		return nil, fmt.Errorf("failed to create token verifier: %w", err)
	}

	blogService := blog.NewService(postRepo, blog.ServiceConfig{
		DeletePassword: cfg.DeletePassword,
	}, collector)

	// 4. ルーター
	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		Authorizer:        verifier,
		HTTPRecorder:      collector,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,

		TokenIssuer: verifier,

		BlogService:          blogService,
		RequireAuthForCreate: cfg.RequireAuthForCreate,

		MetricsHandler: metrics.Handler(reg),
	})

	return &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, nil
}

// serve はctxがキャンセルされるまでHTTPサーバーを稼働させ、その後グレースフルシャットダウンする。
// リッスンに失敗した場合はそのエラーを返す。
func serve(ctx context.Context, server *http.Server, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
