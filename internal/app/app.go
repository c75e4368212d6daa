package app

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/commboard/internal/auth"
	"github.com/hitoshi/commboard/internal/config"
	"github.com/hitoshi/commboard/internal/database"
	"github.com/hitoshi/commboard/internal/handler"
	"github.com/hitoshi/commboard/internal/logger"
	"github.com/hitoshi/commboard/internal/metrics"
	"github.com/hitoshi/commboard/internal/middleware"
	"github.com/hitoshi/commboard/internal/post"
	"github.com/hitoshi/commboard/internal/repository"
	"github.com/hitoshi/commboard/internal/security"
	"github.com/hitoshi/commboard/internal/worker/cleanup"
)

// defaultPort はSERVER_PORT未設定時の待ち受けポート。
const defaultPort = "2096"

// Init はアプリケーションの初期化を行う。
// JSON構造化ログをセットアップし、環境変数からConfigを読み込む。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, logger.ParseLevel(os.Getenv("LOG_LEVEL")))

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = defaultPort
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
		slog.Bool("tls", cfg.TLSEnabled()),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	case CommandSweep:
		return runSweep(cfg)
	default:
		return runServe(cfg)
	}
}

// server はHTTPサーバーと、停止時に解放すべきリソースをまとめる。
type server struct {
	http        *http.Server
	rateLimiter *middleware.RateLimiter
}

// newServer はGatewayを起点に全依存関係をワイヤリングし、HTTPサーバーを構築する。
func newServer(cfg *config.Config, gw *database.Gateway, log *slog.Logger) (*server, error) {
	// 1. リポジトリの初期化
	accountRepo := repository.NewPostgresAccountRepo(gw)
	tokenRepo := repository.NewPostgresTokenRepo(gw)
	postRepo := repository.NewPostgresPostRepo(gw)

	// 2. メトリクス
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// 3. ドメインサービスの初期化
	hasher, err := auth.NewPasswordHasher(cfg.PasswordHash, cfg.PasswordSalt)
	if err != nil {
		return nil, fmt.Errorf("failed to configure password hashing: %w", err)
	}
	authService := auth.NewService(accountRepo, tokenRepo, hasher, collector)
	resolver := auth.NewSessionResolver(accountRepo, tokenRepo)
	postService := post.NewService(postRepo, accountRepo, security.NewContentSanitizer(), collector)

	// 4. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitAuth),
	)

	router := handler.NewRouter(&handler.RouterDeps{
		SessionResolver:   resolver,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Logger:            log,
		Metrics:           collector,
		Gatherer:          registry,
		Pinger:            gw,
		AccountService:    authService,
		PostService:       postService,
	})

	return &server{
		http: &http.Server{
			Addr:         ":" + cfg.ServerPort,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		rateLimiter: rateLimiter,
	}, nil
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTP(S)サーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), cfg.DBQueryTimeout)
	gw, err := database.Connect(connectCtx, cfg.DatabaseURL, cfg.DBQueryTimeout)
	cancelConnect()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer gw.Close()

	slog.Info("database connection established")

	// 2. サーバーの構築
	srv, err := newServer(cfg, gw, slog.Default())
	if err != nil {
		return err
	}
	defer srv.rateLimiter.Stop()

	// 3. HTTPサーバーの起動
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", srv.http.Addr),
			slog.Bool("tls", cfg.TLSEnabled()),
		)
		var err error
		if cfg.TLSEnabled() {
			err = srv.http.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = srv.http.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-stop:
	case err := <-errCh:
		return fmt.Errorf("server listen error: %w", err)
	}
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runSweep はアカウントが存在しないトークンを一括削除する。
func runSweep(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DBQueryTimeout)
	defer cancel()

	gw, err := database.Connect(ctx, cfg.DatabaseURL, cfg.DBQueryTimeout)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer gw.Close()

	if _, err := cleanup.NewTokenSweepJob(gw, slog.Default()).Run(ctx); err != nil {
		return fmt.Errorf("token sweep failed: %w", err)
	}
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// TLS_CERT_FILEが設定されている場合はhttpsで問い合わせる。
func runHealthcheck(port string) error {
	return checkHealth(healthcheckURL(port, os.Getenv("TLS_CERT_FILE") != ""))
}

func healthcheckURL(port string, useTLS bool) string {
	scheme := "http"
	if useTLS {
		scheme = "https"
	}
	return fmt.Sprintf("%s://localhost:%s/health", scheme, port)
}

func checkHealth(url string) error {
	client := &http.Client{
		Timeout: 5 * time.Second,
		Transport: &http.Transport{
			// 自プロセスへの疎通確認のみ。証明書のホスト名はlocalhostと一致しない。
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
		},
	}

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

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
