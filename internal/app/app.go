// Package app はアプリケーションの起動と依存関係のワイヤリングを提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/castboard/internal/auth"
	"github.com/hitoshi/castboard/internal/board"
	"github.com/hitoshi/castboard/internal/catalog"
	"github.com/hitoshi/castboard/internal/config"
	"github.com/hitoshi/castboard/internal/database"
	"github.com/hitoshi/castboard/internal/handler"
	"github.com/hitoshi/castboard/internal/library"
	"github.com/hitoshi/castboard/internal/logger"
	"github.com/hitoshi/castboard/internal/metrics"
	"github.com/hitoshi/castboard/internal/middleware"
	"github.com/hitoshi/castboard/internal/repository"
	"github.com/hitoshi/castboard/internal/security"
	"github.com/hitoshi/castboard/internal/worker/cleanup"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

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
			port = "8080"
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
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 3. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	identRepo := repository.NewPostgresIdentityRepo(db)
	sessionRepo := repository.NewPostgresSessionRepo(db)
	boardRepo := repository.NewPostgresBoardRepo(db)
	followedRepo := repository.NewPostgresFollowedRepo(db)
	savedRepo := repository.NewPostgresSavedRepo(db)
	historyRepo := repository.NewPostgresHistoryRepo(db)
	prefsRepo := repository.NewPostgresPreferencesRepo(db)

	// 4. 認証サービスの初期化
	// セッションの開始・終了イベントをメトリクスに購読させる
	notifier := auth.NewNotifier()
	notifier.Subscribe(func(ev auth.SessionEvent) {
		switch ev.Kind {
		case auth.SessionStarted:
			collector.RecordSessionStarted()
		case auth.SessionEnded:
			collector.RecordSessionEnded()
		}
	})

	oauthProvider := auth.NewGoogleOAuthProvider(auth.GoogleOAuthConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	})
	authService := auth.NewService(
		oauthProvider, userRepo, identRepo, sessionRepo, notifier,
		auth.ServiceConfig{SessionMaxAge: cfg.SessionMaxAge},
	)

	// 5. ドメインサービスの初期化
	users := auth.ContextUserSource{}
	boardService := board.NewService(boardRepo, users)
	libraryService := library.NewService(
		followedRepo, savedRepo, historyRepo, prefsRepo, users, collector,
	)

	// 6. カタログプロバイダーの初期化
	// APIキー未設定の開発環境では固定カタログにフォールバックする
	var catalogProvider handler.CatalogProviderInterface
	if cfg.CatalogUseCanned {
		slog.Info("using canned podcast catalog")
		catalogProvider = catalog.NewCanned()
	} else {
		catalogProvider = catalog.NewClient(
			&http.Client{Timeout: cfg.CatalogTimeout},
			slog.Default(), collector, cfg.CatalogBaseURL, cfg.CatalogAPIKey,
		)
	}

	// 7. ショーノート補完の初期化（SSRFガード + HTMLサニタイズ）
	enricher := catalog.NewFeedEnricher(
		security.NewFeedGuard(),
		security.NewShowNotesSanitizer(),
		slog.Default(),
		cfg.FeedFetchTimeout,
		cfg.FeedFetchMaxSize,
	)

	// 8. ルーターの構築
	// configのレート制限はreq/min単位なのでreq/secに変換する
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.WriteRate = rate.Limit(float64(cfg.RateLimitWrite) / 60.0)
	rateLimiterCfg.WriteBurst = cfg.RateLimitWrite

	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		SessionFinder:     sessionRepo,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		Logger: slog.Default(),

		Collector: collector,
		Gatherer:  registry,

		HealthChecker: db,

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			BaseURL:       cfg.BaseURL,
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		BoardService:    boardService,
		LibraryService:  libraryService,
		UserDataService: libraryService,

		CatalogProvider:   catalogProvider,
		ShowNotesEnricher: enricher,
	}

	router := handler.NewRouter(deps)

	// 9. 期限切れセッションのクリーンアップジョブ
	jobCtx, jobCancel := context.WithCancel(context.Background())
	defer jobCancel()

	cleanupJob := cleanup.NewSessionCleanupJob(db, slog.Default())
	go cleanupJob.Start(jobCtx, time.Hour)

	// 10. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
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

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
