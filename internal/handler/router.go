package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/castboard/internal/metrics"
	"github.com/hitoshi/castboard/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。*sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	Logger            *slog.Logger

	// 観測
	Collector metrics.MetricsCollector
	Gatherer  prometheus.Gatherer

	// ヘルスチェック
	HealthChecker HealthChecker

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ボード
	BoardService BoardServiceInterface

	// ライブラリ（フォロー・保存・履歴・設定）
	LibraryService LibraryServiceInterface

	// ユーザーデータ一括操作
	UserDataService UserDataServiceInterface

	// カタログ
	CatalogProvider   CatalogProviderInterface
	ShowNotesEnricher ShowNotesEnricherInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Metrics → (ルートごと) Session → CSRF → RateLimit
//
// 読み取り系エンドポイントはOptionalSessionMiddlewareを使い、
// 未認証リクエストを各サービスの契約（空結果・デフォルト値）に委ねる。
// 書き込み系エンドポイントはSessionMiddleware必須 + CSRF検証 + レート制限を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.Collector != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Collector))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	boardHandler := NewBoardHandler(deps.BoardService)
	libraryHandler := NewLibraryHandler(deps.LibraryService)
	userDataHandler := NewUserDataHandler(deps.UserDataService)
	catalogHandler := NewCatalogHandler(deps.CatalogProvider, deps.ShowNotesEnricher)

	optionalSession := middleware.NewOptionalSessionMiddleware(deps.SessionFinder)
	requiredSession := middleware.NewSessionMiddleware(deps.SessionFinder)
	csrf := middleware.NewCSRFMiddleware(deps.CSRFConfig)

	// --- 認証不要のルート ---

	// ヘルスチェック
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if deps.HealthChecker != nil {
			if err := deps.HealthChecker.PingContext(req.Context()); err != nil {
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheusメトリクス
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	// CSRFトークン取得
	r.Get("/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig).ServeHTTP)

	// 認証ルート（OAuthフロー）
	r.Route("/auth", func(r chi.Router) {
		r.Get("/google/login", authHandler.Login)
		r.Get("/google/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// カタログ検索（外部カタログの読み取り専用プロキシ、認証不要）
	r.Route("/api/catalog", func(r chi.Router) {
		r.Get("/search", catalogHandler.Search)
		r.Get("/best", catalogHandler.BestPodcasts)
		r.Route("/podcasts/{id}", func(r chi.Router) {
			r.Get("/", catalogHandler.GetPodcast)
			r.Get("/episodes", catalogHandler.GetPodcastEpisodes)
			r.Get("/shownotes", catalogHandler.GetShowNotes)
		})
	})

	// --- 読み取り系ルート（セッション任意） ---
	// 未認証の読み取りはサービス層が空結果・デフォルト値を返す。
	r.Group(func(r chi.Router) {
		r.Use(optionalSession)

		r.Get("/api/boards", boardHandler.ListBoards)
		r.Get("/api/boards/{id}", boardHandler.GetBoard)

		r.Get("/api/library/followed", libraryHandler.ListFollowed)
		r.Get("/api/library/followed/{podcastID}", libraryHandler.IsFollowing)
		r.Get("/api/library/saved", libraryHandler.ListSaved)
		r.Get("/api/library/saved/{podcastID}", libraryHandler.IsSaved)
		r.Get("/api/library/history", libraryHandler.ListHistory)
		r.Get("/api/library/preferences", libraryHandler.GetPreferences)
	})

	// --- 書き込み系ルート（セッション必須） ---
	// ミドルウェアスタック: Session → CSRF → RateLimit(General) → RateLimit(Write)
	r.Group(func(r chi.Router) {
		r.Use(requiredSession)
		r.Use(csrf)
		r.Use(deps.RateLimiter.GeneralMiddleware())
		r.Use(deps.RateLimiter.WriteOperationMiddleware())

		// ボード管理
		r.Post("/api/boards", boardHandler.CreateBoard)
		r.Patch("/api/boards/{id}", boardHandler.UpdateBoard)
		r.Delete("/api/boards/{id}", boardHandler.DeleteBoard)
		r.Delete("/api/boards", boardHandler.ClearAllBoards)

		// フォロー
		r.Post("/api/library/followed", libraryHandler.Follow)
		r.Delete("/api/library/followed/{podcastID}", libraryHandler.Unfollow)

		// 保存
		r.Post("/api/library/saved", libraryHandler.Save)
		r.Delete("/api/library/saved/{podcastID}", libraryHandler.Unsave)

		// 再生履歴
		r.Post("/api/library/history", libraryHandler.RecordPlay)
		r.Patch("/api/library/history/{episodeID}", libraryHandler.UpdateProgress)
		r.Delete("/api/library/history", libraryHandler.ClearHistory)

		// 再生設定
		r.Put("/api/library/preferences", libraryHandler.UpdatePreferences)

		// ユーザーデータ一括操作
		r.Delete("/api/me/data", userDataHandler.ClearAllData)
	})

	// --- エクスポート（セッション必須、書き込みレート制限は不要） ---
	r.Group(func(r chi.Router) {
		r.Use(requiredSession)
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/api/me/data", userDataHandler.GetAllData)
	})

	return r
}
