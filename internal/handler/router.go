package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/blogman/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	Authorizer        middleware.Authorizer
	HTTPRecorder      middleware.HTTPRecorder
	CORSAllowedOrigin string

	// 認証
	TokenIssuer TokenIssuer

	// ブログ
	BlogService          BlogServiceInterface
	RequireAuthForCreate bool

	// 運用
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Logging → Metrics → Recovery → SecurityHeaders → CORS → (Admin)
//
// Adminミドルウェアは更新・削除ルートにのみ適用する。
// RequireAuthForCreateがtrueの場合は作成ルートにも適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.HTTPRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPRecorder))
	}
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.TokenIssuer)
	blogHandler := NewBlogHandler(deps.BlogService)
	adminOnly := middleware.NewAdminMiddleware(deps.Authorizer)

	// --- 運用エンドポイント ---
	r.Get("/health", Health)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		// --- 認証不要のルート ---
		r.Post("/login", authHandler.Login)
		r.Get("/blogs", blogHandler.ListBlogs)
		r.Get("/blogs/{id}", blogHandler.GetBlog)

		if deps.RequireAuthForCreate {
			r.With(adminOnly).Post("/create-blog", blogHandler.CreateBlog)
		} else {
			r.Post("/create-blog", blogHandler.CreateBlog)
		}

		// --- 管理者のみのルート ---
		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Put("/blogs/{id}", blogHandler.UpdateBlog)
			r.Delete("/blogs/{id}", blogHandler.DeleteBlog)
		})
	})

	return r
}
