package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/blogman/internal/middleware"
	"github.com/hitoshi/blogman/internal/model"
)

// 成功時のレスポンスメッセージ。
const (
	msgBlogCreated = "Blog created successfully"
	msgBlogUpdated = "Blog updated successfully"
	msgBlogDeleted = "Blog deleted successfully"
)

// BlogServiceInterface はブログハンドラーが必要とするサービスインターフェース。
type BlogServiceInterface interface {
	// Create はブログを作成する。
	Create(ctx context.Context, title, content string) (*model.Post, error)
	// List は全ブログを新しい順に返す。
	List(ctx context.Context) ([]model.Post, error)
	// Get は指定IDのブログを返す。
	Get(ctx context.Context, id string) (*model.Post, error)
	// Update はブログのタイトルと本文を置き換える。
	Update(ctx context.Context, principal *model.Principal, id, title, content string) (*model.Post, error)
	// Delete はブログを削除する。
	Delete(ctx context.Context, principal *model.Principal, id, password string) error
}

// BlogHandler はブログ管理のHTTPハンドラー。
type BlogHandler struct {
	service BlogServiceInterface
}

// NewBlogHandler はBlogHandlerを生成する。
func NewBlogHandler(service BlogServiceInterface) *BlogHandler {
	return &BlogHandler{service: service}
}

// blogRequest はブログ作成・更新リクエストのボディ。
type blogRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// deleteBlogRequest はブログ削除リクエストのボディ。
type deleteBlogRequest struct {
	Password string `json:"password"`
}

type blogMutationResponse struct {
	Message string      `json:"message"`
	Blog    *model.Post `json:"blog"`
}

type blogListResponse struct {
	SortedBlogs []model.Post `json:"sortedBlogs"`
}

type blogResponse struct {
	Blog *model.Post `json:"blog"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// CreateBlog はブログを作成する。
// POST /api/create-blog
func (h *BlogHandler) CreateBlog(w http.ResponseWriter, r *http.Request) {
	var req blogRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	post, err := h.service.Create(r.Context(), req.Title, req.Content)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, blogMutationResponse{Message: msgBlogCreated, Blog: post})
}

// ListBlogs は全ブログを新しい順に返す。
// GET /api/blogs
func (h *BlogHandler) ListBlogs(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if posts == nil {
		posts = []model.Post{}
	}

	writeJSON(w, http.StatusOK, blogListResponse{SortedBlogs: posts})
}

// GetBlog は指定IDのブログを返す。
// GET /api/blogs/{id}
func (h *BlogHandler) GetBlog(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, blogResponse{Blog: post})
}

// UpdateBlog はブログを更新する。管理者ミドルウェアの内側で使用する。
// PUT /api/blogs/{id}
func (h *BlogHandler) UpdateBlog(w http.ResponseWriter, r *http.Request) {
	var req blogRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	// Principalが無い場合はサービス層がFORBIDDENを返す
	principal, _ := middleware.PrincipalFromContext(r.Context())

	post, err := h.service.Update(r.Context(), principal, chi.URLParam(r, "id"), req.Title, req.Content)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, blogMutationResponse{Message: msgBlogUpdated, Blog: post})
}

// DeleteBlog はブログを削除する。管理者ミドルウェアの内側で使用する。
// DELETE /api/blogs/{id}
func (h *BlogHandler) DeleteBlog(w http.ResponseWriter, r *http.Request) {
	var req deleteBlogRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	principal, _ := middleware.PrincipalFromContext(r.Context())

	if err := h.service.Delete(r.Context(), principal, chi.URLParam(r, "id"), req.Password); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: msgBlogDeleted})
}
