package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/blogman/internal/middleware"
	"github.com/hitoshi/blogman/internal/model"
)

// --- モック定義 ---

// mockTokenIssuer はTokenIssuerのモック実装。
type mockTokenIssuer struct {
	issueFn func(username, password string) (string, error)
}

func (m *mockTokenIssuer) Issue(username, password string) (string, error) {
	if m.issueFn != nil {
		return m.issueFn(username, password)
	}
	return "", nil
}

// mockBlogService はBlogServiceInterfaceのモック実装。
type mockBlogService struct {
	createFn func(ctx context.Context, title, content string) (*model.Post, error)
	listFn   func(ctx context.Context) ([]model.Post, error)
	getFn    func(ctx context.Context, id string) (*model.Post, error)
	updateFn func(ctx context.Context, principal *model.Principal, id, title, content string) (*model.Post, error)
	deleteFn func(ctx context.Context, principal *model.Principal, id, password string) error
}

func (m *mockBlogService) Create(ctx context.Context, title, content string) (*model.Post, error) {
	if m.createFn != nil {
		return m.createFn(ctx, title, content)
	}
	return nil, nil
}

func (m *mockBlogService) List(ctx context.Context) ([]model.Post, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockBlogService) Get(ctx context.Context, id string) (*model.Post, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, nil
}

func (m *mockBlogService) Update(ctx context.Context, principal *model.Principal, id, title, content string) (*model.Post, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, principal, id, title, content)
	}
	return nil, nil
}

func (m *mockBlogService) Delete(ctx context.Context, principal *model.Principal, id, password string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, principal, id, password)
	}
	return nil
}

// mockAuthorizer はmiddleware.Authorizerのモック実装。
// Bearer validのみを管理者として通す。
type mockAuthorizer struct{}

func (mockAuthorizer) Authorize(r *http.Request) (*model.Principal, error) {
	switch r.Header.Get("Authorization") {
	case "":
		return nil, model.NewMissingTokenError()
	case "Bearer valid":
		return &model.Principal{Username: "admin", Role: model.RoleAdmin}, nil
	default:
		return nil, model.NewInvalidTokenError()
	}
}

// --- テストヘルパー ---

// withPrincipal はテスト用にリクエストコンテキストに管理者Principalを注入するヘルパー。
func withPrincipal(r *http.Request) *http.Request {
	ctx := middleware.ContextWithPrincipal(r.Context(), &model.Principal{Username: "admin", Role: model.RoleAdmin})
	return r.WithContext(ctx)
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// parseAPIErrorResponse はレスポンスボディからAPIErrorレスポンスをパースするヘルパー。
func parseAPIErrorResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return result
}
