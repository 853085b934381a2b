// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/hitoshi/blogman/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// principalContextKey はリクエストコンテキストに認可済みPrincipalを格納するためのキー。
var principalContextKey = contextKey("principal")

// Authorizer はリクエストの認可判定に必要なインターフェース。
// auth.Verifierが実装する。
type Authorizer interface {
	Authorize(r *http.Request) (*model.Principal, error)
}

// NewAdminMiddleware はBearerトークンを検証し、管理者のみを通過させるミドルウェアを返す。
// 認可済みPrincipalをリクエストコンテキストに注入する。
// 失敗時は後続ハンドラーを呼び出さず、401または403を返す。
func NewAdminMiddleware(authorizer Authorizer) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := authorizer.Authorize(r)
			if err != nil {
				WriteError(w, err)
				return
			}

			annotatePrincipal(r.Context(), principal.Username)
			ctx := ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext はリクエストコンテキストから認可済みPrincipalを取得する。
// 管理者ミドルウェアを通過したリクエストでのみ有効。
func PrincipalFromContext(ctx context.Context) (*model.Principal, error) {
	principal, ok := ctx.Value(principalContextKey).(*model.Principal)
	if !ok || principal == nil {
		return nil, errors.New("principal not found in context")
	}
	return principal, nil
}

// ContextWithPrincipal はコンテキストにPrincipalを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithPrincipal(ctx context.Context, principal *model.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}
