// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// クライアントに表示するメッセージ、原因カテゴリ、対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, blog, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidCredentials    = "INVALID_CREDENTIALS"
	ErrCodeMissingToken          = "MISSING_TOKEN"
	ErrCodeInvalidToken          = "INVALID_TOKEN"
	ErrCodeForbidden             = "FORBIDDEN"
	ErrCodeInvalidDeletePassword = "INVALID_DELETE_PASSWORD"
	ErrCodeBlogNotFound          = "BLOG_NOT_FOUND"
	ErrCodeInvalidRequest        = "INVALID_REQUEST"
	ErrCodeInternal              = "INTERNAL_ERROR"
)

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
// ユーザー名とパスワードのどちらが誤っているかは区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Invalid username or password",
		Category: "auth",
		Action:   "Check your username and password and try again.",
	}
}

// NewMissingTokenError はAuthorizationヘッダーにBearerトークンがない場合のエラーを生成する。
func NewMissingTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeMissingToken,
		Message:  "No token provided",
		Category: "auth",
		Action:   "Log in and retry with an Authorization: Bearer header.",
	}
}

// NewInvalidTokenError はトークン検証失敗エラーを生成する。
// 署名不正・形式不正・期限切れは区別せず、同一のエラーとして返す。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidToken,
		Message:  "Invalid or expired token",
		Category: "auth",
		Action:   "Log in again to obtain a new token.",
	}
}

// NewForbiddenError は管理者権限がない場合のエラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "Unauthorized",
		Category: "auth",
		Action:   "This operation requires an administrator.",
	}
}

// NewInvalidDeletePasswordError は削除用パスワード不一致エラーを生成する。
func NewInvalidDeletePasswordError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDeletePassword,
		Message:  "Invalid password",
		Category: "auth",
		Action:   "Enter the deletion password.",
	}
}

// NewBlogNotFoundError はブログ未検出エラーを生成する。
func NewBlogNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeBlogNotFound,
		Message:  "Blog not found",
		Category: "blog",
		Action:   fmt.Sprintf("Check the blog id: %s", id),
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "Invalid request body",
		Category: "validation",
		Action:   "Send a valid JSON body.",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログのみに記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "Internal server error",
		Category: "system",
		Action:   "Please wait and try again later.",
	}
}
