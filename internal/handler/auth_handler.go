// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"net/http"
)

// TokenIssuer は認証ハンドラーが必要とするトークン発行インターフェース。
// auth.Verifierが実装する。
type TokenIssuer interface {
	Issue(username, password string) (string, error)
}

// AuthHandler は管理者ログインのHTTPハンドラー。
type AuthHandler struct {
	issuer TokenIssuer
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(issuer TokenIssuer) *AuthHandler {
	return &AuthHandler{issuer: issuer}
}

// loginRequest はログインリクエストのボディ。
// identifier/secretはusername/passwordの別名で、後者が空の場合にのみ使用する。
type loginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
}

func (req loginRequest) credentials() (string, string) {
	username, password := req.Username, req.Password
	if username == "" {
		username = req.Identifier
	}
	if password == "" {
		password = req.Secret
	}
	return username, password
}

// loginResponse はログイン成功時のレスポンス。
type loginResponse struct {
	Token string `json:"token"`
}

// Login は認証情報を照合し、管理者トークンを返す。
// POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	token, err := h.issuer.Issue(req.credentials())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}
