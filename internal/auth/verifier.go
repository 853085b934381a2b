// Package auth は単一の管理者アカウントに対するBearerトークン（JWT）の発行と検証を提供する。
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hitoshi/blogman/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// TokenTTL はトークンの有効期間。発行時刻から固定で1時間。
const TokenTTL = time.Hour

// Recorder は認証イベントを記録するインターフェース。
// metrics.Collectorが実装する。
type Recorder interface {
	RecordLoginAttempt(success bool)
	RecordAuthRejection(reason string)
}

// Claims はトークンに埋め込むクレーム。
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Role     string `json:"role"`
}

// VerifierConfig はVerifierの設定。すべてプロセス起動時に固定される。
type VerifierConfig struct {
	AdminUsername string
	AdminPassword string
	SigningSecret string
}

// Verifier は管理者の認証情報を照合してトークンを発行し、
// リクエストのBearerトークンを検証する。
type Verifier struct {
	adminUsername []byte
	passwordHash  []byte
	secret        []byte
	recorder      Recorder
	now           func() time.Time
}

// NewVerifier はVerifierを生成する。
// 署名シークレットが空の場合は検証不能なトークンを発行しないようエラーを返す。
func NewVerifier(config VerifierConfig, recorder Recorder) (*Verifier, error) {
	if config.SigningSecret == "" {
		return nil, errors.New("auth: signing secret must not be empty")
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	// 平文のパスワードは保持せず、bcryptハッシュのみを残す
	hash, err := bcrypt.GenerateFromPassword(passwordDigest(config.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to hash admin password: %w", err)
	}
	return &Verifier{
		adminUsername: []byte(config.AdminUsername),
		passwordHash:  hash,
		secret:        []byte(config.SigningSecret),
		recorder:      recorder,
		now:           time.Now,
	}, nil
}

// Issue は認証情報を照合し、一致した場合に管理者トークンを発行する。
// ユーザー名とパスワードは両方とも比較してから判定し、
// どちらが不一致だったかは呼び出し元に区別させない。
func (v *Verifier) Issue(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), v.adminUsername)
	passOK := bcrypt.CompareHashAndPassword(v.passwordHash, passwordDigest(password)) == nil
	if userOK != 1 || !passOK {
		v.recorder.RecordLoginAttempt(false)
		slog.Warn("login failed", slog.String("username", username))
		return "", model.NewInvalidCredentialsError()
	}

	issuedAt := v.now()
	token, err := v.sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(TokenTTL)),
		},
		Username: username,
		Role:     model.RoleAdmin,
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	v.recorder.RecordLoginAttempt(true)
	slog.Info("login succeeded", slog.String("username", username))
	return token, nil
}

// Authorize はリクエストのAuthorizationヘッダーからBearerトークンを取り出して検証し、
// 管理者のPrincipalを返す。
//
//   - ヘッダーなし、またはBearer以外: MISSING_TOKEN
//   - 署名不正・形式不正・期限切れ: INVALID_TOKEN（*TokenError）
//   - 管理者ロール以外: FORBIDDEN
func (v *Verifier) Authorize(r *http.Request) (*model.Principal, error) {
	raw, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		v.reject(ReasonMissingToken, nil)
		return nil, model.NewMissingTokenError()
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, v.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		tokenErr := newTokenError(err)
		v.reject(tokenErr.Reason, err)
		return nil, tokenErr
	}

	principal := &model.Principal{Username: claims.Username, Role: claims.Role}
	if !principal.IsAdmin() {
		v.reject(ReasonForbiddenRole, nil)
		return nil, model.NewForbiddenError()
	}

	return principal, nil
}

func (v *Verifier) keyFunc(_ *jwt.Token) (interface{}, error) {
	return v.secret, nil
}

func (v *Verifier) sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// passwordDigest はパスワードを固定長のSHA-256ダイジェストに変換する。
// bcryptは先頭72バイトしか見ないため、全バイトをダイジェストに反映させてから渡す。
func passwordDigest(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return sum[:]
}

// reject は認可拒否をログとメトリクスに記録する。理由はクライアントには返さない。
func (v *Verifier) reject(reason string, err error) {
	v.recorder.RecordAuthRejection(reason)
	attrs := []any{slog.String("reason", reason)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	slog.Warn("authorization rejected", attrs...)
}

// bearerToken は"Bearer <token>"形式のヘッダー値からトークンを取り出す。
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

type nopRecorder struct{}

func (nopRecorder) RecordLoginAttempt(bool)    {}
func (nopRecorder) RecordAuthRejection(string) {}
