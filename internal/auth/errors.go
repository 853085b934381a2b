package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hitoshi/blogman/internal/model"
)

// 認可拒否の内部診断理由。ログとメトリクスにのみ使用する。
const (
	ReasonMissingToken  = "missing_token"
	ReasonExpired       = "expired"
	ReasonBadSignature  = "bad_signature"
	ReasonMalformed     = "malformed"
	ReasonInvalidClaims = "invalid_claims"
	ReasonForbiddenRole = "forbidden_role"
)

// TokenError はトークン検証失敗を表す。
// 呼び出し元にはINVALID_TOKENのAPIErrorとして見え、Reasonは外部に公開しない。
type TokenError struct {
	Reason string
	api    *model.APIError
	err    error
}

func newTokenError(err error) *TokenError {
	return &TokenError{
		Reason: classify(err),
		api:    model.NewInvalidTokenError(),
		err:    err,
	}
}

// Error はerrorインターフェースを実装する。
func (e *TokenError) Error() string {
	return e.api.Error()
}

// Unwrap はerrors.As/Isで*model.APIErrorと元のjwtエラーの両方を辿れるようにする。
func (e *TokenError) Unwrap() []error {
	return []error{e.api, e.err}
}

func classify(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ReasonBadSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ReasonMalformed
	default:
		return ReasonInvalidClaims
	}
}
