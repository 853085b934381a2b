// Package blog はブログの作成・参照・更新・削除を提供する。
// 更新と削除は認可済みの管理者Principalを必須とし、削除にはさらに削除用パスワードを要求する。
package blog

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/repository"
)

// ブログ変更操作の種別。メトリクスのラベルに使用する。
const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// Recorder はブログ変更イベントを記録するインターフェース。
// metrics.Collectorが実装する。
type Recorder interface {
	RecordPostOperation(operation string)
	SetPostCount(n int)
}

// ServiceConfig はブログサービスの設定。
type ServiceConfig struct {
	DeletePassword string // 削除時に要求する第2要素のパスワード
}

// Service はブログ管理のビジネスロジックを提供する。
type Service struct {
	repo     repository.PostRepository
	config   ServiceConfig
	recorder Recorder
	now      func() time.Time
	newID    func() string
}

// NewService はServiceを生成する。
func NewService(repo repository.PostRepository, config ServiceConfig, recorder Recorder) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{
		repo:     repo,
		config:   config,
		recorder: recorder,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Create はブログを作成する。IDと作成日時はここで確定する。
// タイトルと本文は検証せず、そのまま保持する。
func (s *Service) Create(ctx context.Context, title, content string) (*model.Post, error) {
	post := &model.Post{
		ID:        s.newID(),
		Title:     title,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.recorder.RecordPostOperation(OperationCreate)
	s.refreshCount(ctx)
	slog.Info("blog created", slog.String("blog_id", post.ID))
	return post, nil
}

// List は全ブログを新しい順に返す。
func (s *Service) List(ctx context.Context) ([]model.Post, error) {
	posts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// Get は指定IDのブログを返す。存在しない場合はBLOG_NOT_FOUNDを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	if post == nil {
		return nil, model.NewBlogNotFoundError(id)
	}
	return post, nil
}

// Update はブログのタイトルと本文を置き換える。
// principalは事前のAuthorizeで得た管理者でなければならない。
func (s *Service) Update(ctx context.Context, principal *model.Principal, id, title, content string) (*model.Post, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}

	post, err := s.repo.Update(ctx, id, title, content)
	if err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	if post == nil {
		return nil, model.NewBlogNotFoundError(id)
	}

	s.recorder.RecordPostOperation(OperationUpdate)
	slog.Info("blog updated",
		slog.String("blog_id", id),
		slog.String("principal", principal.Username),
	)
	return post, nil
}

// Delete はブログを完全に削除する。
//
// 判定順:
//  1. principalが管理者であること（FORBIDDEN）
//  2. 削除用パスワードが一致すること（INVALID_DELETE_PASSWORD）。IDの検索より前に判定する
//  3. 指定IDのブログが存在すること（BLOG_NOT_FOUND）
func (s *Service) Delete(ctx context.Context, principal *model.Principal, id, password string) error {
	if err := requireAdmin(principal); err != nil {
		return err
	}
	if err := s.checkDeletePassword(password); err != nil {
		slog.Warn("blog delete rejected: invalid password",
			slog.String("blog_id", id),
			slog.String("principal", principal.Username),
		)
		return err
	}

	deleted, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if !deleted {
		return model.NewBlogNotFoundError(id)
	}

	s.recorder.RecordPostOperation(OperationDelete)
	s.refreshCount(ctx)
	slog.Info("blog deleted",
		slog.String("blog_id", id),
		slog.String("principal", principal.Username),
	)
	return nil
}

// checkDeletePassword は削除用パスワードを定数時間で比較する。
// 設定が空の場合はどの入力も一致させない。
func (s *Service) checkDeletePassword(password string) error {
	if s.config.DeletePassword == "" ||
		subtle.ConstantTimeCompare([]byte(password), []byte(s.config.DeletePassword)) != 1 {
		return model.NewInvalidDeletePasswordError()
	}
	return nil
}

func (s *Service) refreshCount(ctx context.Context) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		slog.Error("failed to count posts", slog.String("error", err.Error()))
		return
	}
	s.recorder.SetPostCount(n)
}

func requireAdmin(principal *model.Principal) error {
	if !principal.IsAdmin() {
		return model.NewForbiddenError()
	}
	return nil
}

type nopRecorder struct{}

func (nopRecorder) RecordPostOperation(string) {}
func (nopRecorder) SetPostCount(int)           {}
