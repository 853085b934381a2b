// Package repository はデータ保持のインターフェースと実装を定義する。
package repository

import (
	"context"

	"github.com/hitoshi/blogman/internal/model"
)

// PostRepository はブログの保持インターフェース。
// 返却されるPostはすべてコピーであり、呼び出し元が変更しても保持データには影響しない。
type PostRepository interface {
	// Create はブログを末尾に追加する。
	Create(ctx context.Context, post *model.Post) error

	// List は全ブログを作成順の逆順（新しい順）で返す。
	// 返却値はスナップショットであり、以後の変更の影響を受けない。
	List(ctx context.Context) ([]model.Post, error)

	// FindByID は指定IDのブログを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Post, error)

	// Update は指定IDのブログのタイトルと本文を置き換える。
	// IDと作成日時は変更しない。見つからない場合はnilを返す。
	Update(ctx context.Context, id, title, content string) (*model.Post, error)

	// DeleteByID は指定IDのブログを削除する。削除した場合はtrueを返す。
	DeleteByID(ctx context.Context, id string) (bool, error)

	// Count は保持しているブログ数を返す。
	Count(ctx context.Context) (int, error)
}
