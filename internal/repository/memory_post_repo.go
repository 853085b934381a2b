package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/hitoshi/blogman/internal/model"
)

// MemoryPostRepository はPostRepositoryのプロセス内メモリ実装。
// 挿入順のスライスを1つのRWMutexで保護する。プロセス終了とともに内容は失われる。
type MemoryPostRepository struct {
	mu    sync.RWMutex
	posts []model.Post
}

// NewMemoryPostRepository はMemoryPostRepositoryを生成する。
func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{}
}

// Create はブログを末尾に追加する。同じIDが既に存在する場合はエラーを返す。
func (r *MemoryPostRepository) Create(_ context.Context, post *model.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(post.ID) >= 0 {
		return fmt.Errorf("post %s already exists", post.ID)
	}
	r.posts = append(r.posts, *post)
	return nil
}

// List は全ブログを新しい順に並べたコピーを返す。
func (r *MemoryPostRepository) List(_ context.Context) ([]model.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]model.Post, 0, len(r.posts))
	for i := len(r.posts) - 1; i >= 0; i-- {
		result = append(result, r.posts[i])
	}
	return result, nil
}

// FindByID は指定IDのブログのコピーを返す。見つからない場合はnilを返す。
func (r *MemoryPostRepository) FindByID(_ context.Context, id string) (*model.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, nil
	}
	post := r.posts[i]
	return &post, nil
}

// Update は指定IDのブログのタイトルと本文をその場で置き換える。
func (r *MemoryPostRepository) Update(_ context.Context, id, title, content string) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, nil
	}
	r.posts[i].Title = title
	r.posts[i].Content = content

	post := r.posts[i]
	return &post, nil
}

// DeleteByID は指定IDのブログを順序を保ったまま取り除く。
func (r *MemoryPostRepository) DeleteByID(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return false, nil
	}
	r.posts = append(r.posts[:i], r.posts[i+1:]...)
	return true, nil
}

// Count は保持しているブログ数を返す。
func (r *MemoryPostRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.posts), nil
}

// indexOf は線形探索でIDの位置を返す。ロック保持中に呼び出すこと。
func (r *MemoryPostRepository) indexOf(id string) int {
	for i := range r.posts {
		if r.posts[i].ID == id {
			return i
		}
	}
	return -1
}
