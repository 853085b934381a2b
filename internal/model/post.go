// Package model はドメインモデルを定義する。
package model

import "time"

// Post は管理者が投稿する短いテキスト記事（ブログ）を表す。
// IDと作成日時は作成時に確定し、以後変更されない。
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
