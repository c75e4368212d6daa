// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/commboard/internal/model"
)

// AccountRepository はアカウントデータの永続化インターフェース。
type AccountRepository interface {
	// FindByID は指定IDのアカウントを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Account, error)

	// FindConflicting はuser_id、email、nicknameのいずれかが一致するアカウントのうち
	// 最初の1件を返す。見つからない場合はnilを返す。
	FindConflicting(ctx context.Context, userID, email, nickname string) (*model.Account, error)

	// FindByCredentials はuser_idとパスワードダイジェストが両方一致するアカウントを返す。
	// 見つからない場合はnilを返す。
	FindByCredentials(ctx context.Context, userID, passwordHash string) (*model.Account, error)

	// Create はアカウントを作成し、採番されたIDをaccount.IDに設定する。
	// 一意制約違反の場合は項目別の重複エラー（*model.APIError）を返す。
	Create(ctx context.Context, account *model.Account) error
}

// TokenRepository はログイントークンの永続化インターフェース。
type TokenRepository interface {
	// Create はトークンをアカウントに紐付けて保存する。
	Create(ctx context.Context, token *model.Token) error

	// FindByValue はトークン文字列でトークンを検索する。見つからない場合はnilを返す。
	FindByValue(ctx context.Context, value string) (*model.Token, error)
}

// PostRepository は投稿データの永続化インターフェース。
type PostRepository interface {
	// Create は投稿を作成し、採番されたIDと作成日時をpostに設定する。
	Create(ctx context.Context, post *model.Post) error

	// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Post, error)

	// ListByCategory はカテゴリ内の投稿をwritten_time降順で最大limit件返す。
	ListByCategory(ctx context.Context, category string, offset, limit int) ([]*model.Post, error)

	// CountByCategory はカテゴリ内の投稿総数を返す。
	CountByCategory(ctx context.Context, category string) (int64, error)
}
