// Package model はドメインモデルを定義する。
package model

import "time"

// Account は掲示板の利用者アカウントを表す。
// user_id、email、nickname はそれぞれ一意である。
type Account struct {
	ID           int64
	UserID       string // ログインID
	PasswordHash string
	Email        string
	Nickname     string
}

// Token はログイン成功時に発行される不透明なベアラートークンを表す。
// 一度発行されたトークンは有効期間中ずっと同一アカウントに解決される。
type Token struct {
	Value     string
	AccountID int64
	CreatedAt time.Time
}
