package repository

import (
	"context"
	"fmt"

	"github.com/hitoshi/commboard/internal/database"
	"github.com/hitoshi/commboard/internal/model"
)

// PostgresTokenRepo はPostgreSQLを使用したトークンリポジトリ。
type PostgresTokenRepo struct {
	gw *database.Gateway
}

// NewPostgresTokenRepo はPostgresTokenRepoを生成する。
func NewPostgresTokenRepo(gw *database.Gateway) *PostgresTokenRepo {
	return &PostgresTokenRepo{gw: gw}
}

// Create はトークンを保存する。作成日時はストアが付与する。
func (r *PostgresTokenRepo) Create(ctx context.Context, token *model.Token) error {
	_, err := r.gw.Exec(ctx,
		`INSERT INTO token (account_id, token) VALUES ($1, $2)`,
		token.AccountID, token.Value,
	)
	if err != nil {
		return fmt.Errorf("failed to insert token: %w", err)
	}
	return nil
}

// FindByValue はトークン文字列でトークンを検索する。見つからない場合はnilを返す。
// 有効期限は存在しないため、行が残っている限り解決できる。
func (r *PostgresTokenRepo) FindByValue(ctx context.Context, value string) (*model.Token, error) {
	token := &model.Token{}
	found, err := r.gw.QueryOne(ctx,
		`SELECT token, account_id, created_time FROM token WHERE token = $1`,
		[]any{value},
		&token.Value, &token.AccountID, &token.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find token: %w", err)
	}
	if !found {
		return nil, nil
	}
	return token, nil
}

// compile-time interface check
var _ TokenRepository = (*PostgresTokenRepo)(nil)
