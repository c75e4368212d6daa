package auth

import (
	"context"
	"fmt"

	"github.com/hitoshi/commboard/internal/model"
	"github.com/hitoshi/commboard/internal/repository"
)

// SessionResolver は提示されたトークンをアカウントに解決する。
// 読み取りのみで、ストアへの書き込みは行わない。
type SessionResolver struct {
	accounts repository.AccountRepository
	tokens   repository.TokenRepository
}

// NewSessionResolver はSessionResolverを生成する。
func NewSessionResolver(accounts repository.AccountRepository, tokens repository.TokenRepository) *SessionResolver {
	return &SessionResolver{accounts: accounts, tokens: tokens}
}

// Resolve はトークンに紐付くアカウントを返す。
// トークンが空、未登録、または紐付くアカウントが存在しない場合はnilを返す。
// 有効期限は無く、トークン行が存在する限り解決できる。
func (r *SessionResolver) Resolve(ctx context.Context, token string) (*model.Account, error) {
	if token == "" {
		return nil, nil
	}

	t, err := r.tokens.FindByValue(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to find token: %w", err)
	}
	if t == nil {
		return nil, nil
	}

	account, err := r.accounts.FindByID(ctx, t.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return account, nil
}
