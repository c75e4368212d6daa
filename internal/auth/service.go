// Package auth はアカウント登録、ログイン、トークンによるセッション解決を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/hitoshi/commboard/internal/metrics"
	"github.com/hitoshi/commboard/internal/model"
	"github.com/hitoshi/commboard/internal/repository"
)

// tokenBytes はトークンの乱数バイト長。16進表現で64文字になる。
const tokenBytes = 32

// Service は登録・ログインのビジネスロジックを提供する。
type Service struct {
	accounts repository.AccountRepository
	tokens   repository.TokenRepository
	hasher   PasswordHasher
	metrics  metrics.MetricsCollector

	generateToken func() (string, error)
}

// NewService はServiceを生成する。collectorがnilの場合はメトリクスを記録しない。
func NewService(
	accounts repository.AccountRepository,
	tokens repository.TokenRepository,
	hasher PasswordHasher,
	collector metrics.MetricsCollector,
) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Service{
		accounts:      accounts,
		tokens:        tokens,
		hasher:        hasher,
		metrics:       collector,
		generateToken: generateToken,
	}
}

// Register はアカウントを作成する。
// 既存アカウントとの重複はuser_id、email、nicknameの順で1項目だけ報告する。
// 事前確認をすり抜けた同時登録はストアの一意制約で検出され、同じ項目別エラーになる。
func (s *Service) Register(ctx context.Context, userID, password, email, nickname string) error {
	if userID == "" || password == "" || email == "" || nickname == "" {
		return model.NewMissingValueError("Missing Value")
	}

	existing, err := s.accounts.FindConflicting(ctx, userID, email, nickname)
	if err != nil {
		return fmt.Errorf("failed to check duplicate account: %w", err)
	}
	if existing != nil {
		return duplicateReason(existing, userID, email, nickname)
	}

	account := &model.Account{
		UserID:       userID,
		PasswordHash: s.hasher.Hash(password),
		Email:        email,
		Nickname:     nickname,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	s.metrics.RecordRegistration()
	slog.Info("account registered",
		slog.Int64("account_id", account.ID),
		slog.String("user_id", userID),
	)
	return nil
}

// duplicateReason は最初に一致したアカウントから重複理由を1つ選ぶ。
func duplicateReason(existing *model.Account, userID, email, nickname string) error {
	switch {
	case existing.UserID == userID:
		return model.NewDuplicateError(model.DuplicateUserID)
	case existing.Email == email:
		return model.NewDuplicateError(model.DuplicateEmail)
	case existing.Nickname == nickname:
		return model.NewDuplicateError(model.DuplicateNickname)
	default:
		return model.NewBadRequestError()
	}
}

// Login は資格情報を照合し、新しいトークンを発行する。
// 既存のトークンは無効化しない。
// 入力欠落と照合失敗はどちらも同じエラーで返し、どちらが誤りかを明かさない。
func (s *Service) Login(ctx context.Context, userID, password string) (string, error) {
	if userID == "" || password == "" {
		s.metrics.RecordLogin(false)
		return "", model.NewInvalidCredentialsError()
	}

	account, err := s.accounts.FindByCredentials(ctx, userID, s.hasher.Hash(password))
	if err != nil {
		return "", fmt.Errorf("failed to find account: %w", err)
	}
	if account == nil {
		s.metrics.RecordLogin(false)
		slog.Warn("login failed", slog.String("user_id", userID))
		return "", model.NewInvalidCredentialsError()
	}

	value, err := s.generateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	if err := s.tokens.Create(ctx, &model.Token{Value: value, AccountID: account.ID}); err != nil {
		return "", fmt.Errorf("failed to save token: %w", err)
	}

	s.metrics.RecordLogin(true)
	slog.Info("token issued", slog.Int64("account_id", account.ID))
	return value, nil
}

// generateToken は暗号的に安全なトークン文字列を生成する。
func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
