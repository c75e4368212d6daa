package repository

import (
	"context"
	"fmt"

	"github.com/hitoshi/commboard/internal/database"
	"github.com/hitoshi/commboard/internal/model"
)

// board_accountテーブルの一意制約名と重複項目の対応。
var accountConstraintFields = map[string]model.DuplicateField{
	"board_account_user_id_key":  model.DuplicateUserID,
	"board_account_email_key":    model.DuplicateEmail,
	"board_account_nickname_key": model.DuplicateNickname,
}

const accountColumns = `id, user_id, user_pw, email, nickname`

// PostgresAccountRepo はPostgreSQLを使用したアカウントリポジトリ。
type PostgresAccountRepo struct {
	gw *database.Gateway
}

// NewPostgresAccountRepo はPostgresAccountRepoを生成する。
func NewPostgresAccountRepo(gw *database.Gateway) *PostgresAccountRepo {
	return &PostgresAccountRepo{gw: gw}
}

// FindByID は指定IDのアカウントを取得する。見つからない場合はnilを返す。
func (r *PostgresAccountRepo) FindByID(ctx context.Context, id int64) (*model.Account, error) {
	return r.findOne(ctx, "find account by ID",
		`SELECT `+accountColumns+` FROM board_account WHERE id = $1`,
		id,
	)
}

// FindConflicting はuser_id、email、nicknameのいずれかが一致する最初のアカウントを返す。
func (r *PostgresAccountRepo) FindConflicting(ctx context.Context, userID, email, nickname string) (*model.Account, error) {
	return r.findOne(ctx, "find conflicting account",
		`SELECT `+accountColumns+` FROM board_account
		 WHERE user_id = $1 OR email = $2 OR nickname = $3
		 ORDER BY id
		 LIMIT 1`,
		userID, email, nickname,
	)
}

// FindByCredentials はuser_idとパスワードダイジェストが一致するアカウントを返す。
func (r *PostgresAccountRepo) FindByCredentials(ctx context.Context, userID, passwordHash string) (*model.Account, error) {
	return r.findOne(ctx, "find account by credentials",
		`SELECT `+accountColumns+` FROM board_account WHERE user_id = $1 AND user_pw = $2`,
		userID, passwordHash,
	)
}

// Create はアカウントを作成する。
// 一意制約違反は違反した制約名から重複項目を判定して返す。
func (r *PostgresAccountRepo) Create(ctx context.Context, account *model.Account) error {
	found, err := r.gw.QueryOne(ctx,
		`INSERT INTO board_account (user_id, user_pw, email, nickname)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		[]any{account.UserID, account.PasswordHash, account.Email, account.Nickname},
		&account.ID,
	)
	if err != nil {
		if constraint, ok := database.UniqueViolation(err); ok {
			return model.NewDuplicateError(accountConstraintFields[constraint])
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}
	if !found {
		return fmt.Errorf("failed to insert account: %w", model.NewResultInvalidError())
	}
	return nil
}

func (r *PostgresAccountRepo) findOne(ctx context.Context, op, query string, args ...any) (*model.Account, error) {
	account := &model.Account{}
	found, err := r.gw.QueryOne(ctx, query, args,
		&account.ID, &account.UserID, &account.PasswordHash, &account.Email, &account.Nickname,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	if !found {
		return nil, nil
	}
	return account, nil
}

// compile-time interface check
var _ AccountRepository = (*PostgresAccountRepo)(nil)
