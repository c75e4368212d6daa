// Package cleanup は孤立したトークンの削除ジョブを提供する。
// tokenテーブルには外部キーが無いため、アカウントが削除されると
// そのアカウントを指すトークンが残り続ける。本ジョブはそれらを一括削除する。
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Executor は行を返さないクエリの実行を抽象化するインターフェース。
// *database.Gatewayを受け付ける。
type Executor interface {
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const sweepOrphanedTokensQuery = `DELETE FROM token t
WHERE NOT EXISTS (SELECT 1 FROM board_account a WHERE a.id = t.account_id)`

// TokenSweepJob は存在しないアカウントを指すトークンを削除するジョブ。
type TokenSweepJob struct {
	db     Executor
	logger *slog.Logger
}

// NewTokenSweepJob は新しいTokenSweepJobを生成する。
func NewTokenSweepJob(db Executor, logger *slog.Logger) *TokenSweepJob {
	return &TokenSweepJob{
		db:     db,
		logger: logger,
	}
}

// Run は孤立トークンを削除し、削除件数を返す。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *TokenSweepJob) Run(ctx context.Context) (int64, error) {
	start := time.Now()

	result, err := j.db.Exec(ctx, sweepOrphanedTokensQuery)
	if err != nil {
		j.logger.Error("token sweep failed",
			slog.String("error", err.Error()),
		)
		return 0, fmt.Errorf("failed to sweep orphaned tokens: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	j.logger.Info("token sweep completed",
		slog.Int64("deleted_count", deleted),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	return deleted, nil
}
