package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/commboard/internal/model"
	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
)

// Gateway はaccounts、tokens、postsの3テーブルに対するパラメータ化クエリを実行する。
// プロセスのエントリーポイントが所有し、各リポジトリのコンストラクタに注入する。
//
// 公開メソッドはすべて、クエリを発行する前に接続の有無を確認する。
// 接続が無い場合はStoreUnavailableエラーを即座に返す。
// 値は常にプレースホルダで位置指定バインドし、文字列連結はしない。
type Gateway struct {
	mu           sync.RWMutex
	db           *sql.DB
	queryTimeout time.Duration
}

// NewGateway は既存の接続ハンドルからGatewayを生成する。
// queryTimeoutが0以下の場合はクエリ単位のタイムアウトを設定しない。
func NewGateway(db *sql.DB, queryTimeout time.Duration) *Gateway {
	return &Gateway{db: db, queryTimeout: queryTimeout}
}

// Connect はPostgreSQLに接続し、疎通確認済みのGatewayを返す。
func Connect(ctx context.Context, databaseURL string, queryTimeout time.Duration) (*Gateway, error) {
	db, err := Open(databaseURL)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return NewGateway(db, queryTimeout), nil
}

// Close は接続を閉じる。以降の操作はすべてStoreUnavailableになる。
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.db == nil {
		return nil
	}
	err := g.db.Close()
	g.db = nil
	return err
}

// Ping はデータストアへの疎通を確認する。ヘルスチェックで使用する。
func (g *Gateway) Ping(ctx context.Context) error {
	db, err := g.conn()
	if err != nil {
		return err
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return g.classify("ping", err)
	}
	return nil
}

// Exec は行を返さないクエリを実行する。
func (g *Gateway) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	db, err := g.conn()
	if err != nil {
		return nil, err
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, g.classify("exec", err)
	}
	return result, nil
}

// QueryOne は最初の1行をdestにスキャンする。行が無い場合はfalseを返す。
func (g *Gateway) QueryOne(ctx context.Context, query string, args []any, dest ...any) (bool, error) {
	db, err := g.conn()
	if err != nil {
		return false, err
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	err = db.QueryRowContext(ctx, query, args...).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, g.classify("query row", err)
	}
	return true, nil
}

// QueryEach はクエリ結果の各行に対してfnを呼び出す。
// fnがエラーを返した場合は走査を中断してそのエラーを返す。
func (g *Gateway) QueryEach(ctx context.Context, query string, args []any, fn func(*sql.Rows) error) error {
	db, err := g.conn()
	if err != nil {
		return err
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return g.classify("query", err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return g.classify("iterate rows", err)
	}
	return nil
}

// Count は単一の整数値を返す集計クエリを実行する。
func (g *Gateway) Count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	found, err := g.QueryOne(ctx, query, args, &n)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, model.NewResultInvalidError()
	}
	return n, nil
}

// conn は現在の接続ハンドルを返す。未接続の場合はStoreUnavailableを返す。
func (g *Gateway) conn() (*sql.DB, error) {
	if g == nil {
		return nil, model.NewStoreUnavailableError()
	}
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.db == nil {
		return nil, model.NewStoreUnavailableError()
	}
	return g.db, nil
}

func (g *Gateway) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.queryTimeout)
}

// classify はドライバのエラーを呼び出し元向けに分類する。
// 一意制約違反は重複判定に使うため元のエラーのまま返す。
// 桁あふれや不正なエンコーディングなど入力値起因のエラー（SQLSTATE 22xxx）はBadRequestにする。
// それ以外はStoreUnavailable種別に統一し、原因をラップして保持する。
func (g *Gateway) classify(op string, err error) error {
	if _, ok := UniqueViolation(err); ok {
		return fmt.Errorf("%s: %w", op, err)
	}

	if isDataException(err) {
		return fmt.Errorf("%s: %w", op, errors.Join(model.NewBadRequestError(), err))
	}

	if isConnectivityError(err) {
		slog.Error("store connection error",
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
	}

	return fmt.Errorf("%s: %w", op, errors.Join(model.NewStoreUnavailableError(), err))
}

// UniqueViolation はerrが一意制約違反の場合に違反した制約名を返す。
func UniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgerrcode.UniqueViolation {
		return pqErr.Constraint, true
	}
	return "", false
}

// isDataException は入力値がカラムの型や長さに合わないエラーかどうかを判定する。
func isDataException(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pgerrcode.IsDataException(string(pqErr.Code))
}

// isConnectivityError は接続断に起因するエラーかどうかを判定する。
func isConnectivityError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		code := string(pqErr.Code)
		return pgerrcode.IsConnectionException(code) || pgerrcode.IsOperatorIntervention(code)
	}
	return false
}
