package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hitoshi/commboard/internal/model"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockGateway(t *testing.T) (*Gateway, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewGateway(db, time.Second), mock
}

// 未接続のGatewayはクエリを発行せずにStoreUnavailableを返すことを検証する。
func TestGateway_NoConnection_FailsFast(t *testing.T) {
	ctx := context.Background()
	g := NewGateway(nil, time.Second)

	_, err := g.Exec(ctx, "INSERT INTO token (account_id, token) VALUES ($1, $2)", 1, "t")
	assert.ErrorIs(t, err, model.ErrStoreUnavailable)

	_, err = g.QueryOne(ctx, "SELECT id FROM board WHERE id = $1", []any{1}, new(int64))
	assert.ErrorIs(t, err, model.ErrStoreUnavailable)

	err = g.QueryEach(ctx, "SELECT id FROM board", nil, func(*sql.Rows) error { return nil })
	assert.ErrorIs(t, err, model.ErrStoreUnavailable)

	_, err = g.Count(ctx, "SELECT COUNT(*) FROM board")
	assert.ErrorIs(t, err, model.ErrStoreUnavailable)

	assert.ErrorIs(t, g.Ping(ctx), model.ErrStoreUnavailable)
}

func TestGateway_NilReceiver_FailsFast(t *testing.T) {
	var g *Gateway
	_, err := g.Exec(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, model.ErrStoreUnavailable)
}

// Close後の操作はStoreUnavailableになることを検証する。
func TestGateway_AfterClose_FailsFast(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	g := NewGateway(db, time.Second)
	require.NoError(t, g.Close())
	require.NoError(t, g.Close(), "second Close should be a no-op")

	_, err = g.Exec(context.Background(), "DELETE FROM token")
	assert.ErrorIs(t, err, model.ErrStoreUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_QueryOne_Found(t *testing.T) {
	g, mock := newMockGateway(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT nickname FROM board_account WHERE id = $1`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"nickname"}).AddRow("Bobby"))

	var nickname string
	found, err := g.QueryOne(context.Background(), `SELECT nickname FROM board_account WHERE id = $1`, []any{int64(7)}, &nickname)

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Bobby", nickname)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_QueryOne_NoRows(t *testing.T) {
	g, mock := newMockGateway(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT nickname FROM board_account WHERE id = $1`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"nickname"}))

	var nickname string
	found, err := g.QueryOne(context.Background(), `SELECT nickname FROM board_account WHERE id = $1`, []any{int64(7)}, &nickname)

	require.NoError(t, err)
	assert.False(t, found)
}

func TestGateway_QueryEach_VisitsAllRows(t *testing.T) {
	g, mock := newMockGateway(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM board WHERE category = $1`)).
		WithArgs("news").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2).AddRow(3))

	var ids []int64
	err := g.QueryEach(context.Background(), `SELECT id FROM board WHERE category = $1`, []any{"news"}, func(rows *sql.Rows) error {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		ids = append(ids, id)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestGateway_QueryEach_CallbackErrorStopsIteration(t *testing.T) {
	g, mock := newMockGateway(t)

	mock.ExpectQuery("SELECT id FROM board").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))

	stop := errors.New("stop")
	calls := 0
	err := g.QueryEach(context.Background(), "SELECT id FROM board", nil, func(*sql.Rows) error {
		calls++
		return stop
	})

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestGateway_Count(t *testing.T) {
	g, mock := newMockGateway(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM board WHERE category = $1`)).
		WithArgs("news").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	n, err := g.Count(context.Background(), `SELECT COUNT(*) FROM board WHERE category = $1`, "news")

	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
}

// ドライバエラーはStoreUnavailable種別に統一され、原因も保持されることを検証する。
func TestGateway_DriverError_BecomesStoreUnavailable(t *testing.T) {
	g, mock := newMockGateway(t)

	reset := errors.New("connection reset by peer")
	mock.ExpectExec("INSERT INTO board").WillReturnError(reset)

	_, err := g.Exec(context.Background(), "INSERT INTO board (title) VALUES ($1)", "t")

	assert.ErrorIs(t, err, model.ErrStoreUnavailable)
	assert.ErrorIs(t, err, reset)
}

// 一意制約違反は重複判定のため元のエラーのまま返ることを検証する。
func TestGateway_UniqueViolation_PassesThrough(t *testing.T) {
	g, mock := newMockGateway(t)

	mock.ExpectExec("INSERT INTO board_account").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "board_account_email_key"})

	_, err := g.Exec(context.Background(), "INSERT INTO board_account (email) VALUES ($1)", "a@x.com")

	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrStoreUnavailable)

	constraint, ok := UniqueViolation(err)
	assert.True(t, ok)
	assert.Equal(t, "board_account_email_key", constraint)
}

// 入力値起因のエラー（SQLSTATE 22xxx）がBadRequestになることを検証する。
func TestGateway_DataException_BecomesBadRequest(t *testing.T) {
	tests := []struct {
		name string
		code pq.ErrorCode
	}{
		{"value too long", "22001"},
		{"invalid byte sequence", "22021"},
		{"numeric out of range", "22003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, mock := newMockGateway(t)

			mock.ExpectExec("INSERT INTO board").
				WillReturnError(&pq.Error{Code: tt.code})

			_, err := g.Exec(context.Background(), "INSERT INTO board (title) VALUES ($1)", "x")

			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrBadRequest)
			assert.NotErrorIs(t, err, model.ErrStoreUnavailable)
		})
	}
}

func TestUniqueViolation_OtherErrors(t *testing.T) {
	_, ok := UniqueViolation(&pq.Error{Code: "23503"})
	assert.False(t, ok)

	_, ok = UniqueViolation(errors.New("plain"))
	assert.False(t, ok)
}

func TestIsConnectivityError(t *testing.T) {
	assert.True(t, isConnectivityError(driver.ErrBadConn))
	assert.True(t, isConnectivityError(sql.ErrConnDone))
	assert.True(t, isConnectivityError(&pq.Error{Code: "08006"}))
	assert.True(t, isConnectivityError(&pq.Error{Code: "57P01"}))
	assert.False(t, isConnectivityError(&pq.Error{Code: "23505"}))
	assert.False(t, isConnectivityError(errors.New("syntax")))
}

func TestGateway_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()
	g := NewGateway(db, time.Second)

	assert.NoError(t, g.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
