package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Open は掲示板データベース（board_account、token、boardの3テーブル）への接続ハンドルを開く。
// databaseURLはDATABASE_URLの値（例: "postgres://commboard:commboard@db:5432/commboard?sslmode=disable"）。
// sql.Openは接続を試行しないため、疎通確認はConnectまたはGateway.Pingで行う。
// 返したハンドルはGatewayに渡し、以降はGateway経由でのみ使う。
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open board database: %w", err)
	}

	return db, nil
}
