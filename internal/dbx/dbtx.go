// Package dbx はリポジトリ層で共有する小さなDB抽象を提供します。
package dbx

import (
	"context"
	"database/sql"
)

// DBTX はリポジトリが利用する database/sql のサブセットです。
// *sql.DB と *sql.Tx の両方がこのインターフェースを満たします。
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
