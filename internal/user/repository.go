package user

import "context"

// Repository はユーザーストアへの操作をまとめたインターフェースです。
type Repository interface {
	// Create は新しいユーザーを保存します。email重複時は ErrDuplicateEmail を返します。
	Create(ctx context.Context, u *User) (*User, error)
	// GetByEmail はemail完全一致でユーザーを検索します。不在時は ErrNotFound を返します。
	GetByEmail(ctx context.Context, email string) (*User, error)
	// List は全ユーザーを登録順に返します。
	List(ctx context.Context) ([]*User, error)
}
