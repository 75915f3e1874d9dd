// Package user はユーザーの永続化と一覧表示を提供します。
package user

import (
	"errors"
	"time"
)

var (
	// ErrNotFound は指定されたユーザーが存在しないことを示します。
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail は同じemailのユーザーが既に存在することを示します。
	ErrDuplicateEmail = errors.New("email already registered")
)

// User はusersテーブルの1レコードです。
// PasswordHash はストア層と検証処理の外に出してはいけません。
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// ListItem は一覧画面に公開するフィールドのみを持つビュー用の射影です。
// パスワードハッシュは型として存在しないため、テンプレートに漏れることはありません。
type ListItem struct {
	ID        string
	Username  string
	Email     string
	CreatedAt string
}

// listDateLayout は登録日の表示形式です（uk-UAのDD.MM.YYYY形式）。
const listDateLayout = "02.01.2006"

// NewListItem は User から一覧用の射影を作成します。
func NewListItem(u *User) ListItem {
	return ListItem{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.Format(listDateLayout),
	}
}
