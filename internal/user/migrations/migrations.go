// Package migrations はusersスキーマのgoose用マイグレーションを埋め込みます。
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
