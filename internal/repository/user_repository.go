package repository

import (
	"context"

	"ecapi/internal/domain/model"
)

// ユーザーは基本的に認証サービス側で作られる。
// ここではtoken_versionの照合と、起動時の初期ユーザー投入だけ。
type UserRepository interface {
	// 見つからなければ (nil, nil)
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	// emailのユーザーが無ければroleで作る。既存ユーザーは変更しない
	EnsureByEmail(ctx context.Context, email string, role model.Role) (*model.User, error)
}
