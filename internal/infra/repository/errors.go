package repository

import (
	"strings"

	repo "ecapi/internal/repository"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GORM/ドライバのエラーをrepositoryの語彙に変換する。
// FK違反の意味は操作ごとに違うので onForeignKey で渡す
// （削除なら ErrReferenced、作成なら ErrMissingReference）。
func translate(err error, op string, onForeignKey error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.Wrap(repo.ErrNotFound, op)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Wrap(repo.ErrConflict, op)
	case onForeignKey != nil && isForeignKeyViolation(err):
		return errors.Wrapf(onForeignKey, "%s: %v", op, err)
	}
	return errors.Wrap(err, op)
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	// TranslateError未対応のドライバ向け
	return strings.Contains(strings.ToLower(err.Error()), "foreign key")
}
