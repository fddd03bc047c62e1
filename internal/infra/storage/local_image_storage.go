package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"ecapi/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"webp": true,
}

// ローカルディスクに画像を保存する。
// dir に書き込み、publicPrefix（/storage/items）配下のURLを返す。
type LocalImageStorage struct {
	dir          string
	publicPrefix string
}

// DI
func NewLocalImageStorage(dir string, publicPrefix string) *LocalImageStorage {
	return &LocalImageStorage{
		dir:          dir,
		publicPrefix: strings.TrimRight(publicPrefix, "/"),
	}
}

// base64（data URLでも可）をデコードして保存する。
// ファイル名は "<key>-<uuid>.<ext>"
func (s *LocalImageStorage) SaveForItem(ctx context.Context, key int64, data string, extension string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(extension), "."))
	if !allowedExtensions[ext] {
		return "", errors.Wrapf(usecase.ErrInvalidImage, "extension %q", extension)
	}

	raw, err := decodeBase64(data)
	if err != nil || len(raw) == 0 {
		return "", errors.Wrap(usecase.ErrInvalidImage, "decode base64")
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create image dir")
	}

	name := fmt.Sprintf("%d-%s.%s", key, uuid.NewString(), ext)
	if err := os.WriteFile(filepath.Join(s.dir, name), raw, 0o644); err != nil {
		return "", errors.Wrap(err, "write image")
	}

	return s.publicPrefix + "/" + name, nil
}

// SaveForItemが返したURLのファイルを消す。無ければ何もしない。
func (s *LocalImageStorage) Remove(ctx context.Context, url string) error {
	if !strings.HasPrefix(url, s.publicPrefix+"/") {
		return nil
	}
	name := path.Base(url)
	if name == "." || name == "/" {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove image")
	}
	return nil
}

// "data:image/png;base64,xxxx" の前置きは外す
func decodeBase64(data string) ([]byte, error) {
	data = strings.TrimSpace(data)
	if i := strings.Index(data, ";base64,"); i >= 0 && strings.HasPrefix(data, "data:") {
		data = data[i+len(";base64,"):]
	}
	return base64.StdEncoding.DecodeString(data)
}
