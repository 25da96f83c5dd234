// pkg/filestorage/local_filestorage.go

package filestorage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileStorageInterface - хранилище загруженных файлов (фото заказов).
type FileStorageInterface interface {
	// Save возвращает путь относительно корня хранилища: prefix/ГГГГ/ММ/ДД/имя.
	Save(file io.Reader, originalFileName string, prefix string) (filePath string, err error)
	Delete(filePath string) error
	// PublicPath - путь, под которым файл отдаётся по HTTP.
	PublicPath(filePath string) string
}

type LocalFileStorage struct {
	basePath  string
	urlPrefix string
	now       func() time.Time
}

func NewLocalFileStorage(basePath string) (*LocalFileStorage, error) {
	if _, err := os.Stat(basePath); os.IsNotExist(err) {
		if err := os.MkdirAll(basePath, 0o755); err != nil {
			return nil, fmt.Errorf("не удалось создать директорию: %w", err)
		}
	}
	return &LocalFileStorage{basePath: basePath, urlPrefix: "/uploads/", now: time.Now}, nil
}

func (s *LocalFileStorage) Save(file io.Reader, originalFileName string, prefix string) (string, error) {
	now := s.now()
	ext := strings.ToLower(filepath.Ext(originalFileName))
	uniqueFileName := fmt.Sprintf("%s-%s%s", now.Format("2006-01-02"), uuid.New().String(), ext)

	datePath := now.Format("2006/01/02")
	fullDirPath := filepath.Join(s.basePath, prefix, datePath)

	if err := os.MkdirAll(fullDirPath, 0o755); err != nil {
		return "", err
	}

	dst, err := os.Create(filepath.Join(fullDirPath, uniqueFileName))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		return "", err
	}

	return filepath.ToSlash(filepath.Join(prefix, datePath, uniqueFileName)), nil
}

// Delete принимает как относительный путь, так и публичный "/uploads/...".
// Отсутствующий файл удалением не считается ошибкой.
func (s *LocalFileStorage) Delete(filePath string) error {
	relativePath := strings.TrimPrefix(filePath, s.urlPrefix)
	relativePath = filepath.Clean("/" + relativePath)
	fullPath := filepath.Join(s.basePath, relativePath)

	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(fullPath)
}

func (s *LocalFileStorage) PublicPath(filePath string) string {
	return s.urlPrefix + strings.TrimPrefix(filePath, "/")
}
