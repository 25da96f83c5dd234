package customvalidator

import (
	"fmt"
	"io"
	"net/http"
	"slices"

	apperrors "pedant-server/pkg/errors"
)

// UploadRules - ограничения для загружаемых файлов одного вида.
type UploadRules struct {
	AllowedMimeTypes []string
	MaxSizeMB        int64
	MaxFiles         int
	PathPrefix       string
}

// OrderPhotoRules - фото, прикладываемые к заказу.
var OrderPhotoRules = UploadRules{
	AllowedMimeTypes: []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
	MaxSizeMB:        10,
	MaxFiles:         10,
	PathPrefix:       "orders",
}

// ValidateFile проверяет размер и тип файла по первым 512 байтам.
// Возвращает определённый MIME-тип; курсор файла возвращается в начало.
func ValidateFile(size int64, file io.ReadSeeker, rules UploadRules) (string, error) {
	if rules.MaxSizeMB > 0 && size > rules.MaxSizeMB*1024*1024 {
		return "", apperrors.NewInvalidInputError("Размер файла (%.2f MB) превышает лимит в %d MB",
			float64(size)/1024/1024, rules.MaxSizeMB)
	}

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("ошибка чтения файла: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("ошибка обработки файла: %w", err)
	}

	mimeType := http.DetectContentType(buffer[:n])
	if !slices.Contains(rules.AllowedMimeTypes, mimeType) {
		return "", apperrors.NewInvalidInputError("Недопустимый формат файла: %s", mimeType)
	}
	return mimeType, nil
}
