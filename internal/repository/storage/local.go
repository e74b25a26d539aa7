package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/yourusername/rhodes-guide-api/internal/pkg/errors"
)

// LocalImageStore реализует repository.ImageStore поверх локальной
// файловой системы. Имя файла строится из отметки времени и случайного
// суффикса, чтобы исключить коллизии при быстрых повторных загрузках.
type LocalImageStore struct {
	dir string
}

// NewLocalImageStore создает хранилище изображений в указанной директории
func NewLocalImageStore(dir string) (*LocalImageStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("image store directory is not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image store directory %s: %w", dir, err)
	}
	return &LocalImageStore{dir: dir}, nil
}

// Save копирует изображение в директорию хранилища и возвращает
// долговременный путь к копии
func (s *LocalImageStore) Save(ctx context.Context, originalName, contentType string, size int64, r io.Reader) (string, error) {
	name := durableName(originalName)
	dst := filepath.Join(s.dir, name)

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("%w: create %s: %v", apperrors.ErrImageStore, dst, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst) // не оставляем частично записанный файл
		return "", fmt.Errorf("%w: copy to %s: %v", apperrors.ErrImageStore, dst, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("%w: close %s: %v", apperrors.ErrImageStore, dst, err)
	}

	return dst, nil
}

// durableName генерирует устойчивое к коллизиям имя файла,
// сохраняя расширение оригинала
func durableName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("image_%d_%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)
}
