package repository

import (
	"context"
	"io"
)

// ImageStore определяет копирование изображения из временного источника
// (загрузка из пикера приложения) в долговременное хранилище.
// Save возвращает долговременный путь, который и сохраняется в маркере
// или профиле вместо исходной ссылки. Ошибка копирования прерывает
// операцию, которой принадлежало изображение.
type ImageStore interface {
	Save(ctx context.Context, originalName, contentType string, size int64, r io.Reader) (string, error)
}
