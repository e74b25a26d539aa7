package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	// Чтение состояния из хранилища трактует её как "нет предыдущего состояния".
	ErrNotFound = errors.New("record not found")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния
	// (например, ответ в сессии, которая уже завершена).
	ErrConflict = errors.New("resource state conflict")

	// ErrImageStore используется, когда не удалось скопировать изображение
	// в долговременное хранилище. Операция, частью которой было копирование,
	// прерывается целиком — список маркеров и профиль остаются прежними.
	ErrImageStore = errors.New("image store failure")
)
