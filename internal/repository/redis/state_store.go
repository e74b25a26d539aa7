package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	apperrors "github.com/yourusername/rhodes-guide-api/internal/pkg/errors"
)

// StateStore реализует repository.StateStore поверх Redis.
// Состояние приложения хранится без срока жизни: это система записи,
// а не кеш. Каждая запись - полный снимок агрегата.
type StateStore struct {
	client redis.UniversalClient
	ctx    context.Context
}

// NewStateStore создает новое хранилище состояния и возвращает ошибку при проблемах
func NewStateStore(client redis.UniversalClient) (*StateStore, error) {
	if client == nil {
		return nil, fmt.Errorf("Redis client cannot be nil for StateStore")
	}
	return &StateStore{
		client: client,
		ctx:    context.Background(),
	}, nil
}

// Set сохраняет значение по ключу
func (r *StateStore) Set(key string, value interface{}) error {
	return r.client.Set(r.ctx, key, value, 0).Err()
}

// Get получает значение по ключу.
// Отсутствующий ключ возвращается как apperrors.ErrNotFound.
func (r *StateStore) Get(key string) (string, error) {
	val, err := r.client.Get(r.ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperrors.ErrNotFound
		}
		return "", err
	}
	return val, nil
}

// SetJSON сохраняет структуру в JSON по ключу
func (r *StateStore) SetJSON(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(r.ctx, key, data, 0).Err()
}

// GetJSON получает структуру JSON по ключу
func (r *StateStore) GetJSON(key string, dest interface{}) error {
	data, err := r.client.Get(r.ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return apperrors.ErrNotFound
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

// Delete удаляет значение по ключу
func (r *StateStore) Delete(key string) error {
	return r.client.Del(r.ctx, key).Err()
}

// Exists проверяет существование ключа
func (r *StateStore) Exists(key string) (bool, error) {
	result, err := r.client.Exists(r.ctx, key).Result()
	if err != nil {
		return false, err
	}
	return result > 0, nil
}
