package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/yourusername/rhodes-guide-api/internal/domain/entity"
	"github.com/yourusername/rhodes-guide-api/internal/domain/repository"
	apperrors "github.com/yourusername/rhodes-guide-api/internal/pkg/errors"
)

// ProfileService владеет профилем пользователя приложения: имя и фото.
// Новое фото профиля проходит через долговременное хранилище изображений
// до обновления профиля; неудачное копирование оставляет прежний профиль.
type ProfileService struct {
	mu         sync.Mutex
	store      repository.StateStore
	images     repository.ImageStore
	profile    entity.UserProfile
	hasProfile bool
}

// NewProfileService создает сервис профиля
func NewProfileService(store repository.StateStore, images repository.ImageStore) *ProfileService {
	return &ProfileService{store: store, images: images}
}

// Load восстанавливает профиль из хранилища
func (s *ProfileService) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var profile entity.UserProfile
	switch err := s.store.GetJSON(repository.KeyUserProfile, &profile); {
	case err == nil:
		s.profile = profile
		s.hasProfile = true
	case errors.Is(err, apperrors.ErrNotFound):
	default:
		log.Printf("[Profile] Failed to load profile, starting fresh: %v", err)
	}
}

// Get возвращает профиль и признак его существования
func (s *ProfileService) Get() (entity.UserProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile, s.hasProfile
}

// Update обновляет профиль. Если передано новое изображение (image != nil),
// оно сначала копируется в долговременное хранилище; ошибка копирования
// прерывает обновление целиком, профиль остаётся прежним.
func (s *ProfileService) Update(ctx context.Context, name string, imageName, contentType string, size int64, image io.Reader) (entity.UserProfile, error) {
	imagePath := ""
	if image != nil {
		durablePath, err := s.images.Save(ctx, imageName, contentType, size, image)
		if err != nil {
			return entity.UserProfile{}, fmt.Errorf("failed to store profile image: %w", err)
		}
		imagePath = durablePath
	}

	s.mu.Lock()
	if imagePath != "" {
		s.profile.Image = imagePath
	}
	s.profile.Name = name
	s.hasProfile = true
	snap := s.profile
	s.mu.Unlock()

	if err := s.store.SetJSON(repository.KeyUserProfile, snap); err != nil {
		log.Printf("[Profile] Failed to persist profile: %v", err)
	}
	return snap, nil
}
