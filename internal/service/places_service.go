package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/rhodes-guide-api/internal/catalog"
	"github.com/yourusername/rhodes-guide-api/internal/domain/entity"
	"github.com/yourusername/rhodes-guide-api/internal/domain/repository"
	apperrors "github.com/yourusername/rhodes-guide-api/internal/pkg/errors"
)

// PlacesService владеет избранными местами и пользовательскими маркерами.
// Избранное - множество с ключом (id, location); маркеры - append-only
// список, изображение каждого маркера копируется в долговременное
// хранилище до того, как маркер попадёт в список.
type PlacesService struct {
	mu        sync.Mutex
	store     repository.StateStore
	images    repository.ImageStore
	notifier  Notifier
	favorites []entity.Place
	markers   []entity.Place
}

// NewPlacesService создает сервис мест с пустыми коллекциями
func NewPlacesService(store repository.StateStore, images repository.ImageStore, notifier Notifier) *PlacesService {
	return &PlacesService{
		store:     store,
		images:    images,
		notifier:  notifier,
		favorites: []entity.Place{},
		markers:   []entity.Place{},
	}
}

// Load восстанавливает коллекции из хранилища. Ошибка чтения трактуется
// как отсутствие предыдущего состояния.
func (s *PlacesService) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var favorites []entity.Place
	switch err := s.store.GetJSON(repository.KeyFavorites, &favorites); {
	case err == nil:
		s.favorites = favorites
	case errors.Is(err, apperrors.ErrNotFound):
	default:
		log.Printf("[Places] Failed to load favorites, starting fresh: %v", err)
	}

	var markers []entity.Place
	switch err := s.store.GetJSON(repository.KeyUserMarkers, &markers); {
	case err == nil:
		s.markers = markers
	case errors.Is(err, apperrors.ErrNotFound):
	default:
		log.Printf("[Places] Failed to load user markers, starting fresh: %v", err)
	}
}

// Attractions возвращает встроенный каталог достопримечательностей
func (s *PlacesService) Attractions() ([]entity.Place, error) {
	return catalog.Attractions()
}

// Favorites возвращает копию списка избранного
func (s *PlacesService) Favorites() []entity.Place {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Place, len(s.favorites))
	copy(out, s.favorites)
	return out
}

// UserMarkers возвращает копию списка пользовательских маркеров
func (s *PlacesService) UserMarkers() []entity.Place {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Place, len(s.markers))
	copy(out, s.markers)
	return out
}

// IsFavorite проверяет членство места в избранном по паре (id, location)
func (s *PlacesService) IsFavorite(place entity.Place) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOfFavoriteLocked(place) >= 0
}

// ToggleFavorite переключает членство места в избранном: существующая
// запись с той же парой (id, location) удаляется, отсутствующая -
// добавляется. Возвращает true, если место добавлено. Двойной вызов
// с тем же местом возвращает множество к исходному состоянию.
func (s *PlacesService) ToggleFavorite(place entity.Place) bool {
	s.mu.Lock()
	idx := s.indexOfFavoriteLocked(place)
	added := idx < 0
	if added {
		s.favorites = append(s.favorites, place)
	} else {
		s.favorites = append(s.favorites[:idx], s.favorites[idx+1:]...)
	}
	snap := make([]entity.Place, len(s.favorites))
	copy(snap, s.favorites)
	s.mu.Unlock()

	s.persist(repository.KeyFavorites, snap)

	if added {
		s.notifier.Notify(Notification{
			Kind:  NotifySuccess,
			Title: "Added to Favorites",
			Body:  place.Location,
		})
	} else {
		s.notifier.Notify(Notification{
			Kind:  NotifyInfo,
			Title: "Removed from Favorites",
			Body:  place.Location,
		})
	}
	return added
}

// AddUserMarker добавляет пользовательский маркер. Сначала изображение
// копируется в долговременное хранилище; неудачное копирование прерывает
// операцию целиком - список маркеров не изменяется и не персистится.
// Маркер сохраняет долговременный путь, а не исходную ссылку пикера.
// Полноту полей маркера гарантирует вызывающая сторона.
func (s *PlacesService) AddUserMarker(ctx context.Context, marker entity.Place, imageName, contentType string, size int64, image io.Reader) (entity.Place, error) {
	durablePath, err := s.images.Save(ctx, imageName, contentType, size, image)
	if err != nil {
		return entity.Place{}, fmt.Errorf("failed to store marker image: %w", err)
	}
	marker.Image = durablePath

	if marker.ID == "" {
		marker.ID = uuid.NewString()
	}
	marker.CreatedAt = time.Now().UnixMilli()

	s.mu.Lock()
	s.markers = append(s.markers, marker)
	snap := make([]entity.Place, len(s.markers))
	copy(snap, s.markers)
	s.mu.Unlock()

	s.persist(repository.KeyUserMarkers, snap)

	s.notifier.Notify(Notification{
		Kind:  NotifySuccess,
		Title: "Marker Added",
		Body:  marker.Location,
	})
	return marker, nil
}

// indexOfFavoriteLocked ищет место в избранном. Вызывается только под мьютексом.
func (s *PlacesService) indexOfFavoriteLocked(place entity.Place) int {
	for i := range s.favorites {
		if s.favorites[i].SamePlace(&place) {
			return i
		}
	}
	return -1
}

// persist записывает полный снимок коллекции; ошибка логируется и глотается
func (s *PlacesService) persist(key string, snapshot []entity.Place) {
	if err := s.store.SetJSON(key, snapshot); err != nil {
		log.Printf("[Places] Failed to persist %s: %v", key, err)
	}
}
