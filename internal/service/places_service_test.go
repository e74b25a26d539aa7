package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/rhodes-guide-api/internal/domain/entity"
	"github.com/yourusername/rhodes-guide-api/internal/domain/repository"
	apperrors "github.com/yourusername/rhodes-guide-api/internal/pkg/errors"
)

// ============================================================================
// Моки
// ============================================================================

// MockImageStore реализует repository.ImageStore
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Save(ctx context.Context, originalName, contentType string, size int64, r io.Reader) (string, error) {
	args := m.Called(ctx, originalName, contentType, size, r)
	return args.String(0), args.Error(1)
}

func lindosPlace() entity.Place {
	return entity.Place{
		ID:          "attraction-3",
		Location:    "Lindos Acropolis",
		Description: "Древний акрополь над деревней Линдос",
		Coordinates: entity.Coordinates{Latitude: 36.0917, Longitude: 28.0883},
	}
}

// ============================================================================
// Тесты
// ============================================================================

func TestPlacesService_ToggleFavorite_RoundTrip(t *testing.T) {
	store := new(MockStateStore)
	notifier := new(MockNotifier)
	store.On("SetJSON", repository.KeyFavorites, mock.Anything).Return(nil)
	notifier.On("Notify", mock.Anything).Return()

	s := NewPlacesService(store, new(MockImageStore), notifier)
	place := lindosPlace()

	assert.True(t, s.ToggleFavorite(place), "Первый вызов добавляет")
	assert.True(t, s.IsFavorite(place))
	require.Len(t, s.Favorites(), 1)

	assert.False(t, s.ToggleFavorite(place), "Второй вызов удаляет")
	assert.False(t, s.IsFavorite(place))
	assert.Empty(t, s.Favorites(), "Двойной вызов возвращает множество к исходному состоянию")
}

func TestPlacesService_ToggleFavorite_KeyedByIDAndLocation(t *testing.T) {
	store := new(MockStateStore)
	notifier := new(MockNotifier)
	store.On("SetJSON", repository.KeyFavorites, mock.Anything).Return(nil)
	notifier.On("Notify", mock.Anything).Return()

	s := NewPlacesService(store, new(MockImageStore), notifier)
	s.ToggleFavorite(lindosPlace())

	other := lindosPlace()
	other.Location = "Lindos Beach" // тот же id, другая локация

	assert.True(t, s.ToggleFavorite(other), "Другая пара (id, location) - отдельная запись")
	assert.Len(t, s.Favorites(), 2)
}

func TestPlacesService_AddUserMarker_StoresDurablePath(t *testing.T) {
	store := new(MockStateStore)
	notifier := new(MockNotifier)
	images := new(MockImageStore)
	store.On("SetJSON", repository.KeyUserMarkers, mock.Anything).Return(nil)
	notifier.On("Notify", mock.Anything).Return()
	images.On("Save", mock.Anything, "photo.png", "image/png", int64(4), mock.Anything).
		Return("image_1756_ab12cd34.png", nil)

	s := NewPlacesService(store, images, notifier)
	marker := entity.Place{
		Location:    "Secret Beach",
		Description: "Тихий пляж к югу от Линдоса",
		Coordinates: entity.Coordinates{Latitude: 36.05, Longitude: 28.08},
		Image:       "file:///tmp/picker/photo.png", // исходная ссылка пикера
	}

	created, err := s.AddUserMarker(context.Background(), marker, "photo.png", "image/png", 4, strings.NewReader("data"))

	require.NoError(t, err)
	assert.Equal(t, "image_1756_ab12cd34.png", created.Image, "Маркер хранит долговременный путь, не ссылку пикера")
	assert.NotEmpty(t, created.ID)
	assert.NotZero(t, created.CreatedAt)
	require.Len(t, s.UserMarkers(), 1)
	store.AssertCalled(t, "SetJSON", repository.KeyUserMarkers, mock.Anything)
}

func TestPlacesService_AddUserMarker_ImageFailureAbortsWholeOperation(t *testing.T) {
	store := new(MockStateStore)
	notifier := new(MockNotifier)
	images := new(MockImageStore)
	images.On("Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", apperrors.ErrImageStore)

	s := NewPlacesService(store, images, notifier)

	_, err := s.AddUserMarker(context.Background(), lindosPlace(), "photo.png", "image/png", 4, strings.NewReader("data"))

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrImageStore)
	assert.Empty(t, s.UserMarkers(), "Сбой копирования не оставляет маркера")
	store.AssertNotCalled(t, "SetJSON", mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "Notify", mock.Anything)
}

func TestPlacesService_Load_RestoresCollections(t *testing.T) {
	store := new(MockStateStore)
	notifier := new(MockNotifier)
	saved := []entity.Place{lindosPlace()}
	store.On("GetJSON", repository.KeyFavorites, mock.Anything).Run(func(args mock.Arguments) {
		dest := args.Get(1).(*[]entity.Place)
		*dest = saved
	}).Return(nil)
	store.On("GetJSON", repository.KeyUserMarkers, mock.Anything).Return(apperrors.ErrNotFound)

	s := NewPlacesService(store, new(MockImageStore), notifier)
	s.Load()

	require.Len(t, s.Favorites(), 1)
	assert.True(t, s.IsFavorite(lindosPlace()))
	assert.Empty(t, s.UserMarkers(), "Отсутствие ключа - пустая коллекция")
}

func TestPlacesService_Attractions_CatalogIsPopulated(t *testing.T) {
	s := NewPlacesService(new(MockStateStore), new(MockImageStore), new(MockNotifier))

	attractions, err := s.Attractions()

	require.NoError(t, err)
	assert.NotEmpty(t, attractions)
	for _, a := range attractions {
		assert.NotEmpty(t, a.ID)
		assert.NotEmpty(t, a.Location)
		assert.NotZero(t, a.Coordinates.Latitude)
	}
}
