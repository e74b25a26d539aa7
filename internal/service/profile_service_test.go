package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/rhodes-guide-api/internal/domain/entity"
	"github.com/yourusername/rhodes-guide-api/internal/domain/repository"
	apperrors "github.com/yourusername/rhodes-guide-api/internal/pkg/errors"
)

func TestProfileService_Get_EmptyBeforeSetup(t *testing.T) {
	s := NewProfileService(new(MockStateStore), new(MockImageStore))

	_, ok := s.Get()

	assert.False(t, ok, "До настройки профиля нет")
}

func TestProfileService_Update_NameOnly(t *testing.T) {
	store := new(MockStateStore)
	store.On("SetJSON", repository.KeyUserProfile, mock.Anything).Return(nil)

	s := NewProfileService(store, new(MockImageStore))

	profile, err := s.Update(context.Background(), "Eleni", "", "", 0, nil)

	require.NoError(t, err)
	assert.Equal(t, "Eleni", profile.Name)
	assert.Empty(t, profile.Image)

	got, ok := s.Get()
	assert.True(t, ok)
	assert.Equal(t, profile, got)
}

func TestProfileService_Update_WithImage(t *testing.T) {
	store := new(MockStateStore)
	images := new(MockImageStore)
	store.On("SetJSON", repository.KeyUserProfile, mock.Anything).Return(nil)
	images.On("Save", mock.Anything, "me.png", "image/png", int64(4), mock.Anything).
		Return("image_1756_ab12cd34.png", nil)

	s := NewProfileService(store, images)

	profile, err := s.Update(context.Background(), "Eleni", "me.png", "image/png", 4, strings.NewReader("data"))

	require.NoError(t, err)
	assert.Equal(t, "image_1756_ab12cd34.png", profile.Image)
}

func TestProfileService_Update_ImageFailureKeepsOldProfile(t *testing.T) {
	store := new(MockStateStore)
	images := new(MockImageStore)
	store.On("SetJSON", repository.KeyUserProfile, mock.Anything).Return(nil)
	images.On("Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", apperrors.ErrImageStore).Once()

	s := NewProfileService(store, images)
	_, err := s.Update(context.Background(), "Eleni", "", "", 0, nil)
	require.NoError(t, err)

	_, err = s.Update(context.Background(), "Maria", "me.png", "image/png", 4, strings.NewReader("data"))

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrImageStore)

	got, ok := s.Get()
	assert.True(t, ok)
	assert.Equal(t, "Eleni", got.Name, "Неудачное копирование оставляет прежний профиль")
}

func TestProfileService_Load_RestoresProfile(t *testing.T) {
	store := new(MockStateStore)
	store.On("GetJSON", repository.KeyUserProfile, mock.Anything).Run(func(args mock.Arguments) {
		dest := args.Get(1).(*entity.UserProfile)
		*dest = entity.UserProfile{Name: "Eleni", Image: "image_1756_ab12cd34.png"}
	}).Return(nil)

	s := NewProfileService(store, new(MockImageStore))
	s.Load()

	profile, ok := s.Get()
	require.True(t, ok)
	assert.Equal(t, "Eleni", profile.Name)
}
