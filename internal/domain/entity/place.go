package entity

import (
	"fmt"

	apperrors "github.com/yourusername/rhodes-guide-api/internal/pkg/errors"
)

// Coordinates - географические координаты точки на карте
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Place представляет место на карте: достопримечательность из каталога,
// избранное место пользователя или созданный пользователем маркер.
// Image хранит либо идентификатор встроенного ресурса приложения,
// либо путь к изображению в долговременном хранилище.
type Place struct {
	ID          string      `json:"id"`
	Location    string      `json:"location"`
	Description string      `json:"description"`
	Interest    string      `json:"interest,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
	Image       string      `json:"image"`
	CreatedAt   int64       `json:"created_at,omitempty"` // Unix ms, только для пользовательских маркеров
}

// SamePlace сравнивает места по ключу избранного (id, location).
// Достопримечательности каталога и пользовательские маркеры
// различаются именно этой парой.
func (p *Place) SamePlace(other *Place) bool {
	return p.ID == other.ID && p.Location == other.Location
}

// ValidateMarker проверяет, что пользовательский маркер заполнен полностью.
// Изображение на этом этапе - ещё исходная ссылка (URI пикера), не долговременный путь.
func (p *Place) ValidateMarker() error {
	if p.Location == "" {
		return fmt.Errorf("%w: marker location is required", apperrors.ErrValidation)
	}
	if p.Description == "" {
		return fmt.Errorf("%w: marker description is required", apperrors.ErrValidation)
	}
	if p.Coordinates.Latitude == 0 && p.Coordinates.Longitude == 0 {
		return fmt.Errorf("%w: marker coordinates are required", apperrors.ErrValidation)
	}
	return nil
}

// UserProfile - профиль пользователя приложения: имя и путь к фото профиля
// в долговременном хранилище. Одна запись на установку.
type UserProfile struct {
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}
