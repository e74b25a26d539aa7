package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/rhodes-guide-api/internal/domain/entity"
	apperrors "github.com/yourusername/rhodes-guide-api/internal/pkg/errors"
	"github.com/yourusername/rhodes-guide-api/internal/service"
)

// PlaceHandler обрабатывает запросы каталога, избранного и пользовательских маркеров
type PlaceHandler struct {
	app *service.App
}

// NewPlaceHandler создает новый обработчик мест
func NewPlaceHandler(app *service.App) *PlaceHandler {
	return &PlaceHandler{app: app}
}

// GetAttractions возвращает каталог достопримечательностей Родоса
func (h *PlaceHandler) GetAttractions(c *gin.Context) {
	attractions, err := h.app.Attractions()
	if err != nil {
		log.Printf("[PlaceHandler] Ошибка чтения каталога: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load attractions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"attractions": attractions})
}

// GetFavorites возвращает текущее избранное пользователя
func (h *PlaceHandler) GetFavorites(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"favorites": h.app.Favorites()})
}

// ToggleFavoriteRequest представляет место, членство которого переключается
type ToggleFavoriteRequest struct {
	ID          string             `json:"id" binding:"required"`
	Location    string             `json:"location" binding:"required"`
	Description string             `json:"description"`
	Interest    string             `json:"interest"`
	Coordinates entity.Coordinates `json:"coordinates"`
	Image       string             `json:"image"`
}

// ToggleFavorite переключает членство места в избранном
func (h *PlaceHandler) ToggleFavorite(c *gin.Context) {
	var req ToggleFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	place := entity.Place{
		ID:          req.ID,
		Location:    req.Location,
		Description: req.Description,
		Interest:    req.Interest,
		Coordinates: req.Coordinates,
		Image:       req.Image,
	}

	added := h.app.ToggleFavorite(place)
	c.JSON(http.StatusOK, gin.H{
		"added":     added,
		"favorites": h.app.Favorites(),
	})
}

// GetUserMarkers возвращает пользовательские маркеры карты
func (h *PlaceHandler) GetUserMarkers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"markers": h.app.UserMarkers()})
}

// AddUserMarker добавляет пользовательский маркер.
// Запрос multipart: поля location, description, interest, latitude,
// longitude и файл image. Изображение копируется в долговременное
// хранилище до изменения реестра - при сбое копирования маркер не создается.
func (h *PlaceHandler) AddUserMarker(c *gin.Context) {
	marker := entity.Place{
		ID:          c.PostForm("id"),
		Location:    c.PostForm("location"),
		Description: c.PostForm("description"),
		Interest:    c.PostForm("interest"),
	}

	var err error
	marker.Coordinates.Latitude, err = strconv.ParseFloat(c.PostForm("latitude"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid latitude"})
		return
	}
	marker.Coordinates.Longitude, err = strconv.ParseFloat(c.PostForm("longitude"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid longitude"})
		return
	}

	if err := marker.ValidateMarker(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Marker image is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Printf("[PlaceHandler] Ошибка открытия изображения маркера: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read marker image"})
		return
	}
	defer file.Close()

	created, err := h.app.AddUserMarker(
		c.Request.Context(),
		marker,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		file,
	)
	if err != nil {
		if errors.Is(err, apperrors.ErrImageStore) {
			log.Printf("[PlaceHandler] Сбой сохранения изображения маркера: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to store marker image"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add marker"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"marker": created})
}
