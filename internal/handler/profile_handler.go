package handler

import (
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yourusername/rhodes-guide-api/internal/pkg/errors"
	"github.com/yourusername/rhodes-guide-api/internal/service"
)

// ProfileHandler обрабатывает запросы профиля пользователя
type ProfileHandler struct {
	app *service.App
}

// NewProfileHandler создает новый обработчик профиля
func NewProfileHandler(app *service.App) *ProfileHandler {
	return &ProfileHandler{app: app}
}

// GetProfile возвращает профиль пользователя
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, ok := h.app.Profile().Get()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile is not set up"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile обновляет имя и, опционально, фото профиля.
// Запрос multipart: поле name и необязательный файл image.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	name := c.PostForm("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Profile name is required"})
		return
	}

	var (
		image       io.Reader
		imageName   string
		contentType string
		size        int64
	)

	fileHeader, err := c.FormFile("image")
	switch {
	case err == nil:
		var file multipart.File
		file, err = fileHeader.Open()
		if err != nil {
			log.Printf("[ProfileHandler] Ошибка открытия фото профиля: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read profile image"})
			return
		}
		defer file.Close()
		image = file
		imageName = fileHeader.Filename
		contentType = fileHeader.Header.Get("Content-Type")
		size = fileHeader.Size
	case errors.Is(err, http.ErrMissingFile):
		// Фото необязательно - обновляем только имя
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile image"})
		return
	}

	profile, err := h.app.Profile().Update(c.Request.Context(), name, imageName, contentType, size, image)
	if err != nil {
		if errors.Is(err, apperrors.ErrImageStore) {
			log.Printf("[ProfileHandler] Сбой сохранения фото профиля: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to store profile image"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}
