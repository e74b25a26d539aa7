package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/rhodes-guide-api/internal/domain/entity"
	"github.com/yourusername/rhodes-guide-api/internal/handler/dto"
	apperrors "github.com/yourusername/rhodes-guide-api/internal/pkg/errors"
	"github.com/yourusername/rhodes-guide-api/internal/service"
)

// QuizHandler обрабатывает запросы игровых режимов: выборку вопросов,
// жизненный цикл сессий, статистику и экономику жизней
type QuizHandler struct {
	app *service.App
}

// NewQuizHandler создает новый обработчик викторин
func NewQuizHandler(app *service.App) *QuizHandler {
	return &QuizHandler{app: app}
}

// GetRandomQuestions возвращает случайную выборку вопросов без повторов
func (h *QuizHandler) GetRandomQuestions(c *gin.Context) {
	count := 10
	if raw := c.Query("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid count"})
			return
		}
		count = parsed
	}

	questions := h.app.GetRandomQuestions(count)
	c.JSON(http.StatusOK, gin.H{
		"questions": dto.NewQuestionListResponse(questions),
		"bank_size": h.app.BankSize(),
	})
}

// StartSessionRequest представляет запрос на запуск игровой сессии
type StartSessionRequest struct {
	Mode entity.QuizMode `json:"mode" binding:"required"`
}

// StartSession запускает новую игровую сессию в выбранном режиме
func (h *QuizHandler) StartSession(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.app.Sessions().Start(req.Mode)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSessionResponse(view))
}

// GetSession возвращает текущий снимок сессии
func (h *QuizHandler) GetSession(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(string) // Получаем из контекста

	view, err := h.app.Sessions().Get(sessionID)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(view))
}

// SubmitAnswerRequest представляет ответ игрока на текущий вопрос
type SubmitAnswerRequest struct {
	Option string `json:"option" binding:"required"`
}

// SubmitAnswer применяет ответ игрока к сессии
func (h *QuizHandler) SubmitAnswer(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(string)

	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, view, err := h.app.Sessions().SubmitAnswer(sessionID, req.Option)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAnswerResponse(outcome, view))
}

// NextQuestion переводит сессию к следующему вопросу
func (h *QuizHandler) NextQuestion(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(string)

	view, err := h.app.Sessions().Advance(sessionID)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(view))
}

// TeardownSession сносит сессию без записи результата
func (h *QuizHandler) TeardownSession(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(string)

	h.app.Sessions().Teardown(sessionID)
	c.Status(http.StatusNoContent)
}

// GetStatistics возвращает агрегаты статистики обоих режимов
func (h *QuizHandler) GetStatistics(c *gin.Context) {
	timed, sudden := h.app.GetGameStatistics()
	c.JSON(http.StatusOK, dto.GameStatisticsResponse{
		Timed:       timed,
		SuddenDeath: sudden,
	})
}

// UpdateLivesRequest представляет событие экономики жизней Sudden Death
type UpdateLivesRequest struct {
	Action string `json:"action" binding:"required,oneof=use earn"`
	Value  int    `json:"value"`
}

// UpdateLives применяет событие экономики жизней (use/earn)
func (h *QuizHandler) UpdateLives(c *gin.Context) {
	var req UpdateLivesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	applied, err := h.app.UpdateSuddenDeathLives(req.Action, req.Value)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applied": applied,
		"lives":   h.app.Ledger().Lives(),
	})
}

// ConvertLivesRequest представляет запрос на обмен баланса очков на жизни
type ConvertLivesRequest struct {
	// Balance - обмениваемый баланс; 0 означает "весь накопленный"
	Balance int `json:"balance"`
}

// ConvertLives обменивает баланс очков Timed режима на жизни Sudden Death
func (h *QuizHandler) ConvertLives(c *gin.Context) {
	// Пустое тело допустимо - обмениваем весь накопленный баланс
	var req ConvertLivesRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Balance < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Balance must be non-negative"})
		return
	}
	if req.Balance == 0 {
		req.Balance = h.app.Ledger().TimedScoreBalance()
	}

	livesAdded := h.app.ConvertScoreToLives(req.Balance)
	c.JSON(http.StatusOK, gin.H{
		"lives_added": livesAdded,
		"lives":       h.app.Ledger().Lives(),
		"balance":     h.app.Ledger().TimedScoreBalance(),
	})
}

// ResetLives восстанавливает стартовый запас жизней
func (h *QuizHandler) ResetLives(c *gin.Context) {
	h.app.ResetSuddenDeathLives()
	c.JSON(http.StatusOK, gin.H{"lives": h.app.Ledger().Lives()})
}

// handleQuizError обрабатывает ошибки игровых операций
func (h *QuizHandler) handleQuizError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("[QuizHandler] Внутренняя ошибка: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
