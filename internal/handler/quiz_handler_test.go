package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/rhodes-guide-api/internal/domain/entity"
	"github.com/yourusername/rhodes-guide-api/internal/middleware"
	"github.com/yourusername/rhodes-guide-api/internal/questionbank"
	"github.com/yourusername/rhodes-guide-api/internal/service"
)

// ============================================================================
// Моки
// ============================================================================

// MockStateStore реализует repository.StateStore
type MockStateStore struct {
	mock.Mock
}

func (m *MockStateStore) Set(key string, value interface{}) error {
	args := m.Called(key, value)
	return args.Error(0)
}

func (m *MockStateStore) Get(key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockStateStore) SetJSON(key string, value interface{}) error {
	args := m.Called(key, value)
	return args.Error(0)
}

func (m *MockStateStore) GetJSON(key string, dest interface{}) error {
	args := m.Called(key, dest)
	return args.Error(0)
}

func (m *MockStateStore) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockStateStore) Exists(key string) (bool, error) {
	args := m.Called(key)
	return args.Bool(0), args.Error(1)
}

// MockImageStore реализует repository.ImageStore
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Save(ctx context.Context, originalName, contentType string, size int64, r io.Reader) (string, error) {
	args := m.Called(ctx, originalName, contentType, size, r)
	return args.String(0), args.Error(1)
}

// newRouterForTest поднимает роутер с игровыми маршрутами поверх
// детерминированного банка и мокнутого хранилища
func newRouterForTest(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	questions := make([]entity.Question, 0, 8)
	for i := 0; i < 8; i++ {
		questions = append(questions, entity.Question{
			ID:            uint(i + 1),
			Text:          "Вопрос о Родосе",
			Options:       entity.StringArray{"A", "B", "C", "D"},
			CorrectOption: "A",
		})
	}
	bank := questionbank.NewWithSource(questions, rand.NewSource(7))

	store := new(MockStateStore)
	store.On("SetJSON", mock.Anything, mock.Anything).Return(nil)

	cfg := service.SessionConfig{
		TimedDurationSec:         40,
		TimedQuestionCount:       3,
		SuddenDeathQuestionCount: 3,
		PoolExtensionCount:       2,
	}
	app := service.NewApp(bank, store, new(MockImageStore), service.LogNotifier{}, cfg)

	quizHandler := NewQuizHandler(app)

	router := gin.New()
	api := router.Group("/api")
	api.GET("/questions/random", quizHandler.GetRandomQuestions)
	api.POST("/quiz/sessions", quizHandler.StartSession)
	sessions := api.Group("/quiz/sessions/:id")
	sessions.Use(middleware.ExtractUUIDParam("id", "sessionID"))
	sessions.GET("", quizHandler.GetSession)
	sessions.POST("/answers", quizHandler.SubmitAnswer)
	sessions.POST("/next", quizHandler.NextQuestion)
	sessions.DELETE("", quizHandler.TeardownSession)
	api.GET("/stats", quizHandler.GetStatistics)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ============================================================================
// Тесты
// ============================================================================

func TestQuizHandler_GetRandomQuestions_HidesCorrectOption(t *testing.T) {
	router := newRouterForTest(t)

	w := doJSON(t, router, http.MethodGet, "/api/questions/random?count=3", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "correct", "Правильный ответ наружу не отдается")

	var resp struct {
		Questions []json.RawMessage `json:"questions"`
		BankSize  int               `json:"bank_size"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Questions, 3)
	assert.Equal(t, 8, resp.BankSize)
}

func TestQuizHandler_GetRandomQuestions_InvalidCount(t *testing.T) {
	router := newRouterForTest(t)

	w := doJSON(t, router, http.MethodGet, "/api/questions/random?count=zero", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuizHandler_SessionLifecycle(t *testing.T) {
	router := newRouterForTest(t)

	// Запуск сессии
	w := doJSON(t, router, http.MethodPost, "/api/quiz/sessions", gin.H{"mode": "sudden-death"})
	require.Equal(t, http.StatusCreated, w.Code)

	var session struct {
		ID             string `json:"id"`
		LivesRemaining int    `json:"lives_remaining"`
		Question       *struct {
			Text string `json:"text"`
		} `json:"question"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	require.NotEmpty(t, session.ID)
	assert.Equal(t, entity.DefaultLives, session.LivesRemaining)
	require.NotNil(t, session.Question)

	// Правильный ответ
	w = doJSON(t, router, http.MethodPost, "/api/quiz/sessions/"+session.ID+"/answers", gin.H{"option": "A"})
	require.Equal(t, http.StatusOK, w.Code)

	var answer struct {
		IsCorrect bool `json:"is_correct"`
		Session   struct {
			Score int    `json:"score"`
			State string `json:"state"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &answer))
	assert.True(t, answer.IsCorrect)
	assert.Equal(t, 1, answer.Session.Score)
	assert.Equal(t, "awaiting_next", answer.Session.State)

	// Повторный ответ до перехода отклоняется
	w = doJSON(t, router, http.MethodPost, "/api/quiz/sessions/"+session.ID+"/answers", gin.H{"option": "A"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Переход к следующему вопросу
	w = doJSON(t, router, http.MethodPost, "/api/quiz/sessions/"+session.ID+"/next", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Снос сессии
	w = doJSON(t, router, http.MethodDelete, "/api/quiz/sessions/"+session.ID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/quiz/sessions/"+session.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuizHandler_StartSession_UnknownMode(t *testing.T) {
	router := newRouterForTest(t)

	w := doJSON(t, router, http.MethodPost, "/api/quiz/sessions", gin.H{"mode": "blitz"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuizHandler_GetSession_InvalidID(t *testing.T) {
	router := newRouterForTest(t)

	w := doJSON(t, router, http.MethodGet, "/api/quiz/sessions/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code, "Невалидный UUID отклоняется middleware")
}

func TestQuizHandler_GetStatistics(t *testing.T) {
	router := newRouterForTest(t)

	w := doJSON(t, router, http.MethodGet, "/api/stats", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var stats struct {
		Timed struct {
			FinalScores []json.RawMessage `json:"finalScores"`
		} `json:"timed"`
		SuddenDeath struct {
			Lives int `json:"lives"`
		} `json:"sudden_death"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.NotNil(t, stats.Timed.FinalScores)
	assert.Equal(t, entity.DefaultLives, stats.SuddenDeath.Lives)
}
