package service

import (
	"testing"
	"time"

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

// MockNotifier реализует Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(note Notification) {
	m.Called(note)
}

// newLedgerForTest собирает сервис с замороженными часами
func newLedgerForTest(store repository.StateStore, notifier Notifier) *LedgerService {
	s := NewLedgerService(store, notifier)
	s.now = func() time.Time {
		return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	}
	return s
}

// ============================================================================
// Тесты
// ============================================================================

func TestLedgerService_Load_FreshStateOnMissingKeys(t *testing.T) {
	store := new(MockStateStore)
	notifier := new(MockNotifier)
	store.On("GetJSON", repository.KeyTimedState, mock.Anything).Return(apperrors.ErrNotFound)
	store.On("GetJSON", repository.KeySuddenDeathState, mock.Anything).Return(apperrors.ErrNotFound)

	s := newLedgerForTest(store, notifier)
	s.Load()

	timed, sudden := s.GameStatistics()
	assert.Zero(t, timed.GamesPlayed)
	assert.NotNil(t, timed.FinalScores)
	assert.Equal(t, entity.DefaultLives, sudden.Lives, "Первый запуск начинается с полного запаса жизней")
	assert.Equal(t, 1, sudden.ScoreMultiplier)
}

func TestLedgerService_Load_ReadErrorFallsBackToDefaults(t *testing.T) {
	store := new(MockStateStore)
	notifier := new(MockNotifier)
	store.On("GetJSON", repository.KeyTimedState, mock.Anything).Return(assert.AnError)
	store.On("GetJSON", repository.KeySuddenDeathState, mock.Anything).Return(assert.AnError)

	s := newLedgerForTest(store, notifier)
	s.Load()

	_, sudden := s.GameStatistics()
	assert.Equal(t, entity.DefaultLives, sudden.Lives, "Ошибка чтения трактуется как отсутствие состояния")
}

func TestLedgerService_RecordTimedResult_PersistsBothAggregates(t *testing.T) {
	store := new(MockStateStore)
	notifier := new(MockNotifier)
	store.On("SetJSON", repository.KeyTimedState, mock.Anything).Return(nil)
	store.On("SetJSON", repository.KeySuddenDeathState, mock.Anything).Return(nil)
	notifier.On("Notify", mock.Anything).Return()

	s := newLedgerForTest(store, notifier)
	s.RecordTimedResult(entity.TimedResult{CorrectAnswers: 8, TimePerQuestion: 2.1})

	timed, sudden := s.GameStatistics()
	assert.Equal(t, 8, timed.HighScore)
	assert.Equal(t, 8, sudden.TimedScoreBalance, "Результат Timed пополняет общий баланс")

	store.AssertCalled(t, "SetJSON", repository.KeyTimedState, mock.Anything)
	store.AssertCalled(t, "SetJSON", repository.KeySuddenDeathState, mock.Anything)
	notifier.AssertCalled(t, "Notify", mock.MatchedBy(func(n Notification) bool {
		return n.Title == "New High Score!"
	}))
}

func TestLedgerService_RecordTimedResult_NoNotificationWithoutRecord(t *testing.T) {
	store := new(MockStateStore)
	notifier := new(MockNotifier)
	store.On("SetJSON", mock.Anything, mock.Anything).Return(nil)
	notifier.On("Notify", mock.Anything).Return()

	s := newLedgerForTest(store, notifier)
	s.RecordTimedResult(entity.TimedResult{CorrectAnswers: 8, TimePerQuestion: 2})
	notifier.AssertNumberOfCalls(t, "Notify", 1)

	// Меньший результат уведомления не даёт
	s.RecordTimedResult(entity.TimedResult{CorrectAnswers: 3, TimePerQuestion: 2})
	notifier.AssertNumberOfCalls(t, "Notify", 1)
}

func TestLedgerService_RecordTimedResult_NegativeScoreIgnored(t *testing.T) {
	store := new(MockStateStore)
	notifier := new(MockNotifier)

	s := newLedgerForTest(store, notifier)
	s.RecordTimedResult(entity.TimedResult{CorrectAnswers: -1})

	timed, _ := s.GameStatistics()
	assert.Zero(t, timed.GamesPlayed)
	store.AssertNotCalled(t, "SetJSON", mock.Anything, mock.Anything)
}

func TestLedgerService_RecordTimedResult_PersistErrorSwallowed(t *testing.T) {
	store := new(MockStateStore)
	notifier := new(MockNotifier)
	store.On("SetJSON", mock.Anything, mock.Anything).Return(assert.AnError)
	notifier.On("Notify", mock.Anything).Return()

	s := newLedgerForTest(store, notifier)
	s.RecordTimedResult(entity.TimedResult{CorrectAnswers: 5, TimePerQuestion: 2})

	// In-memory состояние корректно несмотря на сбой записи
	timed, _ := s.GameStatistics()
	assert.Equal(t, 1, timed.GamesPlayed)
}

func TestLedgerService_UseLife_TerminalRun(t *testing.T) {
	store := new(MockStateStore)
	notifier := new(MockNotifier)
	store.On("SetJSON", repository.KeySuddenDeathState, mock.Anything).Return(nil)

	s := newLedgerForTest(store, notifier)

	assert.False(t, s.UseLife(4))
	assert.False(t, s.UseLife(4))
	assert.True(t, s.UseLife(4), "Третье списание терминально")
	assert.Zero(t, s.Lives())

	assert.False(t, s.UseLife(4), "Списание при нулевом запасе - no-op")

	_, sudden := s.GameStatistics()
	assert.Equal(t, 1, sudden.GamesPlayed)
}

func TestLedgerService_EarnLife_PersistsOnlyWhenEarned(t *testing.T) {
	store := new(MockStateStore)
	notifier := new(MockNotifier)
	store.On("SetJSON", repository.KeySuddenDeathState, mock.Anything).Return(nil)

	s := newLedgerForTest(store, notifier)

	assert.False(t, s.EarnLife(3))
	store.AssertNotCalled(t, "SetJSON", mock.Anything, mock.Anything)

	assert.True(t, s.EarnLife(entity.StreakPerLife))
	assert.Equal(t, entity.DefaultLives+1, s.Lives())
	store.AssertNumberOfCalls(t, "SetJSON", 1)
}

func TestLedgerService_ConvertScoreToLives(t *testing.T) {
	store := new(MockStateStore)
	notifier := new(MockNotifier)
	store.On("SetJSON", mock.Anything, mock.Anything).Return(nil)
	notifier.On("Notify", mock.Anything).Return()

	s := newLedgerForTest(store, notifier)
	s.RecordTimedResult(entity.TimedResult{CorrectAnswers: 5, TimePerQuestion: 2})
	require.Equal(t, 5, s.TimedScoreBalance())

	added := s.ConvertScoreToLives(s.TimedScoreBalance())

	assert.Equal(t, 2, added)
	assert.Equal(t, entity.DefaultLives+2, s.Lives())
	assert.Equal(t, 1, s.TimedScoreBalance(), "Остаток сохраняется в балансе")
	notifier.AssertCalled(t, "Notify", mock.MatchedBy(func(n Notification) bool {
		return n.Title == "Lives Added"
	}))
}

func TestLedgerService_ConvertScoreToLives_NoopWithoutBalance(t *testing.T) {
	store := new(MockStateStore)
	notifier := new(MockNotifier)

	s := newLedgerForTest(store, notifier)

	assert.Zero(t, s.ConvertScoreToLives(1))
	assert.Zero(t, s.ConvertScoreToLives(0))
	store.AssertNotCalled(t, "SetJSON", mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "Notify", mock.Anything)
}

func TestLedgerService_ResetLives(t *testing.T) {
	store := new(MockStateStore)
	notifier := new(MockNotifier)
	store.On("SetJSON", repository.KeySuddenDeathState, mock.Anything).Return(nil)

	s := newLedgerForTest(store, notifier)
	s.UseLife(2)
	require.Equal(t, entity.DefaultLives-1, s.Lives())

	s.ResetLives()

	assert.Equal(t, entity.DefaultLives, s.Lives())
}
