package service

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/rhodes-guide-api/internal/domain/entity"
	apperrors "github.com/yourusername/rhodes-guide-api/internal/pkg/errors"
	"github.com/yourusername/rhodes-guide-api/internal/questionbank"
)

// newManagerForTest собирает менеджер с детерминированным банком
// и журналом поверх моков хранилища
func newManagerForTest(t *testing.T, bankSize int) (*SessionManager, *LedgerService) {
	t.Helper()

	questions := make([]entity.Question, 0, bankSize)
	for i := 0; i < bankSize; i++ {
		questions = append(questions, entity.Question{
			ID:            uint(i + 1),
			Text:          "Вопрос о Родосе",
			Options:       entity.StringArray{"A", "B", "C", "D"},
			CorrectOption: "A",
		})
	}
	bank := questionbank.NewWithSource(questions, rand.NewSource(1))

	store := new(MockStateStore)
	store.On("SetJSON", mock.Anything, mock.Anything).Return(nil)
	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything).Return()
	ledger := newLedgerForTest(store, notifier)

	cfg := SessionConfig{
		TimedDurationSec:         40,
		TimedQuestionCount:       2,
		SuddenDeathQuestionCount: 2,
		PoolExtensionCount:       2,
	}
	return NewSessionManager(bank, ledger, cfg), ledger
}

func TestSessionManager_Start_UnknownMode(t *testing.T) {
	m, _ := newManagerForTest(t, 4)

	_, err := m.Start("blitz")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestSessionManager_Start_SuddenDeathResetsLives(t *testing.T) {
	m, ledger := newManagerForTest(t, 4)
	ledger.UseLife(0)
	require.Equal(t, entity.DefaultLives-1, ledger.Lives())

	view, err := m.Start(entity.ModeSuddenDeath)

	require.NoError(t, err)
	assert.Equal(t, entity.DefaultLives, ledger.Lives(), "Новая игра начинается с полного запаса")
	assert.Equal(t, entity.DefaultLives, view.Session.LivesRemaining)
	assert.Equal(t, 2, view.TotalQuestions)
	require.NotNil(t, view.Question)
	assert.Empty(t, view.Session.Questions, "Снимок не раскрывает выборку целиком")
}

func TestSessionManager_SubmitAnswer_MirrorsLivesIntoLedger(t *testing.T) {
	m, ledger := newManagerForTest(t, 4)
	view, err := m.Start(entity.ModeSuddenDeath)
	require.NoError(t, err)
	id := view.Session.ID

	outcome, after, err := m.SubmitAnswer(id, "B")

	require.NoError(t, err)
	assert.True(t, outcome.LifeLost)
	assert.Equal(t, entity.DefaultLives-1, after.Session.LivesRemaining)
	assert.Equal(t, entity.DefaultLives-1, ledger.Lives(), "Списание зеркалируется в журнал")
}

func TestSessionManager_SubmitAnswer_EarnedLifeMirrored(t *testing.T) {
	m, ledger := newManagerForTest(t, 6)
	view, err := m.Start(entity.ModeSuddenDeath)
	require.NoError(t, err)
	id := view.Session.ID

	_, _, err = m.SubmitAnswer(id, "A")
	require.NoError(t, err)
	_, err = m.Advance(id)
	require.NoError(t, err)

	outcome, _, err := m.SubmitAnswer(id, "A")

	require.NoError(t, err)
	assert.True(t, outcome.LifeEarned)
	assert.Equal(t, entity.DefaultLives+1, ledger.Lives())
}

func TestSessionManager_SuddenDeath_GameOverRecordsRun(t *testing.T) {
	m, ledger := newManagerForTest(t, 6)
	view, err := m.Start(entity.ModeSuddenDeath)
	require.NoError(t, err)
	id := view.Session.ID

	// Одна правильная, затем три неправильных: жизни 3 -> 0
	_, _, err = m.SubmitAnswer(id, "A")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = m.Advance(id)
		require.NoError(t, err)
		var outcome entity.AnswerOutcome
		outcome, view, err = m.SubmitAnswer(id, "B")
		require.NoError(t, err)
		if i == 2 {
			assert.True(t, outcome.GameOver)
		}
	}

	assert.Equal(t, entity.SessionGameOver, view.Session.State)
	assert.Nil(t, view.Question, "После конца игры текущего вопроса нет")

	_, sudden := ledger.GameStatistics()
	assert.Equal(t, 1, sudden.GamesPlayed, "Терминальное списание выполнило учёт забега")
	assert.Equal(t, 1, sudden.BestStreak)
}

func TestSessionManager_Advance_ExtendsExhaustedSuddenDeathPool(t *testing.T) {
	m, _ := newManagerForTest(t, 2)
	view, err := m.Start(entity.ModeSuddenDeath)
	require.NoError(t, err)
	id := view.Session.ID
	require.Equal(t, 2, view.TotalQuestions)

	_, _, err = m.SubmitAnswer(id, "A")
	require.NoError(t, err)
	_, err = m.Advance(id)
	require.NoError(t, err)

	_, _, err = m.SubmitAnswer(id, "A")
	require.NoError(t, err)

	// Пул из двух вопросов исчерпан: переход дополняет его свежей выборкой
	view, err = m.Advance(id)
	require.NoError(t, err)
	assert.Equal(t, 4, view.TotalQuestions, "Банк меньше запроса - повторы допустимы")
	assert.Equal(t, 2, view.Session.CurrentIndex)
	require.NotNil(t, view.Question)
}

func TestSessionManager_Timed_WrongAnswerDoesNotEndGame(t *testing.T) {
	m, _ := newManagerForTest(t, 4)
	view, err := m.Start(entity.ModeTimed)
	require.NoError(t, err)
	id := view.Session.ID
	defer m.Teardown(id)

	outcome, after, err := m.SubmitAnswer(id, "B")

	require.NoError(t, err)
	assert.False(t, outcome.IsCorrect)
	assert.False(t, outcome.GameOver)
	assert.Equal(t, entity.SessionAwaitingNext, after.Session.State)
}

func TestSessionManager_Teardown_DiscardsUnfinishedRun(t *testing.T) {
	m, ledger := newManagerForTest(t, 4)
	view, err := m.Start(entity.ModeTimed)
	require.NoError(t, err)
	id := view.Session.ID

	_, _, err = m.SubmitAnswer(id, "A")
	require.NoError(t, err)

	m.Teardown(id)

	_, err = m.Get(id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	timed, _ := ledger.GameStatistics()
	assert.Zero(t, timed.GamesPlayed, "Снесённая сессия итога не оставляет")
}

func TestSessionManager_Get_UnknownSession(t *testing.T) {
	m, _ := newManagerForTest(t, 4)

	_, err := m.Get("4f5c1cb2-0000-0000-0000-000000000000")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
