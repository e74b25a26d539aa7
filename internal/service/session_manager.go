package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/rhodes-guide-api/internal/domain/entity"
	apperrors "github.com/yourusername/rhodes-guide-api/internal/pkg/errors"
	"github.com/yourusername/rhodes-guide-api/internal/questionbank"
)

// SessionConfig - параметры игровых сессий
type SessionConfig struct {
	// TimedDurationSec - продолжительность Timed Challenge в секундах
	TimedDurationSec int `mapstructure:"timed_duration_sec"`
	// TimedQuestionCount - размер выборки вопросов для Timed режима
	TimedQuestionCount int `mapstructure:"timed_question_count"`
	// SuddenDeathQuestionCount - размер стартовой выборки Sudden Death
	SuddenDeathQuestionCount int `mapstructure:"sudden_death_question_count"`
	// PoolExtensionCount - на сколько вопросов дополняется исчерпанный пул
	PoolExtensionCount int `mapstructure:"pool_extension_count"`
}

// DefaultSessionConfig возвращает параметры сессий по умолчанию
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		TimedDurationSec:         40,
		TimedQuestionCount:       20,
		SuddenDeathQuestionCount: 50,
		PoolExtensionCount:       10,
	}
}

// SessionView - снимок сессии для внешнего слоя: копия счётчиков,
// текущий вопрос без правильного ответа и размер пула.
type SessionView struct {
	Session        entity.QuizSession
	Question       *entity.Question
	TotalQuestions int
}

// activeSession связывает сессию с отменой её таймера
type activeSession struct {
	session *entity.QuizSession
	cancel  context.CancelFunc
}

// SessionManager владеет запущенными игровыми сессиями. Мутации сессий
// кооперативны: каждая выполняется до конца под общим мьютексом, затем
// обрабатывается следующее событие. Секундный таймер Timed режима живёт
// в отдельной горутине и отменяется при сносе сессии, чтобы протухший
// тик не ударил по уже снесённой сессии.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*activeSession
	bank     *questionbank.Bank
	ledger   *LedgerService
	cfg      SessionConfig
	now      func() time.Time
}

// NewSessionManager создает менеджер сессий
func NewSessionManager(bank *questionbank.Bank, ledger *LedgerService, cfg SessionConfig) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*activeSession),
		bank:     bank,
		ledger:   ledger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Start запускает новую игровую сессию указанного режима.
// Sudden Death начинается со свежим запасом жизней в журнале статистики.
func (m *SessionManager) Start(mode entity.QuizMode) (SessionView, error) {
	if !mode.Valid() {
		return SessionView{}, fmt.Errorf("%w: unknown quiz mode %q", apperrors.ErrValidation, mode)
	}

	id := uuid.NewString()
	now := m.now()

	var session *entity.QuizSession
	var cancel context.CancelFunc

	switch mode {
	case entity.ModeTimed:
		questions := m.bank.Sample(m.cfg.TimedQuestionCount)
		session = entity.NewTimedSession(id, questions, m.cfg.TimedDurationSec, now)

		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		go m.runCountdown(ctx, id)

	case entity.ModeSuddenDeath:
		m.ledger.ResetLives()
		questions := m.bank.Sample(m.cfg.SuddenDeathQuestionCount)
		session = entity.NewSuddenDeathSession(id, questions, entity.DefaultLives, now)
	}

	m.mu.Lock()
	m.sessions[id] = &activeSession{session: session, cancel: cancel}
	view := viewLocked(session)
	m.mu.Unlock()

	log.Printf("[Sessions] Started %s session %s with %d questions", mode, id, view.TotalQuestions)
	return view, nil
}

// Get возвращает снимок сессии
func (m *SessionManager) Get(id string) (SessionView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	as, ok := m.sessions[id]
	if !ok {
		return SessionView{}, fmt.Errorf("%w: session %s", apperrors.ErrNotFound, id)
	}
	return viewLocked(as.session), nil
}

// SubmitAnswer оценивает ответ и зеркалирует события экономики жизней
// в журнал статистики: потерянная жизнь списывается (терминальное списание
// выполняет учёт завершённого забега), каждая вторая подряд правильная
// приносит жизнь. Завершение игры однократно передаёт итог в журнал.
func (m *SessionManager) SubmitAnswer(id, option string) (entity.AnswerOutcome, SessionView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	as, ok := m.sessions[id]
	if !ok {
		return entity.AnswerOutcome{}, SessionView{}, fmt.Errorf("%w: session %s", apperrors.ErrNotFound, id)
	}

	outcome, err := as.session.SubmitAnswer(option)
	if err != nil {
		return entity.AnswerOutcome{}, SessionView{}, err
	}

	if as.session.Mode == entity.ModeSuddenDeath {
		if outcome.LifeEarned {
			m.ledger.EarnLife(entity.StreakPerLife)
		}
		if outcome.LifeLost {
			m.ledger.UseLife(as.session.Score)
		}
	}

	if outcome.GameOver {
		m.finalizeLocked(as)
	}

	return outcome, viewLocked(as.session), nil
}

// Advance переводит сессию к следующему вопросу. Исчерпанный пул
// Sudden Death прозрачно дополняется свежей выборкой - сессия
// продолжается, это не новая игра.
func (m *SessionManager) Advance(id string) (SessionView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	as, ok := m.sessions[id]
	if !ok {
		return SessionView{}, fmt.Errorf("%w: session %s", apperrors.ErrNotFound, id)
	}

	s := as.session
	if s.Mode == entity.ModeSuddenDeath && s.State == entity.SessionAwaitingNext && s.Exhausted() {
		s.ExtendQuestions(m.bank.SampleAllowingRepeats(m.cfg.PoolExtensionCount))
		log.Printf("[Sessions] Extended session %s pool to %d questions", id, len(s.Questions))
	}

	if err := s.Advance(); err != nil {
		return SessionView{}, err
	}
	return viewLocked(s), nil
}

// Teardown сносит сессию: таймер отменяется, итог незавершённой игры
// не записывается (уход с экрана уничтожает сессию без следа)
func (m *SessionManager) Teardown(id string) {
	m.mu.Lock()
	as, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if ok && as.cancel != nil {
		as.cancel()
	}
}

// Shutdown сносит все сессии при остановке процесса, отменяя их таймеры
func (m *SessionManager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, as := range m.sessions {
		if as.cancel != nil {
			as.cancel()
		}
		delete(m.sessions, id)
	}
}

// runCountdown ведёт обратный отсчёт Timed сессии: один тик в секунду,
// достижение нуля завершает игру независимо от состояния ответа
func (m *SessionManager) runCountdown(ctx context.Context, id string) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if m.tick(id) {
				return
			}
		}
	}
}

// tick обрабатывает один тик таймера; true завершает горутину отсчёта
func (m *SessionManager) tick(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	as, ok := m.sessions[id]
	if !ok {
		return true
	}
	if !as.session.Tick() {
		return false
	}
	m.finalizeLocked(as)
	return true
}

// finalizeLocked однократно передаёт итог завершённой сессии в журнал
// статистики. Учёт Sudden Death уже выполнен терминальным списанием жизни;
// здесь записывается только итог Timed режима. Вызывается только под мьютексом.
func (m *SessionManager) finalizeLocked(as *activeSession) {
	if as.cancel != nil {
		as.cancel()
		as.cancel = nil
	}

	res := as.session.TakeResult(m.now())
	if res == nil {
		return
	}
	if res.Timed != nil {
		m.ledger.RecordTimedResult(*res.Timed)
	}
	log.Printf("[Sessions] Session %s finished: mode=%s score=%d", as.session.ID, as.session.Mode, as.session.Score)
}

// viewLocked строит снимок сессии. Вызывается, когда мутации сессии
// исключены (под мьютексом менеджера или до публикации сессии).
func viewLocked(s *entity.QuizSession) SessionView {
	snap := *s
	snap.Questions = nil

	var q *entity.Question
	if s.State != entity.SessionGameOver {
		if cur := s.CurrentQuestion(); cur != nil {
			qCopy := *cur
			q = &qCopy
		}
	}

	return SessionView{
		Session:        snap,
		Question:       q,
		TotalQuestions: len(s.Questions),
	}
}
