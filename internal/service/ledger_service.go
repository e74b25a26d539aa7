package service

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/yourusername/rhodes-guide-api/internal/domain/entity"
	"github.com/yourusername/rhodes-guide-api/internal/domain/repository"
	apperrors "github.com/yourusername/rhodes-guide-api/internal/pkg/errors"
)

// LedgerService владеет персистируемой статистикой обоих режимов игры
// и правилами экономики жизней. Все мутации - read-modify-write по
// in-memory агрегату под мьютексом с последующей записью полного снимка
// в хранилище; дельта-записей нет, последняя полная запись побеждает.
type LedgerService struct {
	mu       sync.Mutex
	store    repository.StateStore
	notifier Notifier
	timed    *entity.TimedLedger
	sudden   *entity.SuddenDeathLedger
	now      func() time.Time
}

// NewLedgerService создает сервис статистики с пустыми агрегатами.
// Load восстанавливает сохранённое состояние.
func NewLedgerService(store repository.StateStore, notifier Notifier) *LedgerService {
	return &LedgerService{
		store:    store,
		notifier: notifier,
		timed:    entity.NewTimedLedger(),
		sudden:   entity.NewSuddenDeathLedger(),
		now:      time.Now,
	}
}

// Load восстанавливает агрегаты из хранилища. Отсутствие ключа или ошибка
// чтения трактуются как "нет предыдущего состояния": сервис продолжает
// с агрегатами по умолчанию, ошибка логируется и не всплывает.
func (s *LedgerService) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var timed entity.TimedLedger
	switch err := s.store.GetJSON(repository.KeyTimedState, &timed); {
	case err == nil:
		if timed.FinalScores == nil {
			timed.FinalScores = []entity.FinalScore{}
		}
		s.timed = &timed
	case errors.Is(err, apperrors.ErrNotFound):
		// первый запуск
	default:
		log.Printf("[Ledger] Failed to load timed state, starting fresh: %v", err)
	}

	var sudden entity.SuddenDeathLedger
	switch err := s.store.GetJSON(repository.KeySuddenDeathState, &sudden); {
	case err == nil:
		if sudden.ScoreMultiplier == 0 {
			sudden.ScoreMultiplier = 1
		}
		s.sudden = &sudden
	case errors.Is(err, apperrors.ErrNotFound):
		// первый запуск
	default:
		log.Printf("[Ledger] Failed to load sudden death state, starting fresh: %v", err)
	}
}

// RecordTimedResult применяет итог игры Timed Challenge: счётчики и рекорды
// Timed режима плюс обязательное пополнение общего баланса Sudden Death
// правильными ответами - результаты Timed режима финансируют жизни.
// Новый абсолютный рекорд порождает единственное пользовательское
// уведомление этого сервиса.
func (s *LedgerService) RecordTimedResult(res entity.TimedResult) {
	if res.CorrectAnswers < 0 {
		return
	}

	s.mu.Lock()
	newHigh := s.timed.RecordResult(res, s.now())
	s.sudden.CreditTimedBalance(res.CorrectAnswers)
	timedSnap := s.timedSnapshotLocked()
	suddenSnap := *s.sudden
	s.mu.Unlock()

	s.persist(repository.KeyTimedState, timedSnap)
	s.persist(repository.KeySuddenDeathState, suddenSnap)

	if newHigh {
		s.notifier.Notify(Notification{
			Kind:  NotifySuccess,
			Title: "New High Score!",
			Body:  fmt.Sprintf("%d correct answers in Timed Challenge", res.CorrectAnswers),
		})
	}
}

// UseLife списывает одну жизнь Sudden Death. Списание до нуля - терминальное
// событие забега: учёт завершённой игры выполняется здесь же, отдельного
// вызова "конец игры" нет. Возвращает true, когда забег завершён.
func (s *LedgerService) UseLife(finalStreak int) bool {
	s.mu.Lock()
	terminal := s.sudden.UseLife(finalStreak, s.now())
	snap := *s.sudden
	s.mu.Unlock()

	s.persist(repository.KeySuddenDeathState, snap)
	return terminal
}

// EarnLife начисляет жизнь за серию ровно из двух правильных ответов подряд;
// любое другое значение - no-op
func (s *LedgerService) EarnLife(correctInStreak int) bool {
	s.mu.Lock()
	earned := s.sudden.EarnLife(correctInStreak)
	snap := *s.sudden
	s.mu.Unlock()

	if earned {
		s.persist(repository.KeySuddenDeathState, snap)
	}
	return earned
}

// ConvertScoreToLives обменивает баланс Timed режима на жизни по курсу 2:1.
// Возвращает количество начисленных жизней; 0 при недостаточном
// или неположительном балансе.
func (s *LedgerService) ConvertScoreToLives(balance int) int {
	s.mu.Lock()
	added := s.sudden.ConvertScoreToLives(balance)
	snap := *s.sudden
	s.mu.Unlock()

	if added > 0 {
		s.persist(repository.KeySuddenDeathState, snap)
		s.notifier.Notify(Notification{
			Kind:  NotifySuccess,
			Title: "Lives Added",
			Body:  fmt.Sprintf("Converted score into %d lives", added),
		})
	}
	return added
}

// ResetLives безусловно восстанавливает стартовый запас жизней
// перед новой игрой Sudden Death
func (s *LedgerService) ResetLives() {
	s.mu.Lock()
	s.sudden.ResetLives()
	snap := *s.sudden
	s.mu.Unlock()

	s.persist(repository.KeySuddenDeathState, snap)
}

// Lives возвращает текущий запас жизней
func (s *LedgerService) Lives() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sudden.Lives
}

// TimedScoreBalance возвращает текущий накопленный баланс
func (s *LedgerService) TimedScoreBalance() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sudden.TimedScoreBalance
}

// GameStatistics возвращает снимки статистики обоих режимов
func (s *LedgerService) GameStatistics() (entity.TimedLedger, entity.SuddenDeathLedger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timedSnapshotLocked(), *s.sudden
}

// timedSnapshotLocked возвращает глубокую копию агрегата Timed режима.
// Вызывается только под мьютексом.
func (s *LedgerService) timedSnapshotLocked() entity.TimedLedger {
	snap := *s.timed
	snap.FinalScores = make([]entity.FinalScore, len(s.timed.FinalScores))
	copy(snap.FinalScores, s.timed.FinalScores)
	return snap
}

// persist записывает полный снимок агрегата в хранилище.
// Ошибка записи логируется и глотается: in-memory состояние остаётся
// корректным для текущей сессии, обновление может не пережить рестарт.
func (s *LedgerService) persist(key string, snapshot interface{}) {
	if err := s.store.SetJSON(key, snapshot); err != nil {
		log.Printf("[Ledger] Failed to persist %s: %v", key, err)
	}
}
