package entity

import (
	"fmt"
	"time"

	apperrors "github.com/yourusername/rhodes-guide-api/internal/pkg/errors"
)

// QuizMode - режим игры
type QuizMode string

const (
	ModeTimed       QuizMode = "timed"
	ModeSuddenDeath QuizMode = "sudden-death"
)

// Valid проверяет, что режим известен
func (m QuizMode) Valid() bool {
	return m == ModeTimed || m == ModeSuddenDeath
}

// SessionState - состояние конечного автомата сессии
type SessionState string

const (
	// SessionActive - сессия ждёт ответ на текущий вопрос
	SessionActive SessionState = "active"
	// SessionAwaitingNext - ответ принят и оценён, показывается обратная связь;
	// новые ответы не принимаются до перехода к следующему вопросу
	SessionAwaitingNext SessionState = "awaiting_next"
	// SessionGameOver - сессия завершена, итог ожидает однократной выдачи
	SessionGameOver SessionState = "game_over"
)

// AnswerOutcome - результат оценки одного ответа
type AnswerOutcome struct {
	IsCorrect  bool `json:"is_correct"`
	LifeLost   bool `json:"life_lost,omitempty"`
	LifeEarned bool `json:"life_earned,omitempty"`
	GameOver   bool `json:"game_over"`
}

// SessionResult - однократный итог завершённой сессии для журнала статистики.
// Заполнено ровно одно из полей Timed/SuddenDeath в соответствии с режимом.
type SessionResult struct {
	Mode        QuizMode
	Timed       *TimedResult
	SuddenDeath *SuddenDeathResult
}

// QuizSession - одна запущенная игра. Счётчики сессии изменяются только
// методами самой сессии в ответ на события ответа и тики таймера.
// Сессия не персистится: уход с экрана уничтожает её без следа,
// в журнал статистики попадает только итог завершённой игры.
type QuizSession struct {
	ID             string       `json:"id"`
	Mode           QuizMode     `json:"mode"`
	Questions      []Question   `json:"-"`
	CurrentIndex   int          `json:"current_index"`
	Score          int          `json:"score"`
	CorrectStreak  int          `json:"correct_streak"`
	TimeLeftSec    int          `json:"time_left_sec,omitempty"`
	LivesRemaining int          `json:"lives_remaining,omitempty"`
	State          SessionState `json:"state"`
	StartedAt      time.Time    `json:"started_at"`

	resultEmitted bool
}

// NewTimedSession создает сессию Timed Challenge с обратным отсчетом
func NewTimedSession(id string, questions []Question, durationSec int, startedAt time.Time) *QuizSession {
	return &QuizSession{
		ID:          id,
		Mode:        ModeTimed,
		Questions:   questions,
		TimeLeftSec: durationSec,
		State:       SessionActive,
		StartedAt:   startedAt,
	}
}

// NewSuddenDeathSession создает сессию Sudden Death с запасом жизней
func NewSuddenDeathSession(id string, questions []Question, lives int, startedAt time.Time) *QuizSession {
	return &QuizSession{
		ID:             id,
		Mode:           ModeSuddenDeath,
		Questions:      questions,
		LivesRemaining: lives,
		State:          SessionActive,
		StartedAt:      startedAt,
	}
}

// CurrentQuestion возвращает текущий вопрос сессии
func (s *QuizSession) CurrentQuestion() *Question {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return nil
	}
	return &s.Questions[s.CurrentIndex]
}

// SubmitAnswer оценивает ответ на текущий вопрос. Принимается ровно один
// ответ за раз: пока сессия не в состоянии Active (ответ уже оценён и ждёт
// перехода к следующему вопросу, либо игра окончена), вызов отклоняется.
// Это защита от двойного начисления при быстрых повторных нажатиях.
func (s *QuizSession) SubmitAnswer(option string) (AnswerOutcome, error) {
	if s.State != SessionActive {
		return AnswerOutcome{}, fmt.Errorf("%w: session %s is not accepting answers", apperrors.ErrConflict, s.ID)
	}
	q := s.CurrentQuestion()
	if q == nil {
		return AnswerOutcome{}, fmt.Errorf("%w: session %s has no current question", apperrors.ErrConflict, s.ID)
	}

	var out AnswerOutcome
	out.IsCorrect = q.IsCorrect(option)

	if out.IsCorrect {
		s.Score++
		s.CorrectStreak++
		// Каждая вторая подряд правильная в Sudden Death приносит жизнь
		if s.Mode == ModeSuddenDeath && s.CorrectStreak%StreakPerLife == 0 {
			s.LivesRemaining++
			out.LifeEarned = true
		}
	} else {
		s.CorrectStreak = 0
		if s.Mode == ModeSuddenDeath {
			s.LivesRemaining--
			out.LifeLost = true
			if s.LivesRemaining <= 0 {
				s.LivesRemaining = 0
				s.State = SessionGameOver
				out.GameOver = true
				return out, nil
			}
		}
		// В Timed режиме неправильный ответ игру не заканчивает
	}

	s.State = SessionAwaitingNext
	return out, nil
}

// Exhausted сообщает, что текущий вопрос - последний в выборке
func (s *QuizSession) Exhausted() bool {
	return s.CurrentIndex+1 >= len(s.Questions)
}

// ExtendQuestions дополняет выборку сессии новыми вопросами.
// Sudden Death продолжает ту же сессию на расширенном пуле; повторы
// через границу расширения допустимы.
func (s *QuizSession) ExtendQuestions(more []Question) {
	s.Questions = append(s.Questions, more...)
}

// Advance переводит сессию от показа обратной связи к следующему вопросу.
// В Timed режиме исчерпанная выборка оставляет индекс на последнем вопросе.
func (s *QuizSession) Advance() error {
	if s.State != SessionAwaitingNext {
		return fmt.Errorf("%w: session %s has no pending answer", apperrors.ErrConflict, s.ID)
	}
	if !s.Exhausted() {
		s.CurrentIndex++
	}
	s.State = SessionActive
	return nil
}

// Tick обрабатывает один тик секундного таймера Timed режима.
// Достижение нуля завершает игру независимо от состояния ответа.
// Возвращает true, когда именно этот тик завершил игру.
func (s *QuizSession) Tick() bool {
	if s.Mode != ModeTimed || s.State == SessionGameOver {
		return false
	}
	s.TimeLeftSec--
	if s.TimeLeftSec > 0 {
		return false
	}
	s.TimeLeftSec = 0
	s.State = SessionGameOver
	return true
}

// TakeResult выдает итог завершённой сессии ровно один раз.
// До завершения игры и при повторных вызовах возвращает nil.
func (s *QuizSession) TakeResult(now time.Time) *SessionResult {
	if s.State != SessionGameOver || s.resultEmitted {
		return nil
	}
	s.resultEmitted = true

	if s.Mode == ModeSuddenDeath {
		return &SessionResult{
			Mode:        ModeSuddenDeath,
			SuddenDeath: &SuddenDeathResult{FinalStreak: s.Score},
		}
	}

	// Среднее время на вопрос считается только по правильным ответам;
	// игра без единого правильного ответа времени на вопрос не имеет
	tpq := 0.0
	if s.Score > 0 {
		tpq = now.Sub(s.StartedAt).Seconds() / float64(s.Score)
	}
	return &SessionResult{
		Mode:  ModeTimed,
		Timed: &TimedResult{CorrectAnswers: s.Score, TimePerQuestion: tpq},
	}
}
