package dto

import (
	"time"

	"github.com/yourusername/rhodes-guide-api/internal/domain/entity"
	"github.com/yourusername/rhodes-guide-api/internal/handler/helper"
	"github.com/yourusername/rhodes-guide-api/internal/service"
)

// QuestionResponse представляет вопрос в формате для ответа клиенту.
// Правильный ответ наружу не отдается.
type QuestionResponse struct {
	ID      uint                    `json:"id"`
	Text    string                  `json:"text"`
	Options []helper.QuestionOption `json:"options"`
}

// NewQuestionResponse создает DTO для вопроса
func NewQuestionResponse(q *entity.Question) *QuestionResponse {
	if q == nil {
		return nil
	}
	return &QuestionResponse{
		ID:      q.ID,
		Text:    q.Text,
		Options: helper.ConvertOptionsToObjects(q.Options),
	}
}

// NewQuestionListResponse создает список DTO вопросов
func NewQuestionListResponse(questions []entity.Question) []*QuestionResponse {
	out := make([]*QuestionResponse, 0, len(questions))
	for i := range questions {
		out = append(out, NewQuestionResponse(&questions[i]))
	}
	return out
}

// SessionResponse представляет снимок игровой сессии для клиента
type SessionResponse struct {
	ID             string              `json:"id"`
	Mode           entity.QuizMode     `json:"mode"`
	State          entity.SessionState `json:"state"`
	CurrentIndex   int                 `json:"current_index"`
	Score          int                 `json:"score"`
	CorrectStreak  int                 `json:"correct_streak"`
	TimeLeftSec    int                 `json:"time_left_sec,omitempty"`
	LivesRemaining int                 `json:"lives_remaining,omitempty"`
	TotalQuestions int                 `json:"total_questions"`
	StartedAt      time.Time           `json:"started_at"`
	Question       *QuestionResponse   `json:"question,omitempty"`
}

// NewSessionResponse создает DTO снимка сессии
func NewSessionResponse(view service.SessionView) *SessionResponse {
	return &SessionResponse{
		ID:             view.Session.ID,
		Mode:           view.Session.Mode,
		State:          view.Session.State,
		CurrentIndex:   view.Session.CurrentIndex,
		Score:          view.Session.Score,
		CorrectStreak:  view.Session.CorrectStreak,
		TimeLeftSec:    view.Session.TimeLeftSec,
		LivesRemaining: view.Session.LivesRemaining,
		TotalQuestions: view.TotalQuestions,
		StartedAt:      view.Session.StartedAt,
		Question:       NewQuestionResponse(view.Question),
	}
}

// AnswerResponse представляет исход ответа вместе с обновленным снимком сессии
type AnswerResponse struct {
	IsCorrect  bool             `json:"is_correct"`
	LifeLost   bool             `json:"life_lost"`
	LifeEarned bool             `json:"life_earned"`
	GameOver   bool             `json:"game_over"`
	Session    *SessionResponse `json:"session"`
}

// NewAnswerResponse создает DTO исхода ответа
func NewAnswerResponse(outcome entity.AnswerOutcome, view service.SessionView) *AnswerResponse {
	return &AnswerResponse{
		IsCorrect:  outcome.IsCorrect,
		LifeLost:   outcome.LifeLost,
		LifeEarned: outcome.LifeEarned,
		GameOver:   outcome.GameOver,
		Session:    NewSessionResponse(view),
	}
}

// GameStatisticsResponse объединяет агрегаты обоих игровых режимов
type GameStatisticsResponse struct {
	Timed       entity.TimedLedger       `json:"timed"`
	SuddenDeath entity.SuddenDeathLedger `json:"sudden_death"`
}
