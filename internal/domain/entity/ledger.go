package entity

import (
	"sort"
	"time"
)

const (
	// DefaultLives - запас жизней в начале каждой игры Sudden Death
	DefaultLives = 3

	// MaxFinalScores - размер ограниченного топа лучших результатов Timed режима
	MaxFinalScores = 10

	// LivesPerConversion - курс обмена: столько правильных ответов Timed режима
	// стоит одна жизнь Sudden Death
	LivesPerConversion = 2

	// StreakPerLife - каждая такая длина серии правильных ответов приносит жизнь
	StreakPerLife = 2

	// RollingWeek и RollingMonth - скользящие окна для недельных/месячных рекордов
	RollingWeek  = 7 * 24 * time.Hour
	RollingMonth = 30 * 24 * time.Hour
)

// FinalScore - одна запись в топе лучших результатов Timed режима
type FinalScore struct {
	Score           int       `json:"score"`
	Date            time.Time `json:"date"`
	TimePerQuestion float64   `json:"timePerQuestion"`
}

// TimedLedger - накопленная статистика режима Timed Challenge.
// Скользящее среднее всегда пересчитывается из totalScore/gamesPlayed
// и никогда не хранится рассинхронизированным.
type TimedLedger struct {
	HighScore           int          `json:"highScore"`
	GamesPlayed         int          `json:"gamesPlayed"`
	BestTimePerQuestion float64      `json:"bestTimePerQuestion"`
	LastPlayedAt        time.Time    `json:"lastPlayedAt"`
	FinalScores         []FinalScore `json:"finalScores"`
	TotalScore          int          `json:"totalScore"`
	AverageScore        float64      `json:"averageScore"`
	WeeklyHighScore     int          `json:"weeklyHighScore"`
	MonthlyHighScore    int          `json:"monthlyHighScore"`
}

// NewTimedLedger возвращает пустую статистику Timed режима
func NewTimedLedger() *TimedLedger {
	return &TimedLedger{FinalScores: []FinalScore{}}
}

// TimedResult - итог одной завершённой игры Timed Challenge,
// однократно передаваемый движком сессии в журнал статистики.
type TimedResult struct {
	CorrectAnswers  int     `json:"correct_answers"`
	TimePerQuestion float64 `json:"time_per_question"`
}

// withinWindow сообщает, попадает ли момент now в скользящее окно window,
// отсчитанное от прошлого значения lastPlayedAt. Окно вычисляется по
// предыдущей отметке, до её перезаписи новой.
func withinWindow(prev, now time.Time, window time.Duration) bool {
	if prev.IsZero() {
		return false
	}
	return now.Sub(prev) <= window
}

// RecordResult применяет итог игры к статистике и возвращает true,
// если установлен новый абсолютный рекорд.
func (l *TimedLedger) RecordResult(res TimedResult, now time.Time) bool {
	prev := l.LastPlayedAt

	l.GamesPlayed++
	l.TotalScore += res.CorrectAnswers
	l.AverageScore = float64(l.TotalScore) / float64(l.GamesPlayed)

	newHigh := res.CorrectAnswers > l.HighScore
	if newHigh {
		l.HighScore = res.CorrectAnswers
	}

	// Лучшее время на вопрос: меньше - лучше. Игры без правильных ответов
	// времени на вопрос не имеют и рекорд не трогают.
	if res.TimePerQuestion > 0 &&
		(l.BestTimePerQuestion == 0 || res.TimePerQuestion < l.BestTimePerQuestion) {
		l.BestTimePerQuestion = res.TimePerQuestion
	}

	if withinWindow(prev, now, RollingWeek) {
		if res.CorrectAnswers > l.WeeklyHighScore {
			l.WeeklyHighScore = res.CorrectAnswers
		}
	} else {
		l.WeeklyHighScore = res.CorrectAnswers
	}
	if withinWindow(prev, now, RollingMonth) {
		if res.CorrectAnswers > l.MonthlyHighScore {
			l.MonthlyHighScore = res.CorrectAnswers
		}
	} else {
		l.MonthlyHighScore = res.CorrectAnswers
	}

	l.insertFinalScore(FinalScore{
		Score:           res.CorrectAnswers,
		Date:            now,
		TimePerQuestion: res.TimePerQuestion,
	})

	l.LastPlayedAt = now
	return newHigh
}

// insertFinalScore вставляет запись в топ и усекает его до MaxFinalScores
func (l *TimedLedger) insertFinalScore(fs FinalScore) {
	l.FinalScores = append(l.FinalScores, fs)
	sort.SliceStable(l.FinalScores, func(i, j int) bool {
		return l.FinalScores[i].Score > l.FinalScores[j].Score
	})
	if len(l.FinalScores) > MaxFinalScores {
		l.FinalScores = l.FinalScores[:MaxFinalScores]
	}
}

// SuddenDeathLedger - накопленная статистика режима Sudden Death
// вместе с экономикой жизней. Lives никогда не опускается ниже нуля;
// timedScoreBalance - общий счёт, пополняемый результатами Timed режима
// и списываемый операцией конвертации.
type SuddenDeathLedger struct {
	HighScore         int       `json:"highScore"`
	GamesPlayed       int       `json:"gamesPlayed"`
	BestStreak        int       `json:"bestStreak"`
	LastPlayedAt      time.Time `json:"lastPlayedAt"`
	Lives             int       `json:"lives"`
	ScoreMultiplier   int       `json:"scoreMultiplier"`
	TimedScoreBalance int       `json:"timedScoreBalance"`
	TotalStreak       int       `json:"totalStreak"`
	AverageStreak     float64   `json:"averageStreak"`
	WeeklyBestStreak  int       `json:"weeklyBestStreak"`
	MonthlyBestStreak int       `json:"monthlyBestStreak"`
}

// NewSuddenDeathLedger возвращает статистику Sudden Death по умолчанию
func NewSuddenDeathLedger() *SuddenDeathLedger {
	return &SuddenDeathLedger{
		Lives:           DefaultLives,
		ScoreMultiplier: 1,
	}
}

// SuddenDeathResult - итог одной завершённой игры Sudden Death
type SuddenDeathResult struct {
	FinalStreak int `json:"final_streak"`
}

// UseLife списывает одну жизнь. Если списание опустило запас ровно до нуля,
// это терминальное событие забега: выполняется учёт завершённой игры
// (счётчик игр, суммарная и средняя серия, рекорды). Вызов при нулевом
// запасе - no-op. Возвращает true, когда забег завершён этим вызовом.
func (l *SuddenDeathLedger) UseLife(finalStreak int, now time.Time) bool {
	if l.Lives <= 0 {
		return false
	}
	l.Lives--
	if l.Lives > 0 {
		return false
	}

	prev := l.LastPlayedAt

	l.GamesPlayed++
	l.TotalStreak += finalStreak
	l.AverageStreak = float64(l.TotalStreak) / float64(l.GamesPlayed)
	if finalStreak > l.BestStreak {
		l.BestStreak = finalStreak
	}
	if finalStreak > l.HighScore {
		l.HighScore = finalStreak
	}

	if withinWindow(prev, now, RollingWeek) {
		if finalStreak > l.WeeklyBestStreak {
			l.WeeklyBestStreak = finalStreak
		}
	} else {
		l.WeeklyBestStreak = finalStreak
	}
	if withinWindow(prev, now, RollingMonth) {
		if finalStreak > l.MonthlyBestStreak {
			l.MonthlyBestStreak = finalStreak
		}
	} else {
		l.MonthlyBestStreak = finalStreak
	}

	l.LastPlayedAt = now
	return true
}

// EarnLife начисляет одну жизнь за серию из ровно StreakPerLife
// правильных ответов подряд. Любое другое значение - no-op.
// Контракт намеренно сохранён на стороне вызывающего: движок сессии
// вызывает EarnLife(2) на каждом чётном шаге серии.
func (l *SuddenDeathLedger) EarnLife(correctInStreak int) bool {
	if correctInStreak != StreakPerLife {
		return false
	}
	l.Lives++
	return true
}

// ConvertScoreToLives обменивает накопленный баланс Timed режима на жизни
// по курсу LivesPerConversion:1. Остаток от деления сохраняется в балансе.
// Неположительный баланс - тихий no-op с нулевым результатом.
func (l *SuddenDeathLedger) ConvertScoreToLives(balance int) int {
	if balance <= 0 {
		return 0
	}
	livesToAdd := balance / LivesPerConversion
	if livesToAdd == 0 {
		return 0
	}
	l.Lives += livesToAdd
	l.TimedScoreBalance = balance % LivesPerConversion
	return livesToAdd
}

// CreditTimedBalance пополняет общий баланс правильными ответами Timed режима
func (l *SuddenDeathLedger) CreditTimedBalance(correctAnswers int) {
	if correctAnswers > 0 {
		l.TimedScoreBalance += correctAnswers
	}
}

// ResetLives безусловно восстанавливает стартовый запас жизней.
// Используется перед началом новой игры Sudden Death.
func (l *SuddenDeathLedger) ResetLives() {
	l.Lives = DefaultLives
}
