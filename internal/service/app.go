package service

import (
	"context"
	"fmt"
	"io"

	"github.com/yourusername/rhodes-guide-api/internal/domain/entity"
	"github.com/yourusername/rhodes-guide-api/internal/domain/repository"
	apperrors "github.com/yourusername/rhodes-guide-api/internal/pkg/errors"
	"github.com/yourusername/rhodes-guide-api/internal/questionbank"
)

// App - единая точка входа для экранов приложения: объединяет банк
// вопросов, движок сессий, журнал статистики и реестр мест под одним
// фасадом. Создается один раз при старте процесса с внедрёнными
// зависимостями и передаётся потребителям по ссылке - скрытых
// синглтонов и инициализации из UI-дерева нет.
type App struct {
	bank     *questionbank.Bank
	ledger   *LedgerService
	places   *PlacesService
	profile  *ProfileService
	sessions *SessionManager
}

// NewApp собирает фасад приложения из внедрённых зависимостей
func NewApp(
	bank *questionbank.Bank,
	store repository.StateStore,
	images repository.ImageStore,
	notifier Notifier,
	sessionCfg SessionConfig,
) *App {
	ledger := NewLedgerService(store, notifier)
	return &App{
		bank:     bank,
		ledger:   ledger,
		places:   NewPlacesService(store, images, notifier),
		profile:  NewProfileService(store, images),
		sessions: NewSessionManager(bank, ledger, sessionCfg),
	}
}

// Load восстанавливает все персистируемые агрегаты из хранилища.
// Вызывается один раз при старте; ошибки чтения уже обработаны
// внутри сервисов как "нет предыдущего состояния".
func (a *App) Load() {
	a.ledger.Load()
	a.places.Load()
	a.profile.Load()
}

// GetRandomQuestions возвращает случайную выборку вопросов без повторов
func (a *App) GetRandomQuestions(count int) []entity.Question {
	return a.bank.Sample(count)
}

// UpdateTimedQuizScore записывает итог игры Timed Challenge в журнал статистики
func (a *App) UpdateTimedQuizScore(res entity.TimedResult) {
	a.ledger.RecordTimedResult(res)
}

// UpdateSuddenDeathLives применяет событие экономики жизней:
// action "use" списывает жизнь (value - финальная серия забега),
// action "earn" начисляет жизнь за серию ровно из двух правильных ответов.
func (a *App) UpdateSuddenDeathLives(action string, value int) (bool, error) {
	switch action {
	case "use":
		return a.ledger.UseLife(value), nil
	case "earn":
		return a.ledger.EarnLife(value), nil
	default:
		return false, fmt.Errorf("%w: unknown lives action %q", apperrors.ErrValidation, action)
	}
}

// ResetSuddenDeathLives восстанавливает стартовый запас жизней
func (a *App) ResetSuddenDeathLives() {
	a.ledger.ResetLives()
}

// ConvertScoreToLives обменивает баланс Timed режима на жизни
func (a *App) ConvertScoreToLives(balance int) int {
	return a.ledger.ConvertScoreToLives(balance)
}

// GetGameStatistics возвращает снимки статистики обоих режимов
func (a *App) GetGameStatistics() (entity.TimedLedger, entity.SuddenDeathLedger) {
	return a.ledger.GameStatistics()
}

// TimedQuizState возвращает текущий агрегат Timed режима
func (a *App) TimedQuizState() entity.TimedLedger {
	timed, _ := a.ledger.GameStatistics()
	return timed
}

// SuddenDeathQuizState возвращает текущий агрегат Sudden Death
func (a *App) SuddenDeathQuizState() entity.SuddenDeathLedger {
	_, sudden := a.ledger.GameStatistics()
	return sudden
}

// ToggleFavorite переключает членство места в избранном
func (a *App) ToggleFavorite(place entity.Place) bool {
	return a.places.ToggleFavorite(place)
}

// Favorites возвращает текущее избранное
func (a *App) Favorites() []entity.Place {
	return a.places.Favorites()
}

// UserMarkers возвращает пользовательские маркеры
func (a *App) UserMarkers() []entity.Place {
	return a.places.UserMarkers()
}

// AddUserMarker добавляет пользовательский маркер с копированием изображения
func (a *App) AddUserMarker(ctx context.Context, marker entity.Place, imageName, contentType string, size int64, image io.Reader) (entity.Place, error) {
	return a.places.AddUserMarker(ctx, marker, imageName, contentType, size, image)
}

// Attractions возвращает каталог достопримечательностей
func (a *App) Attractions() ([]entity.Place, error) {
	return a.places.Attractions()
}

// Sessions открывает движок игровых сессий
func (a *App) Sessions() *SessionManager {
	return a.sessions
}

// Profile открывает сервис профиля пользователя
func (a *App) Profile() *ProfileService {
	return a.profile
}

// Ledger открывает журнал статистики
func (a *App) Ledger() *LedgerService {
	return a.ledger
}

// BankSize возвращает размер банка вопросов
func (a *App) BankSize() int {
	return a.bank.Size()
}
