package repository

// Ключи долговременного состояния приложения. Каждое значение - полный
// снимок соответствующего агрегата в формате JSON; дельта-записей нет,
// последняя полная запись побеждает.
const (
	KeyUserMarkers      = "userMarkers"
	KeyFavorites        = "favorites"
	KeyTimedState       = "timedQuizState"
	KeySuddenDeathState = "suddenDeathQuizState"
	KeyUserProfile      = "userProfile"
)

// StateStore определяет методы долговременного строкового хранилища
// состояния приложения. Отсутствие ключа сигнализируется ошибкой
// errors.ErrNotFound и трактуется как "нет предыдущего состояния".
type StateStore interface {
	Set(key string, value interface{}) error
	Get(key string) (string, error)
	SetJSON(key string, value interface{}) error
	GetJSON(key string, dest interface{}) error
	Delete(key string) error
	Exists(key string) (bool, error)
}
