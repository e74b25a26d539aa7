package repository

import (
	"github.com/yourusername/rhodes-guide-api/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с банком вопросов в БД.
// Банк читается целиком один раз при старте; записи выполняются только
// сидированием пустой таблицы и административным импортом.
type QuestionRepository interface {
	GetAll() ([]entity.Question, error)
	Count() (int64, error)
	Create(question *entity.Question) error
	CreateBatch(questions []entity.Question) error
}
