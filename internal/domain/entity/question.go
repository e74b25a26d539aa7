package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/yourusername/rhodes-guide-api/internal/pkg/errors"
)

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
// Используется GORM для чтения JSONB данных из базы
func (o *StringArray) Scan(value interface{}) error {
	// Обработка NULL значений из базы данных
	if value == nil {
		*o = StringArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
// Используется GORM для записи StringArray в JSONB в базе
func (o StringArray) Value() (driver.Value, error) {
	if len(o) == 0 {
		return []byte("[]"), nil // Возвращаем пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// QuestionOptionCount - фиксированное количество вариантов ответа на вопрос
const QuestionOptionCount = 4

// Question представляет вопрос о Родосе в статичном банке вопросов.
// Банк загружается один раз при старте приложения и далее неизменяем.
type Question struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	Text          string      `gorm:"size:500;not null" json:"question"`
	Options       StringArray `gorm:"type:jsonb;not null" json:"options"`
	CorrectOption string      `gorm:"size:200;not null" json:"-"` // Скрыто от клиента
	CreatedAt     time.Time   `json:"-"`
	UpdatedAt     time.Time   `json:"-"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsCorrect проверяет, является ли выбранный вариант правильным
func (q *Question) IsCorrect(option string) bool {
	return option == q.CorrectOption
}

// HasOption проверяет, входит ли вариант в список вариантов вопроса
func (q *Question) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}

// Validate проверяет инварианты вопроса: ровно четыре варианта,
// правильный ответ присутствует среди вариантов.
func (q *Question) Validate() error {
	if q.Text == "" {
		return fmt.Errorf("%w: question text is empty", apperrors.ErrValidation)
	}
	if len(q.Options) != QuestionOptionCount {
		return fmt.Errorf("%w: question %q must have %d options, got %d",
			apperrors.ErrValidation, q.Text, QuestionOptionCount, len(q.Options))
	}
	if !q.HasOption(q.CorrectOption) {
		return fmt.Errorf("%w: correct option %q is not among the options of %q",
			apperrors.ErrValidation, q.CorrectOption, q.Text)
	}
	return nil
}
