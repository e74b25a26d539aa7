package questionbank

import (
	"math/rand"
	"sync"
	"time"

	"github.com/yourusername/rhodes-guide-api/internal/domain/entity"
)

// Bank - банк вопросов, загружаемый при старте. Выборка не изменяет банк;
// список заменяется целиком только через Reload (админский импорт).
type Bank struct {
	mu        sync.Mutex
	rng       *rand.Rand
	questions []entity.Question
}

// New создает банк поверх копии списка вопросов
func New(questions []entity.Question) *Bank {
	return NewWithSource(questions, rand.NewSource(time.Now().UnixNano()))
}

// NewWithSource создает банк с заданным источником случайности.
// Используется тестами для детерминированных выборок.
func NewWithSource(questions []entity.Question, src rand.Source) *Bank {
	qs := make([]entity.Question, len(questions))
	copy(qs, questions)
	return &Bank{
		rng:       rand.New(src),
		questions: qs,
	}
}

// Size возвращает размер банка
func (b *Bank) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.questions)
}

// Reload заменяет содержимое банка копией нового списка вопросов.
// Активные сессии не затрагиваются: они держат собственные копии выборок.
func (b *Bank) Reload(questions []entity.Question) {
	qs := make([]entity.Question, len(questions))
	copy(qs, questions)

	b.mu.Lock()
	b.questions = qs
	b.mu.Unlock()
}

// Sample возвращает равномерно перемешанную выборку без повторов.
// Запрос больше размера банка ограничивается размером банка.
func (b *Bank) Sample(count int) []entity.Question {
	if count <= 0 {
		return []entity.Question{}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.questions) == 0 {
		return []entity.Question{}
	}
	if count > len(b.questions) {
		count = len(b.questions)
	}

	perm := b.rng.Perm(len(b.questions))
	out := make([]entity.Question, 0, count)
	for _, idx := range perm[:count] {
		out = append(out, b.questions[idx])
	}
	return out
}

// SampleAllowingRepeats возвращает ровно count вопросов, заворачивая выборку
// по кругу, когда count превышает размер банка. Повторы возможны только
// через границу очередного полного прохода - так Sudden Death дополняет
// свой пул, исчерпав предыдущую выборку.
func (b *Bank) SampleAllowingRepeats(count int) []entity.Question {
	if count <= 0 || b.Size() == 0 {
		return []entity.Question{}
	}

	out := make([]entity.Question, 0, count)
	for len(out) < count {
		remaining := count - len(out)
		out = append(out, b.Sample(remaining)...)
	}
	return out
}
