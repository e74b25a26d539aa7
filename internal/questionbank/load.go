package questionbank

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log"

	"github.com/yourusername/rhodes-guide-api/internal/domain/entity"
	"github.com/yourusername/rhodes-guide-api/internal/domain/repository"
)

//go:embed data/questions.json
var seedData []byte

type seedQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectOption string   `json:"correctOption"`
}

type seedFile struct {
	Questions []seedQuestion `json:"questions"`
}

// SeedQuestions возвращает встроенный стартовый набор вопросов о Родосе
func SeedQuestions() ([]entity.Question, error) {
	var sf seedFile
	if err := json.Unmarshal(seedData, &sf); err != nil {
		return nil, fmt.Errorf("failed to parse embedded question seed: %w", err)
	}

	questions := make([]entity.Question, 0, len(sf.Questions))
	for _, sq := range sf.Questions {
		questions = append(questions, entity.Question{
			Text:          sq.Question,
			Options:       entity.StringArray(sq.Options),
			CorrectOption: sq.CorrectOption,
		})
	}
	return questions, nil
}

// Load читает банк вопросов из БД, предварительно сидируя пустую таблицу
// встроенным набором. Вопросы с нарушенными инвариантами пропускаются
// с записью в лог - банк обязан остаться валидным целиком.
func Load(repo repository.QuestionRepository) (*Bank, error) {
	count, err := repo.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}

	if count == 0 {
		seed, err := SeedQuestions()
		if err != nil {
			return nil, err
		}
		if err := repo.CreateBatch(seed); err != nil {
			return nil, fmt.Errorf("failed to seed question bank: %w", err)
		}
		log.Printf("Question bank seeded with %d questions", len(seed))
	}

	all, err := repo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load question bank: %w", err)
	}

	valid := make([]entity.Question, 0, len(all))
	for _, q := range all {
		if err := q.Validate(); err != nil {
			log.Printf("Skipping invalid question #%d: %v", q.ID, err)
			continue
		}
		valid = append(valid, q)
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("question bank is empty after validation")
	}

	log.Printf("Question bank loaded: %d questions", len(valid))
	return New(valid), nil
}
