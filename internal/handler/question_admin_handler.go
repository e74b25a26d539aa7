package handler

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/rhodes-guide-api/internal/domain/entity"
	"github.com/yourusername/rhodes-guide-api/internal/domain/repository"
	"github.com/yourusername/rhodes-guide-api/internal/questionbank"
)

// importColumns - ожидаемый формат строки импорта:
// вопрос, четыре варианта, правильный вариант. Первая строка - заголовки.
const importColumns = 6

// QuestionAdminHandler обрабатывает админский импорт банка вопросов
type QuestionAdminHandler struct {
	repo repository.QuestionRepository
	bank *questionbank.Bank
}

// NewQuestionAdminHandler создает новый обработчик импорта вопросов
func NewQuestionAdminHandler(repo repository.QuestionRepository, bank *questionbank.Bank) *QuestionAdminHandler {
	return &QuestionAdminHandler{repo: repo, bank: bank}
}

// ImportQuestions принимает XLSX или CSV файл с вопросами, сохраняет их
// в базу и перезагружает банк. Формат определяется расширением файла.
func (h *QuestionAdminHandler) ImportQuestions(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Import file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read import file"})
		return
	}
	defer file.Close()

	var rows [][]string
	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".xlsx":
		rows, err = readXLSXRows(file)
	case ".csv":
		rows, err = readCSVRows(file)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file format, expected .xlsx or .csv"})
		return
	}
	if err != nil {
		log.Printf("[QuestionAdmin] Ошибка разбора файла импорта %q: %v", fileHeader.Filename, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to parse import file: %v", err)})
		return
	}

	questions, skipped, err := parseImportRows(rows)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(questions) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Import file contains no valid questions"})
		return
	}

	if err := h.repo.CreateBatch(questions); err != nil {
		log.Printf("[QuestionAdmin] Ошибка сохранения импортированных вопросов: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save imported questions"})
		return
	}

	if err := h.reloadBank(); err != nil {
		log.Printf("[QuestionAdmin] Ошибка перезагрузки банка после импорта: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Questions saved, but bank reload failed"})
		return
	}

	log.Printf("[QuestionAdmin] Импортировано %d вопросов (%d строк пропущено), банк: %d",
		len(questions), skipped, h.bank.Size())

	c.JSON(http.StatusOK, gin.H{
		"imported":  len(questions),
		"skipped":   skipped,
		"bank_size": h.bank.Size(),
	})
}

// reloadBank перечитывает банк из базы, пропуская невалидные вопросы
func (h *QuestionAdminHandler) reloadBank() error {
	all, err := h.repo.GetAll()
	if err != nil {
		return err
	}

	valid := make([]entity.Question, 0, len(all))
	for _, q := range all {
		if err := q.Validate(); err != nil {
			log.Printf("[QuestionAdmin] Пропуск невалидного вопроса #%d: %v", q.ID, err)
			continue
		}
		valid = append(valid, q)
	}
	if len(valid) == 0 {
		return fmt.Errorf("question bank is empty after validation")
	}

	h.bank.Reload(valid)
	return nil
}

// parseImportRows превращает строки таблицы в вопросы. Первая строка
// считается заголовками и пропускается; строки с нарушенными
// инвариантами пропускаются со счетчиком.
func parseImportRows(rows [][]string) ([]entity.Question, int, error) {
	if len(rows) < 2 {
		return nil, 0, fmt.Errorf("import file must contain a header row and at least one question")
	}

	questions := make([]entity.Question, 0, len(rows)-1)
	skipped := 0
	for i, row := range rows[1:] {
		if len(row) < importColumns {
			log.Printf("[QuestionAdmin] Строка %d: ожидалось %d колонок, получено %d", i+2, importColumns, len(row))
			skipped++
			continue
		}

		q := entity.Question{
			Text:          strings.TrimSpace(row[0]),
			Options:       entity.StringArray{},
			CorrectOption: strings.TrimSpace(row[5]),
		}
		for _, opt := range row[1:5] {
			q.Options = append(q.Options, strings.TrimSpace(opt))
		}

		if err := q.Validate(); err != nil {
			log.Printf("[QuestionAdmin] Строка %d пропущена: %v", i+2, err)
			skipped++
			continue
		}
		questions = append(questions, q)
	}
	return questions, skipped, nil
}

// readXLSXRows читает строки первого листа XLSX файла
func readXLSXRows(file multipart.File) ([][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheet)
}

// readCSVRows читает строки CSV файла, снимая UTF-8 BOM при его наличии
func readCSVRows(file multipart.File) ([][]string, error) {
	reader := csv.NewReader(stripBOM(file))
	reader.FieldsPerRecord = -1 // число колонок проверяется построчно
	return reader.ReadAll()
}

// stripBOM снимает UTF-8 BOM с начала потока
func stripBOM(r io.Reader) io.Reader {
	buf := make([]byte, 3)
	n, _ := io.ReadFull(r, buf)
	if n == 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF {
		return r
	}
	return io.MultiReader(strings.NewReader(string(buf[:n])), r)
}
