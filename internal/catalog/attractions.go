// Package catalog содержит встроенный каталог достопримечательностей Родоса.
// Каталог неизменяем и служит источником предустановленных мест на карте;
// избранное ссылается на его записи по паре (id, location).
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/yourusername/rhodes-guide-api/internal/domain/entity"
)

//go:embed data/attractions.json
var attractionsData []byte

type attractionsFile struct {
	Attractions []entity.Place `json:"attractions"`
}

var (
	once        sync.Once
	attractions []entity.Place
	loadErr     error
)

// Attractions возвращает каталог достопримечательностей.
// Данные парсятся один раз; возвращается копия списка.
func Attractions() ([]entity.Place, error) {
	once.Do(func() {
		var af attractionsFile
		if err := json.Unmarshal(attractionsData, &af); err != nil {
			loadErr = fmt.Errorf("failed to parse embedded attractions: %w", err)
			return
		}
		attractions = af.Attractions
	})
	if loadErr != nil {
		return nil, loadErr
	}

	out := make([]entity.Place, len(attractions))
	copy(out, attractions)
	return out, nil
}
