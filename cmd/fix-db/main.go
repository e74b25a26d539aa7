package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/yourusername/rhodes-guide-api/internal/config"
)

// Утилита восстановления после неудачной миграции: снимает dirty-флаг,
// принудительно выставляя указанную версию схемы.
func main() {
	configPath := flag.String("config", "config/config.yaml", "путь к файлу конфигурации")
	version := flag.Int("version", 0, "версия схемы, которую нужно принудительно выставить")
	flag.Parse()

	if *version <= 0 {
		log.Fatal("Укажите положительную версию схемы: -version N")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatal(err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Принудительно выставляем версию миграций %d...\n", *version)
	if err := m.Force(*version); err != nil {
		log.Fatalf("Не удалось выставить версию: %v", err)
	}

	fmt.Println("Готово. Dirty-флаг снят, приложение можно запускать.")
}
