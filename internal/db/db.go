package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trademe-app/trademe-api/internal/config"
)

// DB оборачивает пул соединений с базой данных. Экземпляр создается в main
// и передается в сервисы явно, без глобального состояния.
type DB struct {
	Pool *pgxpool.Pool
}

// New создает пул соединений и проверяет доступность базы данных
func New(cfg *config.Config) (*DB, error) {
	// Создаем контекст с таймаутом для подключения
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Настраиваем конфигурацию пула соединений
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка при разборе URL базы данных: %w", err)
	}

	// Дополнительная настройка пула соединений
	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2

	// Создаем пул соединений
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании пула соединений: %w", err)
	}

	// Проверяем соединение
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка при проверке соединения: %w", err)
	}

	log.Println("✅ Успешное подключение к базе данных")
	return &DB{Pool: pool}, nil
}

// Close закрывает соединение с базой данных
func (d *DB) Close() {
	if d.Pool != nil {
		d.Pool.Close()
	}
}
