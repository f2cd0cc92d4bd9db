package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/rental-portal/internal/migrations"
	"github.com/magabrotheeeer/rental-portal/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции проекта.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "Failed to create storage after retries")

	migrationsPath, err := filepath.Abs("../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	t.Cleanup(func() {
		_ = storage.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})
	return storage
}

// resetTables очищает таблицы между подтестами.
func resetTables(t *testing.T, s *Storage) {
	t.Helper()
	_, err := s.DB.Exec(`TRUNCATE car_images, cars, clients RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}

func testCarInput() models.CarInput {
	return models.CarInput{
		Brand:        "Ferrari",
		Model:        "Roma",
		Year:         2024,
		Category:     "Sport",
		Energy:       "Essence",
		Gearbox:      "Auto",
		HP:           620,
		Acceleration: "3.4s",
		Seats:        4,
		PricePerDay:  1500,
		Deposit:      10000,
		KmIncluded:   200,
		Plate:        "AB-123-CD",
		Status:       models.CarAvailable,
		Features:     []string{"GPS", "CarPlay"},
	}
}
