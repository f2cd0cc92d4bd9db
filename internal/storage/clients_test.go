package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/rental-portal/internal/models"
)

func TestClients(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()

	t.Run("find missing profile", func(t *testing.T) {
		resetTables(t, s)
		_, err := s.FindByUserID(ctx, nil, "U1")
		assert.ErrorIs(t, err, models.ErrRecordNotFound)
	})

	t.Run("upsert is idempotent", func(t *testing.T) {
		resetTables(t, s)
		rec := models.Record{"user_id": "U1", "first_name": "Marc", "last_name": "Dubois", "date_of_birth": nil}
		require.NoError(t, s.Upsert(ctx, nil, rec))
		require.NoError(t, s.Upsert(ctx, nil, rec))

		var count int
		require.NoError(t, s.DB.QueryRow(`SELECT COUNT(*) FROM clients WHERE user_id = 'U1'`).Scan(&count))
		assert.Equal(t, 1, count)

		got, err := s.FindByUserID(ctx, nil, "U1")
		require.NoError(t, err)
		assert.Equal(t, "Marc", got["first_name"])
		assert.Equal(t, "Dubois", got["last_name"])
		assert.Equal(t, "", got["city"])
		assert.Nil(t, got["date_of_birth"])
		assert.Nil(t, got["license_front_path"])
		assert.Equal(t, false, got["is_vip"])
	})

	t.Run("partial upsert keeps other columns", func(t *testing.T) {
		resetTables(t, s)
		require.NoError(t, s.Upsert(ctx, nil, models.Record{
			"user_id": "U1", "license_front_path": "U1/front.jpg", "license_back_path": "U1/back.jpg",
		}))
		require.NoError(t, s.Upsert(ctx, nil, models.Record{"user_id": "U1", "license_front_path": "U1/front2.jpg"}))

		got, err := s.FindByUserID(ctx, nil, "U1")
		require.NoError(t, err)
		assert.Equal(t, "U1/front2.jpg", got["license_front_path"])
		assert.Equal(t, "U1/back.jpg", got["license_back_path"])
	})

	t.Run("dates round trip", func(t *testing.T) {
		resetTables(t, s)
		require.NoError(t, s.Upsert(ctx, nil, models.Record{"user_id": "U1", "date_of_birth": "1985-04-12"}))
		got, err := s.FindByUserID(ctx, nil, "U1")
		require.NoError(t, err)
		assert.Equal(t, "1985-04-12", got["date_of_birth"])
	})

	t.Run("unknown column rejected", func(t *testing.T) {
		resetTables(t, s)
		err := s.Upsert(ctx, nil, models.Record{"user_id": "U1", "password": "x"})
		assert.Error(t, err)
	})

	t.Run("update missing profile", func(t *testing.T) {
		resetTables(t, s)
		err := s.Update(ctx, nil, "U1", models.Record{"license_num": "123"})
		assert.ErrorIs(t, err, models.ErrRecordNotFound)
	})

	t.Run("update license", func(t *testing.T) {
		resetTables(t, s)
		require.NoError(t, s.Upsert(ctx, nil, models.Record{"user_id": "U1", "license_expiration_date": "2030-01-01"}))
		require.NoError(t, s.Update(ctx, nil, "U1", models.Record{
			"license_num": "12AB34", "license_expiration_date": nil,
		}))
		got, err := s.FindByUserID(ctx, nil, "U1")
		require.NoError(t, err)
		assert.Equal(t, "12AB34", got["license_num"])
		assert.Nil(t, got["license_expiration_date"])
	})

	t.Run("licenses expiring", func(t *testing.T) {
		resetTables(t, s)
		today := time.Now().UTC().Truncate(24 * time.Hour)
		require.NoError(t, s.Upsert(ctx, nil, models.Record{
			"user_id": "U1", "email": "u1@example.com",
			"license_expiration_date": today.AddDate(0, 0, 10).Format("2006-01-02"),
		}))
		require.NoError(t, s.Upsert(ctx, nil, models.Record{
			"user_id": "U2", "license_expiration_date": today.AddDate(0, 0, 90).Format("2006-01-02"),
		}))
		require.NoError(t, s.Upsert(ctx, nil, models.Record{"user_id": "U3"}))

		res, err := s.FindLicensesExpiring(ctx, today, today.AddDate(0, 0, 30))
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, "U1", res[0].UserID)
		assert.Equal(t, "u1@example.com", res[0].Email)
	})

	t.Run("client stats", func(t *testing.T) {
		resetTables(t, s)
		require.NoError(t, s.Upsert(ctx, nil, models.Record{
			"user_id": "U1", "license_front_path": "a", "license_back_path": "b",
		}))
		require.NoError(t, s.Upsert(ctx, nil, models.Record{"user_id": "U2", "license_front_path": "a"}))
		_, err := s.DB.Exec(`UPDATE clients SET created_at = now() - interval '30 days' WHERE user_id = 'U2'`)
		require.NoError(t, err)

		st, err := s.ClientStats(ctx, time.Now().AddDate(0, 0, -7))
		require.NoError(t, err)
		assert.Equal(t, 2, st.Total)
		assert.Equal(t, 1, st.NewLastWeek)
		assert.Equal(t, 1, st.PendingLicenses)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := s.FindByUserID(cctx, nil, "U1")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
