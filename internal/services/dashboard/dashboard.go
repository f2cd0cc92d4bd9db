// Package dashboard считает показатели панели администратора.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/magabrotheeeer/rental-portal/internal/lib/sl"
	"github.com/magabrotheeeer/rental-portal/internal/models"
	"github.com/magabrotheeeer/rental-portal/internal/services/fleet"
	"github.com/magabrotheeeer/rental-portal/internal/session"
)

const (
	CacheKey = "dashboard:kpis"
	CacheTTL = time.Minute
	// NewClientsWindow период, за который клиент считается новым.
	NewClientsWindow = 7 * 24 * time.Hour
)

// Repository источники данных панели.
type Repository interface {
	ListCars(ctx context.Context) ([]models.Car, error)
	ClientStats(ctx context.Context, since time.Time) (models.ClientStats, error)
}

// Service панель администратора.
type Service struct {
	repo  Repository
	cache fleet.Cache
	log   *slog.Logger
	now   func() time.Time
}

// New создаёт Service. cache может быть nil.
func New(repo Repository, cache fleet.Cache, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log, now: time.Now}
}

// ComputeFleetKPIs считает показатели автопарка. Загрузка это доля сданных
// автомобилей в процентах, средняя цена считается по всему автопарку.
func ComputeFleetKPIs(cars []models.Car) models.DashboardKPIs {
	var k models.DashboardKPIs
	var total float64
	for _, c := range cars {
		k.FleetSize++
		total += c.PricePerDay
		switch c.Status {
		case models.CarAvailable:
			k.Available++
		case models.CarRented:
			k.Rented++
		case models.CarMaintenance:
			k.Maintenance++
		}
	}
	if k.FleetSize > 0 {
		k.OccupancyRate = round2(float64(k.Rented) * 100 / float64(k.FleetSize))
		k.AverageDailyRate = round2(total / float64(k.FleetSize))
	}
	return k
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// KPIs возвращает показатели панели.
func (s *Service) KPIs(ctx context.Context, sess *session.Session) (models.DashboardKPIs, error) {
	const op = "services.dashboard.KPIs"
	if err := session.Require(sess); err != nil {
		return models.DashboardKPIs{}, err
	}
	if !sess.IsAdmin() {
		return models.DashboardKPIs{}, fleet.ErrForbidden
	}

	if s.cache != nil {
		var cached models.DashboardKPIs
		found, err := s.cache.Get(ctx, CacheKey, &cached)
		if err != nil {
			s.log.Warn("failed to read dashboard cache", slog.String("op", op), sl.Err(err))
		} else if found {
			return cached, nil
		}
	}

	cars, err := s.repo.ListCars(ctx)
	if err != nil {
		return models.DashboardKPIs{}, fmt.Errorf("%s: %w", op, err)
	}
	stats, err := s.repo.ClientStats(ctx, s.now().Add(-NewClientsWindow))
	if err != nil {
		return models.DashboardKPIs{}, fmt.Errorf("%s: %w", op, err)
	}
	k := ComputeFleetKPIs(cars)
	k.NewClients = stats.NewLastWeek
	k.PendingLicenses = stats.PendingLicenses

	if s.cache != nil {
		if err := s.cache.Set(ctx, CacheKey, k, CacheTTL); err != nil {
			s.log.Warn("failed to write dashboard cache", slog.String("op", op), sl.Err(err))
		}
	}
	return k, nil
}
