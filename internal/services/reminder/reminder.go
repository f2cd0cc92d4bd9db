// Package reminder периодически ищет клиентов с истекающими водительскими
// удостоверениями и ставит напоминания в очередь уведомлений.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/rental-portal/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/rental-portal/internal/lib/sl"
	"github.com/magabrotheeeer/rental-portal/internal/models"
	schema "github.com/magabrotheeeer/rental-portal/internal/profile"
)

// Repository поиск истекающих удостоверений.
type Repository interface {
	FindLicensesExpiring(ctx context.Context, from, to time.Time) ([]models.LicenseExpiry, error)
}

// Publisher очередь уведомлений.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, msg any) error
}

// Service планировщик напоминаний.
type Service struct {
	repo       Repository
	publisher  Publisher
	log        *slog.Logger
	windowDays int
	interval   time.Duration
	now        func() time.Time
}

// New создаёт Service: удостоверения, истекающие в ближайшие windowDays дней,
// проверяются раз в interval.
func New(repo Repository, publisher Publisher, log *slog.Logger, windowDays int, interval time.Duration) *Service {
	return &Service{
		repo:       repo,
		publisher:  publisher,
		log:        log,
		windowDays: windowDays,
		interval:   interval,
		now:        time.Now,
	}
}

// Run выполняет проверку сразу и затем по таймеру, пока не отменён ctx.
func (s *Service) Run(ctx context.Context) {
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("license reminder stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Service) runOnce(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil {
		s.log.Error("license reminder run failed", sl.Err(err))
	}
}

// RunOnce публикует напоминания и возвращает число опубликованных сообщений.
// Ошибка публикации одного сообщения не прерывает остальные.
func (s *Service) RunOnce(ctx context.Context) (int, error) {
	const op = "services.reminder.RunOnce"
	s.log.Info("starting search for expiring licenses", slog.Int("window_days", s.windowDays))

	today := truncateDay(s.now())
	until := today.AddDate(0, 0, s.windowDays)
	expiring, err := s.repo.FindLicensesExpiring(ctx, today, until)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(expiring) == 0 {
		s.log.Info("no expiring licenses found")
		return 0, nil
	}
	s.log.Info("found expiring licenses", slog.Int("count", len(expiring)))

	published := 0
	for _, e := range expiring {
		msg := models.LicenseReminder{
			UserID:         e.UserID,
			Email:          e.Email,
			FirstName:      e.FirstName,
			LicenseNumber:  e.LicenseNumber,
			ExpirationDate: e.ExpirationDate.Format(schema.DateLayout),
			DaysLeft:       DaysBetween(today, e.ExpirationDate),
		}
		if err := s.publisher.Publish(ctx, rabbitmq.KeyLicenseExpiring, msg); err != nil {
			s.log.Error("failed to publish license reminder", slog.String("user_id", e.UserID), sl.Err(err))
			continue
		}
		published++
	}
	return published, nil
}

// DaysBetween число календарных дней от from до to.
func DaysBetween(from, to time.Time) int {
	return int(truncateDay(to).Sub(truncateDay(from)).Hours() / 24)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
